package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/devbush/compliancecheck/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceFlag bool

// NewConfigCmd creates the config subcommand
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		RunE:  runConfigShow,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE:  runConfigShow,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
		},
	}

	cmd.AddCommand(showCmd, initCmd, pathCmd)
	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	data, err := renderConfig(app.Config)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", config.ConfigPath())
	fmt.Fprint(out, data)
	return nil
}

// renderConfig marshals cfg to YAML with the access key masked
func renderConfig(cfg *config.Config) (string, error) {
	shown := *cfg
	shown.API.AccessKey = maskSecret(cfg.API.AccessKey)

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// maskSecret keeps the last four characters of long secrets
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigPath()

	if _, err := os.Stat(path); err == nil && !forceFlag {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
