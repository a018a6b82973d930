package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured service and whether it responds",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cfg := app.Config

	key := "not set"
	if cfg.API.AccessKey != "" {
		key = "set (" + maskSecret(cfg.API.AccessKey) + ")"
	}
	regulation := cfg.Defaults.Regulation
	if regulation == "" {
		regulation = "(service default)"
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Service Status:")
	fmt.Fprintf(out, "  URL:         %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  Access key:  %s\n", key)
	fmt.Fprintf(out, "  Require key: %t\n", cfg.API.RequireKey)
	fmt.Fprintf(out, "  Regulation:  %s\n", regulation)
	fmt.Fprintf(out, "  Max upload:  %s\n", cfg.Upload.MaxFileSize)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if err := app.Client.Ping(ctx); err != nil {
		fmt.Fprintf(out, "  Reachable:   no (%v)\n", err)
		fmt.Fprintln(out)
		return fmt.Errorf("service at %s is not reachable", cfg.API.BaseURL)
	}
	fmt.Fprintf(out, "  Reachable:   yes (%s)\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintln(out)

	return nil
}
