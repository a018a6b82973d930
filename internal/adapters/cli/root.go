package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devbush/compliancecheck/internal/adapters/cli/tui"
	"github.com/devbush/compliancecheck/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cli.Version=..."
var Version = "dev"

var (
	// Global flags
	apiURLFlag    string
	accessKeyFlag string
	logLevelFlag  string
	quietFlag     bool

	// requireKeySet records whether --require-key was given explicitly
	requireKeySet bool
)

// errBatchFailed is returned when a run finished with failed files; the
// details have already been printed
var errBatchFailed = errors.New("one or more files failed")

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "compliancecheck",
		Short: "Check call recordings for regulatory compliance",
		Long: `compliancecheck uploads call recordings to a compliance analysis
service and reports a verdict for each file.

Run a subcommand, or run without arguments for an interactive menu.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			requireKeySet = cmd.Flags().Changed("require-key")
		},
		RunE: runRoot,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Compliance service base URL")
	rootCmd.PersistentFlags().StringVar(&accessKeyFlag, "access-key", "", "Access key sent with every request")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")

	// Add subcommands
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewServeStubCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewStatusCmd())

	return rootCmd
}

// applyFlags copies values given on the command line over cfg
func applyFlags(cfg *config.Config) {
	if apiURLFlag != "" {
		cfg.API.BaseURL = apiURLFlag
	}
	if accessKeyFlag != "" {
		cfg.API.AccessKey = accessKeyFlag
	}
	if requireKeySet {
		cfg.API.RequireKey = requireKeyFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if quietFlag {
		cfg.Log.Level = "error"
	}
	if regulationFlag != "" {
		cfg.Defaults.Regulation = regulationFlag
	}
	if outputDirFlag != "" {
		cfg.Defaults.OutputDir = outputDirFlag
	}
	if formatFlag != "" {
		cfg.Defaults.Format = formatFlag
	}
}

func logOutput() io.Writer {
	return os.Stderr
}

func runRoot(cmd *cobra.Command, args []string) error {
	// No arguments - show interactive menu
	return runInteractiveMenu(cmd)
}

func runInteractiveMenu(cmd *cobra.Command) error {
	options := []tui.MenuOption{
		{Label: "Analyze recordings", Value: "analyze", Description: "Upload .mp3, .wav or .m4a files for a compliance check"},
		{Label: "Ask a compliance question", Value: "chat", Description: "Chat with the compliance assistant"},
		{Label: "Check connection", Value: "status", Description: "Show the configured service and whether it responds"},
		{Label: "Show settings", Value: "config", Description: "Print the effective configuration"},
	}

	selected, err := tui.RunMenu("What would you like to do?", options)
	if err != nil {
		return err
	}

	switch selected {
	case "analyze":
		line, err := promptLine("Enter files or folders (separated by spaces): ")
		if err != nil {
			return err
		}
		interactiveFlag = true
		return runAnalyze(cmd, strings.Fields(line))
	case "chat":
		return runChat(cmd, nil)
	case "status":
		return runStatus(cmd, nil)
	case "config":
		return runConfigShow(cmd, nil)
	case "":
		fmt.Println("Cancelled")
	}

	return nil
}

// promptLine prints label and reads one line from stdin
func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errBatchFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
