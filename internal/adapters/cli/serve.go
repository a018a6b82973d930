package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devbush/compliancecheck/internal/adapters/stubserver"
	"github.com/devbush/compliancecheck/internal/config"
	"github.com/devbush/compliancecheck/internal/logging"
	"github.com/spf13/cobra"
)

var (
	addrFlag    string
	stubKeyFlag string
	delayFlag   string
	originsFlag []string
)

// NewServeStubCmd creates the serve-stub command
func NewServeStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run a local stand-in for the compliance service",
		Long: `Serve the compliance analysis API with canned answers, for trying the
CLI without a real backend.

Uploads whose file name contains "fail" are answered with HTTP 500.

Example:
  compliancecheck serve-stub --addr :8000
  compliancecheck serve-stub --key secret --delay 2s`,
		Args: cobra.NoArgs,
		RunE: runServeStub,
	}

	cmd.Flags().StringVar(&addrFlag, "addr", ":8000", "Listen address")
	cmd.Flags().StringVar(&stubKeyFlag, "key", "", "Access key clients must send (default: none)")
	cmd.Flags().StringVar(&delayFlag, "delay", "", "Simulated processing time per upload (e.g., 2s)")
	cmd.Flags().StringSliceVar(&originsFlag, "allowed-origins", nil, "CORS origins (default: *)")

	return cmd
}

func runServeStub(cmd *cobra.Command, args []string) error {
	levelName := "info"
	if logLevelFlag != "" {
		levelName = logLevelFlag
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger := logging.New(logOutput(), level)

	var delay time.Duration
	if delayFlag != "" {
		if delay, err = config.ParseDuration(delayFlag); err != nil {
			return err
		}
	}

	handler := stubserver.NewRouter(stubserver.Options{
		AccessKey:      strings.TrimSpace(stubKeyFlag),
		Delay:          delay,
		AllowedOrigins: originsFlag,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return stubserver.Serve(ctx, addrFlag, handler, logger)
}
