package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/devbush/compliancecheck/internal/adapters/filesink"
	"github.com/devbush/compliancecheck/internal/adapters/httpapi"
	"github.com/devbush/compliancecheck/internal/adapters/picker"
	"github.com/devbush/compliancecheck/internal/application"
	"github.com/devbush/compliancecheck/internal/config"
	"github.com/devbush/compliancecheck/internal/logging"
	"github.com/spf13/afero"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	Logger *slog.Logger
	FS     afero.Fs
	Client *httpapi.Client
	Picker *picker.Picker

	BatchSvc  *application.BatchService
	ExportSvc *application.ExportService
	ChatSvc   *application.ChatService
}

// NewApp wires up all dependencies from cfg. Logs go to logOut.
func NewApp(cfg *config.Config, fs afero.Fs, logOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logOut, level)

	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}
	maxSize, err := cfg.GetMaxFileSize()
	if err != nil {
		return nil, err
	}

	// Create adapters
	client := httpapi.NewClient(cfg.API.BaseURL, timeout,
		httpapi.WithAccessKey(cfg.API.AccessKey),
		httpapi.WithUserAgent("compliancecheck/"+Version),
		httpapi.WithLogger(logger),
		httpapi.WithFS(fs),
	)
	filePicker := picker.NewPicker(fs, maxSize)
	sink := filesink.NewDirSink(fs, cfg.Defaults.OutputDir)

	// Create services
	batchSvc := application.NewBatchService(client, cfg.API.RequireKey, logger)
	exportSvc := application.NewExportService(sink)
	chatSvc := application.NewChatService(client, cfg.Defaults.Regulation)

	return &App{
		Config:    cfg,
		Logger:    logger,
		FS:        fs,
		Client:    client,
		Picker:    filePicker,
		BatchSvc:  batchSvc,
		ExportSvc: exportSvc,
		ChatSvc:   chatSvc,
	}, nil
}

var globalApp *App

// GetApp returns the global app instance, creating it if needed.
// Command line flags take precedence over the config file and environment.
func GetApp() (*App, error) {
	if globalApp == nil {
		if err := config.EnsureDirs(); err != nil {
			return nil, err
		}

		cfg, err := config.LoadDefault()
		if err != nil {
			return nil, err
		}
		applyFlags(cfg)

		app, err := NewApp(cfg, afero.NewOsFs(), logOutput())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize: %w", err)
		}
		globalApp = app
	}
	return globalApp, nil
}
