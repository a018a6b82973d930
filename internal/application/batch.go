package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/devbush/compliancecheck/internal/ports"
	"github.com/google/uuid"
)

const (
	// ConfigurationFileName labels errors that concern the whole run
	ConfigurationFileName = "Configuration"

	processingFailed = "Processing failed"
)

// BatchOptions configures one batch run
type BatchOptions struct {
	Regulation string // optional regulation tag sent with every file
	Credential string // optional access key, required when the service is configured so
}

// ProgressObserver receives live updates while a batch runs
type ProgressObserver interface {
	FileStarted(name string, index, total int)
	FileFinished(name string, result *domain.AnalysisResult, perr *domain.ProcessingError, percent float64)
}

// BatchService submits selected files to the analysis service one at a time
type BatchService struct {
	analyzer          ports.AnalysisService
	requireCredential bool
	logger            *slog.Logger

	mu    sync.Mutex
	state *domain.BatchState
}

// NewBatchService creates a new batch service
func NewBatchService(analyzer ports.AnalysisService, requireCredential bool, logger *slog.Logger) *BatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchService{
		analyzer:          analyzer,
		requireCredential: requireCredential,
		logger:            logger,
		state:             domain.NewBatchState(),
	}
}

// Snapshot returns a copy of the current batch state
func (s *BatchService) Snapshot() *domain.BatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// RunBatch processes files sequentially and returns the final state.
//
// A failing file is recorded in the state's Errors and never stops the run.
// The returned error is non-nil only when the run could not start or was
// cancelled through ctx.
func (s *BatchService) RunBatch(ctx context.Context, files []domain.SelectedFile, opts BatchOptions, observer ProgressObserver) (*domain.BatchState, error) {
	s.mu.Lock()
	if s.state.IsProcessing {
		s.mu.Unlock()
		return nil, domain.ErrBatchInProgress
	}

	// Each run starts from a fresh state
	s.state = domain.NewBatchState()

	if len(files) == 0 {
		s.mu.Unlock()
		return s.Snapshot(), nil
	}

	if s.requireCredential && strings.TrimSpace(opts.Credential) == "" {
		s.state.Errors = append(s.state.Errors, domain.ProcessingError{
			FileName: ConfigurationFileName,
			Error:    "Access key is required",
			Details:  "Set an access key with --access-key or COMPLIANCE_ACCESS_KEY",
		})
		s.mu.Unlock()
		return s.Snapshot(), fmt.Errorf("cannot start batch: %w", domain.ErrMissingCredential)
	}

	s.state.IsProcessing = true
	s.mu.Unlock()

	runID := uuid.NewString()
	log := s.logger.With("batch_id", runID, "files", len(files))
	log.Info("batch started", "regulation", opts.Regulation)
	start := time.Now()

	defer func() {
		s.mu.Lock()
		s.state.IsProcessing = false
		s.state.CurrentFileName = ""
		s.mu.Unlock()
	}()

	total := len(files)
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("batch cancelled", "completed", i, "error", err)
			return s.finalSnapshot(), fmt.Errorf("batch cancelled after %d of %d files: %w", i, total, err)
		}

		s.mu.Lock()
		s.state.CurrentFileName = file.Name
		s.mu.Unlock()
		if observer != nil {
			observer.FileStarted(file.Name, i, total)
		}

		result, perr := s.processOne(ctx, file, opts)

		s.mu.Lock()
		if perr != nil {
			s.state.Errors = append(s.state.Errors, *perr)
		} else {
			s.state.Results = append(s.state.Results, *result)
		}
		s.state.ProgressPercent = float64(i+1) / float64(total) * 100
		percent := s.state.ProgressPercent
		s.mu.Unlock()

		if perr != nil {
			log.Warn("file failed", "file", file.Name, "error", perr.Error, "details", perr.Details)
		} else {
			log.Debug("file analyzed", "file", file.Name, "status", result.ComplianceData.Status)
		}

		if observer != nil {
			observer.FileFinished(file.Name, result, perr, percent)
		}
	}

	final := s.finalSnapshot()
	log.Info("batch finished",
		"succeeded", len(final.Results),
		"failed", len(final.Errors),
		"duration", time.Since(start).Round(time.Millisecond))

	return final, nil
}

// finalSnapshot is the state as it will look once the run's cleanup is done
func (s *BatchService) finalSnapshot() *domain.BatchState {
	snap := s.Snapshot()
	snap.IsProcessing = false
	snap.CurrentFileName = ""
	return snap
}

// processOne analyzes a single file, turning every failure (including a
// panic in the collaborator) into a ProcessingError.
func (s *BatchService) processOne(ctx context.Context, file domain.SelectedFile, opts BatchOptions) (result *domain.AnalysisResult, perr *domain.ProcessingError) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			perr = &domain.ProcessingError{
				FileName: file.Name,
				Error:    "An unknown error occurred",
				Details:  fmt.Sprintf("%v", r),
			}
		}
	}()

	res, err := s.analyzer.Analyze(ctx, domain.AnalysisRequest{
		File:       file,
		Regulation: opts.Regulation,
		Credential: opts.Credential,
	})
	if err != nil {
		return nil, toProcessingError(file.Name, err)
	}
	if res == nil {
		return nil, &domain.ProcessingError{
			FileName: file.Name,
			Error:    processingFailed,
			Details:  "empty response from analysis service",
		}
	}
	return res, nil
}

// toProcessingError keeps the error text as details. For a rejected upload
// that is the server's message, or its status code when the body was empty.
func toProcessingError(fileName string, err error) *domain.ProcessingError {
	return &domain.ProcessingError{
		FileName: fileName,
		Error:    processingFailed,
		Details:  err.Error(),
	}
}
