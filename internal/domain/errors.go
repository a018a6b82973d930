package domain

import "errors"

var (
	// Batch run errors
	ErrMissingCredential = errors.New("access key is required")
	ErrNoFiles           = errors.New("no files selected")
	ErrBatchInProgress   = errors.New("a batch is already being processed")

	// File picker errors
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")

	// Export errors
	ErrNoResults = errors.New("no results to export")

	// Chat errors
	ErrEmptyQuestion = errors.New("question is empty")
)
