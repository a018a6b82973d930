package ports

import "github.com/devbush/compliancecheck/internal/domain"

// PickResult splits candidate paths into accepted files and rejections
type PickResult struct {
	Accepted []domain.SelectedFile
	Rejected []domain.Rejection
}

// FilePicker validates local files before a batch run.
type FilePicker interface {
	// Pick resolves paths (files or directories) into selected files.
	// Rejections are reported, not returned as errors.
	Pick(paths []string) (*PickResult, error)
}
