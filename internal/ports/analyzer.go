package ports

import (
	"context"
	"fmt"

	"github.com/devbush/compliancecheck/internal/domain"
)

// AnalysisService submits one audio file to the remote compliance analyzer
type AnalysisService interface {
	// Analyze uploads the file and returns the parsed result.
	// Non-success responses come back as errors carrying the response body.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// StatusError is returned by AnalysisService when the service answers with a
// non-success status. Body holds the response text, reduced to the error
// message when the body was a JSON error document.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return e.Body
}
