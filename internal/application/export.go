package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/devbush/compliancecheck/internal/ports"
)

// ExportFileName labels errors raised while generating the CSV
const ExportFileName = "CSV Generation"

var csvHeader = []string{
	"Filename",
	"Timestamp",
	"File Size (KB)",
	"Processing Time (s)",
	"Transcription",
	"Compliance Status",
	"Compliance Explanation",
}

// ExportService turns batch results into a downloadable CSV file
type ExportService struct {
	sink ports.FileSink
	now  func() time.Time
}

// NewExportService creates a new export service
func NewExportService(sink ports.FileSink) *ExportService {
	return &ExportService{sink: sink, now: time.Now}
}

// Render serializes results to CSV text. Every cell is quoted and rows are
// joined with "\n".
func (s *ExportService) Render(results []domain.AnalysisResult) (string, error) {
	if len(results) == 0 {
		return "", domain.ErrNoResults
	}

	rows := make([]string, 0, len(results)+1)
	rows = append(rows, csvRow(csvHeader))
	for _, r := range results {
		rows = append(rows, csvRow([]string{
			r.Filename,
			r.Timestamp,
			r.FileSize.String(),
			r.ProcessingTime.String(),
			r.Transcription,
			r.ComplianceData.Status,
			r.ComplianceData.Explanation,
		}))
	}
	return strings.Join(rows, "\n"), nil
}

// FileName returns compliance_results_<ISO-8601 timestamp>.csv
func (s *ExportService) FileName() string {
	return fmt.Sprintf("compliance_results_%s.csv", s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// Export writes the state's results through the sink and returns the path.
// With no results nothing is written. A failure while generating or saving
// is appended to state.Errors; the results are left untouched.
func (s *ExportService) Export(state *domain.BatchState) (string, error) {
	content, err := s.Render(state.Results)
	if err != nil {
		return "", err
	}

	path, err := s.sink.WriteFile(s.FileName(), []byte(content))
	if err != nil {
		state.Errors = append(state.Errors, domain.ProcessingError{
			FileName: ExportFileName,
			Error:    processingFailed,
			Details:  err.Error(),
		})
		return "", fmt.Errorf("failed to save CSV: %w", err)
	}
	return path, nil
}

func csvRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
