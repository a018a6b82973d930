package cli

import (
	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/samber/lo"
)

// BatchSummary aggregates the outcome of a batch run
type BatchSummary struct {
	Total        int `json:"total"`
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	Compliant    int `json:"compliant"`
	Partial      int `json:"partially_compliant"`
	NonCompliant int `json:"non_compliant"`
	Unknown      int `json:"unknown"`
}

// NewBatchSummary counts results by verdict level
func NewBatchSummary(state *domain.BatchState) BatchSummary {
	levels := lo.CountValuesBy(state.Results, func(r domain.AnalysisResult) domain.VerdictLevel {
		return r.ComplianceData.Level()
	})

	return BatchSummary{
		Total:        state.Completed(),
		Succeeded:    len(state.Results),
		Failed:       len(state.Errors),
		Compliant:    levels[domain.LevelCompliant],
		Partial:      levels[domain.LevelPartial],
		NonCompliant: levels[domain.LevelNonCompliant],
		Unknown:      levels[domain.LevelUnknown],
	}
}

// HasFailures reports whether any file or the run itself failed
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}
