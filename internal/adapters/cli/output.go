package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/devbush/compliancecheck/internal/adapters/cli/tui"
	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const (
	transcriptPreview  = 200
	explanationPreview = 60
)

// writeResults prints the run's outcome in the given format
func writeResults(w io.Writer, state *domain.BatchState, format string) error {
	switch format {
	case "", "text":
		writeText(w, state)
		return nil
	case "json":
		return writeJSON(w, state)
	case "table":
		writeTable(w, state)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeText(w io.Writer, state *domain.BatchState) {
	for _, r := range state.Results {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  %s\n", r.Filename, tui.FormatVerdict(r.ComplianceData))
		fmt.Fprintf(w, "  Size:        %s\n", domain.FormatFileSize(float64(r.FileSize)))
		fmt.Fprintf(w, "  Processed:   %s", tui.FormatSeconds(r.ProcessingTime))
		if r.Timestamp != "" {
			fmt.Fprintf(w, " at %s", r.Timestamp)
		}
		fmt.Fprintln(w)
		if r.ComplianceData.Explanation != "" {
			fmt.Fprintf(w, "  Explanation: %s\n", r.ComplianceData.Explanation)
		}
		if r.Transcription != "" {
			fmt.Fprintf(w, "  Transcript:  %s\n", tui.Truncate(r.Transcription, transcriptPreview))
		}
	}

	if len(state.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		for _, e := range state.Errors {
			fmt.Fprintf(w, "  %s\n", tui.FormatErrorLine(e))
		}
	}

	s := NewBatchSummary(state)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d compliant, %d partially compliant, %d non-compliant", s.Compliant, s.Partial, s.NonCompliant)
	if s.Unknown > 0 {
		fmt.Fprintf(w, ", %d unknown", s.Unknown)
	}
	fmt.Fprintf(w, ", %d failed\n", s.Failed)
}

type jsonReport struct {
	Summary BatchSummary             `json:"summary"`
	Results []domain.AnalysisResult  `json:"results"`
	Errors  []domain.ProcessingError `json:"errors"`
}

func writeJSON(w io.Writer, state *domain.BatchState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Summary: NewBatchSummary(state),
		Results: state.Results,
		Errors:  state.Errors,
	})
}

func writeTable(w io.Writer, state *domain.BatchState) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Status", "Size", "Time", "Explanation"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range state.Results {
		status := r.ComplianceData.Status
		if status == "" {
			status = "Unknown"
		}
		table.Append([]string{
			r.Filename,
			status,
			domain.FormatFileSize(float64(r.FileSize)),
			tui.FormatSeconds(r.ProcessingTime),
			tui.Truncate(r.ComplianceData.Explanation, explanationPreview),
		})
	}
	for _, e := range state.Errors {
		detail := e.Error
		if e.Details != "" {
			detail += ": " + e.Details
		}
		table.Append([]string{e.FileName, "Failed", "", "", tui.Truncate(detail, explanationPreview)})
	}

	table.Render()
}
