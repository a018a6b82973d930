package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/devbush/compliancecheck/internal/domain"
)

// VerdictStyle returns the colour used for a verdict level
func VerdictStyle(level domain.VerdictLevel) lipgloss.Style {
	switch level {
	case domain.LevelCompliant:
		return compliantStyle
	case domain.LevelPartial:
		return partialStyle
	case domain.LevelNonCompliant:
		return nonCompliantStyle
	default:
		return unknownStyle
	}
}

// FormatVerdict renders the verdict status in its level colour.
// An empty status is shown as "Unknown".
func FormatVerdict(v domain.ComplianceVerdict) string {
	status := strings.TrimSpace(v.Status)
	if status == "" {
		status = "Unknown"
	}
	return VerdictStyle(v.Level()).Render(status)
}

// FormatSeconds formats a processing time given in seconds
// Examples: 2.5 -> "2.5s", 0.123 -> "0.12s", 75 -> "1m15s"
func FormatSeconds(seconds domain.Number) string {
	s := float64(seconds)
	if s >= 60 {
		return fmt.Sprintf("%dm%02ds", int(s)/60, int(s)%60)
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", s), "0"), ".") + "s"
}

// Truncate shortens s to at most max runes, ending with "..." when cut
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// FormatResultLine formats a successful analysis as a single line
// Example: ✓ call-01.mp3  Compliant  (1.50 MB, 2.5s)
func FormatResultLine(r domain.AnalysisResult) string {
	return fmt.Sprintf("✓ %s  %s  (%s, %s)",
		r.Filename,
		FormatVerdict(r.ComplianceData),
		domain.FormatFileSize(float64(r.FileSize)),
		FormatSeconds(r.ProcessingTime))
}

// FormatErrorLine formats a failed file as a single line
// Example: ✗ call-02.mp3: Processing failed (Invalid access key)
func FormatErrorLine(e domain.ProcessingError) string {
	return errorStyle.Render("✗ " + e.String())
}
