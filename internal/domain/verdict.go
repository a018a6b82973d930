package domain

import (
	"fmt"
	"math"
	"strings"
)

// Verdict statuses returned by the analysis service
const (
	StatusCompliant          = "Compliant"
	StatusPartiallyCompliant = "Partially compliant"
	StatusNonCompliant       = "Non-compliant"
)

// VerdictLevel is a normalized verdict status
type VerdictLevel int

const (
	LevelUnknown VerdictLevel = iota
	LevelCompliant
	LevelPartial
	LevelNonCompliant
)

func (l VerdictLevel) String() string {
	switch l {
	case LevelCompliant:
		return "compliant"
	case LevelPartial:
		return "partial"
	case LevelNonCompliant:
		return "non-compliant"
	default:
		return "unknown"
	}
}

// ComplianceVerdict is the classification label and explanation for one file
type ComplianceVerdict struct {
	Status      string `json:"status"`
	Explanation string `json:"explanation"`
}

// Level classifies Status case-insensitively
func (v ComplianceVerdict) Level() VerdictLevel {
	switch strings.ToLower(strings.TrimSpace(v.Status)) {
	case "compliant":
		return LevelCompliant
	case "partially compliant":
		return LevelPartial
	case "non-compliant":
		return LevelNonCompliant
	default:
		return LevelUnknown
	}
}

// FormatFileSize formats a size given in kilobytes
// Examples: 512 -> "512 KB", 1536 -> "1.50 MB"
func FormatFileSize(kilobytes float64) string {
	units := []string{"KB", "MB", "GB", "TB"}
	size := kilobytes
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", int64(math.Round(size)), units[unit])
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}
