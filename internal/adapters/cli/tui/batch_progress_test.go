package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/devbush/compliancecheck/internal/domain"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		current, total int
		width          int
		want           string
	}{
		{0, 10, 10, "[          ]"},
		{5, 10, 10, "[=====>    ]"},
		{10, 10, 10, "[==========]"},
		{3, 10, 10, "[==>       ]"},
	}

	for _, tt := range tests {
		got := renderProgressBar(tt.current, tt.total, tt.width)
		if got != tt.want {
			t.Errorf("renderProgressBar(%d, %d, %d) = %q, want %q",
				tt.current, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestBatchProgress_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	bp := NewBatchProgress(&buf, 2, false, false)

	bp.FileStarted("a.mp3", 0, 2)
	bp.FileFinished("a.mp3", &domain.AnalysisResult{
		Filename:       "a.mp3",
		FileSize:       512,
		ProcessingTime: 1.5,
		ComplianceData: domain.ComplianceVerdict{Status: "Compliant"},
	}, nil, 50)
	bp.FileStarted("b.mp3", 1, 2)
	bp.FileFinished("b.mp3", nil, &domain.ProcessingError{FileName: "b.mp3", Error: "Processing failed"}, 100)
	bp.Complete()

	out := buf.String()
	for _, want := range []string{
		"→ [1/2] a.mp3",
		"✓ a.mp3",
		"512 KB",
		"→ [2/2] b.mp3",
		"✗ b.mp3: Processing failed",
		"Batch complete: 1/2 succeeded",
		"Failures:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain output should not contain cursor control sequences")
	}

	if bp.GetSuccessCount() != 1 {
		t.Errorf("GetSuccessCount() = %d, want 1", bp.GetSuccessCount())
	}
	if bp.GetFailureCount() != 1 {
		t.Errorf("GetFailureCount() = %d, want 1", bp.GetFailureCount())
	}
}

func TestBatchProgress_Redraw(t *testing.T) {
	var buf bytes.Buffer
	bp := NewBatchProgress(&buf, 2, false, true)

	bp.FileStarted("a.mp3", 0, 2)
	if !strings.Contains(buf.String(), "Analyzing 0/2 files [                    ] 0%") {
		t.Errorf("first render = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Uploading a.mp3...") {
		t.Errorf("current file not shown: %q", buf.String())
	}

	buf.Reset()
	bp.FileFinished("a.mp3", &domain.AnalysisResult{Filename: "a.mp3"}, nil, 50)
	out := buf.String()
	// Header and the in-progress line are cleared before redrawing
	if !strings.HasPrefix(out, "\033[2A\033[J") {
		t.Errorf("redraw did not clear previous lines: %q", out)
	}
	if !strings.Contains(out, "Analyzing 1/2 files [==========>         ] 50%") {
		t.Errorf("progress line = %q", out)
	}
}

func TestBatchProgress_Quiet(t *testing.T) {
	var buf bytes.Buffer
	bp := NewBatchProgress(&buf, 1, true, true)

	bp.FileStarted("a.mp3", 0, 1)
	bp.FileFinished("a.mp3", nil, &domain.ProcessingError{FileName: "a.mp3", Error: "Processing failed"}, 100)
	bp.Complete()

	if buf.Len() != 0 {
		t.Errorf("quiet progress wrote %q", buf.String())
	}
	if bp.GetFailureCount() != 1 {
		t.Errorf("GetFailureCount() = %d, want 1", bp.GetFailureCount())
	}
}
