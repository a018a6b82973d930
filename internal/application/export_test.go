package application

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devbush/compliancecheck/internal/domain"
)

// mockSink implements ports.FileSink for testing
type mockSink struct {
	files map[string][]byte
	err   error
}

func newMockSink() *mockSink {
	return &mockSink{files: make(map[string][]byte)}
}

func (m *mockSink) WriteFile(name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.files[name] = data
	return "/out/" + name, nil
}

const wantHeader = `"Filename","Timestamp","File Size (KB)","Processing Time (s)","Transcription","Compliance Status","Compliance Explanation"`

func TestExportService_Render(t *testing.T) {
	svc := NewExportService(newMockSink())

	results := []domain.AnalysisResult{{
		Filename:       "a.mp3",
		Timestamp:      "2024-01-01T00:00:00Z",
		FileSize:       1024,
		ProcessingTime: 2.5,
		Transcription:  "hello",
		ComplianceData: domain.ComplianceVerdict{Status: "Compliant", Explanation: "ok"},
	}}

	got, err := svc.Render(results)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("Render() produced %d lines, want 2:\n%s", len(lines), got)
	}
	if lines[0] != wantHeader {
		t.Errorf("header = %s\nwant     %s", lines[0], wantHeader)
	}
	wantRow := `"a.mp3","2024-01-01T00:00:00Z","1024","2.5","hello","Compliant","ok"`
	if lines[1] != wantRow {
		t.Errorf("row = %s\nwant  %s", lines[1], wantRow)
	}
}

func TestExportService_RenderEscaping(t *testing.T) {
	svc := NewExportService(newMockSink())

	results := []domain.AnalysisResult{
		{
			Filename:       "first.wav",
			Transcription:  `He said "buy now", then hung up`,
			ComplianceData: domain.ComplianceVerdict{Status: "Non-compliant", Explanation: "line one\nline two"},
		},
		{Filename: "second.wav"},
	}

	got, err := svc.Render(results)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.Contains(got, `"He said ""buy now"", then hung up"`) {
		t.Errorf("quotes not doubled:\n%s", got)
	}
	if !strings.Contains(got, "\"line one\nline two\"") {
		t.Errorf("multi-line cell not kept inside quotes:\n%s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("output should not end with a newline")
	}
	if !strings.HasSuffix(got, `"second.wav","","0","0","","",""`) {
		t.Errorf("rows not in results order:\n%s", got)
	}
}

func TestExportService_EmptyResults(t *testing.T) {
	sink := newMockSink()
	svc := NewExportService(sink)

	state := domain.NewBatchState()
	path, err := svc.Export(state)
	if !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("Export() error = %v, want ErrNoResults", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if len(sink.files) != 0 {
		t.Errorf("sink received %d files, want 0", len(sink.files))
	}
	if len(state.Errors) != 0 {
		t.Errorf("empty export should not add errors, got %+v", state.Errors)
	}
}

func TestExportService_Export(t *testing.T) {
	sink := newMockSink()
	svc := NewExportService(sink)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC) }

	state := domain.NewBatchState()
	state.Results = append(state.Results, domain.AnalysisResult{Filename: "a.mp3"})

	path, err := svc.Export(state)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wantName := "compliance_results_2024-03-05T10:30:00.000Z.csv"
	if path != "/out/"+wantName {
		t.Errorf("path = %s, want /out/%s", path, wantName)
	}
	if _, ok := sink.files[wantName]; !ok {
		t.Errorf("sink did not receive %s", wantName)
	}
}

func TestExportService_SaveFailureAppendsError(t *testing.T) {
	sink := newMockSink()
	sink.err = errors.New("disk full")
	svc := NewExportService(sink)

	state := domain.NewBatchState()
	state.Results = append(state.Results, domain.AnalysisResult{Filename: "a.mp3"})
	state.Errors = append(state.Errors, domain.ProcessingError{FileName: "b.mp3", Error: "Processing failed"})

	_, err := svc.Export(state)
	if err == nil {
		t.Fatal("Export() expected error, got nil")
	}

	if len(state.Results) != 1 {
		t.Errorf("results discarded, len = %d", len(state.Results))
	}
	if len(state.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(state.Errors))
	}
	last := state.Errors[1]
	if last.FileName != ExportFileName || last.Details != "disk full" {
		t.Errorf("export error = %+v", last)
	}
}
