package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"testing"

	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/devbush/compliancecheck/internal/ports"
)

// mockAnalyzer implements ports.AnalysisService for testing
type mockAnalyzer struct {
	calls    []domain.AnalysisRequest
	failures map[string]error // file name -> error returned
	panics   map[string]bool
	onCall   func(req domain.AnalysisRequest)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.calls = append(m.calls, req)
	if m.onCall != nil {
		m.onCall(req)
	}
	if m.panics[req.File.Name] {
		panic("decoder exploded")
	}
	if err, ok := m.failures[req.File.Name]; ok {
		return nil, err
	}
	return &domain.AnalysisResult{
		Filename:      req.File.Name,
		FileSize:      domain.Number(req.File.Size / 1024),
		Transcription: "transcript of " + req.File.Name,
		ComplianceData: domain.ComplianceVerdict{
			Status:      domain.StatusCompliant,
			Explanation: "ok",
		},
		Timestamp: "2024-01-01T00:00:00Z",
	}, nil
}

// recordingObserver implements ProgressObserver for testing
type recordingObserver struct {
	started  []string
	percents []float64
}

func (o *recordingObserver) FileStarted(name string, index, total int) {
	o.started = append(o.started, name)
}

func (o *recordingObserver) FileFinished(name string, result *domain.AnalysisResult, perr *domain.ProcessingError, percent float64) {
	o.percents = append(o.percents, percent)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func selected(names ...string) []domain.SelectedFile {
	files := make([]domain.SelectedFile, len(names))
	for i, n := range names {
		files[i] = domain.SelectedFile{Name: n, Path: "/tmp/" + n, Size: 2048}
	}
	return files
}

func TestBatchService_RunBatch(t *testing.T) {
	analyzer := &mockAnalyzer{}
	svc := NewBatchService(analyzer, false, testLogger())
	observer := &recordingObserver{}

	state, err := svc.RunBatch(context.Background(), selected("a.mp3", "b.wav", "c.m4a"), BatchOptions{Regulation: "MiFID II"}, observer)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if len(state.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(state.Results))
	}
	if len(state.Errors) != 0 {
		t.Errorf("len(Errors) = %d, want 0", len(state.Errors))
	}
	if state.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %v, want 100", state.ProgressPercent)
	}
	if state.IsProcessing {
		t.Error("IsProcessing should be false after completion")
	}
	if state.CurrentFileName != "" {
		t.Errorf("CurrentFileName = %q, want empty", state.CurrentFileName)
	}

	for i, want := range []string{"a.mp3", "b.wav", "c.m4a"} {
		if state.Results[i].Filename != want {
			t.Errorf("Results[%d] = %s, want %s", i, state.Results[i].Filename, want)
		}
		if analyzer.calls[i].Regulation != "MiFID II" {
			t.Errorf("call %d regulation = %q", i, analyzer.calls[i].Regulation)
		}
	}

	if strings.Join(observer.started, ",") != "a.mp3,b.wav,c.m4a" {
		t.Errorf("observer started order = %v", observer.started)
	}
}

func TestBatchService_FailingFileDoesNotAbort(t *testing.T) {
	analyzer := &mockAnalyzer{
		failures: map[string]error{
			"b.wav": &ports.StatusError{StatusCode: 500, Body: "Internal error"},
		},
	}
	svc := NewBatchService(analyzer, false, testLogger())

	state, err := svc.RunBatch(context.Background(), selected("a.mp3", "b.wav", "c.m4a"), BatchOptions{}, nil)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if len(analyzer.calls) != 3 {
		t.Errorf("analyzer called %d times, want 3", len(analyzer.calls))
	}
	if len(state.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(state.Errors))
	}

	perr := state.Errors[0]
	if perr.FileName != "b.wav" {
		t.Errorf("error FileName = %s, want b.wav", perr.FileName)
	}
	if perr.Error != "Processing failed" {
		t.Errorf("error Error = %q, want 'Processing failed'", perr.Error)
	}
	if !strings.Contains(perr.Details, "Internal error") {
		t.Errorf("error Details = %q, want it to contain 'Internal error'", perr.Details)
	}

	if len(state.Results) != 2 || state.Results[0].Filename != "a.mp3" || state.Results[1].Filename != "c.m4a" {
		t.Errorf("Results = %+v, want a.mp3 then c.m4a", state.Results)
	}
}

func TestBatchService_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantDetails string
	}{
		{"status with body", &ports.StatusError{StatusCode: 422, Body: "unsupported codec"}, "unsupported codec"},
		{"status without body", &ports.StatusError{StatusCode: 502}, "HTTP error! status: 502"},
		{"status with unreadable body", &ports.StatusError{StatusCode: 502, Body: "failed to read error body: unexpected EOF"}, "failed to read error body: unexpected EOF"},
		{"transport failure", errors.New("dial tcp 127.0.0.1:8000: connection refused"), "dial tcp 127.0.0.1:8000: connection refused"},
		{"open failure", fmt.Errorf("failed to open x.mp3: %w", fs.ErrNotExist), "failed to open x.mp3: file does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &mockAnalyzer{failures: map[string]error{"x.mp3": tt.err}}
			svc := NewBatchService(analyzer, false, testLogger())

			state, err := svc.RunBatch(context.Background(), selected("x.mp3"), BatchOptions{}, nil)
			if err != nil {
				t.Fatalf("RunBatch() error = %v", err)
			}
			if len(state.Errors) != 1 {
				t.Fatalf("len(Errors) = %d, want 1", len(state.Errors))
			}
			if state.Errors[0].Error != "Processing failed" {
				t.Errorf("Error = %q", state.Errors[0].Error)
			}
			if state.Errors[0].Details != tt.wantDetails {
				t.Errorf("Details = %q, want %q", state.Errors[0].Details, tt.wantDetails)
			}
		})
	}
}

func TestBatchService_CountInvariantAndMonotonicProgress(t *testing.T) {
	analyzer := &mockAnalyzer{
		failures: map[string]error{
			"2.mp3": errors.New("timeout"),
			"5.mp3": &ports.StatusError{StatusCode: 400, Body: "bad"},
		},
	}
	svc := NewBatchService(analyzer, false, testLogger())
	observer := &recordingObserver{}

	files := selected("1.mp3", "2.mp3", "3.mp3", "4.mp3", "5.mp3", "6.mp3", "7.mp3")
	state, err := svc.RunBatch(context.Background(), files, BatchOptions{}, observer)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if got := len(state.Results) + len(state.Errors); got != len(files) {
		t.Errorf("results+errors = %d, want %d", got, len(files))
	}

	if len(observer.percents) != len(files) {
		t.Fatalf("observer saw %d completions, want %d", len(observer.percents), len(files))
	}
	for i := 1; i < len(observer.percents); i++ {
		if observer.percents[i] < observer.percents[i-1] {
			t.Errorf("progress decreased: %v", observer.percents)
		}
	}
	if last := observer.percents[len(observer.percents)-1]; last != 100 {
		t.Errorf("final progress = %v, want 100", last)
	}
}

func TestBatchService_EmptyBatchIsNoop(t *testing.T) {
	analyzer := &mockAnalyzer{}
	svc := NewBatchService(analyzer, true, testLogger())

	state, err := svc.RunBatch(context.Background(), nil, BatchOptions{}, nil)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if len(analyzer.calls) != 0 {
		t.Errorf("analyzer called %d times, want 0", len(analyzer.calls))
	}
	if len(state.Results) != 0 || len(state.Errors) != 0 {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestBatchService_MissingCredential(t *testing.T) {
	for _, credential := range []string{"", "   "} {
		analyzer := &mockAnalyzer{}
		svc := NewBatchService(analyzer, true, testLogger())

		state, err := svc.RunBatch(context.Background(), selected("a.mp3", "b.mp3"), BatchOptions{Credential: credential}, nil)
		if !errors.Is(err, domain.ErrMissingCredential) {
			t.Fatalf("RunBatch() error = %v, want ErrMissingCredential", err)
		}
		if len(analyzer.calls) != 0 {
			t.Errorf("analyzer called %d times, want 0", len(analyzer.calls))
		}
		if len(state.Errors) != 1 || state.Errors[0].FileName != ConfigurationFileName {
			t.Errorf("Errors = %+v, want one configuration error", state.Errors)
		}
		if len(state.Results) != 0 || state.ProgressPercent != 0 || state.IsProcessing {
			t.Errorf("state should show no processed files, got %+v", state)
		}
	}
}

func TestBatchService_CredentialForwarded(t *testing.T) {
	analyzer := &mockAnalyzer{}
	svc := NewBatchService(analyzer, true, testLogger())

	_, err := svc.RunBatch(context.Background(), selected("a.mp3"), BatchOptions{Credential: "secret"}, nil)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if analyzer.calls[0].Credential != "secret" {
		t.Errorf("Credential = %q, want secret", analyzer.calls[0].Credential)
	}
}

func TestBatchService_StateReplacedPerRun(t *testing.T) {
	analyzer := &mockAnalyzer{failures: map[string]error{"bad.mp3": errors.New("boom")}}
	svc := NewBatchService(analyzer, false, testLogger())

	if _, err := svc.RunBatch(context.Background(), selected("a.mp3", "bad.mp3"), BatchOptions{}, nil); err != nil {
		t.Fatalf("first RunBatch() error = %v", err)
	}

	state, err := svc.RunBatch(context.Background(), selected("c.mp3"), BatchOptions{}, nil)
	if err != nil {
		t.Fatalf("second RunBatch() error = %v", err)
	}

	if len(state.Results) != 1 || state.Results[0].Filename != "c.mp3" {
		t.Errorf("Results = %+v, want only c.mp3", state.Results)
	}
	if len(state.Errors) != 0 {
		t.Errorf("Errors = %+v, want none carried over", state.Errors)
	}
}

func TestBatchService_PanicIsolatedAndCleanedUp(t *testing.T) {
	analyzer := &mockAnalyzer{panics: map[string]bool{"a.mp3": true}}
	svc := NewBatchService(analyzer, false, testLogger())

	state, err := svc.RunBatch(context.Background(), selected("a.mp3", "b.mp3"), BatchOptions{}, nil)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if len(state.Errors) != 1 || state.Errors[0].FileName != "a.mp3" {
		t.Errorf("Errors = %+v, want one error for a.mp3", state.Errors)
	}
	if len(state.Results) != 1 {
		t.Errorf("len(Results) = %d, want 1", len(state.Results))
	}

	snap := svc.Snapshot()
	if snap.IsProcessing || snap.CurrentFileName != "" {
		t.Errorf("cleanup did not run: %+v", snap)
	}
}

func TestBatchService_CurrentFileVisibleDuringRun(t *testing.T) {
	analyzer := &mockAnalyzer{}
	svc := NewBatchService(analyzer, false, testLogger())

	var seen []string
	var processing []bool
	analyzer.onCall = func(req domain.AnalysisRequest) {
		snap := svc.Snapshot()
		seen = append(seen, snap.CurrentFileName)
		processing = append(processing, snap.IsProcessing)
	}

	if _, err := svc.RunBatch(context.Background(), selected("a.mp3", "b.mp3"), BatchOptions{}, nil); err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if strings.Join(seen, ",") != "a.mp3,b.mp3" {
		t.Errorf("CurrentFileName during run = %v", seen)
	}
	for i, p := range processing {
		if !p {
			t.Errorf("IsProcessing false during call %d", i)
		}
	}
}

func TestBatchService_RejectsConcurrentRun(t *testing.T) {
	analyzer := &mockAnalyzer{}
	svc := NewBatchService(analyzer, false, testLogger())

	var nestedErr error
	analyzer.onCall = func(req domain.AnalysisRequest) {
		if nestedErr == nil {
			_, nestedErr = svc.RunBatch(context.Background(), selected("other.mp3"), BatchOptions{}, nil)
		}
	}

	if _, err := svc.RunBatch(context.Background(), selected("a.mp3"), BatchOptions{}, nil); err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if !errors.Is(nestedErr, domain.ErrBatchInProgress) {
		t.Errorf("nested RunBatch() error = %v, want ErrBatchInProgress", nestedErr)
	}
}

func TestBatchService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	analyzer := &mockAnalyzer{}
	analyzer.onCall = func(req domain.AnalysisRequest) { cancel() }
	svc := NewBatchService(analyzer, false, testLogger())

	state, err := svc.RunBatch(ctx, selected("a.mp3", "b.mp3", "c.mp3"), BatchOptions{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunBatch() error = %v, want context.Canceled", err)
	}
	if len(analyzer.calls) != 1 {
		t.Errorf("analyzer called %d times, want 1", len(analyzer.calls))
	}
	if state.Completed() != 1 {
		t.Errorf("Completed() = %d, want 1", state.Completed())
	}
	if state.IsProcessing {
		t.Error("IsProcessing should be false after cancellation")
	}
}
