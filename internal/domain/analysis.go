package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SelectedFile is a local audio file accepted by the picker
type SelectedFile struct {
	Name        string // base name sent as the multipart filename
	Path        string
	Size        int64 // bytes
	ContentType string
}

// AnalysisRequest is built once per file when it is submitted
type AnalysisRequest struct {
	File       SelectedFile
	Regulation string // empty when not set
	Credential string // forwarded as X-Access-Key when set
}

// Number is a float that decodes from a JSON number or a numeric string
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(data), err)
	}
	*n = Number(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// String renders the shortest decimal form: 1024, 2.5
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// AnalysisResult is the remote service's answer for one file
type AnalysisResult struct {
	Filename       string            `json:"filename"`
	FileSize       Number            `json:"file_size"`       // kilobytes
	ProcessingTime Number            `json:"processing_time"` // seconds
	Transcription  string            `json:"transcription"`
	ComplianceData ComplianceVerdict `json:"compliance_data"`
	Timestamp      string            `json:"timestamp"`
}

// ProcessingError records why a file (or the run itself) failed
type ProcessingError struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
}

// String joins error and details for single-line display
func (e ProcessingError) String() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.FileName, e.Error)
	}
	return fmt.Sprintf("%s: %s (%s)", e.FileName, e.Error, e.Details)
}

// BatchState is everything one batch run produces
type BatchState struct {
	Results         []AnalysisResult  `json:"results"`
	Errors          []ProcessingError `json:"errors"`
	ProgressPercent float64           `json:"progress_percent"`
	CurrentFileName string            `json:"current_file,omitempty"`
	IsProcessing    bool              `json:"is_processing"`
}

// NewBatchState returns an empty, idle state
func NewBatchState() *BatchState {
	return &BatchState{
		Results: make([]AnalysisResult, 0),
		Errors:  make([]ProcessingError, 0),
	}
}

// Completed returns how many files have an outcome
func (s *BatchState) Completed() int {
	return len(s.Results) + len(s.Errors)
}

// Clone returns a copy that shares nothing with s
func (s *BatchState) Clone() *BatchState {
	c := *s
	c.Results = append(make([]AnalysisResult, 0, len(s.Results)), s.Results...)
	c.Errors = append(make([]ProcessingError, 0, len(s.Errors)), s.Errors...)
	return &c
}

// Rejection is a file the picker refused, with a human readable reason
type Rejection struct {
	FileName string
	Reason   string
	Err      error // ErrUnsupportedType, ErrFileTooLarge or the read error
}
