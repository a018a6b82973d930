package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/devbush/compliancecheck/internal/ports"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	AnalyzePath  = "/api/v1/compliance/analyze"
	FollowupPath = "/api/v1/compliance/followup"
	HealthPath   = "/health"

	AccessKeyHeader = "X-Access-Key"
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody caps how much of a failed response is kept as detail
	maxErrorBody = 64 * 1024
)

// Client implements ports.AnalysisService and ports.FollowupService over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	accessKey  string // used by Ask; Analyze takes the key from each request
	logger     *slog.Logger
	fs         afero.Fs // where selected files are read from
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAccessKey sets the key sent with follow-up questions
func WithAccessKey(key string) Option {
	return func(c *Client) { c.accessKey = key }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithFS sets the filesystem uploads are read from, normally the one the
// files were picked from
func WithFS(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// NewClient creates a client for the service at baseURL. The timeout covers
// a whole request including the upload.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "compliancecheck",
		logger:     slog.Default(),
		fs:         afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze uploads one file as multipart/form-data
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	file, err := c.fs.Open(req.File.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", req.File.Name, err)
	}
	defer file.Close()

	// Stream the multipart body so large recordings are never held in memory
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeAnalyzeForm(mw, req, file))
	}()
	defer pr.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AnalyzePath, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	c.setHeaders(httpReq, req.Credential)

	log := c.logger.With("file", req.File.Name, "request_id", httpReq.Header.Get(RequestIDHeader))
	log.Debug("uploading file", "size", req.File.Size, "content_type", req.File.ContentType)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("analysis response", "status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}

	var result domain.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("invalid analysis response: %w", err)
	}
	return &result, nil
}

func writeAnalyzeForm(mw *multipart.Writer, req domain.AnalysisRequest, file io.Reader) error {
	part, err := mw.CreateFormFile("file", req.File.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if req.Regulation != "" {
		if err := mw.WriteField("regulation", req.Regulation); err != nil {
			return err
		}
	}
	return mw.Close()
}

type followupResponse struct {
	Answer string `json:"answer"`
}

// Ask posts a follow-up question and returns the answer text
func (c *Client) Ask(ctx context.Context, req ports.FollowupRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+FollowupPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq, c.accessKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readStatusError(resp)
	}

	var out followupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invalid followup response: %w", err)
	}
	return out.Answer, nil
}

// Ping checks that the service answers. Any response below 500 counts,
// since not every deployment serves HealthPath.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq, c.accessKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return readStatusError(resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, accessKey string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if accessKey != "" {
		req.Header.Set(AccessKeyHeader, accessKey)
	}
}

// readStatusError turns a non-success response into a ports.StatusError
func readStatusError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := errorDetail(data)
	if detail == "" && err != nil {
		detail = fmt.Sprintf("failed to read error body: %v", err)
	}
	return &ports.StatusError{
		StatusCode: resp.StatusCode,
		Body:       detail,
	}
}

// errorDetail extracts the message from JSON error documents such as
// {"detail": "..."}; other bodies are returned as trimmed text.
func errorDetail(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return text
	}

	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		// Validation errors carry a list of objects
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err == nil {
			return compact.String()
		}
	}
	return text
}

var (
	_ ports.AnalysisService = (*Client)(nil)
	_ ports.FollowupService = (*Client)(nil)
)
