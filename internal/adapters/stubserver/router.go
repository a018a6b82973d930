package stubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/devbush/compliancecheck/internal/adapters/httpapi"
	"github.com/devbush/compliancecheck/internal/domain"
)

// FailMarker makes the stub answer 500 for uploads whose name contains it
const FailMarker = "fail"

// Options configures the stub backend
type Options struct {
	AccessKey      string        // when set, requests must carry it in X-Access-Key
	Delay          time.Duration // simulated processing time per upload
	AllowedOrigins []string
	Logger         *slog.Logger
	Now            func() time.Time
}

type router struct {
	opts Options
}

// NewRouter returns a handler that mimics the compliance analysis API with
// canned answers
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &router{opts: opts}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", httpapi.AccessKeyHeader, httpapi.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Group(func(rt chi.Router) {
		rt.Use(r.requireKey)
		rt.Post(httpapi.AnalyzePath, r.wrap(r.handleAnalyze))
		rt.Post(httpapi.FollowupPath, r.wrap(r.handleFollowup))
	})

	return mux
}

// httpError carries a status code through handler returns
type httpError struct {
	status int
	detail string
}

func (e *httpError) Error() string { return e.detail }

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := http.StatusInternalServerError
			var he *httpError
			if errors.As(err, &he) {
				status = he.status
			}
			r.opts.Logger.Warn("stub request failed", "path", req.URL.Path, "status", status, "error", err)
			writeJSON(w, status, map[string]string{"detail": err.Error()})
		}
	}
}

func (r *router) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.opts.AccessKey != "" && req.Header.Get(httpapi.AccessKeyHeader) != r.opts.AccessKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid or missing access key"})
			return
		}
		next.ServeHTTP(w, req)
	})
}

// POST /api/v1/compliance/analyze
// Body: multipart form with "file" and optional "regulation"
func (r *router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	start := time.Now()

	file, header, err := req.FormFile("file")
	if err != nil {
		return &httpError{status: http.StatusBadRequest, detail: "No file uploaded"}
	}
	defer file.Close()

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}

	if strings.Contains(strings.ToLower(header.Filename), FailMarker) {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil
	}

	if r.opts.Delay > 0 {
		select {
		case <-time.After(r.opts.Delay):
		case <-req.Context().Done():
			return req.Context().Err()
		}
	}

	regulation := req.FormValue("regulation")
	rules := regulation
	if rules == "" {
		rules = "the default rule set"
	}

	r.opts.Logger.Info("stub analysis", "file", header.Filename, "bytes", n, "regulation", regulation)

	writeJSON(w, http.StatusOK, domain.AnalysisResult{
		Filename:       header.Filename,
		FileSize:       domain.Number(round2(float64(n) / 1024)),
		ProcessingTime: domain.Number(round2(time.Since(start).Seconds())),
		Transcription:  fmt.Sprintf("[stub transcription of %d bytes of audio]", n),
		ComplianceData: domain.ComplianceVerdict{
			Status:      domain.StatusCompliant,
			Explanation: fmt.Sprintf("Stub analysis against %s found no issues.", rules),
		},
		Timestamp: r.opts.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

type followupBody struct {
	Question   string `json:"question"`
	Regulation string `json:"regulation,omitempty"`
}

// POST /api/v1/compliance/followup
// Body: {"question": "...", "regulation": "..."}
func (r *router) handleFollowup(w http.ResponseWriter, req *http.Request) error {
	var body followupBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &httpError{status: http.StatusBadRequest, detail: "Invalid JSON body"}
	}
	if strings.TrimSpace(body.Question) == "" {
		return &httpError{status: http.StatusBadRequest, detail: "question is required"}
	}

	answer := fmt.Sprintf("This is a stub answer to %q.", body.Question)
	if body.Regulation != "" {
		answer += fmt.Sprintf(" It would be answered with respect to %s.", body.Regulation)
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
