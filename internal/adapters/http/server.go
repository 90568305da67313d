package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oapi-codegen/runtime"
	"github.com/sirupsen/logrus"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

const (
	queuedMessage = "Test queued successfully"
	estimatedTime = "2-5 minutes"

	// UserIDHeader carries the optional submitting user; sessions live upstream.
	UserIDHeader = "X-User-ID"

	maxBodyBytes = 1 << 20
)

// Options wires the Server. Processor may be nil when this process only serves the API.
type Options struct {
	Tests     ports.Tests
	Profiles  ports.Profiles
	Insights  ports.Insights
	Processor ports.ProcessorStarter
	Log       logrus.FieldLogger

	CORSOrigins []string
	// SubmitsPerMinute limits POST /api/tests/run per client IP; 0 disables it.
	SubmitsPerMinute int
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type Server struct {
	tests     ports.Tests
	profiles  ports.Profiles
	insights  ports.Insights
	processor ports.ProcessorStarter
	log       logrus.FieldLogger

	corsOrigins       []string
	submitsPerMinute  int
	trustProxyHeaders bool
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		tests:             opts.Tests,
		profiles:          opts.Profiles,
		insights:          opts.Insights,
		processor:         opts.Processor,
		log:               log.WithField("component", "http"),
		corsOrigins:       opts.CORSOrigins,
		submitsPerMinute:  opts.SubmitsPerMinute,
		trustProxyHeaders: opts.TrustProxyHeaders,
	}
}

// Routes returns the chi router. ctx bounds the rate limiter's cleanup goroutine.
func (s *Server) Routes(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.trustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.corsMiddleware())

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tests", func(r chi.Router) {
			r.Get("/", s.handleListTests)
			r.Get("/{id}", s.handleGetTest)
			r.Group(func(r chi.Router) {
				if s.submitsPerMinute > 0 {
					r.Use(rateLimitMiddleware(ctx, s.submitsPerMinute))
				}
				r.Post("/run", s.handleRunTest)
			})
		})
		r.Get("/profiles/{domain}", s.handleGetProfile)
		r.Post("/ai/analyze", s.handleAnalyze)
	})
	return r
}

func (s *Server) corsMiddleware() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", UserIDHeader},
		MaxAge:         300,
	}
	if len(s.corsOrigins) == 0 || (len(s.corsOrigins) == 1 && s.corsOrigins[0] == "*") {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = s.corsOrigins
	}
	return cors.Handler(opts)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": chimw.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

// --- Payloads ---

type errorResponse struct {
	Message string `json:"message"`
}

type runTestRequest struct {
	URL      string `json:"url"`
	Strategy string `json:"strategy,omitempty"`
}

type runTestResponse struct {
	TestID        string `json:"testId"`
	Message       string `json:"message"`
	EstimatedTime string `json:"estimatedTime"`
}

type testResponse struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Domain      string          `json:"domain,omitempty"`
	Strategy    domain.Strategy `json:"strategy,omitempty"`
	Status      domain.Status   `json:"status"`
	Results     json.RawMessage `json:"results"`
	Error       *string         `json:"error"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type analyzeRequest struct {
	TestID      string          `json:"testId,omitempty"`
	TestResults *domain.Results `json:"testResults,omitempty"`
}

type analyzeResponse struct {
	Analysis *domain.Analysis `json:"analysis"`
}

func toTestResponse(t *domain.Test) testResponse {
	out := testResponse{
		ID:          t.ID,
		URL:         t.URL,
		Domain:      t.Domain,
		Strategy:    t.Strategy,
		Status:      t.Status,
		Results:     json.RawMessage("null"),
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
	if t.Results != nil && *t.Results != "" {
		out.Results = json.RawMessage(*t.Results)
	}
	return out
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRunTest(w http.ResponseWriter, r *http.Request) {
	var req runTestRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub := ports.SubmitRequest{URL: req.URL, Strategy: req.Strategy}
	if uid := strings.TrimSpace(r.Header.Get(UserIDHeader)); uid != "" {
		sub.UserID = &uid
	}
	t, err := s.tests.Submit(r.Context(), sub)
	if err != nil {
		s.writeServiceError(w, err, "Failed to start test")
		return
	}

	if s.processor != nil {
		if err := s.processor.Start(r.Context()); err != nil {
			s.log.WithError(err).WithField("test_id", t.ID).Error("Failed to start test processor")
		}
	}

	writeJSON(w, http.StatusOK, runTestResponse{
		TestID:        t.ID,
		Message:       queuedMessage,
		EstimatedTime: estimatedTime,
	})
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid test id")
		return
	}

	t, err := s.tests.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Test not found")
			return
		}
		s.writeServiceError(w, err, "Failed to fetch test")
		return
	}
	writeJSON(w, http.StatusOK, toTestResponse(t))
}

func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	f := domain.TestFilter{
		UserID: strings.TrimSpace(q.Get("userId")),
		Domain: strings.ToLower(strings.TrimSpace(q.Get("domain"))),
		Status: domain.Status(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
		Limit:  limit,
	}

	tests, err := s.tests.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, err, "Failed to list tests")
		return
	}
	out := make([]testResponse, 0, len(tests))
	for i := range tests {
		out = append(out, toTestResponse(&tests[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := runtime.BindStyledParameterWithOptions("simple", "domain", chi.URLParam(r, "domain"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid domain")
		return
	}

	t, err := s.profiles.GetLatest(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No completed test for domain")
			return
		}
		s.writeServiceError(w, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, toTestResponse(t))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		analysis *domain.Analysis
		err      error
	)
	switch {
	case req.TestResults != nil:
		analysis, err = s.insights.Analyze(r.Context(), req.TestResults)
	case strings.TrimSpace(req.TestID) != "":
		analysis, err = s.insights.AnalyzeTest(r.Context(), strings.TrimSpace(req.TestID))
	default:
		writeError(w, http.StatusBadRequest, "Test results are required")
		return
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Test not found")
			return
		}
		s.writeServiceError(w, err, "Failed to analyze results")
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Analysis: analysis})
}

// --- Helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps validation failures to 400 and everything else to a
// 500 carrying only fallback.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	s.log.WithError(err).Error(fallback)
	writeError(w, http.StatusInternalServerError, fallback)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeJSON encodes before writing the header so an unencodable value, such
// as corrupt stored results, becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
