package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/domain"
	logpkg "github.com/kailas-cloud/wordser/internal/logger"
	gen "github.com/kailas-cloud/wordser/internal/transport/generated"
	healthuc "github.com/kailas-cloud/wordser/internal/usecase/health"
)

const (
	synonymsPath = "/api/v1/synonyms"
	summaryPath  = "/api/v1/summary"
)

// SynonymLookup resolves a word to its synonyms.
type SynonymLookup interface {
	Lookup(ctx context.Context, word string) ([]string, error)
}

// TextSummarizer produces a single summary for a text.
type TextSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	synonyms SynonymLookup
	summary  TextSummarizer
	health   *healthuc.Service
	logger   *zap.Logger
	metrics  http.Handler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	synonyms SynonymLookup,
	summary TextSummarizer,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		synonyms: synonyms,
		summary:  summary,
		health:   health,
		logger:   logger,
		metrics:  promhttp.Handler(),
	}
}

// GetSynonyms handles GET /api/v1/synonyms.
func (s *Server) GetSynonyms(w http.ResponseWriter, r *http.Request, params gen.GetSynonymsParams) {
	start := time.Now()
	word := deref(params.Word)

	syns, err := s.synonyms.Lookup(r.Context(), word)
	if err != nil {
		s.logOutcome(r, "synonyms", zap.String("word", word), start, err)
		writeJSON(w, statusFor(err), gen.SynonymsResponse{Synonyms: []string{}})
		return
	}
	if syns == nil {
		syns = []string{}
	}

	s.logOutcome(r, "synonyms", zap.String("word", word), start, nil, zap.Int("count", len(syns)))
	writeJSON(w, http.StatusOK, gen.SynonymsResponse{Synonyms: syns})
}

// GetSummary handles GET /api/v1/summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request, params gen.GetSummaryParams) {
	start := time.Now()
	txt := deref(params.Txt)

	summary, err := s.summary.Summarize(r.Context(), txt)
	if err != nil {
		s.logOutcome(r, "summary", zap.Int("txt_chars", len(txt)), start, err)
		writeJSON(w, statusFor(err), gen.SummaryResponse{Summary: ""})
		return
	}

	s.logOutcome(r, "summary", zap.Int("txt_chars", len(txt)), start, nil, zap.Int("summary_chars", len(summary)))
	writeJSON(w, http.StatusOK, gen.SummaryResponse{Summary: summary})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status: gen.HealthResponseStatus(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

// logOutcome writes the per-operation log line. Invalid input is logged at
// info, every other failure at error with its classification.
func (s *Server) logOutcome(
	r *http.Request, op string, input zap.Field, start time.Time, err error, extra ...zap.Field,
) {
	l := logpkg.FromContext(r.Context(), s.logger)
	fields := append([]zap.Field{
		zap.String("op", op),
		input,
		zap.Duration("duration", time.Since(start)),
		zap.String("error_kind", domain.Kind(err)),
	}, extra...)

	switch {
	case err == nil:
		l.Info("request served", fields...)
	case errors.Is(err, domain.ErrInvalidInput):
		l.Info("request rejected", append(fields, zap.Error(err))...)
	default:
		l.Error("request failed", append(fields, zap.Error(err))...)
	}
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeFailure answers a request that never reached its handler. The word
// and summary endpoints keep their fixed bodies; other routes get an
// ErrorResponse.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, code gen.ErrorResponseCode, message string) {
	switch r.URL.Path {
	case synonymsPath:
		writeJSON(w, status, gen.SynonymsResponse{Synonyms: []string{}})
	case summaryPath:
		writeJSON(w, status, gen.SummaryResponse{Summary: ""})
	default:
		writeError(w, status, code, message)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
