// Package chi exposes the service over HTTP. Every API endpoint answers 200
// with a JSON body; clients branch on the payload shape (`results` vs
// `message` vs `error`), so transport status codes never encode domain
// outcomes. The one exception is /health, a readiness probe for
// orchestrators, which answers 503 when a component check fails.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
	analyticsuc "github.com/furnilabs/furnireco/internal/usecase/analytics"
	healthuc "github.com/furnilabs/furnireco/internal/usecase/health"
	recommenduc "github.com/furnilabs/furnireco/internal/usecase/recommend"
)

const (
	msgRunning       = "Backend is running successfully!"
	msgNoResults     = "No results found"
	errEmptyQuery    = "Empty query provided"
	errInvalidBody   = "Invalid request body"
	errEmbedding     = "Embedding service unavailable"
	errStore         = "Search index unavailable"
	errInternal      = "Internal server error"
	errAnalyticsFail = "Analytics computation failed"
)

// Server wires the use cases to HTTP handlers.
type Server struct {
	recommend *recommenduc.Service
	analytics *analyticsuc.Service
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	analytics *analyticsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{recommend: recommend, analytics: analytics, health: health, logger: logger}
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Post("/recommend", s.handleRecommend)
	r.Get("/analytics", s.handleAnalytics)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type recommendRequest struct {
	Query string `json:"query"`
	TopK  any    `json:"top_k"`
}

type matchDTO struct {
	ID            string  `json:"id"`
	Score         float64 `json:"score"`
	Title         string  `json:"title"`
	Brand         string  `json:"brand"`
	Price         string  `json:"price"`
	Material      string  `json:"material"`
	Color         string  `json:"color"`
	Categories    string  `json:"categories"`
	AIDescription string  `json:"ai_description,omitempty"`
}

type recommendResponse struct {
	Query   string     `json:"query"`
	Results []matchDTO `json:"results"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"message": msgRunning})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errInvalidBody)
		return
	}

	resp, err := s.recommend.Recommend(r.Context(), req.Query, parseTopK(req.TopK))
	if err != nil {
		s.logger.Warn("Recommendation failed", zap.Error(err))
		writeError(w, errorMessage(err))
		return
	}
	if resp.NoResults {
		writeJSON(w, map[string]string{"message": msgNoResults})
		return
	}

	out := recommendResponse{Query: resp.Query, Results: make([]matchDTO, len(resp.Results))}
	for i, m := range resp.Results {
		out.Results[i] = matchDTO{
			ID:            m.ID,
			Score:         m.Score,
			Title:         m.Title,
			Brand:         m.Brand,
			Price:         m.Price,
			Material:      m.Material,
			Color:         m.Color,
			Categories:    m.Categories,
			AIDescription: m.AIDescription,
		}
	}
	writeJSON(w, out)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.Report(r.Context())
	if err != nil {
		s.logger.Error("Analytics failed", zap.Error(err))
		writeError(w, errAnalyticsFail)
		return
	}
	writeJSON(w, report)
}

// parseTopK coerces the request's top_k into a positive int. JSON numbers
// arrive as float64; numeric strings are accepted too. Anything else falls
// back to zero, which the service turns into its default.
func parseTopK(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if k, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return k
		}
	}
	return 0
}

// errorMessage maps domain sentinels to client-safe text, hiding internals
// behind a generic message for anything unexpected.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return errEmptyQuery
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return errEmbedding
	case errors.Is(err, domain.ErrStoreUnavailable):
		return errStore
	default:
		return errInternal
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, map[string]string{"error": message})
}
