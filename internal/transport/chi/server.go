package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chipkg "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kindred-cloud/kindred/internal/domain"
	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
	domrel "github.com/kindred-cloud/kindred/internal/domain/related"
	"github.com/kindred-cloud/kindred/internal/metrics"
	healthuc "github.com/kindred-cloud/kindred/internal/usecase/health"
	ingestuc "github.com/kindred-cloud/kindred/internal/usecase/ingest"
	relateduc "github.com/kindred-cloud/kindred/internal/usecase/related"
)

// errorCode is the machine-readable code in JSON error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeTitleRequired    errorCode = "title_required"
	codePostNotFound     errorCode = "post_not_found"
	codeProviderError    errorCode = "embedding_provider_error"
	codeUnauthorized     errorCode = "unauthorized"
	codeInternalError    errorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API: the ranking endpoint plus the ingestion
// surface that feeds it.
type Server struct {
	posts         *ingestuc.Service
	related       *relateduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	posts *ingestuc.Service,
	related *relateduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		posts:   posts,
		related: related,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTitleRequired, http.StatusBadRequest, codeTitleRequired),
		sentinelHandler(domain.ErrPostNotFound, http.StatusNotFound, codePostNotFound),
		sentinelHandler(domain.ErrInvalidPost, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Routes mounts all endpoints on the given router.
func (s *Server) Routes(r chipkg.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chipkg.Router) {
		r.Get("/related", s.GetRelated)
		r.Post("/reindex", s.Reindex)

		r.Get("/posts", s.ListPosts)
		r.Route("/posts/{slug}", func(r chipkg.Router) {
			r.Put("/", s.UpsertPost)
			r.Get("/", s.GetPost)
			r.Delete("/", s.DeletePost)
		})
	})
}

type relatedItemResponse struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
	Image       string  `json:"image,omitempty"`
	Similarity  float64 `json:"similarity"`
}

type relatedResponse struct {
	Related []relatedItemResponse `json:"related"`
	Count   int                   `json:"count"`
}

// GetRelated handles GET /api/v1/related.
func (s *Server) GetRelated(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := -1 // not set; the engine applies its default
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			metrics.RelatedRequestsTotal.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
			return
		}
		limit = n
	}

	items, err := s.related.Rank(r.Context(), q.Get("title"), q.Get("url"), limit)
	if err != nil {
		metrics.RelatedRequestsTotal.WithLabelValues("invalid").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.RelatedRequestsTotal.WithLabelValues("ok").Inc()
	metrics.RelatedResultSize.Observe(float64(len(items)))

	resp := relatedResponse{
		Related: make([]relatedItemResponse, len(items)),
		Count:   len(items),
	}
	for i := range items {
		resp.Related[i] = relatedItemToResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func relatedItemToResponse(it *domrel.Item) relatedItemResponse {
	return relatedItemResponse{
		Title:       it.Title(),
		URL:         it.URL(),
		Description: it.Description(),
		Date:        it.Date(),
		Image:       it.Image(),
		Similarity:  it.Similarity(),
	}
}

type postPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	URL         string   `json:"url,omitempty"`
	Image       string   `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Series      string   `json:"series,omitempty"`
	SeriesOrder int      `json:"series_order,omitempty"`
}

type postResponse struct {
	Slug string `json:"slug"`
	postPayload
}

// UpsertPost handles PUT /api/v1/posts/{slug}.
func (s *Server) UpsertPost(w http.ResponseWriter, r *http.Request) {
	slug := chipkg.URLParam(r, "slug")

	var req postPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := dompost.New(
		slug, req.Title, req.Description, req.Date, req.URL, req.Image,
		req.Tags, req.Series, req.SeriesOrder,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	created, err := s.posts.Upsert(r.Context(), &p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/posts/%s", slug))
	}
	writeJSON(w, status, postToResponse(&p))
}

// GetPost handles GET /api/v1/posts/{slug}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.Get(r.Context(), chipkg.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(&p))
}

// DeletePost handles DELETE /api/v1/posts/{slug}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), chipkg.URLParam(r, "slug")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPosts handles GET /api/v1/posts.
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]postResponse, len(posts))
	for i := range posts {
		items[i] = postToResponse(&posts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// Reindex handles POST /api/v1/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.posts.Reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reindexed": n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func postToResponse(p *dompost.Post) postResponse {
	return postResponse{
		Slug: p.Slug(),
		postPayload: postPayload{
			Title:       p.Title(),
			Description: p.Description(),
			Date:        p.Date(),
			URL:         p.URL(),
			Image:       p.Image(),
			Tags:        p.Tags(),
			Series:      p.Series(),
			SeriesOrder: p.SeriesOrder(),
		},
	}
}

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrTitleRequired,
		domain.ErrPostNotFound,
		domain.ErrInvalidPost,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
