package chi

import (
	"net/http"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/metrics"
)

// RouterConfig holds the HTTP-level limits and credentials.
type RouterConfig struct {
	APIKeys        []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter wires the middleware chain and every route of s.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())
	if cfg.MaxBodyBytes > 0 {
		r.Use(chiMiddleware.RequestSize(cfg.MaxBodyBytes))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r gochi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
		}
		r.Post("/rank", s.Rank)
		r.Post("/score", s.Score)
		r.Post("/requirements", s.ExtractRequirements)
		r.Post("/embeddings", s.Embed)
		r.Post("/feedback", s.RecordFeedback)

		r.Route("/candidates", func(r gochi.Router) {
			r.Get("/", s.ListCandidates)
			r.Post("/backfill", s.BackfillEmbeddings)
			r.Route("/{id}", func(r gochi.Router) {
				r.Get("/", s.GetCandidate)
				r.Put("/", s.UpsertCandidate)
				r.Delete("/", s.DeleteCandidate)
				r.Post("/embedding", s.EmbedCandidate)
				r.Get("/feedback", s.ListFeedback)
			})
		})
	})

	return r
}
