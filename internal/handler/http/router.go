package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deligo/search-service/pkg/health"
	"github.com/deligo/search-service/pkg/middleware"
)

// RouterConfig carries the router's environment-dependent knobs.
type RouterConfig struct {
	CORSOrigins []string
	Environment string
}

// NewRouter creates a chi router with all search service routes registered.
func NewRouter(
	handlers *Handlers,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("search"))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Get("/", handlers.Search.Search)
		r.Post("/", handlers.Search.SearchPost)
		r.Get("/autocomplete", handlers.Search.Autocomplete)
		// Compatibility alias kept for older clients.
		r.Get("/suggestions", handlers.Search.Autocomplete)

		r.Route("/index", func(r chi.Router) {
			r.Post("/product", handlers.Index.IndexProduct)
			r.Delete("/product/{id}", handlers.Index.DeleteProduct)
			r.Post("/bulk", handlers.Index.BulkIndex)
			r.Post("/reindex", handlers.Index.FullReindex)
			r.Post("/incremental", handlers.Index.IncrementalIndex)
			r.Get("/stats", handlers.Index.Stats)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", handlers.Analytics.Report)
			r.Post("/track", handlers.Analytics.TrackSearch)
			r.Post("/track-click", handlers.Analytics.TrackClick)
		})
	})

	return r
}
