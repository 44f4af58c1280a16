package handler

import (
	"net/http"

	"mosdacbot/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig collects what the router serves besides the help API
type RouterConfig struct {
	CORSOrigins []string
	// Registry is exposed at /metrics when set
	Registry *prometheus.Registry
	Metrics  *service.Metrics
	// Events is mounted at /events when set
	Events http.Handler
	Logger *zap.Logger
}

// NewRouter wires every route onto a chi router
func NewRouter(svc *service.HelpService, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := NewHelpHandler(svc, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(logger.Named("http"), cfg.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", h.Health)
	if cfg.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}
	if cfg.Events != nil {
		router.Handle("/events", cfg.Events)
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/query", h.Query)
		r.Get("/search", h.SearchTerms)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", h.ListNodes)
			r.Get("/{id}", h.GetNode)
			r.Get("/{id}/related", h.GetRelated)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Delete("/{sid}", h.DeleteSession)
			r.Get("/{sid}/selection", h.GetSelection)
			r.Put("/{sid}/selection", h.SelectNode)
			r.Delete("/{sid}/selection", h.ClearSelection)
		})

		r.Get("/graph/stats", h.GetStats)
		r.Get("/export/{format}", h.Export)
	})

	return router
}
