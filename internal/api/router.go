package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"honeypot-lab/internal/api/handlers"
	apimiddleware "honeypot-lab/internal/api/middleware"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/observability/metrics"
	"honeypot-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitStore
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *logger.Logger
}

// Option customizes a Router
type Option func(*Router)

// WithRateLimitStore enables rate limiting against store when the config allows it
func WithRateLimitStore(store apimiddleware.RateLimitStore) Option {
	return func(r *Router) { r.limiter = store }
}

// WithMetrics sets the metrics sink and the registry served on /metrics
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(r *Router) {
		r.metrics = m
		r.gatherer = gatherer
	}
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, log *logger.Logger, opts ...Option) *Router {
	r := &Router{
		config:   cfg,
		handlers: h,
		gatherer: prometheus.DefaultGatherer,
		logger:   log.WithComponent("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	timeout := r.config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger, r.metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.limiter != nil {
		router.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.metrics))
	}

	auth := apimiddleware.APIKeyAuth(r.config.Auth, r.metrics)

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
		pub.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	})

	// Conversational endpoint
	router.With(auth).Post("/honeypot", r.handlers.Honeypot.Handle)

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(auth)

		api.Get("/stats", r.handlers.Stats.Get)
		api.Get("/patterns", r.handlers.Patterns.List)
		api.Get("/intelligence/reports", r.handlers.Reports.List)
	})

	return router
}
