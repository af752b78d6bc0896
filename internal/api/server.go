// Package api provides the HTTP API server and handlers for the catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/catalog-server/internal/http/response"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ratelimit"
	"github.com/listenupapp/catalog-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options holds the optional server collaborators. A nil Metrics or
// RateLimiter disables that middleware.
type Options struct {
	Metrics        *metrics.Metrics
	RateLimiter    *ratelimit.KeyedRateLimiter
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
	opts     Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
		opts:     opts,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Catalog API", Version)
	// No $schema links: the envelope is the documented body.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(s.requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(s.recoverer)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID, "Retry-After"},
		MaxAge:         300,
	}))

	if s.opts.Metrics != nil {
		s.router.Use(s.opts.Metrics.Middleware())
	}
	if s.opts.RateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.opts.RateLimiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.Method+" "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method+" is not allowed on "+r.URL.Path, s.logger)
	})
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerCategoryRoutes()
	s.registerProductRoutes()
	s.registerTagRoutes()

	if s.opts.Metrics != nil {
		s.router.Handle("/metrics", s.opts.Metrics.Handler())
	}
}
