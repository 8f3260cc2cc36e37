// Package api provides the HTTP API server and handlers for Shelfie.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfieapp/shelfie-server/internal/auth"
	"github.com/shelfieapp/shelfie-server/internal/http/response"
	"github.com/shelfieapp/shelfie-server/internal/metrics"
	"github.com/shelfieapp/shelfie-server/internal/ratelimit"
	"github.com/shelfieapp/shelfie-server/internal/search"
	"github.com/shelfieapp/shelfie-server/internal/sse"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// Options configures the HTTP layer.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultAllowedOrigins is the React dev server.
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      store.Store
	services   *Services
	tokens     *auth.TokenService
	sseManager *sse.Manager
	index      *search.UserIndex
	metrics    *metrics.Metrics
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// sseManager, index and m may be nil.
func NewServer(
	st store.Store,
	services *Services,
	tokens *auth.TokenService,
	sseManager *sse.Manager,
	index *search.UserIndex,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = DefaultAllowedOrigins
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 2
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 10
	}

	s := &Server{
		store:      st,
		services:   services,
		tokens:     tokens,
		sseManager: sseManager,
		index:      index,
		metrics:    m,
		limiter:    ratelimit.New(opts.RateLimitRPS, opts.RateLimitBurst),
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware(opts)
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, e.g. for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

func (s *Server) setupAPI() {
	config := huma.DefaultConfig("Shelfie API", "1.0.0")
	config.Info.Description = "Social book tracking: shelves, follows, feed and notifications."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerSessionRoutes()
	s.registerUserRoutes()
	s.registerSocialRoutes()
	s.registerFeedRoutes()
	s.registerBookRoutes()
	s.registerEngagementRoutes()
	s.registerNotificationRoutes()

	if s.sseManager != nil {
		s.router.Method(http.MethodGet, "/api/v1/events", sse.NewHandler(s.sseManager, s.streamIdentity, s.logger))
	}
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
}

// streamIdentity authenticates an event stream. Browsers cannot set headers on
// EventSource, so the token may also arrive as ?token=.
func (s *Server) streamIdentity(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
			header = "Bearer " + token
		}
	}

	identity, err := s.authenticateRequest(header)
	if err != nil {
		return "", err
	}
	return identity.UserID, nil
}
