// Package webserver provides the web frontend HTTP server implementation
package webserver

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
	"github.com/pastaboard/pastaboard/internal/infrastructure/http/middleware"
	"github.com/pastaboard/pastaboard/internal/infrastructure/monitoring"
	"github.com/pastaboard/pastaboard/internal/ports/inbound"
	"github.com/pastaboard/pastaboard/pkg/healthcheck"
)

// UploadURLPrefix is where locally stored photos are served from
const UploadURLPrefix = "/static/upload"

//go:embed templates/*.html
var templatesFS embed.FS

// WebServer represents the web frontend HTTP server
type WebServer struct {
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
	router      *chi.Mux
	recipes     inbound.RecipeService
	drafts      inbound.DraftService
	sessions    *SessionManager
	templates   *templateSet
	healthCheck *healthcheck.HealthCheck
	metrics     *monitoring.MetricsCollector

	mu       sync.Mutex
	listener net.Listener
}

// NewWebServer creates a new web frontend server instance
func NewWebServer(
	cfg *config.Config,
	log *zap.Logger,
	recipes inbound.RecipeService,
	drafts inbound.DraftService,
	healthCheck *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) (*WebServer, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &WebServer{
		config:      cfg,
		logger:      log.Named("webserver"),
		recipes:     recipes,
		drafts:      drafts,
		sessions:    NewSessionManager(cfg.Session, log),
		templates:   templates,
		healthCheck: healthCheck,
		metrics:     metrics,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// Handler returns the root HTTP handler
func (s *WebServer) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the web frontend routes
func (s *WebServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	mw := middleware.New(s.config, s.logger, "/health", "/ready", "/live", "/metrics")
	r.Use(mw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(s.metrics.HTTPMiddleware)
	r.Use(mw.Security)

	// Health check endpoints
	r.Get("/health", s.healthCheck.Handler())
	r.Get("/ready", s.healthCheck.ReadinessHandler())
	r.Get("/live", s.healthCheck.LivenessHandler())
	r.Handle("/metrics", s.metrics.Handler())

	if s.config.Storage.Provider == "local" {
		files := http.FileServer(http.Dir(s.config.Storage.UploadDir))
		r.Handle(UploadURLPrefix+"/*", http.StripPrefix(UploadURLPrefix+"/", noDirectoryListing(files)))
	}

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)

		r.Get("/", s.handleGallery)
		r.Get("/ingredients", s.handleIngredientsPage)
		r.Post("/ingredients", s.handleSaveIngredients)
		r.Get("/post", s.handlePostPage)
		r.Post("/upload", s.handleUpload)
		r.Get("/recipe/{filename}", s.handleRecipe)
	})

	return r
}

// Start binds the listen address and serves in the background.
// Bind errors are returned; serve errors after startup are logged.
func (s *WebServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("Starting web server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server stopped unexpectedly", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded
func (s *WebServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web server")
	return s.server.Shutdown(ctx)
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
