// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer, the composition root. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY FLOW:
//
//	main.go reads env → server.Config
//	server.New creates: GitHubAuthorizer, StateSigner?, sqlite.DB? → LinkService → LinkHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/gitbot-link/internal/auth"
	"github.com/sakif/gitbot-link/internal/handler"
	"github.com/sakif/gitbot-link/internal/middleware"
	"github.com/sakif/gitbot-link/internal/repository"
	sqliteRepo "github.com/sakif/gitbot-link/internal/repository/sqlite"
	"github.com/sakif/gitbot-link/internal/service"
	"github.com/sakif/gitbot-link/web"
)

// Config holds server configuration.
//
// GitHubClientID and BackendBaseURL are NOT checked here. The server starts
// without them (the confirmation page and /healthz still work) and the
// initiator reports a configuration error on each request instead.
type Config struct {
	Port int

	GitHubClientID string // OAuth App client id
	BackendBaseURL string // where the bot backend's /callback lives

	StateSecret string        // optional; enables signed link state
	StateTTL    time.Duration // 0 → auth.DefaultStateTTL

	DBPath string // optional; enables the link journal
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	links  *service.LinkService
	db     *sqliteRepo.DB // nil when the journal is disabled
}

// New creates a new Server with the given config.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	var states *auth.StateSigner
	if cfg.StateSecret != "" {
		signer, err := auth.NewStateSigner(cfg.StateSecret, cfg.StateTTL)
		if err != nil {
			return nil, fmt.Errorf("creating state signer: %w", err)
		}
		states = signer
	}

	// A typed nil *sqliteRepo.DB inside the interface would not compare equal
	// to nil, so only assign the interface when the journal really exists.
	var events repository.LinkEventRepository
	if cfg.DBPath != "" {
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening link journal: %w", err)
		}
		s.db = db
		events = db
	}

	authorizer := auth.NewGitHubAuthorizer(cfg.GitHubClientID, cfg.BackendBaseURL)
	s.links = service.NewLinkService(authorizer, states, events, logger)

	if err := s.links.Ready(); err != nil {
		logger.Warn("GitHub OAuth is not configured — /auth will refuse to redirect",
			slog.String("error", err.Error()),
		)
	}

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the journal database, if any.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET /auth           → Link Initiator (redirect to GitHub)
// GET /auth/complete  → Link Confirmation (HTML)
// GET /healthz        → liveness + configuration status (JSON)
// GET /static/*       → embedded CSS
//
// MIDDLEWARE ORDER:
// 1. RequestID: unique id per request, picked up by our Logger
// 2. RealIP: client IP from proxy headers
// 3. Recoverer: panics become 500s instead of crashing the process
// 4. Logger: method, path, status, duration (no query strings)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return fmt.Errorf("locating static assets: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	pages, err := handler.NewPages(web.FS, s.logger)
	if err != nil {
		return fmt.Errorf("creating pages: %w", err)
	}

	linkHandler := handler.NewLinkHandler(s.links, pages, s.logger)
	healthHandler := handler.NewHealthHandler(s.links)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.Get("/", linkHandler.HandleInitiate)
		r.Get("/complete", linkHandler.HandleComplete)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the journal database
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("signedState", s.config.StateSecret != ""),
			slog.Bool("journal", s.db != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
