// Package server wires the dependency graph and owns the HTTP server
// lifecycle: router, middleware, routes, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/catalog"
	"github.com/sakif/bookshelf/internal/handler"
	"github.com/sakif/bookshelf/internal/middleware"
	sqliteRepo "github.com/sakif/bookshelf/internal/repository/sqlite"
	"github.com/sakif/bookshelf/internal/service"
)

// Config holds server configuration, loaded from the environment in
// cmd/server.
type Config struct {
	Port           int
	DBPath         string
	JWTSecret      string // HMAC secret for session tokens, required
	CatalogBaseURL string // override for the Google Books endpoint, "" for the default
}

// Server bundles the router with the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → services (account, shelf) → handlers → routes
//	TokenService → auth gate middleware
//
// Each layer receives only what it needs; handlers never touch the
// database, services never touch HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// The auth gate runs on every /api route and fails open: it resolves an
// identity when a valid token is present and otherwise leaves the
// request anonymous. Owner-scoped handlers reject anonymous callers via
// the service layer.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	accountService := service.NewAccountService(s.db, tokens, passwords, s.logger)
	shelfService := service.NewShelfService(s.db, s.logger)
	catalogClient := catalog.New(s.config.CatalogBaseURL, nil, s.logger)

	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	shelfHandler := handler.NewShelfHandler(shelfService, s.logger)
	searchHandler := handler.NewSearchHandler(catalogClient, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.Identify(tokens, s.logger))

		r.Post("/users", accountHandler.HandleRegister)
		r.Post("/login", accountHandler.HandleLogin)
		r.Get("/search", searchHandler.HandleSearch)

		r.Get("/me", shelfHandler.HandleMe)
		r.Put("/me/books", shelfHandler.HandleSaveBook)
		r.Delete("/me/books/{bookId}", shelfHandler.HandleRemoveBook)
	})

	return nil
}

// Handler exposes the configured router. Used by httptest-based tests
// to drive the full stack without a listening socket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, and
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
