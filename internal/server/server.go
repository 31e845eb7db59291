// Package server provides the HTTP API for Ordbok.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hyperjump/ordbok/internal/config"
	"github.com/hyperjump/ordbok/internal/corpus"
	"github.com/hyperjump/ordbok/internal/search"
	"github.com/hyperjump/ordbok/internal/storage"
)

// CorpusLoader serves the current corpus snapshot and republishes it from storage or sources.
type CorpusLoader interface {
	Corpus() *search.Corpus
	Load(ctx context.Context) error
	SyncFiles(ctx context.Context, paths ...string) (corpus.ImportReport, error)
}

// Server is the HTTP server for the Ordbok API.
type Server struct {
	engine   *search.Engine
	loader   CorpusLoader
	storage  storage.Storage
	config   *config.Config
	validate *validator.Validate
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	loader CorpusLoader,
	storage storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	return &Server{
		engine:   engine,
		loader:   loader,
		storage:  storage,
		config:   cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// Router returns the API routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/words/{id}", s.handleGetWord)
	r.Get("/api/v1/favorites", s.handleListFavorites)
	r.Put("/api/v1/favorites/{id}", s.handleAddFavorite)
	r.Delete("/api/v1/favorites/{id}", s.handleRemoveFavorite)
	r.Post("/api/v1/corpus/reload", s.handleReload)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
