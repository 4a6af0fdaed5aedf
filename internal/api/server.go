// Package api serves the docview query operations over HTTP. Documents
// are loaded asynchronously (PDF extraction can be slow), registered
// in a TTL-evicted store, and queried through per-document endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"docview/internal/config"
	"docview/internal/document"
	"docview/internal/extract"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docview.
type Server struct {
	router chi.Router
	store  *DocStore
	stats  *OpStats
	log    *slog.Logger
	cfg    config.Config

	extractors map[document.Format]document.TextExtractor
	loadSem    chan struct{}
}

// NewServer creates and configures the HTTP server.
func NewServer(log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: NewDocStore(cfg.DocTTL),
		stats: NewOpStats(time.Hour),
		log:   log,
		cfg:   cfg,
		extractors: extract.Registry(extract.Config{
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			StripMarkdown:        cfg.StripMarkdown,
		}),
		loadSem: make(chan struct{}, cfg.MaxConcurrentLoads),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/documents", s.handleLoad)
		r.Get("/api/documents", s.handleList)
		r.Get("/api/documents/{docID}", s.handleStatus)
		r.Delete("/api/documents/{docID}", s.handleUnload)

		r.Get("/api/documents/{docID}/toc", s.handleTOC)
		r.Get("/api/documents/{docID}/search", s.handleSearch)
		r.Get("/api/documents/{docID}/regex", s.handleRegex)
		r.Get("/api/documents/{docID}/slice", s.handleSlice)
		r.Get("/api/documents/{docID}/section", s.handleSection)

		r.Get("/api/stats/ops", s.handleOpStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// StartCleanup evicts expired documents until ctx is cancelled.
func (s *Server) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.store.Cleanup()
			}
		}
	}()
}
