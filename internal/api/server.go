// Package api serves the follower board over HTTP: the board document, the
// export lookup, the backup download and server-side snapshots.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/ratelimit"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
	"github.com/ArturoRiosMock/CRMAIRE/internal/validation"
)

// Options holds optional server settings.
type Options struct {
	// AllowedOrigins lists CORS origins; empty allows any origin.
	AllowedOrigins []string
	// WriteLimiter limits board writes per client IP when set.
	WriteLimiter *ratelimit.KeyedRateLimiter
	// Clock defaults to time.Now.
	Clock func() time.Time
	// RequestLog enables chi's request logger.
	RequestLog bool
	// Backups enables the snapshot routes when set.
	Backups *backup.BackupService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	boards    store.BoardStore
	imports   *importer.Importer
	validator *validation.Validator
	opts      Options
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(boards store.BoardStore, imports *importer.Importer, opts Options, logger *slog.Logger) *Server {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Server{
		boards:    boards,
		imports:   imports,
		validator: validation.New(),
		opts:      opts,
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()

	config := huma.DefaultConfig("CRM Seguidores API", "1.0.0")
	config.Info.Description = "Follower pipeline board"
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerBoardRoutes()
	s.registerImportRoutes()
	if opts.Backups != nil {
		s.registerBackupRoutes()
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if s.opts.RequestLog {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	s.router.Use(WriteRateLimit(s.opts.WriteLimiter, s.logger))
}

// seed builds the board stored on first access.
func (s *Server) seed() *domain.Board {
	return board.SeedAt(s.opts.Clock())
}
