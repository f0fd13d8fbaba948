// Package api provides the HTTP API server and handlers for the AudioShelf application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/audioshelfapp/audioshelf-server/internal/http/response"
	"github.com/audioshelfapp/audioshelf-server/internal/ratelimit"
	"github.com/audioshelfapp/audioshelf-server/internal/service"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
	"github.com/audioshelfapp/audioshelf-server/internal/validation"
)

// Config holds the dependencies the server needs.
type Config struct {
	Store       *store.Store
	Books       *service.BookService
	Playback    *service.PlaybackService
	Progress    *service.ProgressService
	Admin       *service.AdminService
	Search      *service.SearchService
	Logger      *slog.Logger
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	bookService     *service.BookService
	playbackService *service.PlaybackService
	progressService *service.ProgressService
	adminService    *service.AdminService
	searchService   *service.SearchService
	validator       *validation.Validator
	loginLimiter    *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	logger          *slog.Logger
	corsOrigins     []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg Config) *Server {
	s := &Server{
		store:           cfg.Store,
		bookService:     cfg.Books,
		playbackService: cfg.Playback,
		progressService: cfg.Progress,
		adminService:    cfg.Admin,
		searchService:   cfg.Search,
		validator:       validation.New(),
		// Brute-force protection on the admin login: a slow steady rate
		// with a small burst per client IP.
		loginLimiter: ratelimit.New(0.2, 5),
		router:       chi.NewRouter(),
		logger:       cfg.Logger,
		corsOrigins:  cfg.CORSOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.loginLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Public catalog and playback endpoints. Listeners are anonymous;
		// a session ID in the request identifies their progress.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Get("/search", s.handleSearchBooks)
			r.Get("/{id}", s.handleGetBook)
			r.Get("/{id}/cover", s.handleGetCoverURL)
			r.Post("/{id}/play-url", s.handleGetPlayURL)
			r.Get("/{id}/progress", s.handleGetProgress)
			r.Post("/{id}/progress", s.handleSaveProgress)
		})

		// Admin endpoints.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/auth", s.handleAdminLogin)
			r.Delete("/auth", s.handleAdminLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/upload-url", s.handleCreateUploadURL)
				r.Post("/books", s.handleCreateBook)
				r.Put("/books/{id}", s.handleUpdateBook)
				r.Delete("/books/{id}", s.handleDeleteBook)
				r.Post("/books/{id}/cover", s.handleSetCover)
				r.Post("/search/reindex", s.handleReindex)
			})
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
