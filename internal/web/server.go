// Package web provides the HTTP server and JSON API handlers.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelistapp/reelist/internal/config"
	"github.com/reelistapp/reelist/internal/importer"
	"github.com/reelistapp/reelist/internal/metrics"
	"github.com/reelistapp/reelist/internal/store"
	"github.com/reelistapp/reelist/internal/web/middleware"
)

// Server is the HTTP server for the watch-list application.
type Server struct {
	store   *store.Store
	imports *importer.Service
	catalog importer.Catalog
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with all routes and middleware configured.
// catalog may be nil when no API key is configured.
func NewServer(st *store.Store, imports *importer.Service, cat importer.Catalog, met *metrics.Metrics, cfg *config.Config) *Server {
	s := &Server{
		store:   st,
		imports: imports,
		catalog: cat,
		cfg:     cfg,
		metrics: met,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger(s.metrics))
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Everything below requires a session
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			r.Get("/lists", s.handleListLists)
			r.Post("/lists", s.handleCreateList)
			r.Get("/lists/{listID}", s.handleGetList)

			r.Post("/lists/{listID}/invites", s.handleCreateInvite)
			r.Post("/invites/{code}/redeem", s.handleRedeemInvite)

			r.Get("/lists/{listID}/entries", s.handleListEntries)
			r.Post("/lists/{listID}/entries", s.handleCreateEntry)
			r.Patch("/entries/{entryID}", s.handleUpdateEntry)
			r.Delete("/entries/{entryID}", s.handleDeleteEntry)

			r.Post("/entries/{entryID}/watches", s.handleAddWatch)
			r.Patch("/entries/{entryID}/watches/{watchID}", s.handleUpdateWatch)
			r.Delete("/entries/{entryID}/watches/{watchID}", s.handleDeleteWatch)

			r.Get("/catalog/search", s.handleCatalogSearch)

			// Import runs are the heavy endpoints; give them their
			// own tighter rate limit on top of the global one.
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					limiter := newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute)
					r.Use(limiter.middleware)
				}
				r.Post("/lists/{listID}/import/inspect", s.handleImportInspect)
				r.Post("/lists/{listID}/import", s.handleImportStart)
			})
			r.Get("/import/{runID}/progress", s.handleImportProgress)
			r.Get("/import/{runID}/result", s.handleImportResult)

			r.Get("/lists/{listID}/export", s.handleExport)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
