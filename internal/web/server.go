// Package web provides the HTTP server and handlers for the bulk listing
// editor API.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/swipswaps/marketplace-bulk-editor/internal/auth"
	"github.com/swipswaps/marketplace-bulk-editor/internal/config"
	"github.com/swipswaps/marketplace-bulk-editor/internal/editor"
	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
	"github.com/swipswaps/marketplace-bulk-editor/internal/web/middleware"
)

// Server is the HTTP server for the bulk editor application. The store and
// auth fields are nil in offline mode; the affected routes answer 503.
type Server struct {
	cfg      *config.Config
	sessions *editor.Manager
	store    *store.Store
	auth     *auth.Service
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance. st and authSvc may be nil when
// no database is configured.
func NewServer(cfg *config.Config, sessions *editor.Manager, st *store.Store, authSvc *auth.Service) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		store:    st,
		auth:     authSvc,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	var uploadLimiter *rateLimiter
	if s.cfg.Rate.Enabled {
		uploadLimiter = newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
	}

	s.router.Route("/api", func(r chi.Router) {
		// Editing sessions: in-memory table state with undo history
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleSessionState)
				r.Delete("/", s.handleDeleteSession)

				// File uploads get the tighter rate limit
				r.Group(func(r chi.Router) {
					if uploadLimiter != nil {
						r.Use(uploadLimiter.middleware)
					}
					r.Post("/import", s.handleImport)
					r.Post("/template", s.handleTemplateUpload)
				})

				r.Get("/template", s.handleSessionTemplate)
				r.Delete("/template", s.handleClearTemplate)

				// Row mutations
				r.Post("/rows", s.handleAddRow)
				r.Patch("/rows/{rowID}", s.handleUpdateRow)
				r.Post("/rows/{rowID}/duplicate", s.handleDuplicateRow)
				r.Post("/rows/delete", s.handleDeleteRows)
				r.Post("/bulk-edit", s.handleBulkEdit)
				r.Post("/clear", s.handleClearRows)

				// History
				r.Post("/undo", s.handleUndo)
				r.Post("/redo", s.handleRedo)

				// Validation and export
				r.Get("/validate", s.handleValidate)
				r.Get("/suggestions", s.handleSuggestions)
				r.Get("/export", s.handleExport)
			})
		})

		// Text catalog import
		r.Post("/ocr/parse", s.handleOCRParse)

		// Accounts and persistence (503 without a database)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.With(s.requireUser).Get("/me", s.handleMe)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListListings)
			r.Post("/", s.handleSaveListings)
			r.Post("/delete", s.handleDeleteListings)
			r.Delete("/", s.handleDeleteAllListings)
			r.Post("/cleanup-duplicates", s.handleCleanupDuplicates)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListSavedTemplates)
			r.Post("/", s.handleSaveTemplate)
			r.Get("/{templateID}", s.handleGetSavedTemplate)
			r.Delete("/{templateID}", s.handleDeleteSavedTemplate)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
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

// handleHealth reports liveness and whether persistence is available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"database": s.store != nil,
		"sessions": s.sessions.Count(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	// Check if we have tokens left
	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`+"\n", message)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus writes a JSON body with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
