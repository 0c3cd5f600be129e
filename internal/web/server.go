// Package web serves the console's two views: the login form and the
// protected dashboard. It renders server-side from the typed view model;
// no markup is assembled by hand in handlers.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/seclens/seclens/internal/config"
	"github.com/seclens/seclens/internal/session"
	"github.com/seclens/seclens/internal/upstream"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "seclens_sid"

type Server struct {
	cfg       *config.Config
	router    *chi.Mux
	sessions  session.Store
	client    *upstream.Client
	templates *template.Template
	http      *http.Server
	logger    *slog.Logger
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(cfg *config.Config, sessions session.Store, opts ...ServerOption) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		sessions: sessions,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	s.templates = tmpl

	// the client is rebound to the request's session per call; the
	// transport and base URLs are shared
	s.client = upstream.NewClient(upstream.Config{
		AuthBaseURL:       cfg.Upstream.AuthBaseURL,
		ScansBaseURL:      cfg.Upstream.ScansBaseURL,
		DashboardsBaseURL: cfg.Upstream.DashboardsBaseURL,
		RequestTimeout:    cfg.Upstream.RequestTimeout,
	}, nil, s.logger)

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Get("/", s.loginPage)
	s.router.Post("/login", s.handleLogin)
	s.router.Post("/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/dashboard", s.dashboardPage)
		r.Post("/scans", s.handleStartScan)
		r.Get("/dashboard/{scanID}/pdf", s.handleExportPDF)
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting console", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}

// sessionID returns the request's session cookie value, or "" when absent.
func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requireSession redirects to the login view when the request carries no
// active session. Only protected views get this treatment; the login view
// itself never redirects.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := sessionID(r)
		if sid == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		sess, err := s.sessions.Get(r.Context(), sid)
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if !sess.Active() {
			s.setFlash(w, flash{Level: "error", Message: "No session token. Please log in."})
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template render failed", "template", name, "error", err)
	}
}
