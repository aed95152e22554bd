// Package web serves the browser preview UI and its JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/JonMunkholm/csvpreview/internal/config"
	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

const sessionKeyWorkspace = "workspace"

// Server is the HTTP server for the preview UI.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	sessions *sessions.CookieStore
	router   *chi.Mux
	server   *http.Server
}

// NewServer builds the router. cfg.Session.Secret must be set.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.MaxAge(86400)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	s := &Server{
		service:  service,
		cfg:      cfg,
		sessions: store,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute).Middleware)
	}
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)

	// Page and SSE patches
	s.router.Group(func(r chi.Router) {
		if t := s.cfg.Server.RequestTimeout; t > 0 {
			r.Use(chimw.Timeout(t))
		}
		r.Get("/", s.handleIndex)
		r.Get("/preview/state", s.handleState)
		r.Post("/preview/slide", s.handleSlide)
		r.Post("/preview/key", s.handleKey)
	})

	// File previews run under the pipeline timeout and their own rate limit.
	previewLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		previewLimit = middleware.NewRateLimiter(s.cfg.Rate.PreviewLimit).Middleware
	}
	s.router.With(previewLimit).Post("/preview/file", s.handleFile)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))
		r.Get("/history", s.handleHistory)
		r.With(previewLimit).Post("/preview", s.handleAPIPreview)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// workspace returns the caller's workspace, creating one and setting the
// session cookie when needed. It must run before any body is written.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*core.Workspace, error) {
	// A cookie that fails to decode yields a fresh session.
	sess, _ := s.sessions.Get(r, s.cfg.Session.CookieName)

	id, _ := sess.Values[sessionKeyWorkspace].(string)
	ws, created, err := s.service.OpenWorkspace(id)
	if err != nil {
		return nil, err
	}
	if created {
		sess.Values[sessionKeyWorkspace] = ws.ID
		if err := sess.Save(r, w); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return ws, nil
}
