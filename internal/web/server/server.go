// Package server wires the web frontend's routes.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/inkwell/internal/config"
	"github.com/dukerupert/inkwell/internal/middleware"
	"github.com/dukerupert/inkwell/internal/web/apiclient"
	"github.com/dukerupert/inkwell/internal/web/handler"
	"github.com/dukerupert/inkwell/internal/web/session"
)

const (
	formRateLimit = 10
	rateWindow    = time.Minute
)

type Server struct {
	h           *handler.Handler
	sessions    *session.Manager
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(cfg *config.Web, logger *slog.Logger) (*Server, error) {
	sessions, err := session.NewManager([]byte(cfg.SessionSecret), cfg.CookieSecure)
	if err != nil {
		return nil, err
	}
	tmpl, err := handler.ParseTemplates()
	if err != nil {
		return nil, err
	}

	api := apiclient.New(cfg.APIURL)
	return &Server{
		h:           handler.New(api, sessions, tmpl, cfg.APIURL, logger.With("component", "web")),
		sessions:    sessions,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(s.logger.With("component", "http")))
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Load)
		r.NotFound(s.h.NotFound)

		r.Get("/", s.h.Home)
		r.Get("/blog/{slug}", s.h.Post)

		r.Get("/sign-in", s.h.SignInPage)
		r.With(s.formLimit).Post("/sign-in", s.h.SignIn)
		r.Get("/sign-up", s.h.SignUpPage)
		r.With(s.formLimit).Post("/sign-up", s.h.SignUp)
		r.Post("/sign-out", s.h.SignOut)
		r.Get("/api/google/callback", s.h.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(session.RequireSession)

			r.Post("/blog/{slug}/like", s.h.Like)
			r.Post("/blog/{slug}/unlike", s.h.Unlike)
			r.Post("/blog/{slug}/comments", s.h.Comment)

			r.Route("/user", func(r chi.Router) {
				r.Get("/posts", s.h.UserPosts)
				r.Get("/create-post", s.h.NewPostPage)
				r.Post("/create-post", s.h.CreatePost)
				r.Get("/posts/{id}/edit", s.h.EditPostPage)
				r.Post("/posts/{id}/edit", s.h.UpdatePost)
				r.Get("/posts/{id}/delete", s.h.DeletePostPage)
				r.Post("/posts/{id}/delete", s.h.DeletePost)
				r.Get("/profile", s.h.ProfilePage)
				r.Post("/profile", s.h.UpdateProfile)
			})
		})
	})
	return r
}

func (s *Server) formLimit(next http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP, formRateLimit, rateWindow)(next)
}
