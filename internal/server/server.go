package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/inkwell/internal/auth"
	"github.com/dukerupert/inkwell/internal/blog"
	"github.com/dukerupert/inkwell/internal/config"
	"github.com/dukerupert/inkwell/internal/graph"
	"github.com/dukerupert/inkwell/internal/handler"
	"github.com/dukerupert/inkwell/internal/middleware"
	"github.com/dukerupert/inkwell/internal/token"
	ws "github.com/dukerupert/inkwell/internal/websocket"
)

const (
	graphqlRateLimit = 120
	authRateLimit    = 20
	rateWindow       = time.Minute
)

type Server struct {
	cfg      *config.API
	hub      *ws.Hub
	blog     *blog.Service
	authn    *auth.Service
	graphH   *graph.Handler
	authH    *handler.AuthHandler
	healthH  *handler.HealthHandler
	limiter  middleware.Limiter
	registry *graph.Registry
	logger   *slog.Logger
}

// New wires the API. google may be nil, in which case the Google sign-in
// routes are not mounted.
func New(db *sql.DB, cfg *config.API, limiter middleware.Limiter, google handler.GoogleProvider, logger *slog.Logger) (*Server, error) {
	issuer, err := token.NewIssuer(token.Config{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTExpiry})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	svc := blog.NewService(db, hub, logger.With("component", "blog"))
	authn := auth.NewService(svc.UserStore(), issuer, logger.With("component", "auth"))

	registry := graph.NewRegistry(authn, logger.With("component", "graphql"))
	schema, err := graph.NewSchema(svc, authn, registry)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		hub:      hub,
		blog:     svc,
		authn:    authn,
		graphH:   graph.NewHandler(schema, logger.With("component", "graphql")),
		healthH:  handler.NewHealthHandler(db),
		limiter:  limiter,
		registry: registry,
		logger:   logger,
	}
	if google != nil {
		secure := strings.HasPrefix(cfg.Google.CallbackURL, "https://")
		s.authH = handler.NewAuthHandler(google, authn, cfg.WebURL, secure, logger.With("component", "google_auth"))
	}
	return s, nil
}

// Hub returns the activity hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	gql := s.rateLimited("graphql", graphqlRateLimit, s.graphH)
	mux.Handle("POST /graphql", gql)
	mux.Handle("GET /graphql", gql)

	verify := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if s.authH != nil {
		mux.Handle("GET /auth/google/login", s.rateLimited("auth", authRateLimit, http.HandlerFunc(s.authH.GoogleLogin)))
		mux.Handle("GET /auth/google/callback", s.rateLimited("auth", authRateLimit, http.HandlerFunc(s.authH.GoogleCallback)))
		verify = s.authH.VerifyToken
	}
	mux.Handle("GET /auth/verify-token", middleware.RequireAuth(s.authn)(verify))

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, originPatterns(s.cfg.CORSOrigins), s.logger.With("component", "websocket")))
	mux.HandleFunc("GET /health", s.healthH.Health)

	var h http.Handler = mux
	h = middleware.Authorization(h)
	h = middleware.CORS(s.cfg.CORSOrigins)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.Recovery(s.logger.With("component", "http"))(h)
	return h
}

func (s *Server) rateLimited(bucket string, limit int, h http.Handler) http.Handler {
	keyFunc := func(r *http.Request) string {
		return bucket + ":" + middleware.RealIP(r)
	}
	return middleware.RateLimit(s.limiter, keyFunc, limit, rateWindow)(h)
}

// originPatterns turns allowed origins into the host patterns the websocket
// handshake matches against.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			out = append(out, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			out = append(out, o)
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
