// Package session keeps the signed-in user and their API token in an
// HS256-signed cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/inkwell/internal/token"
)

const (
	CookieName = "session"
	TTL        = 7 * 24 * time.Hour
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
	ErrTokenExpired   = errors.New("api token expired")
)

type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

type claims struct {
	Session
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewManager signs cookies with secret. secure controls the cookie's Secure
// flag and is false only for local plain-http development.
func NewManager(secret []byte, secure bool) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: empty secret")
	}
	return &Manager{secret: secret, secure: secure, now: time.Now}, nil
}

// Create signs s and sets it as the session cookie.
func (m *Manager) Create(w http.ResponseWriter, s Session) error {
	now := m.now()
	exp := now.Add(TTL)
	c := claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get reads and verifies the session cookie. A session whose embedded API
// token has lapsed is reported as ErrTokenExpired.
func (m *Manager) Get(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if c.AccessToken == "" || c.User.ID <= 0 {
		return nil, ErrInvalidSession
	}

	exp, err := token.ExpiresAt(c.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !m.now().Before(exp) {
		return nil, ErrTokenExpired
	}
	return &c.Session, nil
}

// Clear deletes the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by Load, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// Load attaches the session, if any, to the request context. A tampered or
// lapsed session clears the cookie and sends the browser to /sign-in.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(r)
		switch {
		case err == nil:
			r = r.WithContext(WithSession(r.Context(), s))
		case errors.Is(err, ErrNoSession):
		default:
			m.Clear(w)
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession redirects anonymous visitors to /sign-in. It expects Load
// to have run first.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
