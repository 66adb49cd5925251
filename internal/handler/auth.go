package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
)

const (
	stateCookieName = "oauth_state"
	stateMaxAge     = 10 * 60
)

// GoogleProvider is the OAuth side of Google sign-in.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (model.GoogleProfile, error)
}

// GoogleAuthenticator turns a verified Google profile into an API session.
type GoogleAuthenticator interface {
	AuthenticateGoogle(p model.GoogleProfile) (*model.AuthPayload, error)
}

type AuthHandler struct {
	google       GoogleProvider
	authn        GoogleAuthenticator
	webURL       string
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(google GoogleProvider, authn GoogleAuthenticator, webURL string, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google:       google,
		authn:        authn,
		webURL:       webURL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// GoogleLogin starts the OAuth flow with a fresh state bound to a cookie.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		h.logger.Error("generate oauth state", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback finishes the flow and hands the token to the web frontend.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.logger.Info("google sign-in declined", "error", e)
		h.redirectSignIn(w, r, "Google sign-in was cancelled")
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid oauth state"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing authorization code"})
		return
	}

	profile, err := h.google.Profile(r.Context(), code)
	if err != nil {
		h.logger.Error("google profile", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not reach Google"})
		return
	}

	payload, err := h.authn.AuthenticateGoogle(profile)
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			h.logger.Error("google sign-in", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		h.redirectSignIn(w, r, apperr.PublicMessage(err))
		return
	}

	h.logger.Info("google sign-in", "user_id", payload.ID)
	v := url.Values{
		"userId":      {strconv.FormatInt(payload.ID, 10)},
		"name":        {payload.Name},
		"avatar":      {payload.Avatar},
		"accessToken": {payload.AccessToken},
	}
	http.Redirect(w, r, h.webURL+"/api/google/callback?"+v.Encode(), http.StatusFound)
}

// VerifyToken answers "ok"; it is mounted behind the bearer guard.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *AuthHandler) redirectSignIn(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, h.webURL+"/sign-in?"+url.Values{"error": {msg}}.Encode(), http.StatusFound)
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
