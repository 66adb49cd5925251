package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
)

type fakeGoogle struct {
	profile model.GoogleProfile
	err     error
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeGoogle) Profile(ctx context.Context, code string) (model.GoogleProfile, error) {
	return f.profile, f.err
}

type fakeAuthn struct {
	payload *model.AuthPayload
	err     error
}

func (f *fakeAuthn) AuthenticateGoogle(p model.GoogleProfile) (*model.AuthPayload, error) {
	return f.payload, f.err
}

func newTestAuthHandler(g *fakeGoogle, a *fakeAuthn) *AuthHandler {
	return NewAuthHandler(g, a, "http://web.test", false, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func callback(t *testing.T, h *AuthHandler, query url.Values, state string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+query.Encode(), nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: state})
	}
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)
	return rec
}

func TestGoogleLoginSetsState(t *testing.T) {
	h := newTestAuthHandler(&fakeGoogle{}, &fakeAuthn{})

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
	assert.Equal(t, "https://accounts.example.com/auth?state="+cookies[0].Value, rec.Header().Get("Location"))
}

func TestGoogleCallbackRedirectsWithToken(t *testing.T) {
	h := newTestAuthHandler(
		&fakeGoogle{profile: model.GoogleProfile{Email: "a@example.com", EmailVerified: true}},
		&fakeAuthn{payload: &model.AuthPayload{ID: 3, Name: "Ann", Avatar: "https://img/a.png", AccessToken: "tok"}},
	)

	rec := callback(t, h, url.Values{"state": {"s1"}, "code": {"c"}}, "s1")
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "web.test", loc.Host)
	assert.Equal(t, "/api/google/callback", loc.Path)
	assert.Equal(t, "3", loc.Query().Get("userId"))
	assert.Equal(t, "Ann", loc.Query().Get("name"))
	assert.Equal(t, "https://img/a.png", loc.Query().Get("avatar"))
	assert.Equal(t, "tok", loc.Query().Get("accessToken"))
}

func TestGoogleCallbackRejectsStateMismatch(t *testing.T) {
	h := newTestAuthHandler(&fakeGoogle{}, &fakeAuthn{})

	rec := callback(t, h, url.Values{"state": {"forged"}, "code": {"c"}}, "s1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = callback(t, h, url.Values{"state": {"s1"}, "code": {"c"}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleCallbackUnverifiedEmail(t *testing.T) {
	h := newTestAuthHandler(
		&fakeGoogle{profile: model.GoogleProfile{Email: "a@example.com"}},
		&fakeAuthn{err: apperr.New(apperr.Unauthenticated, "Google account email is not verified")},
	)

	rec := callback(t, h, url.Values{"state": {"s1"}, "code": {"c"}}, "s1")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/sign-in", loc.Path)
	assert.Equal(t, "Google account email is not verified", loc.Query().Get("error"))
}

func TestGoogleCallbackProviderFailure(t *testing.T) {
	h := newTestAuthHandler(&fakeGoogle{err: errors.New("timeout")}, &fakeAuthn{})

	rec := callback(t, h, url.Values{"state": {"s1"}, "code": {"c"}}, "s1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGoogleCallbackCancelled(t *testing.T) {
	h := newTestAuthHandler(&fakeGoogle{}, &fakeAuthn{})

	rec := callback(t, h, url.Values{"error": {"access_denied"}}, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/sign-in?error=")
}

func TestVerifyToken(t *testing.T) {
	h := newTestAuthHandler(&fakeGoogle{}, &fakeAuthn{})
	rec := httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/auth/verify-token", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGoogleClientProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"email": "g@example.com", "email_verified": true, "name": "Gee", "picture": "https://img/g.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewGoogleClient("id", "secret", "http://api.test/auth/google/callback")
	c.cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	c.userInfoURL = srv.URL + "/userinfo"

	assert.Contains(t, c.AuthCodeURL("xyz"), "state=xyz")

	p, err := c.Profile(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, model.GoogleProfile{
		Email: "g@example.com", EmailVerified: true, Name: "Gee", Picture: "https://img/g.png",
	}, p)
}

func TestHealth(t *testing.T) {
	db := openTestDB(t)
	h := NewHealthHandler(db)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	db.Close()
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
