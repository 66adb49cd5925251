package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiToken(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("api-secret"))
	require.NoError(t, err)
	return signed
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager([]byte("session-secret"), true)
	require.NoError(t, err)
	return m
}

// roundTrip stores s and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, m *Manager, s Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Create(rec, s))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return req
}

func TestCreateAndGet(t *testing.T) {
	m := newManager(t)
	want := Session{
		User:        User{ID: 7, Name: "Ann", Email: "ann@example.com"},
		AccessToken: apiToken(t, time.Now().Add(time.Hour)),
	}

	got, err := m.Get(roundTrip(t, m, want))
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestGetWithoutCookie(t *testing.T) {
	_, err := newManager(t).Get(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGetOtherSecret(t *testing.T) {
	other, err := NewManager([]byte("someone-else"), true)
	require.NoError(t, err)
	req := roundTrip(t, other, Session{User: User{ID: 7}, AccessToken: apiToken(t, time.Now().Add(time.Hour))})

	_, err = newManager(t).Get(req)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestGetExpiredSession(t *testing.T) {
	m := newManager(t)
	req := roundTrip(t, m, Session{User: User{ID: 7}, AccessToken: apiToken(t, time.Now().Add(30*24*time.Hour))})

	m.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err := m.Get(req)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestGetExpiredAPIToken(t *testing.T) {
	m := newManager(t)
	req := roundTrip(t, m, Session{User: User{ID: 7}, AccessToken: apiToken(t, time.Now().Add(-time.Minute))})

	_, err := m.Get(req)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestClear(t *testing.T) {
	rec := httptest.NewRecorder()
	newManager(t).Clear(rec)
	c := rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, CookieName, c[0].Name)
	assert.Less(t, c[0].MaxAge, 0)
}

func TestLoadAndRequireSession(t *testing.T) {
	m := newManager(t)
	var seen *Session
	protected := m.Load(RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/posts", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	assert.Nil(t, seen)

	req := roundTrip(t, m, Session{User: User{ID: 7, Name: "Ann"}, AccessToken: apiToken(t, time.Now().Add(time.Hour))})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.User.ID)
}

func TestLoadClearsLapsedSession(t *testing.T) {
	m := newManager(t)
	req := roundTrip(t, m, Session{User: User{ID: 7}, AccessToken: apiToken(t, time.Now().Add(-time.Minute))})

	called := false
	rec := httptest.NewRecorder()
	m.Load(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Less(t, rec.Result().Cookies()[0].MaxAge, 0)
}
