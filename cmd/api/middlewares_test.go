package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinelog/proj/internal/config"
	"cinelog/proj/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	cfg := &config.Config{AppSecret: testSecret}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Application{
		cfg:       cfg,
		log:       log,
		validator: govalidator.New(govalidator.WithRequiredStructEnabled()),
		Http:      &Http{log: log, cfg: cfg},
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// userCapturingHandler records the identity the middleware resolved.
func userCapturingHandler(app *Application, captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = app.currentUser(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateWithoutHeaderIsAnonymous(t *testing.T) {
	app := newTestApplication(t)
	var user *models.User
	handler := app.Authenticate(userCapturingHandler(app, &user))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, user)
	assert.True(t, user.IsAnonymous())
}

func TestAuthenticateValidToken(t *testing.T) {
	app := newTestApplication(t)
	var user *models.User
	handler := app.Authenticate(userCapturingHandler(app, &user))

	token := signToken(t, testSecret, jwt.MapClaims{
		"uid":     "uid-alice",
		"name":    "Alice",
		"email":   "alice@example.com",
		"picture": "http://img/alice.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, user)
	assert.False(t, user.IsAnonymous())
	assert.Equal(t, "uid-alice", user.UID)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "http://img/alice.png", user.PhotoURL)
}

func TestAuthenticateRejectsWrongSignature(t *testing.T) {
	app := newTestApplication(t)
	handler := app.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an invalid token")
	}))

	token := signToken(t, "other-secret", jwt.MapClaims{"uid": "uid-alice"})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	app := newTestApplication(t)
	handler := app.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an expired token")
	}))

	token := signToken(t, testSecret, jwt.MapClaims{
		"uid": "uid-alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsTokenWithoutUID(t *testing.T) {
	app := newTestApplication(t)
	handler := app.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a uid claim")
	}))

	token := signToken(t, testSecret, jwt.MapClaims{"name": "Alice"})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	app := newTestApplication(t)
	handler := app.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a malformed header")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAuthenticatedUser(t *testing.T) {
	app := newTestApplication(t)
	protected := app.Authenticate(app.requireAuthenticatedUser(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	))

	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "anonymous callers must be rejected")

	token := signToken(t, testSecret, jwt.MapClaims{"uid": "uid-alice"})
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter(t *testing.T) {
	app := newTestApplication(t)
	app.cfg.Limiter = config.Limiter{Enabled: true, Rps: 2, Burst: 2}
	handler := app.RateLimiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRateLimiterDisabled(t *testing.T) {
	app := newTestApplication(t)
	app.cfg.Limiter = config.Limiter{Enabled: false}
	handler := app.RateLimiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
