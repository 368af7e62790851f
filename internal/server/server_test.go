package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/assistant"
	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/comparison"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/insights"
	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/llm/llmtest"
	"github.com/jonathan/applicant-tracker/internal/scoring"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/server/ratelimit"
	"github.com/jonathan/applicant-tracker/internal/store"
)

var errUpstream = errors.New("upstream unavailable")

// testEnv is a server over a seeded in-memory store. Seeded ids: user 1, job 1, applicants 1-5.
type testEnv struct {
	server  *Server
	handler http.Handler
	store   *store.MemStore
	client  *llmtest.MockClient
	jwt     *JWTService
}

type envOption func(*Deps)

func withLimiter(l *ratelimit.Limiter) envOption {
	return func(d *Deps) { d.Limiter = l }
}

// failingClient makes every model call fail.
func failingClient() *llmtest.MockClient {
	fail := func(context.Context, []llm.Message, llm.ModelTier) (string, error) { return "", errUpstream }
	return &llmtest.MockClient{GenerateJSONFunc: fail, GenerateContentFunc: fail}
}

func newTestEnv(t *testing.T, client *llmtest.MockClient, opts ...envOption) *testEnv {
	t.Helper()
	ctx := context.Background()

	passwords := &config.PasswordConfig{BcryptCost: 4}
	hash, err := passwords.HashPassword(store.SeedPassword)
	require.NoError(t, err)

	s := store.NewMemStore()
	s.SetClock(func() time.Time { return time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC) })
	require.NoError(t, store.Seed(ctx, s, hash))

	jwtService := NewJWTService(&config.JWTConfig{Secret: "test-secret-of-sufficient-length", ExpirationHours: 1})
	limiter := ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	t.Cleanup(limiter.Stop)

	deps := Deps{
		Store:      s,
		Scoring:    scoring.NewService(s, scoring.NewAnalyzer(client, time.Second), nil),
		Comparison: comparison.NewService(s, client, time.Second),
		Insights:   insights.NewService(s, client, cache.NewMemory(), insights.Options{CallTimeout: time.Second}),
		Assistant:  assistant.NewService(s, client, time.Second),
		JWT:        jwtService,
		Passwords:  passwords,
		Limiter:    limiter,
		Logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv := New(Config{Port: 0, AllowedOrigins: []string{"http://localhost:5173"}}, deps)
	return &testEnv{server: srv, handler: srv.Handler(), store: s, client: client, jwt: jwtService}
}

// do sends a request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, target string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bearer(t *testing.T, userID int64) func(*http.Request) {
	t.Helper()
	token, err := e.jwt.GenerateToken(userID)
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, w)["error"]
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})

	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)

	w = env.do(t, http.MethodGet, "/health", nil, func(r *http.Request) {
		r.Header.Set(middleware.RequestIDHeader, "trace-123")
	})
	assert.Equal(t, "trace-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})

	t.Run("allowed origin is echoed", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/health", nil, func(r *http.Request) {
			r.Header.Set("Origin", "http://localhost:5173")
		})
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/health", nil, func(r *http.Request) {
			r.Header.Set("Origin", "http://evil.example")
		})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		w := env.do(t, http.MethodOptions, "/api/ai/chat", nil, func(r *http.Request) {
			r.Header.Set("Origin", "http://localhost:5173")
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Zero(t, env.client.CallCount())
	})
}

func TestRateLimit_AIClass(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(2, time.Minute),
	})
	t.Cleanup(limiter.Stop)
	env := newTestEnv(t, failingClient(), withLimiter(limiter))

	body := map[string]any{"messages": []map[string]string{{"role": "user", "content": "hi"}}}
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = env.do(t, http.MethodPost, "/api/ai/chat", body)
		if last.Code == http.StatusTooManyRequests {
			break
		}
		assert.Equal(t, http.StatusOK, last.Code)
		assert.NotEmpty(t, last.Header().Get("X-RateLimit-Limit"))
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	resp := decodeBody[map[string]any](t, last)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	// the default class has its own bucket
	w := env.do(t, http.MethodGet, "/api/jobs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"valid", map[string]string{"username": store.SeedUsername, "password": store.SeedPassword}, http.StatusOK},
		{"wrong password", map[string]string{"username": store.SeedUsername, "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "nobody", "password": store.SeedPassword}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": store.SeedUsername}, http.StatusBadRequest},
		{"malformed", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			assert.NotContains(t, w.Body.String(), "password")
			resp := decodeBody[map[string]any](t, w)
			assert.NotEmpty(t, resp["token"])
			user := resp["user"].(map[string]any)
			assert.Equal(t, "Katy Johnson", user["fullName"])

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)
			assert.Equal(t, resp["token"], cookies[0].Value)
		})
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})

	w := env.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", nil, env.bearer(t, 1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.SeedUsername, decodeBody[map[string]any](t, w)["username"])

	token, err := env.jwt.GenerateToken(1)
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, "/api/auth/me", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", nil, env.bearer(t, 99))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})

	w := env.do(t, http.MethodPost, "/api/auth/logout", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody[map[string]string](t, w)["message"])
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	env := newTestEnv(t, &llmtest.MockClient{})
	env.server.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
