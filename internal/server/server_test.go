package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/memory"
	"github.com/pageza/healthy-cookbook/backend/internal/testdb"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.Test,
		ServerHost:  "localhost",
		ServerPort:  "0",
		StoreDriver: config.StoreMemory,
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		CORSOrigins: []string{"http://localhost:5173"},
		RateLimit: config.RateLimitConfig{
			RecipeCreateLimit:  1,
			RecipeCreateWindow: time.Hour,
			RatingLimit:        10,
			RatingWindow:       time.Hour,
		},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNew(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, srv)

	w := get(t, srv.Handler(), "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = get(t, srv.Handler(), "/api/categories")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"categories":[]}`, w.Body.String())

	w = get(t, srv.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/categories",status="200"}`)

	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestNewRejectsUnknownStore(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "cassandra"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	srv := NewWithDeps(cfg, zap.NewNop(), Deps{Store: memory.NewStore()})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"`+strings.Repeat("a", 200)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeCreationRateLimited(t *testing.T) {
	client := testdb.StartRedis(t)
	srv := NewWithDeps(testConfig(), zap.NewNop(), Deps{Store: memory.NewStore(), Redis: client})
	h := srv.Handler()

	call := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodPost, "/api/auth/register", "",
		`{"username":"alice","email":"alice@example.com","password":"password123","firstName":"A","lastName":"B"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

	// the first attempt counts even though validation rejects it
	w = call(http.MethodPost, "/api/recipes", auth.Token, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = call(http.MethodPost, "/api/recipes", auth.Token, `{}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
