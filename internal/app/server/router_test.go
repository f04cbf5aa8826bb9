package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrrecords/internal/domain/audit"
	"hrrecords/internal/domain/auth"
	"hrrecords/internal/domain/employee"
	"hrrecords/internal/platform/config"
	"hrrecords/internal/platform/metrics"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testRouter(pingErr error) http.Handler {
	cfg := config.Defaults()
	cfg.DatabaseURL = "postgres://unused"
	cfg.JWTSecret = "test-secret"
	collector := metrics.New()
	logger := zerolog.Nop()

	svc := Services{
		Auth:      auth.NewService(nil, cfg.JWTSecret, time.Hour, nil, logger),
		Employees: employee.NewService(nil, nil, nil, collector, logger),
		Audit:     audit.New(nil),
		Metrics:   collector,
		Pinger:    stubPinger{err: pingErr},
	}
	return NewRouter(cfg, logger, svc)
}

func TestHealthAndReadiness(t *testing.T) {
	router := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	testRouter(errors.New("down")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEmployeeRoutesRequireSignIn(t *testing.T) {
	router := testRouter(nil)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/employees"},
		{http.MethodPost, "/api/v1/employees"},
		{http.MethodGet, "/api/v1/employees/5b7f0c1e-2f1a-4d4e-9a51-0f5c2a7d9e11"},
		{http.MethodPut, "/api/v1/employees/5b7f0c1e-2f1a-4d4e-9a51-0f5c2a7d9e11"},
		{http.MethodDelete, "/api/v1/employees/5b7f0c1e-2f1a-4d4e-9a51-0f5c2a7d9e11"},
		{http.MethodGet, "/api/v1/employees/5b7f0c1e-2f1a-4d4e-9a51-0f5c2a7d9e11/pdf"},
		{http.MethodPost, "/api/v1/forms/employees"},
		{http.MethodGet, "/api/v1/options"},
		{http.MethodGet, "/api/v1/audit/events"},
	}
	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, strings.NewReader("{}"))
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.method+" "+route.path)
	}
}

func TestForgedTokenIsAnonymous(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", auth.Claims{UserID: "u1", RoleName: auth.RoleAdmin, SessionID: "s1"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	testRouter(nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsShortPasswordLocalized(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	testRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requestsTotal")
}
