package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/api/testutils"
	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful login
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/login",
		models.LoginRequest{Username: testutils.TestAdminUsername, Password: testutils.TestAdminPassword},
		nil,
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "admin", resp.Categoria)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, w.Body.String(), "$2a$", "hash must never be returned")

	// The issued token opens privileged routes
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin", nil, testutils.AuthHeaders(resp.Token))
	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 2: Invalid credentials
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/login",
		models.LoginRequest{Username: testutils.TestAdminUsername, Password: "wrongpassword"},
		nil,
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: User not found
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/login",
		models.LoginRequest{Username: "nonexistent", Password: "testpassword"},
		nil,
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 4: Username is case sensitive
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/login",
		models.LoginRequest{Username: "ADMIN", Password: testutils.TestAdminPassword},
		nil,
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 5: Missing fields
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/login", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_StaffCategoria(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/login",
		models.LoginRequest{Username: testutils.TestStaffUsername, Password: testutils.TestStaffPassword},
		nil,
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "staff", resp.Categoria)
}

type stubLimiter struct {
	allowed int
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) bool {
	s.keys = append(s.keys, key)
	if s.allowed <= 0 {
		return false
	}
	s.allowed--
	return true
}

func TestLogin_RateLimited(t *testing.T) {
	limiter := &stubLimiter{allowed: 1}
	testCtx := testutils.SetupTestContext(t, testutils.WithLoginLimiter(limiter))
	req := models.LoginRequest{Username: testutils.TestAdminUsername, Password: testutils.TestAdminPassword}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/login", req, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/login", req, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	require.Len(t, limiter.keys, 2)
	assert.Contains(t, limiter.keys[0], "login:")
}

func TestAuthMiddleware(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no token", nil, http.StatusUnauthorized},
		{"malformed header", map[string]string{"Authorization": "Token abc"}, http.StatusUnauthorized},
		{"garbage token", testutils.AuthHeaders("not.a.jwt"), http.StatusUnauthorized},
		{"expired token", testutils.AuthHeaders(testutils.SignToken(t, "admin", "admin", -time.Minute)), http.StatusUnauthorized},
		{"wrong categoria", testutils.AuthHeaders(testCtx.StaffJWT), http.StatusForbidden},
		{"admin", testutils.AuthHeaders(testCtx.AdminJWT), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/photos", nil, tt.headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHealthAndRequestID(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var body map[string]string
	testutils.DecodeJSON(t, w, &body)
	assert.Equal(t, "ok", body["status"])

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/health", nil, map[string]string{"X-Request-Id": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestLogin_RedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(mr.Addr(), "", "test", 2, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close() })

	testCtx := testutils.SetupTestContext(t, testutils.WithLoginLimiter(limiter))
	req := models.LoginRequest{Username: testutils.TestAdminUsername, Password: "wrongpassword"}

	for i := 0; i < 2; i++ {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/login", req, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/login", req, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Redis down fails closed
	mr.Close()
	other := testutils.SetupTestContext(t, testutils.WithLoginLimiter(limiter))
	w = testutils.PerformRequest(other.Router, http.MethodPost, "/api/login",
		models.LoginRequest{Username: testutils.TestAdminUsername, Password: testutils.TestAdminPassword}, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
