package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/api"
	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository/repotest"
	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/Tsitronov/frutti-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	TestJWTSecret     = "test-secret-key"
	TestAdminUsername = "admin"
	TestAdminPassword = "adminpass"
	TestStaffUsername = "staff"
	TestStaffPassword = "staffpass"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository *repotest.MemoryRepository
	Frutti     *repotest.MemoryEntityStore[models.Frutto]
	Utenti     *repotest.MemoryEntityStore[models.Utente]
	Appunti    *repotest.MemoryEntityStore[models.Appunto]
	Blobs      *storage.FileStore
	Service    *service.Service
	JWTSecret  []byte
	AdminJWT   string
	StaffJWT   string
}

// Option adjusts the handler options before routes are built
type Option func(*api.Options)

// WithLoginLimiter enables login rate limiting
func WithLoginLimiter(l api.RateLimiter) Option {
	return func(o *api.Options) { o.LoginLimiter = l }
}

// WithDebugErrors echoes error details in responses
func WithDebugErrors() Option {
	return func(o *api.Options) { o.DebugErrors = true }
}

// SetupTestContext creates a new test context backed by in-memory repositories
// and a temporary photo directory. It seeds an admin and a staff credential.
func SetupTestContext(t *testing.T, opts ...Option) *TestContext {
	t.Helper()

	repo := repotest.NewMemoryRepository()
	frutti := repotest.NewMemoryEntityStore[models.Frutto]()
	utenti := repotest.NewMemoryEntityStore[models.Utente]()
	appunti := repotest.NewMemoryEntityStore[models.Appunto]()

	blobs, err := storage.NewFileStore(t.TempDir(), "/uploads")
	require.NoError(t, err, "Failed to create photo store")

	svc := service.NewService(repo, service.EntityStores{
		Frutti:  frutti,
		Utenti:  utenti,
		Appunti: appunti,
	}, blobs, service.Options{
		JWTSecret:     TestJWTSecret,
		TokenDuration: time.Hour,
		Photos:        service.PhotoLimits{MaxCount: 5, MaxBytes: 1 << 20},
	}, nil)

	handlerOpts := api.Options{
		AdminCategory:  "admin",
		UploadMaxBytes: 4 << 20,
		PhotoMaxCount:  5,
		PhotoMaxBytes:  1 << 20,
	}
	for _, opt := range opts {
		opt(&handlerOpts)
	}
	handler := api.NewHandler(svc, handlerOpts)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(TestJWTSecret))
		c.Next()
	})

	handler.SetupRoutes(router)

	ctx := context.Background()
	_, err = svc.Admin.Create(ctx, models.CreateCredentialRequest{
		Username: TestAdminUsername, Password: TestAdminPassword, Categoria: "admin",
	})
	require.NoError(t, err, "Failed to create admin credential")
	_, err = svc.Admin.Create(ctx, models.CreateCredentialRequest{
		Username: TestStaffUsername, Password: TestStaffPassword, Categoria: "staff",
	})
	require.NoError(t, err, "Failed to create staff credential")

	return &TestContext{
		Router:     router,
		Repository: repo,
		Frutti:     frutti,
		Utenti:     utenti,
		Appunti:    appunti,
		Blobs:      blobs,
		Service:    svc,
		JWTSecret:  []byte(TestJWTSecret),
		AdminJWT:   SignToken(t, TestAdminUsername, "admin", time.Hour),
		StaffJWT:   SignToken(t, TestStaffUsername, "staff", time.Hour),
	}
}

// SignToken issues a token the auth middleware accepts. A negative ttl yields an expired token.
func SignToken(t *testing.T, username, categoria string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       username,
		"categoria": categoria,
		"exp":       now.Add(ttl).Unix(),
		"iat":       now.Unix(),
	})

	signed, err := token.SignedString([]byte(TestJWTSecret))
	require.NoError(t, err, "Failed to generate JWT token")
	return signed
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// FormFile is one file part of a multipart request
type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

// PerformMultipart posts files as multipart/form-data
func PerformMultipart(t *testing.T, r http.Handler, path string, files []FormFile, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals the recorded body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
