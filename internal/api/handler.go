package api

import (
	"io"
	"net/http"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/Tsitronov/frutti-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// Options tunes the HTTP layer
type Options struct {
	AdminCategory  string
	UploadMaxBytes int64
	// PhotoMaxCount and PhotoMaxBytes size the photo upload body: a full
	// batch of maximum-size files plus multipart framing.
	PhotoMaxCount int
	PhotoMaxBytes int64
	DebugErrors   bool
	// LoginLimiter is optional; nil disables login rate limiting
	LoginLimiter RateLimiter
	Logger       *utils.Logger
}

// Handler handles API requests
type Handler struct {
	svc  *service.Service
	opts Options
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service, opts Options) *Handler {
	if opts.AdminCategory == "" {
		opts.AdminCategory = "admin"
	}
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = 10 << 20
	}
	if opts.PhotoMaxCount <= 0 || opts.PhotoMaxBytes <= 0 {
		opts.PhotoMaxCount, opts.PhotoMaxBytes = 5, 5<<20
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewLoggerTo(io.Discard, "error", "text")
	}
	return &Handler{svc: svc, opts: opts}
}

const multipartOverhead = 1 << 20

// photoRequestLimit is the largest photo upload body accepted
func (h *Handler) photoRequestLimit() int64 {
	return int64(h.opts.PhotoMaxCount)*h.opts.PhotoMaxBytes + multipartOverhead
}

// SetupRoutes registers every route on router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(RequestID(h.opts.Logger))

	router.GET("/health", h.Health)

	router.POST("/upload", h.UploadSpreadsheet)
	router.GET("/data", h.GetSnapshot)

	api := router.Group("/api")
	{
		login := []gin.HandlerFunc{}
		if h.opts.LoginLimiter != nil {
			login = append(login, LoginRateLimit(h.opts.LoginLimiter))
		}
		api.POST("/login", append(login, h.Login)...)

		registerEntityRoutes(api, h, h.svc.Frutti)
		registerEntityRoutes(api, h, h.svc.Utenti)
		registerEntityRoutes(api, h, h.svc.Appunti)

		// Privileged routes
		privileged := api.Group("")
		privileged.Use(AuthMiddleware(), RequireCategory(h.opts.AdminCategory))
		{
			privileged.GET("/admin", h.ListCredentials)
			privileged.POST("/admin", h.CreateCredential)
			privileged.PUT("/admin/:id", h.UpdateCredential)
			privileged.DELETE("/admin/:id", h.DeleteCredential)

			privileged.POST("/upload-photos", h.UploadPhotos)
			privileged.GET("/photos", h.ListPhotos)
			privileged.DELETE("/delete-photo/:id", h.DeletePhoto)
		}
	}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
