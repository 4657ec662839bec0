package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/api"
	"github.com/Tsitronov/frutti-backend/internal/ratelimit"
	"github.com/Tsitronov/frutti-backend/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg, logger := app.cfg, app.logger

	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		created, err := app.svc.Admin.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminCategory)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			logger.Info("admin credential created", "username", cfg.Auth.AdminUsername)
		}
	}

	opts := api.Options{
		AdminCategory:  cfg.Auth.AdminCategory,
		UploadMaxBytes: cfg.Server.UploadMaxBytes,
		PhotoMaxCount:  cfg.Photos.MaxCount,
		PhotoMaxBytes:  cfg.Photos.MaxBytes,
		DebugErrors:    cfg.Server.DebugErrors,
		Logger:         logger,
	}
	if cfg.RateLimit.RedisAddr != "" {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, "frutti:ratelimit",
			cfg.RateLimit.LoginLimit, cfg.RateLimit.Window)
		if err != nil {
			return fmt.Errorf("login rate limiter: %w", err)
		}
		defer limiter.Close()
		opts.LoginLimiter = limiter
		logger.Info("login rate limit enabled", "limit", cfg.RateLimit.LoginLimit, "window", cfg.RateLimit.Window)
	}
	handler := api.NewHandler(app.svc, opts)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.Default()
	router.MaxMultipartMemory = cfg.Server.UploadMaxBytes

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Categoria", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	if fs, ok := app.blobs.(*storage.FileStore); ok {
		router.Static("/uploads", fs.Dir())
	}

	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "photo_storage", cfg.Photos.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
