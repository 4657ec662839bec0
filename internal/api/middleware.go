package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ctxUsername  = "username"
	ctxCategoria = "categoria"
	ctxLogger    = "logger"

	headerRequestID = "X-Request-Id"
)

// AuthMiddleware returns a Gin middleware for authentication
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token format")
			return
		}

		jwtSecret := c.MustGet("jwtSecret").([]byte)
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token claims")
			return
		}

		username, ok := claims["sub"].(string)
		if !ok || username == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid subject in token")
			return
		}
		categoria, _ := claims["categoria"].(string)

		c.Set(ctxUsername, username)
		c.Set(ctxCategoria, categoria)
		c.Next()
	}
}

// RequireCategory admits only tokens whose categoria matches. It must run
// after AuthMiddleware.
func RequireCategory(categoria string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxCategoria) != categoria {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequestID propagates or assigns X-Request-Id and stores a logger carrying it
func RequestID(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Set(ctxLogger, logger.With("request_id", id))
		c.Next()
	}
}

// RateLimiter reports whether one more hit under key is allowed
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// LoginRateLimit rejects clients over the limiter's budget with 429
func LoginRateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), "login:"+c.ClientIP()) {
			requestLogger(c).Warn("login rate limit exceeded", "client_ip", c.ClientIP())
			abortWithError(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts, retry later")
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
