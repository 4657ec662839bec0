package api

import (
	"errors"
	"net/http"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "username and password are required", err)
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.respondError(c, http.StatusUnauthorized, "USER_NOT_FOUND", "user not found", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
		default:
			h.handleServiceError(c, err)
		}
		return
	}

	requestLogger(c).Info("login succeeded", "username", req.Username, "categoria", resp.Categoria)
	c.JSON(http.StatusOK, resp)
}
