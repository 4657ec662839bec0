package api

import (
	"net/http"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCredentials(c *gin.Context) {
	creds, err := h.svc.Admin.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

func (h *Handler) CreateCredential(c *gin.Context) {
	var req models.CreateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "username, password and categoria are required", err)
		return
	}

	cred, err := h.svc.Admin.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cred)
}

// UpdateCredential applies a partial update; a present password is rehashed
func (h *Handler) UpdateCredential(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}

	var req models.UpdateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err)
		return
	}

	cred, err := h.svc.Admin.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cred)
}

func (h *Handler) DeleteCredential(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}

	if err := h.svc.Admin.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
