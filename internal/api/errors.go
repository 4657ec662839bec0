package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/Tsitronov/frutti-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

var errInvalidID = errors.New("id must be a positive integer")

// parseID reads the :id path parameter
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func requestLogger(c *gin.Context) *utils.Logger {
	if l, ok := c.Get(ctxLogger); ok {
		if logger, ok := l.(*utils.Logger); ok {
			return logger
		}
	}
	return utils.NewLoggerTo(io.Discard, "error", "text")
}

// respondError writes the error body. Details are echoed only with DebugErrors on.
func (h *Handler) respondError(c *gin.Context, status int, code, message string, err error) {
	resp := models.ErrorResponse{Error: message, Code: code}
	if err != nil && h.opts.DebugErrors {
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

// handleServiceError maps service and repository errors onto HTTP statuses
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.respondError(c, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, repository.ErrDuplicate):
		h.respondError(c, http.StatusConflict, "CONFLICT", "username already exists", nil)
	case errors.Is(err, service.ErrInvalidInput):
		h.respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request", err)
	case errors.Is(err, service.ErrEmptyFile):
		h.respondError(c, http.StatusBadRequest, "EMPTY_FILE", "the uploaded file contains no data rows", nil)
	case errors.Is(err, service.ErrInvalidSpreadsheet):
		// always echoed so the uploader can fix the workbook
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid spreadsheet",
			Code:    "INVALID_SPREADSHEET",
			Details: err.Error(),
		})
	case errors.Is(err, service.ErrCorruptSnapshot):
		requestLogger(c).Error("stored snapshot cannot be decoded", "error", err)
		h.respondError(c, http.StatusInternalServerError, "CORRUPT_SNAPSHOT", "stored data is corrupt", err)
	case errors.Is(err, service.ErrNoFiles):
		h.respondError(c, http.StatusBadRequest, "NO_FILES", "no files uploaded", nil)
	case errors.Is(err, service.ErrTooManyFiles):
		h.respondError(c, http.StatusBadRequest, "TOO_MANY_FILES", "too many files in one upload", nil)
	case errors.Is(err, service.ErrUnsupportedType):
		h.respondError(c, http.StatusBadRequest, "UNSUPPORTED_TYPE", "only jpeg and png images are allowed", err)
	case errors.Is(err, service.ErrFileTooLarge):
		h.respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "file too large", err)
	case errors.Is(err, service.ErrTooManyPhotos):
		h.respondError(c, http.StatusBadRequest, "PHOTO_LIMIT", "photo limit reached", nil)
	default:
		requestLogger(c).Error("request failed", "path", c.FullPath(), "error", err)
		h.respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
	}
}
