package api

import (
	"errors"
	"net/http"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/gin-gonic/gin"
)

const spreadsheetField = "excelFile"

// UploadSpreadsheet replaces the stored snapshot with the rows of the uploaded workbook
func (h *Handler) UploadSpreadsheet(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.UploadMaxBytes)

	header, err := c.FormFile(spreadsheetField)
	if err != nil {
		h.respondUploadError(c, err, "no file uploaded in field "+spreadsheetField)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer file.Close()

	rows, err := h.svc.Snapshots.Import(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	requestLogger(c).Info("spreadsheet imported", "file", header.Filename, "rows", len(rows))
	c.JSON(http.StatusOK, models.SnapshotResponse{Success: true, Data: rows})
}

// GetSnapshot returns the latest imported rows, or success=false when none exist
func (h *Handler) GetSnapshot(c *gin.Context) {
	rows, found, err := h.svc.Snapshots.Latest(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SnapshotResponse{Success: found, Data: rows})
}

// respondUploadError distinguishes an oversized body from a missing form field
func (h *Handler) respondUploadError(c *gin.Context, err error, missing string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "upload exceeds the size limit", err)
		return
	}
	h.respondError(c, http.StatusBadRequest, "NO_FILE", missing, err)
}
