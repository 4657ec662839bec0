package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	photosField     = "photos"
	headerCategoria = "X-Categoria"

	// matches photos.categoria VARCHAR(64)
	maxCategoriaLen = 64
)

// UploadPhotos stores every image of the "photos" field or none of them
func (h *Handler) UploadPhotos(c *gin.Context) {
	categoria := h.photoCategoria(c)
	if utf8.RuneCountInString(categoria) > maxCategoriaLen {
		h.respondError(c, http.StatusBadRequest, "INVALID_CATEGORIA",
			fmt.Sprintf("categoria must be at most %d characters", maxCategoriaLen), nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.photoRequestLimit())

	form, err := c.MultipartForm()
	if err != nil {
		h.respondUploadError(c, err, "no files uploaded in field "+photosField)
		return
	}
	defer form.RemoveAll()

	headers := form.File[photosField]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			h.handleServiceError(c, err)
			return
		}
		files = append(files, service.UploadFile{Name: fh.Filename, Size: fh.Size, Content: f})
	}
	defer closeAll(files)

	photos, err := h.svc.Photos.Upload(c.Request.Context(), files, categoria)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PhotosResponse{Photos: photos})
}

// ListPhotos returns photos newest first, scoped by X-Categoria when present
func (h *Handler) ListPhotos(c *gin.Context) {
	photos, err := h.svc.Photos.List(c.Request.Context(), c.GetHeader(headerCategoria))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PhotosResponse{Photos: photos})
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return
	}

	if err := h.svc.Photos.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// photoCategoria prefers the X-Categoria header over the token's categoria
func (h *Handler) photoCategoria(c *gin.Context) string {
	if cat := c.GetHeader(headerCategoria); cat != "" {
		return cat
	}
	return c.GetString(ctxCategoria)
}

func closeAll(files []service.UploadFile) {
	for _, f := range files {
		if closer, ok := f.Content.(multipart.File); ok {
			closer.Close()
		}
	}
}
