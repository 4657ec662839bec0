package api_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tsitronov/frutti-backend/internal/api/testutils"
	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngImage  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	jpegImage = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
)

func photoFiles(n int) []testutils.FormFile {
	files := make([]testutils.FormFile, n)
	for i := range files {
		files[i] = testutils.FormFile{Field: "photos", Filename: "foto.png", Content: pngImage}
	}
	return files
}

func TestUploadListDeletePhotos(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	auth := testutils.AuthHeaders(testCtx.AdminJWT)

	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", []testutils.FormFile{
		{Field: "photos", Filename: "a.png", Content: pngImage},
		{Field: "photos", Filename: "b.jpg", Content: jpegImage},
	}, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded models.PhotosResponse
	testutils.DecodeJSON(t, w, &uploaded)
	require.Len(t, uploaded.Photos, 2)
	for _, p := range uploaded.Photos {
		assert.FileExists(t, filepath.Join(testCtx.Blobs.Dir(), p.Filename))
		assert.Equal(t, "/uploads/"+p.Filename, p.Path)
		require.NotNil(t, p.Categoria)
		assert.Equal(t, "admin", *p.Categoria, "categoria falls back to the token")
	}

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/photos", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var listed models.PhotosResponse
	testutils.DecodeJSON(t, w, &listed)
	require.Len(t, listed.Photos, 2)
	assert.Equal(t, uploaded.Photos[1].ID, listed.Photos[0].ID, "newest first")

	target := uploaded.Photos[0]
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, pathWithID("/api/delete-photo/", target.ID), nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	_, err := os.Stat(filepath.Join(testCtx.Blobs.Dir(), target.Filename))
	assert.True(t, os.IsNotExist(err))

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/photos", nil, auth)
	testutils.DecodeJSON(t, w, &listed)
	require.Len(t, listed.Photos, 1)
	assert.NotEqual(t, target.ID, listed.Photos[0].ID)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, pathWithID("/api/delete-photo/", target.ID), nil, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/delete-photo/abc", nil, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPhotos_CategoriaHeader(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.AdminJWT)
	headers["X-Categoria"] = "cucina"

	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(1), headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(1), testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/photos", nil, headers)
	var listed models.PhotosResponse
	testutils.DecodeJSON(t, w, &listed)
	require.Len(t, listed.Photos, 1)
	assert.Equal(t, "cucina", *listed.Photos[0].Categoria)
}

func TestUploadPhotos_Rejections(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	auth := testutils.AuthHeaders(testCtx.AdminJWT)

	// Non image rejects the whole batch
	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", []testutils.FormFile{
		{Field: "photos", Filename: "a.png", Content: pngImage},
		{Field: "photos", Filename: "doc.txt", Content: []byte("just some text")},
	}, auth)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "UNSUPPORTED_TYPE", resp.Code)

	// No files
	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", nil, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// More than five in one batch
	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(6), auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := os.ReadDir(testCtx.Blobs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Staff cannot upload
	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(1), testutils.AuthHeaders(testCtx.StaffJWT))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadPhotos_Capacity(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	auth := testutils.AuthHeaders(testCtx.AdminJWT)

	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(4), auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(2), auth)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "PHOTO_LIMIT", resp.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/photos", nil, auth)
	var listed models.PhotosResponse
	testutils.DecodeJSON(t, w, &listed)
	assert.Len(t, listed.Photos, 4, "no partial insert")

	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(1), auth)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadPhotos_FullBatchOfLargeFiles(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	auth := testutils.AuthHeaders(testCtx.AdminJWT)

	// five files just under the 1 MiB per-file cap exceed the 4 MiB general upload cap
	big := append(append([]byte{}, pngImage...), make([]byte, 900<<10)...)
	files := make([]testutils.FormFile, 5)
	for i := range files {
		files[i] = testutils.FormFile{Field: "photos", Filename: "grande.png", Content: big}
	}

	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", files, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded models.PhotosResponse
	testutils.DecodeJSON(t, w, &uploaded)
	assert.Len(t, uploaded.Photos, 5)
}

func TestUploadPhotos_BodyOverBatchCeiling(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	huge := append(append([]byte{}, pngImage...), make([]byte, 7<<20)...)
	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos",
		[]testutils.FormFile{{Field: "photos", Filename: "enorme.png", Content: huge}},
		testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "FILE_TOO_LARGE", resp.Code)
}

func TestUploadPhotos_CategoriaTooLong(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	headers := testutils.AuthHeaders(testCtx.AdminJWT)
	headers["X-Categoria"] = strings.Repeat("c", 65)
	w := testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(1), headers)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "INVALID_CATEGORIA", resp.Code)

	entries, err := os.ReadDir(testCtx.Blobs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	headers["X-Categoria"] = strings.Repeat("c", 64)
	w = testutils.PerformMultipart(t, testCtx.Router, "/api/upload-photos", photoFiles(1), headers)
	assert.Equal(t, http.StatusOK, w.Code)
}
