package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/middleware"
)

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func uploadEngine(dir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	r.POST("/api/upload", UploadImage(NewImageStore(dir)))
	return r
}

func TestUploadImageSavesFile(t *testing.T) {
	dir := t.TempDir()
	r := uploadEngine(dir)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "Photo.PNG", []byte("png-bytes")))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	publicPath := w.Body.String()
	assert.True(t, strings.HasPrefix(publicPath, UploadsRoute+"/"))
	assert.True(t, strings.HasSuffix(publicPath, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(publicPath)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(saved))
}

func TestUploadImageRejectsExtension(t *testing.T) {
	dir := t.TempDir()
	r := uploadEngine(dir)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "notes.txt", []byte("hello")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported image type: .txt")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadImageRequiresFile(t *testing.T) {
	r := uploadEngine(t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image file is required")
}

func TestUploadRouteIsAdminOnly(t *testing.T) {
	s := newTestServer(t, RouterOptions{UploadDir: t.TempDir()})
	_, token := s.register(t, "Alice", "a@x.com")

	req := uploadRequest(t, "photo.jpg", []byte("jpg"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = uploadRequest(t, "photo.jpg", []byte("jpg"))
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	served := httptest.NewRecorder()
	s.router.ServeHTTP(served, httptest.NewRequest(http.MethodGet, w.Body.String(), nil))
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, "jpg", served.Body.String())
}

func TestClientAppFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.js"), []byte("console.log(1)"), 0o644))

	s := newTestServer(t, RouterOptions{Production: true, StaticDir: dir})
	gin.SetMode(gin.TestMode)

	w := s.do(http.MethodGet, "/main.js", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = s.do(http.MethodGet, "/order/123", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")

	w = s.do(http.MethodGet, "/api/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
