package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
)

const (
	UploadsRoute = "/uploads"
	maxImageSize = 5 << 20
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ImageStore writes uploaded product images under one directory.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Save validates and stores the file, returning its public path.
func (s *ImageStore) Save(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", apperr.Validation("Image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return "", apperr.Validation(fmt.Sprintf("Unsupported image type: %s", extension))
	}
	if file.Size > maxImageSize {
		return "", apperr.Validation("Image file too large (max 5MB)")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := primitive.NewObjectID().Hex() + extension
	fullPath := filepath.Join(s.dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(UploadsRoute, filename), nil
}

func UploadImage(images *ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
				fail(c, apperr.Validation("image file is required"))
				return
			}
			fail(c, apperr.Validation("Invalid upload").Wrap(err))
			return
		}

		publicPath, err := images.Save(file)
		if err != nil {
			fail(c, err)
			return
		}
		c.String(http.StatusOK, publicPath)
	}
}
