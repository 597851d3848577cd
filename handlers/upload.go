package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

const photoField = "photo"

// ImageStore persists uploaded images.
type ImageStore interface {
	SaveImage(folder string, fh *multipart.FileHeader) (string, error)
	Delete(folder, name string) error
}

// optionalPhoto returns the uploaded photo header, or nil when none was sent.
func optionalPhoto(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return fh, err
}
