package filestorage

import (
	"mime/multipart"

	"github.com/yigit/facilityhub/internal/pkg/apperrors"
)

// Upload validation errors
var (
	ErrNoFile          = apperrors.NewValidationError("image", "image file is required")
	ErrFileTooLarge    = apperrors.NewValidationError("image", "image exceeds the maximum upload size")
	ErrUnsupportedType = apperrors.NewValidationError("image", "image must be a JPEG, PNG, GIF or WebP file")
)

// ImageStore saves uploaded images and hands back the URL they are served from.
type ImageStore interface {
	// SaveImage validates and stores an uploaded image under dir.
	SaveImage(fileHeader *multipart.FileHeader, dir string) (string, error)

	// DeleteImage removes an image previously returned by SaveImage. URLs the
	// store did not issue are ignored.
	DeleteImage(url string) error
}
