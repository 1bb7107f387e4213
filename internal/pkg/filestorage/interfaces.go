package filestorage

import (
	"mime/multipart"
)

// ImageStorage defines the storage operations for uploaded profile images
type ImageStorage interface {
	// CheckImage rejects files that are too large or not PNG/JPEG
	CheckImage(fileHeader *multipart.FileHeader) error

	// SaveImage checks and stores an image, returning its public path (e.g. images/<uuid>.png)
	SaveImage(fileHeader *multipart.FileHeader) (string, error)

	// DeleteFile removes a stored file; deleting a missing file is not an error
	DeleteFile(filePath string) error
}
