package filestorage

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// FileField is the multipart field that carries the profile image
const FileField = "file"

// allowedImageTypes are the declared content types accepted for upload
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// allowedExtensions are the file name extensions accepted for upload
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// CheckImage validates size, declared content type and sniffed content of an upload
func (ls *LocalStorage) CheckImage(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return apperrors.ErrImageRequired
	}

	if ls.maxSize > 0 && fileHeader.Size > ls.maxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", apperrors.ErrImageTooLarge, fileHeader.Size, ls.maxSize)
	}

	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); !allowedExtensions[ext] {
		return fmt.Errorf("%w: file name %q", apperrors.ErrUnsupportedImageType, fileHeader.Filename)
	}

	declared, _, err := mime.ParseMediaType(fileHeader.Header.Get("Content-Type"))
	if err != nil || !allowedImageTypes[strings.ToLower(declared)] {
		return fmt.Errorf("%w: declared type %q", apperrors.ErrUnsupportedImageType, fileHeader.Header.Get("Content-Type"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return fmt.Errorf("failed to inspect uploaded file: %w", err)
	}
	if !detected.Is("image/png") && !detected.Is("image/jpeg") {
		return fmt.Errorf("%w: content is %s", apperrors.ErrUnsupportedImageType, detected.String())
	}

	return nil
}
