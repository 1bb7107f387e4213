package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// LocalStorage handles saving images to the local filesystem.
type LocalStorage struct {
	basePath     string // Directory where files are written
	publicPrefix string // Prefix of the stored path, matching the static route (e.g. "images")
	maxSize      int64  // Upper bound for a single upload in bytes
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, publicPrefix string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath:     basePath,
		publicPrefix: strings.Trim(publicPrefix, "/"),
		maxSize:      maxSize,
	}, nil
}

// SaveImage validates the upload and writes it under a random name keeping the extension
func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := ls.CheckImage(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Generate a unique filename to prevent collisions
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(ls.basePath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	storedPath := path.Join(ls.publicPrefix, uniqueFilename)
	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", uniqueFilename).Str("stored_path", storedPath).Msg("Image saved successfully")
	return storedPath, nil
}

// DeleteFile removes a file from the storage directory.
// It accepts the path as stored on the record (e.g. images/<uuid>.png).
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	physicalPath, err := ls.physicalPath(filePath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// physicalPath maps a stored path onto the storage directory. Only the base name
// is used, so stored paths can never escape basePath.
func (ls *LocalStorage) physicalPath(filePath string) (string, error) {
	filename := filepath.Base(filepath.FromSlash(filePath))
	if filename == "" || filename == "." || filename == string(filepath.Separator) || filename == ".." || filename == ls.publicPrefix {
		return "", fmt.Errorf("invalid file path: %s", filePath)
	}
	return filepath.Join(ls.basePath, filename), nil
}
