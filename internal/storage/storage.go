package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxUploadSize caps every uploaded image.
const MaxUploadSize int64 = 5 * 1024 * 1024

var (
	ErrInvalidFileType = errors.New("only jpeg, jpg, png and gif images are allowed")
	ErrFileTooLarge    = errors.New("file exceeds the 5 MiB limit")
	ErrInvalidFolder   = errors.New("invalid storage folder")
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

var folderPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Storage persists uploaded images and returns the URL they are served from.
// Save either stores the whole object or nothing.
type Storage interface {
	Save(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error)
}

// Validate checks the declared metadata of an upload before any bytes are written.
func Validate(folder, filename, contentType string, size int64) error {
	if !folderPattern.MatchString(folder) {
		return fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] || !allowedContentTypes[strings.ToLower(contentType)] {
		return ErrInvalidFileType
	}
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

// readAll reads at most MaxUploadSize bytes, failing when the body is longer
// than the cap regardless of the declared size.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}
