package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/google/uuid"
)

// LocalStorage writes uploads under root and serves them from urlPrefix.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) *LocalStorage {
	return &LocalStorage{root: root, urlPrefix: urlPrefix}
}

func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Save(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error) {
	if err := Validate(folder, filename, contentType, size); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("user-%s%s", uuid.New().String(), extension(filename))
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > MaxUploadSize {
		return "", ErrFileTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("commit upload: %w", err)
	}
	committed = true

	url := fmt.Sprintf("%s/%s/%s", s.urlPrefix, folder, name)
	logger.Debug("Upload stored on disk", map[string]interface{}{
		"url":   url,
		"bytes": n,
	})
	return url, nil
}
