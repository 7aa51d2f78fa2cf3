package utils

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ImageStore persists uploaded and annotated images and returns the URL
// they can be fetched from.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalStore writes images into a directory served under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path.Join(s.urlPrefix, base), nil
}
