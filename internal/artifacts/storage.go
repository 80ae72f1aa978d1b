package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists generated ticket files and returns a URL customers can
// fetch them from.
type Storage interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

type diskStorage struct {
	root      string
	publicURL string
}

// NewDiskStorage stores artifacts under root and serves them from publicURL.
func NewDiskStorage(root, publicURL string) (Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &diskStorage{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *diskStorage) Put(_ context.Context, name string, data []byte) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	path := filepath.Join(s.root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return s.publicURL + "/" + filepath.ToSlash(clean), nil
}
