package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure FilePublisher implements model.Publisher.
var _ model.Publisher = (*FilePublisher)(nil)

// FilePublisher writes objects below a local directory. Used for dry runs.
type FilePublisher struct {
	root string
}

func NewFilePublisher(root string) *FilePublisher {
	return &FilePublisher{root: root}
}

// Publish writes body to root/key and returns a file:// URL.
func (p *FilePublisher) Publish(_ context.Context, key string, body []byte, _ string) (string, error) {
	dest := filepath.Join(p.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = dest
	}
	return "file://" + filepath.ToSlash(abs), nil
}
