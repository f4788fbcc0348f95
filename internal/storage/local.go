package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalImageStore keeps images in a directory on disk.
type LocalImageStore struct {
	dir       string
	publicURL string
	logger    *zerolog.Logger
}

func NewLocalImageStore(dir, publicURL string, logger *zerolog.Logger) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LocalImageStore{dir: dir, publicURL: publicURL, logger: logger}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	name := objectName(originalName)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close image file: %w", err)
	}

	s.logger.Debug().Str("image", name).Str("content_type", contentType).Msg("image stored")
	return name, nil
}

// Delete removes the named image. A missing file is not an error.
func (s *LocalImageStore) Delete(ctx context.Context, name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid image name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

func (s *LocalImageStore) URL(name string) string {
	return joinURL(s.publicURL, name)
}
