package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"stayhub/internal/config"
	"stayhub/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds the image store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, logger *zerolog.Logger) (domain.ImageStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalImageStore(cfg.LocalDir, cfg.PublicURL, logger)
	case "s3":
		return NewS3ImageStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectName replaces the uploaded name with a UUID, keeping a sane extension.
func objectName(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	if len(ext) > 6 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}

func joinURL(base, name string) string {
	if base == "" {
		return name
	}
	return strings.TrimRight(base, "/") + "/" + name
}
