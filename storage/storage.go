// Package storage keeps uploaded files, either in a MinIO bucket or on local disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"

	"github.com/google/uuid"
)

// ObjectStore stores an object under key and returns the URL it is served from.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// New picks MinIO when an endpoint is configured, local disk otherwise.
func New(ctx context.Context, cfg *config.Configuration) (ObjectStore, error) {
	if cfg.Minio.Enabled() {
		store, err := NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return NewLocalStore(cfg.UploadPath, "/uploads"), nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename keeps letters, digits, dots, dashes and underscores.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	return base
}

// ObjectKey builds "<prefix>/<yyyy>/<mm>/<uuid>-<name>".
func ObjectKey(prefix, filename string, now time.Time) string {
	name := fmt.Sprintf("%s-%s", uuid.NewString(), SanitizeFilename(filename))
	return path.Join(strings.Trim(prefix, "/"), now.Format("2006"), now.Format("01"), name)
}
