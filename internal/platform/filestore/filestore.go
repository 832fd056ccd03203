// Package filestore stores uploaded files and the artifacts derived from them
// under slash-separated keys, on local disk or in a GCS bucket.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// Object is an open stored file. Body also implements io.ReadSeeker when the
// backend supports random access (local disk).
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ModTime     time.Time
	ContentType string
}

type FileStore interface {
	// Save writes r under key, replacing any existing file, and returns the byte count.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (*Object, error)
	// Delete removes key. A missing file is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes key and everything stored beneath it.
	DeletePrefix(ctx context.Context, prefix string) error
	// PublicURL is the URL a client fetches key from.
	PublicURL(key string) string
	Backend() string
}

// New builds the store cfg.Mode selects.
func New(ctx context.Context, log *logger.Logger, cfg Config) (FileStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeLocal:
		return NewLocal(log, cfg.Root, cfg.URLPrefix)
	default:
		return NewGCS(ctx, log, cfg)
	}
}

// CleanKey validates a client- or caller-supplied key and returns its
// canonical form. Keys may not contain NUL bytes, backslashes or ".." segments.
func CleanKey(key string) (string, error) {
	if strings.ContainsRune(key, 0) || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	trimmed := strings.TrimLeft(key, "/")
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
		}
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidPath)
	}
	return cleaned, nil
}

// SanitizeName reduces an uploaded file name to a safe single path segment.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}

// ContentTypeForKey guesses a MIME type from the key's extension.
func ContentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	switch ext {
	case "":
		return ""
	case ".md":
		return "text/markdown; charset=utf-8"
	}
	return mime.TypeByExtension(ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
