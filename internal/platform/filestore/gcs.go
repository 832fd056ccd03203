package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type gcsStore struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	mode          Mode
	emulatorHost  string
	publicBaseURL string
}

// NewGCS stores files in cfg.Bucket, against real GCS or a fake-gcs emulator.
func NewGCS(ctx context.Context, log *logger.Logger, cfg Config) (FileStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	s := newGCSStore(log, client, cfg)
	s.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"emulator_host", s.emulatorHost,
		"public_base_url", s.publicBaseURL,
	)
	return s, nil
}

func newGCSStore(log *logger.Logger, client *storage.Client, cfg Config) *gcsStore {
	return &gcsStore{
		log:           log.With("service", "GCSFileStore"),
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		mode:          cfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
}

func newStorageClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	switch cfg.Mode {
	case ModeGCS:
		opts := clientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *gcsStore) Backend() string { return string(s.mode) }

func (s *gcsStore) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	key, err := CleanKey(key)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if ct := ContentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("write %q to GCS: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("close GCS writer for %q: %w", key, err)
	}
	s.log.Debug("Stored object", "bucket", s.bucket, "key", key, "bytes", n)
	return n, nil
}

func (s *gcsStore) Open(ctx context.Context, key string) (*Object, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %q from GCS: %w", key, err)
	}
	ct := rc.Attrs.ContentType
	if ct == "" {
		ct = ContentTypeForKey(key)
	}
	return &Object{
		Body:        rc,
		Size:        rc.Attrs.Size,
		ModTime:     rc.Attrs.LastModified,
		ContentType: ct,
	}, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %q from GCS: %w", key, err)
	}
	return nil
}

func (s *gcsStore) DeletePrefix(ctx context.Context, prefix string) error {
	prefix, err := CleanKey(prefix)
	if err != nil {
		return err
	}
	// The object itself, then everything under prefix/.
	if err := s.Delete(ctx, prefix); err != nil {
		return err
	}
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix + "/"})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("list %q: %w", prefix, err)
		}
		if err := s.Delete(ctx, attrs.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s *gcsStore) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if s.mode == ModeGCSEmulator {
		base := s.publicBaseURL
		if base == "" {
			base = s.emulatorHost
		}
		if base != "" {
			return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(s.bucket), url.PathEscape(key))
		}
	}
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}
