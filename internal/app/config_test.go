package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kbdb "github.com/yungbote/infobase-backend/internal/data/db"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
)

// clearConfigEnv blanks the variables applyEnv reads; blank counts as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "CORS_ALLOWED_ORIGINS", "UPLOAD_FOLDER", "FILE_URL_PREFIX", "OBJECT_STORAGE_MODE",
		"GCS_BUCKET_NAME", "DB_DRIVER", "DATABASE_URL", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER",
		"POSTGRES_PASSWORD", "POSTGRES_NAME", "POSTGRES_SSLMODE", "SQLITE_PATH", "MAX_UPLOAD_BYTES",
		"SERVICE_NAME", "SERVICE_VERSION", "LOG_MODE", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_HEADERS", "OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SAMPLER_RATIO", "DEPLOY_ENV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := loadConfigFrom("")
	if err != nil {
		t.Fatalf("loadConfigFrom: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:5000" {
		t.Fatalf("addr=%q", cfg.Addr())
	}
	if cfg.Files.UploadFolder != "file" || cfg.Files.URLPrefix != "/file" {
		t.Fatalf("files=%+v", cfg.Files)
	}
	if len(cfg.HTTP.CORSAllowedOrigins) != 1 || cfg.HTTP.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("cors=%v", cfg.HTTP.CORSAllowedOrigins)
	}
	if got := cfg.DBConfig().DSN; got != "postgres://postgres:@localhost:5432/infobase?sslmode=disable" {
		t.Fatalf("dsn=%q", got)
	}
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
http:
  port: 8080
  cors_allowed_origins: ["http://localhost:3000"]
database:
  driver: sqlite
  sqlite_path: kb.db
files:
  upload_folder: /srv/uploads
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := loadConfigFrom(path)
	if err != nil {
		t.Fatalf("loadConfigFrom: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("source=%q", cfg.Source)
	}
	if cfg.HTTP.Port != 9090 {
		t.Fatalf("env should override yaml port, got %d", cfg.HTTP.Port)
	}
	if strings.Join(cfg.HTTP.CORSAllowedOrigins, "|") != "https://a.example|https://b.example" {
		t.Fatalf("cors=%v", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.HTTP.Host != "0.0.0.0" {
		t.Fatalf("default host lost: %q", cfg.HTTP.Host)
	}
	db := cfg.DBConfig()
	if db.Driver != kbdb.DriverSQLite || db.DSN != "kb.db" {
		t.Fatalf("db=%+v", db)
	}
	fc, err := cfg.FileStoreConfig()
	if err != nil || fc.Mode != filestore.ModeLocal || fc.Root != "/srv/uploads" {
		t.Fatalf("filestore=%+v err=%v", fc, err)
	}
}

func TestLoadConfigTracing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
service_name: kb-api
service_version: 1.4.0
tracing:
  enabled: true
  endpoint: collector:4318
  sample_ratio: 0.5
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	clearConfigEnv(t)
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer t, x-tenant=kb")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.2")

	cfg, err := loadConfigFrom(path)
	if err != nil {
		t.Fatalf("loadConfigFrom: %v", err)
	}
	tc := cfg.TracingConfig()
	if !tc.Enabled || tc.ServiceName != "kb-api" || tc.Version != "1.4.0" || tc.Endpoint != "collector:4318" {
		t.Fatalf("tracing=%+v", tc)
	}
	if !tc.Insecure || tc.SampleRatio != 0.2 || tc.Environment != cfg.LogMode {
		t.Fatalf("tracing=%+v", tc)
	}
	if tc.Headers["authorization"] != "Bearer t" || tc.Headers["x-tenant"] != "kb" {
		t.Fatalf("headers=%v", tc.Headers)
	}

	clearConfigEnv(t)
	def, err := loadConfigFrom("")
	if err != nil {
		t.Fatalf("loadConfigFrom defaults: %v", err)
	}
	if tc := def.TracingConfig(); tc.Enabled || tc.SampleRatio != 0.1 || tc.Headers != nil {
		t.Fatalf("default tracing=%+v", tc)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"bad storage mode", func(c *Config) { c.Files.StorageMode = "s3" }},
		{"gcs without bucket", func(c *Config) { c.Files.StorageMode = "gcs" }},
		{"negative upload cap", func(c *Config) { c.Files.MaxUploadBytes = -1 }},
		{"sample ratio above one", func(c *Config) { c.Tracing.SampleRatio = 1.5 }},
		{"negative sample ratio", func(c *Config) { c.Tracing.SampleRatio = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Files.StorageMode = "gcs"
	var cfgErr *filestore.ConfigError
	if err := cfg.Validate(); !errors.As(err, &cfgErr) || cfgErr.Code != filestore.ConfigErrorMissingBucket {
		t.Fatalf("want missing bucket ConfigError, got %v", err)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFrom(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
