package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	kbdb "github.com/yungbote/infobase-backend/internal/data/db"
	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/envutil"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
)

type HTTPConfig struct {
	Host                   string   `yaml:"host"`
	Port                   int      `yaml:"port"`
	CORSAllowedOrigins     []string `yaml:"cors_allowed_origins"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
}

type FilesConfig struct {
	UploadFolder   string `yaml:"upload_folder"`
	URLPrefix      string `yaml:"url_prefix"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	StorageMode    string `yaml:"storage_mode"`
	GCSBucket      string `yaml:"gcs_bucket"`
	EmulatorHost   string `yaml:"emulator_host"`
	PublicBaseURL  string `yaml:"public_base_url"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	URL            string `yaml:"url"`
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"sslmode"`
	SQLitePath     string `yaml:"sqlite_path"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// TracingConfig drives observability.InitTracing. Headers uses the OTLP
// "k1=v1,k2=v2" form.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Environment string  `yaml:"environment"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type Config struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	LogMode        string `yaml:"log_mode"`
	GinMode        string `yaml:"gin_mode"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`

	HTTP     HTTPConfig     `yaml:"http"`
	Files    FilesConfig    `yaml:"files"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Tracing  TracingConfig  `yaml:"tracing"`

	// Source is the YAML file the config was read from, if any.
	Source string `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "infobase",
		LogMode:     "development",
		GinMode:     "release",
		HTTP: HTTPConfig{
			Host:                   "0.0.0.0",
			Port:                   5000,
			CORSAllowedOrigins:     []string{"*"},
			ShutdownTimeoutSeconds: 15,
		},
		Files: FilesConfig{
			UploadFolder:   "file",
			URLPrefix:      "/file",
			MaxUploadBytes: 64 << 20,
			StorageMode:    string(filestore.ModeLocal),
		},
		Database: DatabaseConfig{
			Driver:         kbdb.DriverPostgres,
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Name:           "infobase",
			SSLMode:        "disable",
			SQLitePath:     "infobase.db",
			MaxOpenConns:   20,
			MaxIdleConns:   5,
			MigrateOnStart: true,
		},
		Redis:   RedisConfig{Channel: bus.DefaultChannel},
		Tracing: TracingConfig{SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, an optional YAML file and the environment.
// A .env file in the working directory is loaded first and never overrides
// variables that are already set.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	path := strings.TrimSpace(os.Getenv("KB_CONFIG_FILE"))
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return loadConfigFrom(path)
}

func loadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Source = path
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ServiceName = envutil.String("SERVICE_NAME", c.ServiceName)
	c.ServiceVersion = envutil.String("SERVICE_VERSION", c.ServiceVersion)
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.GinMode = envutil.String("GIN_MODE", c.GinMode)
	c.MetricsEnabled = envutil.Bool("METRICS_ENABLED", c.MetricsEnabled)

	c.HTTP.Host = envutil.String("HOST", c.HTTP.Host)
	c.HTTP.Port = envutil.Int("PORT", c.HTTP.Port)
	c.HTTP.CORSAllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", c.HTTP.CORSAllowedOrigins)
	c.HTTP.ShutdownTimeoutSeconds = envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", c.HTTP.ShutdownTimeoutSeconds)

	c.Files.UploadFolder = envutil.String("UPLOAD_FOLDER", c.Files.UploadFolder)
	c.Files.URLPrefix = envutil.String("FILE_URL_PREFIX", c.Files.URLPrefix)
	c.Files.MaxUploadBytes = envutil.Int64("MAX_UPLOAD_BYTES", c.Files.MaxUploadBytes)
	c.Files.StorageMode = envutil.String("OBJECT_STORAGE_MODE", c.Files.StorageMode)
	c.Files.GCSBucket = envutil.String("GCS_BUCKET_NAME", c.Files.GCSBucket)
	c.Files.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", c.Files.EmulatorHost)
	c.Files.PublicBaseURL = envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", c.Files.PublicBaseURL)

	c.Database.Driver = envutil.String("DB_DRIVER", c.Database.Driver)
	c.Database.URL = envutil.String("DATABASE_URL", c.Database.URL)
	c.Database.Host = envutil.String("POSTGRES_HOST", c.Database.Host)
	c.Database.Port = envutil.String("POSTGRES_PORT", c.Database.Port)
	c.Database.User = envutil.String("POSTGRES_USER", c.Database.User)
	c.Database.Password = envutil.String("POSTGRES_PASSWORD", c.Database.Password)
	c.Database.Name = envutil.String("POSTGRES_NAME", c.Database.Name)
	c.Database.SSLMode = envutil.String("POSTGRES_SSLMODE", c.Database.SSLMode)
	c.Database.SQLitePath = envutil.String("SQLITE_PATH", c.Database.SQLitePath)
	c.Database.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = envutil.Int("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MigrateOnStart = envutil.Bool("MIGRATE_ON_START", c.Database.MigrateOnStart)

	c.Redis.Addr = envutil.String("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Channel = envutil.String("REDIS_CHANNEL", c.Redis.Channel)

	c.Tracing.Enabled = envutil.Bool("OTEL_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", c.Tracing.Headers)
	c.Tracing.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Tracing.Insecure)
	c.Tracing.SampleRatio = envutil.Float64("OTEL_SAMPLER_RATIO", c.Tracing.SampleRatio)
	c.Tracing.Environment = envutil.String("DEPLOY_ENV", c.Tracing.Environment)
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.HTTP.Port))
	}
	switch c.Database.Driver {
	case kbdb.DriverPostgres, kbdb.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.Files.MaxUploadBytes < 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must not be negative"))
	}
	if _, err := c.FileStoreConfig(); err != nil {
		errs = append(errs, err)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLER_RATIO %v outside [0,1]", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return c.HTTP.Host + ":" + strconv.Itoa(c.HTTP.Port)
}

func (c Config) ShutdownTimeout() time.Duration {
	if c.HTTP.ShutdownTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HTTP.ShutdownTimeoutSeconds) * time.Second
}

func (c Config) DBConfig() kbdb.Config {
	dsn := c.Database.URL
	switch c.Database.Driver {
	case kbdb.DriverSQLite:
		if dsn == "" {
			dsn = c.Database.SQLitePath
		}
	default:
		if dsn == "" {
			dsn = kbdb.PostgresDSN(c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
		}
	}
	return kbdb.Config{
		Driver:       c.Database.Driver,
		DSN:          dsn,
		MaxOpenConns: c.Database.MaxOpenConns,
		MaxIdleConns: c.Database.MaxIdleConns,
	}
}

func (c Config) TracingConfig() observability.TracingConfig {
	env := c.Tracing.Environment
	if env == "" {
		env = c.LogMode
	}
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.ServiceName,
		Environment: env,
		Version:     c.ServiceVersion,
		Endpoint:    strings.TrimSpace(c.Tracing.Endpoint),
		Headers:     observability.ParseHeaders(c.Tracing.Headers),
		Insecure:    c.Tracing.Insecure,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

func (c Config) FileStoreConfig() (filestore.Config, error) {
	mode, err := filestore.ParseMode(c.Files.StorageMode)
	if err != nil {
		return filestore.Config{}, err
	}
	fc := filestore.Config{
		Mode:          mode,
		Root:          c.Files.UploadFolder,
		URLPrefix:     c.Files.URLPrefix,
		Bucket:        c.Files.GCSBucket,
		EmulatorHost:  c.Files.EmulatorHost,
		PublicBaseURL: c.Files.PublicBaseURL,
	}
	if err := fc.Validate(); err != nil {
		return filestore.Config{}, err
	}
	return fc, nil
}
