package filestore

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Mode Mode
	// Root is the upload directory for ModeLocal.
	Root string
	// URLPrefix is where the HTTP layer mounts the store, e.g. "/file".
	URLPrefix string

	Bucket        string
	EmulatorHost  string
	PublicBaseURL string
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingRoot         ConfigErrorCode = "missing_root"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidURL          ConfigErrorCode = "invalid_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid file store config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)", e.Mode, ModeLocal, ModeGCS, ModeGCSEmulator)
	case ConfigErrorMissingRoot:
		return "OBJECT_STORAGE_MODE=local requires UPLOAD_FOLDER"
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires GCS_BUCKET_NAME", e.Mode)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", ModeGCSEmulator)
	case ConfigErrorInvalidURL:
		return fmt.Sprintf("invalid URL %q; expected absolute URL like http://fake-gcs:4443", e.Value)
	default:
		return "invalid file store config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ParseMode normalizes a configured mode; "" means local.
func ParseMode(raw string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case "":
		return ModeLocal, nil
	case ModeLocal, ModeGCS, ModeGCSEmulator:
		return m, nil
	default:
		return "", &ConfigError{Code: ConfigErrorInvalidMode, Mode: raw}
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal:
		if strings.TrimSpace(c.Root) == "" {
			return &ConfigError{Code: ConfigErrorMissingRoot, Mode: string(c.Mode)}
		}
	case ModeGCS, ModeGCSEmulator:
		if strings.TrimSpace(c.Bucket) == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(c.Mode)}
		}
		if c.Mode == ModeGCSEmulator {
			if strings.TrimSpace(c.EmulatorHost) == "" {
				return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(c.Mode)}
			}
			if err := validateAbsURL(c.EmulatorHost); err != nil {
				return err
			}
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(c.Mode)}
	}
	if strings.TrimSpace(c.PublicBaseURL) != "" {
		return validateAbsURL(c.PublicBaseURL)
	}
	return nil
}

func validateAbsURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Code: ConfigErrorInvalidURL, Value: raw, Cause: err}
	}
	return nil
}
