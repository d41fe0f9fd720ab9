// Package config loads mailvet settings from viper: config file, MAILVET_ environment variables
// and bound command-line flags, in viper's usual precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. MAILVET_BATCH_SIZE.
const EnvPrefix = "MAILVET"

// Viper keys.
const (
	KeyBatchSize       = "batch.size"
	KeyBatchPause      = "batch.pause"
	KeyDetectSample    = "detect.sample_size"
	KeyMaxFileSize     = "table.max_file_size"
	KeyExportDir       = "export.dir"
	KeyExportPrefix    = "export.prefix"
	KeyServerAddr      = "server.addr"
	KeyServerTimeout   = "server.timeout"
	KeyServerTLS       = "server.tls"
	KeyCertDir         = "server.cert_dir"
	KeyLoggingLevel    = "logging.level"
	KeyLoggingFormat   = "logging.format"
	defaultMaxFileSize = 10 * 1024 * 1024
)

// Config is the resolved configuration.
type Config struct {
	ExportDir     string
	ExportPrefix  string
	ServerAddr    string
	CertDir       string
	LogLevel      string
	LogFormat     string
	BatchPause    time.Duration
	ServerTimeout time.Duration
	MaxFileSize   int64
	BatchSize     int
	SampleSize    int
	ServerTLS     bool
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBatchSize, 10)
	v.SetDefault(KeyBatchPause, 10*time.Millisecond)
	v.SetDefault(KeyDetectSample, 50)
	v.SetDefault(KeyMaxFileSize, defaultMaxFileSize)
	v.SetDefault(KeyExportDir, ".")
	v.SetDefault(KeyExportPrefix, "email_validation")
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyServerTimeout, 30*time.Second)
	v.SetDefault(KeyServerTLS, false)
	v.SetDefault(KeyCertDir, filepath.Join(DefaultDir(), "certs"))
	v.SetDefault(KeyLoggingLevel, "info")
	v.SetDefault(KeyLoggingFormat, "console")
}

// ConfigureEnv makes v read MAILVET_ variables, mapping "." in keys to "_".
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// DefaultDir is the directory searched for config.yaml.
func DefaultDir() string {
	return ExpandPath("~/.config/mailvet")
}

// Load resolves the configuration held by the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BatchSize:     v.GetInt(KeyBatchSize),
		BatchPause:    v.GetDuration(KeyBatchPause),
		SampleSize:    v.GetInt(KeyDetectSample),
		MaxFileSize:   v.GetInt64(KeyMaxFileSize),
		ExportDir:     ExpandPath(v.GetString(KeyExportDir)),
		ExportPrefix:  v.GetString(KeyExportPrefix),
		ServerAddr:    v.GetString(KeyServerAddr),
		ServerTimeout: v.GetDuration(KeyServerTimeout),
		ServerTLS:     v.GetBool(KeyServerTLS),
		CertDir:       ExpandPath(v.GetString(KeyCertDir)),
		LogLevel:      v.GetString(KeyLoggingLevel),
		LogFormat:     v.GetString(KeyLoggingFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyBatchSize, c.BatchSize)
	case c.BatchPause < 0:
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyBatchPause)
	case c.SampleSize <= 0:
		return fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyDetectSample, c.SampleSize)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyMaxFileSize)
	case c.ExportPrefix == "":
		return fmt.Errorf("%w: %s must not be empty", common.ErrInvalidConfig, KeyExportPrefix)
	case c.ServerAddr == "":
		return fmt.Errorf("%w: %s must not be empty", common.ErrInvalidConfig, KeyServerAddr)
	case c.ServerTLS && c.CertDir == "":
		return fmt.Errorf("%w: %s must be set when %s is enabled", common.ErrInvalidConfig, KeyCertDir, KeyServerTLS)
	}

	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", common.ErrInvalidConfig, c.LogFormat)
	}

	return nil
}

// ExpandPath expands a leading ~ and any $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
