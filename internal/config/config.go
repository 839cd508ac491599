// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// AppName and AppVersion identify the service in probes and logs.
	AppName    string `koanf:"app_name"`
	AppVersion string `koanf:"app_version"`

	// Debug enables debug logging regardless of LogLevel.
	Debug bool `koanf:"debug"`

	// APIPrefix is the path prefix for business routes, e.g. "/api/v1".
	APIPrefix string `koanf:"api_prefix"`

	// Addr configures the HTTP listen address, e.g. "0.0.0.0:8000".
	Addr string `koanf:"addr"`

	// ModelPath is the directory holding model artifacts; ModelName is the
	// artifact file inside it.
	ModelPath string `koanf:"model_path"`
	ModelName string `koanf:"model_name"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects json or text output.
	LogFormat string `koanf:"log_format"`

	// EnableMetrics exposes /metrics and turns on Prometheus recording.
	EnableMetrics bool `koanf:"enable_metrics"`

	// BatchWorkers bounds concurrent scoring within one batch request.
	BatchWorkers int `koanf:"batch_workers"`

	// MaxBatchSize caps the number of items in one batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// Confidence is reported on every assessment.
	Confidence float64 `koanf:"confidence"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		AppName:       "HealthWatch AI - Inference API",
		AppVersion:    "0.1.0",
		Debug:         false,
		APIPrefix:     "/api/v1",
		Addr:          "0.0.0.0:8000",
		ModelPath:     "/models",
		ModelName:     "health_risk_model.pkl",
		LogLevel:      "info",
		LogFormat:     "json",
		EnableMetrics: true,
		BatchWorkers:  runtime.NumCPU(),
		MaxBatchSize:  100,
		Confidence:    0.85,
	}
}

// ModelFile returns the full path of the model artifact.
func (c *Config) ModelFile() string {
	return filepath.Join(c.ModelPath, c.ModelName)
}

// EffectiveLogLevel returns "debug" when Debug is set, LogLevel otherwise.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr", "must not be empty")
	case !strings.HasPrefix(c.APIPrefix, "/"):
		return invalid("api_prefix", "must start with '/'")
	case strings.HasSuffix(c.APIPrefix, "/") && c.APIPrefix != "/":
		return invalid("api_prefix", "must not end with '/'")
	case c.BatchWorkers <= 0:
		return invalid("batch_workers", "must be positive")
	case c.MaxBatchSize <= 0:
		return invalid("max_batch_size", "must be positive")
	case c.Confidence < 0 || c.Confidence > 1:
		return invalid("confidence", "must be within [0, 1]")
	case c.LogFormat != "json" && c.LogFormat != "text":
		return invalid("log_format", "must be json or text")
	}
	return nil
}
