package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/dualizor/dualizor/pkg/types"
)

// Config represents the complete configuration for the dispatch engine
type Config struct {
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Dispatch DispatchConfig `json:"dispatch" yaml:"dispatch"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" env:"DUALIZOR_LOG_LEVEL"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" env:"DUALIZOR_LOG_FORMAT"` // json, text
	Output string `json:"output" yaml:"output" env:"DUALIZOR_LOG_OUTPUT"` // stdout, stderr, file path
}

// DispatchConfig contains dispatch engine configuration
type DispatchConfig struct {
	EnableStartupValidation bool   `json:"enable_startup_validation" yaml:"enable_startup_validation" env:"DUALIZOR_STARTUP_VALIDATION"`
	StartupValidationMode   string `json:"startup_validation_mode" yaml:"startup_validation_mode" env:"DUALIZOR_STARTUP_VALIDATION_MODE"` // throw, log, ignore
	DiscoverHandlers        bool   `json:"discover_handlers" yaml:"discover_handlers" env:"DUALIZOR_DISCOVER_HANDLERS"`
	DiscoverBehaviors       bool   `json:"discover_behaviors" yaml:"discover_behaviors" env:"DUALIZOR_DISCOVER_BEHAVIORS"`
	DiscoverNotifications   bool   `json:"discover_notifications" yaml:"discover_notifications" env:"DUALIZOR_DISCOVER_NOTIFICATIONS"`
}

// MetricsConfig contains metrics collection configuration
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" env:"DUALIZOR_METRICS_ENABLED"`
	Namespace string `json:"namespace" yaml:"namespace" env:"DUALIZOR_METRICS_NAMESPACE"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Logging:  DefaultLoggingConfig(),
		Dispatch: DefaultDispatchConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// DefaultLoggingConfig returns the default logging configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

// DefaultDispatchConfig returns the default dispatch configuration
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		EnableStartupValidation: true,
		StartupValidationMode:   "throw",
		DiscoverHandlers:        true,
		DiscoverBehaviors:       true,
		DiscoverNotifications:   true,
	}
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "dualizor",
	}
}

// ApplyEnvironment overrides configuration values from environment
// variables. Variables take precedence over file values.
func (c *Config) ApplyEnvironment() error {
	if err := env.Parse(c); err != nil {
		return types.WrapError(types.ErrCodeInvalid, "failed to apply environment overrides", err)
	}
	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return types.NewError(types.ErrCodeInvalid, "invalid log level: "+c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return types.NewError(types.ErrCodeInvalid, "invalid log format: "+c.Logging.Format)
	}

	switch c.Dispatch.StartupValidationMode {
	case "throw", "log", "ignore":
	default:
		return types.NewError(types.ErrCodeInvalid,
			"invalid startup validation mode: "+c.Dispatch.StartupValidationMode)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return types.NewError(types.ErrCodeInvalid, "metrics namespace cannot be empty when metrics are enabled")
	}

	return nil
}
