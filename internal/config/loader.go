package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dualizor/dualizor/pkg/types"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} and ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(:-([^}]*))?\}`)

// interpolateEnvVars replaces environment variable placeholders with their values
// Supports ${VAR_NAME} and ${VAR_NAME:-default_value} syntax
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) >= 4 && parts[3] != "" {
			defaultValue = parts[3]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// validateFilePath checks if the file path is valid and has the correct extension
func validateFilePath(path string) error {
	if path == "" {
		return types.NewError(types.ErrCodeInvalid, "configuration file path cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return types.NewError(types.ErrCodeInvalid,
			"configuration file must have .yaml or .yml extension, got: "+ext)
	}

	return nil
}

// Load returns the default configuration with environment overrides applied
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.ApplyEnvironment(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile loads configuration from a YAML file on top of the defaults.
// Environment variables interpolate into the file content and then
// override the parsed values.
func LoadFile(path string) (*Config, error) {
	if err := validateFilePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeNotFound, "failed to read configuration file: "+path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, types.NewError(types.ErrCodeInvalid, "configuration file is empty: "+path)
	}

	interpolated := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(interpolated), cfg); err != nil {
		return nil, types.WrapError(types.ErrCodeInvalid, "invalid YAML syntax in "+path, err)
	}

	if err := cfg.ApplyEnvironment(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
