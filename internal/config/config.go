// Package config provides configuration management for the no-cache server.
// It handles the optional YAML file carrying logging and MIME type settings.
// Listener address, port and serving root are fixed and never configurable.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the semver constraint a config file's version must satisfy.
const SupportedVersions = "^1"

// DefaultPath is the config file looked up in the working directory when no
// path is given.
const DefaultPath = "nocache.yaml"

// Sentinel errors for configuration validation
var (
	ErrVersionRequired    = errors.New("version is required")
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidExtension   = errors.New("mime type extension must start with a dot")
	ErrInvalidMediaType   = errors.New("invalid media type")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLogLevel maps a lowercase level name to its slog level.
func ParseLogLevel(name string) (slog.Level, bool) {
	level, ok := logLevels[name]
	return level, ok
}

// Config represents the top-level configuration structure.
type Config struct {
	Version   string            `yaml:"version"`
	Logging   LoggingConfig     `yaml:"logging"`
	MIMETypes map[string]string `yaml:"mime_types,omitempty"`
}

// LoggingConfig controls the diagnostic logger. Access log lines are not
// affected by it.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig loads and parses the configuration from a YAML file.
// Unknown keys are rejected, so a file that tries to set a port fails loudly.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var config Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration structure and required fields.
func (c *Config) Validate() error {
	if c.Version == "" {
		return ErrVersionRequired
	}
	if err := checkVersion(c.Version); err != nil {
		return err
	}
	if _, ok := ParseLogLevel(strings.ToLower(c.Logging.Level)); c.Logging.Level != "" && !ok {
		return fmt.Errorf("%w: %q (want debug, info, warn or error)", ErrInvalidLogLevel, c.Logging.Level)
	}

	for _, ext := range c.Extensions() {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
		if _, _, err := mime.ParseMediaType(c.MIMETypes[ext]); err != nil {
			return fmt.Errorf("%w for %s: %q: %v", ErrInvalidMediaType, ext, c.MIMETypes[ext], err)
		}
	}
	return nil
}

func checkVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", SupportedVersions, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, SupportedVersions)
	}
	return nil
}

// Extensions returns the configured MIME type extensions in sorted order.
func (c *Config) Extensions() []string {
	exts := make([]string, 0, len(c.MIMETypes))
	for ext := range c.MIMETypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LogLevel returns the configured log level, or "info" when unset.
func (c *Config) LogLevel() string {
	if c.Logging.Level == "" {
		return "info"
	}
	return strings.ToLower(c.Logging.Level)
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Logging: LoggingConfig{
			Level: "info",
		},
		MIMETypes: map[string]string{
			".wasm": "application/wasm",
			".mjs":  "text/javascript",
		},
	}
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filePath, err)
	}
	return nil
}
