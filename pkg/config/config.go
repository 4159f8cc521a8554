package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MinTimeLimit is the smallest accepted wall-clock limit in seconds
	MinTimeLimit = 0.1
	// MinMemoryLimit is the smallest accepted address-space limit in MB
	MinMemoryLimit = 32
)

// Config holds all service configuration. It is built once at startup and
// injected into components; nothing mutates it afterwards.
type Config struct {
	// Service identity
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`

	// Server settings
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`

	// Execution limits
	MaxTimeLimit       float64 `yaml:"max_time_limit"`     // seconds
	DefaultTimeLimit   float64 `yaml:"default_time_limit"` // seconds
	MaxMemoryLimit     int     `yaml:"max_memory_limit"`   // MB
	DefaultMemoryLimit int     `yaml:"default_memory_limit"`

	// File limits (bytes unless noted)
	MaxFileSize       int `yaml:"max_file_size"`
	MaxTotalFilesSize int `yaml:"max_total_files_size"`
	MaxFilesCount     int `yaml:"max_files_count"`

	// Output limits (bytes)
	MaxOutputSize int `yaml:"max_output_size"`
	MaxStderrSize int `yaml:"max_stderr_size"`

	// Runtime settings
	PackagesDir string `yaml:"packages_dir"`

	// Sandbox settings. UseBubblewrap=false forces direct mode even when
	// bubblewrap is installed and working.
	UseBubblewrap bool `yaml:"use_bubblewrap"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns the configuration defaults
func Default() *Config {
	return &Config{
		ServiceName:        "Kiln Code Execution Engine",
		ServiceVersion:     "2.0.0",
		Host:               "0.0.0.0",
		Port:               8000,
		Debug:              false,
		MaxTimeLimit:       300.0,
		DefaultTimeLimit:   30.0,
		MaxMemoryLimit:     2048,
		DefaultMemoryLimit: 128,
		MaxFileSize:        1024 * 1024,
		MaxTotalFilesSize:  5 * 1024 * 1024,
		MaxFilesCount:      10,
		MaxOutputSize:      256 * 1024,
		MaxStderrSize:      256 * 1024,
		PackagesDir:        "/packages",
		UseBubblewrap:      true,
		LogLevel:           "info",
		LogJSON:            false,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from KILN_* environment variables
func (c *Config) applyEnv() {
	envStr(&c.Host, "KILN_HOST")
	envInt(&c.Port, "KILN_PORT")
	envBool(&c.Debug, "KILN_DEBUG")
	envFloat(&c.MaxTimeLimit, "KILN_MAX_TIME_LIMIT")
	envFloat(&c.DefaultTimeLimit, "KILN_DEFAULT_TIME_LIMIT")
	envInt(&c.MaxMemoryLimit, "KILN_MAX_MEMORY_LIMIT")
	envInt(&c.DefaultMemoryLimit, "KILN_DEFAULT_MEMORY_LIMIT")
	envInt(&c.MaxFileSize, "KILN_MAX_FILE_SIZE")
	envInt(&c.MaxTotalFilesSize, "KILN_MAX_TOTAL_FILES_SIZE")
	envInt(&c.MaxFilesCount, "KILN_MAX_FILES_COUNT")
	envInt(&c.MaxOutputSize, "KILN_MAX_OUTPUT_SIZE")
	envInt(&c.MaxStderrSize, "KILN_MAX_STDERR_SIZE")
	envStr(&c.PackagesDir, "KILN_PACKAGES_DIR")
	envBool(&c.UseBubblewrap, "KILN_USE_BUBBLEWRAP")
	envStr(&c.LogLevel, "KILN_LOG_LEVEL")
	envBool(&c.LogJSON, "KILN_LOG_JSON")
}

// Validate checks the configuration for inconsistent limits
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxTimeLimit < MinTimeLimit {
		return fmt.Errorf("max_time_limit must be at least %v seconds", MinTimeLimit)
	}
	if c.DefaultTimeLimit < MinTimeLimit || c.DefaultTimeLimit > c.MaxTimeLimit {
		return fmt.Errorf("default_time_limit %v outside [%v, %v]",
			c.DefaultTimeLimit, MinTimeLimit, c.MaxTimeLimit)
	}
	if c.MaxMemoryLimit < MinMemoryLimit {
		return fmt.Errorf("max_memory_limit must be at least %d MB", MinMemoryLimit)
	}
	if c.DefaultMemoryLimit < MinMemoryLimit || c.DefaultMemoryLimit > c.MaxMemoryLimit {
		return fmt.Errorf("default_memory_limit %d outside [%d, %d]",
			c.DefaultMemoryLimit, MinMemoryLimit, c.MaxMemoryLimit)
	}
	if c.MaxFileSize <= 0 || c.MaxTotalFilesSize <= 0 || c.MaxFilesCount <= 0 {
		return fmt.Errorf("file limits must be positive")
	}
	if c.MaxFileSize > c.MaxTotalFilesSize {
		return fmt.Errorf("max_file_size %d exceeds max_total_files_size %d",
			c.MaxFileSize, c.MaxTotalFilesSize)
	}
	if c.MaxOutputSize <= 0 || c.MaxStderrSize <= 0 {
		return fmt.Errorf("output limits must be positive")
	}
	if c.PackagesDir == "" {
		return fmt.Errorf("packages_dir must not be empty")
	}
	return nil
}

// ListenAddr returns the host:port address the API server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
}
