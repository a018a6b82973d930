package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Upload   UploadConfig   `yaml:"upload"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig describes the remote compliance service
type APIConfig struct {
	BaseURL    string `yaml:"base_url" validate:"required,url"`
	AccessKey  string `yaml:"access_key"`
	RequireKey bool   `yaml:"require_key"`
	Timeout    string `yaml:"timeout" validate:"required"`
}

// DefaultsConfig holds default values for batch runs
type DefaultsConfig struct {
	Regulation string `yaml:"regulation"`
	Format     string `yaml:"format" validate:"oneof=text json table"`
	OutputDir  string `yaml:"output_dir"`
}

// UploadConfig holds file picker limits
type UploadConfig struct {
	MaxFileSize string `yaml:"max_file_size" validate:"required"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// envOverrides mirrors the settings that may come from the environment
type envOverrides struct {
	APIURL      string `envconfig:"API_URL"`
	AccessKey   string `envconfig:"ACCESS_KEY"`
	RequireKey  *bool  `envconfig:"REQUIRE_KEY"`
	Timeout     string `envconfig:"TIMEOUT"`
	Regulation  string `envconfig:"REGULATION"`
	OutputDir   string `envconfig:"OUTPUT_DIR"`
	MaxFileSize string `envconfig:"MAX_FILE_SIZE"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
}

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "COMPLIANCE"

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			AccessKey:  "",
			RequireKey: false,
			Timeout:    "5m",
		},
		Defaults: DefaultsConfig{
			Regulation: "",
			Format:     "text",
			OutputDir:  ".",
		},
		Upload: UploadConfig{
			MaxFileSize: "200MiB",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// AppDir returns the application directory (~/.compliancecheck)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".compliancecheck"
	}
	return filepath.Join(home, ".compliancecheck")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config from file, returns default if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads config from the default path, a .env file in the
// working directory and COMPLIANCE_* environment variables, in that order
// of increasing precedence.
func LoadDefault() (*Config, error) {
	cfg, err := Load(ConfigPath())
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with COMPLIANCE_* environment variables
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&c.API.BaseURL, env.APIURL)
	setIf(&c.API.AccessKey, env.AccessKey)
	setIf(&c.API.Timeout, env.Timeout)
	setIf(&c.Defaults.Regulation, env.Regulation)
	setIf(&c.Defaults.OutputDir, env.OutputDir)
	setIf(&c.Upload.MaxFileSize, env.MaxFileSize)
	setIf(&c.Log.Level, env.LogLevel)
	if env.RequireKey != nil {
		c.API.RequireKey = *env.RequireKey
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and that sizes and durations parse
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.GetTimeout(); err != nil {
		return fmt.Errorf("invalid config: api.timeout: %w", err)
	}
	if _, err := c.GetMaxFileSize(); err != nil {
		return fmt.Errorf("invalid config: upload.max_file_size: %w", err)
	}
	return nil
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an access key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefault saves config to default path
func (c *Config) SaveDefault() error {
	return c.Save(ConfigPath())
}

// GetTimeout returns the HTTP timeout as a duration
func (c *Config) GetTimeout() (time.Duration, error) {
	return ParseDuration(c.API.Timeout)
}

// GetMaxFileSize returns the per-file upload limit in bytes
func (c *Config) GetMaxFileSize() (int64, error) {
	size, err := humanize.ParseBytes(strings.TrimSpace(c.Upload.MaxFileSize))
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("size must be positive")
	}
	return int64(size), nil
}

var durationPattern = regexp.MustCompile(`^(\d+)(s|m|h|d)$`)

// ParseDuration parses duration strings like "30s", "5m", "24h", "7d"
func ParseDuration(s string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s (use format like 30s, 5m, 1h)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	switch unit {
	case "s":
		return time.Duration(value) * time.Second, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}
