package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"todo-sync/internal/errors"
)

// Load strategies for the sync engine's initial load.
const (
	LoadStrategyCache  = "cache"
	LoadStrategyRemote = "remote"
)

// MemoryDatabase selects an in-memory cache instead of a file.
const MemoryDatabase = ":memory:"

// Config holds all configuration options for the td application
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Remote      RemoteConfig      `mapstructure:"remote" yaml:"remote"`
	Sync        SyncConfig        `mapstructure:"sync" yaml:"sync"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Application ApplicationConfig `mapstructure:"application" yaml:"application"`
}

// DatabaseConfig holds local cache configuration
type DatabaseConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir" validate:"required"`
	Filename string `mapstructure:"filename" yaml:"filename" validate:"required"`
}

// RemoteConfig holds the remote task service connection settings.
// An empty BaseURL runs the engine offline.
type RemoteConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key"`
	APISecret string        `mapstructure:"api_secret" yaml:"api_secret" validate:"required_with=APIKey"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

// SyncConfig holds sync engine behaviour
type SyncConfig struct {
	LoadStrategy string `mapstructure:"load_strategy" yaml:"load_strategy" validate:"oneof=cache remote"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	Verbose bool          `mapstructure:"verbose" yaml:"verbose"`
	Offline bool          `mapstructure:"offline" yaml:"offline"`
}

// DefaultDataDir returns ~/.td, falling back to the working directory when
// the home directory cannot be resolved.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".td"
	}
	return filepath.Join(homeDir, ".td")
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dir:      DefaultDataDir(),
			Filename: "td.db",
		},
		Sync: SyncConfig{
			LoadStrategy: LoadStrategyCache,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the cache database
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == MemoryDatabase {
		return MemoryDatabase
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// RemoteEnabled reports whether the engine should talk to a remote service
func (c *Config) RemoteEnabled() bool {
	return c.Remote.BaseURL != "" && !c.Application.Offline
}

// Redacted returns a copy with credentials masked, for display
func (c *Config) Redacted() Config {
	out := *c
	if out.Remote.APIKey != "" {
		out.Remote.APIKey = "****"
	}
	if out.Remote.APISecret != "" {
		out.Remote.APISecret = "****"
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		cfgErr := &ConfigError{Field: fe.Namespace(), Message: "failed on '" + fe.Tag() + "' rule"}
		return errors.NewValidationError("invalid configuration: "+cfgErr.Error(), cfgErr).
			WithContext("field", fe.Namespace())
	}
	return errors.NewValidationError("invalid configuration", err)
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
