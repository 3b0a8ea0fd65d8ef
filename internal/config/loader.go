package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"todo-sync/internal/errors"
)

// EnvPrefix is prepended to every environment variable, e.g. TD_REMOTE_BASE_URL.
const EnvPrefix = "TD"

// Loader handles loading configuration from multiple sources
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with config.yaml from the data directory (or TD_CONFIG_FILE)
// 3. Override with environment variables
// Command line flags are applied afterwards through LoadWithOverrides.
func (l *Loader) Load() (*Config, error) {
	v := l.v
	setDefaults(v, NewConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewValidationError("decode configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ConfigFileUsed returns the config file that was read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) readConfigFile() error {
	path := os.Getenv(EnvPrefix + "_CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(l.v.GetString("database.dir"), "config.yaml")
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && stderrors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.NewValidationError("read config file "+path, err)
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return errors.NewValidationError("read config file "+path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("database.dir", defaults.Database.Dir)
	v.SetDefault("database.filename", defaults.Database.Filename)
	v.SetDefault("remote.base_url", defaults.Remote.BaseURL)
	v.SetDefault("remote.api_key", defaults.Remote.APIKey)
	v.SetDefault("remote.api_secret", defaults.Remote.APISecret)
	v.SetDefault("remote.timeout", defaults.Remote.Timeout)
	v.SetDefault("sync.load_strategy", defaults.Sync.LoadStrategy)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("application.timeout", defaults.Application.Timeout)
	v.SetDefault("application.verbose", defaults.Application.Verbose)
	v.SetDefault("application.offline", defaults.Application.Offline)
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	DBDir        *string
	DBFilename   *string
	RemoteURL    *string
	LoadStrategy *string
	LogLevel     *string
	Timeout      *time.Duration
	Verbose      *bool
	Offline      *bool
}

// Apply applies command line overrides to the configuration
func (o *ConfigOverrides) Apply(config *Config) {
	if o.DBDir != nil {
		config.Database.Dir = *o.DBDir
	}
	if o.DBFilename != nil {
		config.Database.Filename = *o.DBFilename
	}
	if o.RemoteURL != nil {
		config.Remote.BaseURL = *o.RemoteURL
	}
	if o.LoadStrategy != nil {
		config.Sync.LoadStrategy = *o.LoadStrategy
	}
	if o.LogLevel != nil {
		config.Log.Level = *o.LogLevel
	}
	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}
	if o.Offline != nil {
		config.Application.Offline = *o.Offline
	}
}
