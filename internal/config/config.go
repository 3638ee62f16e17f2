package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/slipstream/couchlist/internal/validation"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const (
	DefaultCouchPotatoPort = 80
	DefaultSyncCron        = "@every 1h"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Database DatabaseConfig      `mapstructure:"database"`
	Logging  LoggingConfig       `mapstructure:"logging"`
	Sync     SyncConfig          `mapstructure:"sync"`
	Sources  []CouchPotatoConfig `mapstructure:"sources" validate:"dive"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal"`
	Format     string `mapstructure:"format" validate:"oneof=console json"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// SyncConfig controls the scheduled list sync.
type SyncConfig struct {
	Cron       string `mapstructure:"cron" validate:"required"`
	RunOnStart bool   `mapstructure:"run_on_start"`
	TestMode   bool   `mapstructure:"test_mode"`
}

// CouchPotatoConfig is the connection configuration for one CouchPotato server.
// Port defaults to 80 and IncludeData to false.
type CouchPotatoConfig struct {
	Name        string `mapstructure:"name" json:"name" validate:"required"`
	BaseURL     string `mapstructure:"base_url" json:"baseUrl" validate:"required,url"`
	Port        int    `mapstructure:"port" json:"port" validate:"gte=1,lte=65535"`
	APIKey      string `mapstructure:"api_key" json:"apiKey" validate:"required"`
	IncludeData bool   `mapstructure:"include_data" json:"includeData"`
	Timeout     int    `mapstructure:"timeout" json:"timeout" validate:"gte=0"` // seconds, 0 = transport default
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5055,
		},
		Database: DatabaseConfig{
			Path: "./data/couchlist.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Sync: SyncConfig{
			Cron:       DefaultSyncCron,
			RunOnStart: true,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
// Keys that do not map onto Config are rejected.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.couchlist")
	}

	v.SetEnvPrefix("COUCHLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applySourceDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", "")

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("sync.cron", d.Sync.Cron)
	v.SetDefault("sync.run_on_start", d.Sync.RunOnStart)
	v.SetDefault("sync.test_mode", false)
}

// applySourceDefaults fills per-source defaults viper cannot express for list elements.
func (c *Config) applySourceDefaults() {
	for i := range c.Sources {
		c.Sources[i].ApplyDefaults()
	}
}

// ApplyDefaults sets the port default on a single source.
func (s *CouchPotatoConfig) ApplyDefaults() {
	if s.Port == 0 {
		s.Port = DefaultCouchPotatoPort
	}
}

// Validate checks struct constraints and that source names are unique.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if seen[s.Name] {
			return fmt.Errorf("invalid config: duplicate source name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// FindSource returns the source with the given name.
func (c *Config) FindSource(name string) (CouchPotatoConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return CouchPotatoConfig{}, false
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaskedAPIKey returns the API key with all but the last four characters hidden.
func (s *CouchPotatoConfig) MaskedAPIKey() string {
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}
