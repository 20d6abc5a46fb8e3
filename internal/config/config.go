package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CurrentVersion is the supported configuration schema version
const CurrentVersion = 1

// Config represents the complete docbridge configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// Resolvers registers one external resolver per bundle identifier
	Resolvers map[string]ResolverConfig `json:"resolvers" mapstructure:"resolvers"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ResolverConfig describes how to reach one external resolver: either an
// executable the bridge spawns, or an already-running documentation service.
// Exactly one of Executable and ServiceURL is set.
type ResolverConfig struct {
	// Executable is the path to a resolver executable
	Executable string `json:"executable,omitempty" mapstructure:"executable"`

	// Args are extra arguments passed to the executable
	Args []string `json:"args,omitempty" mapstructure:"args"`

	// ServiceURL is the ws:// or wss:// URL of a documentation service
	ServiceURL string `json:"serviceURL,omitempty" mapstructure:"serviceURL"`

	// ServiceToken is an optional bearer token for the service
	ServiceToken string `json:"serviceToken,omitempty" mapstructure:"serviceToken"`
}

// IsService reports whether the entry points at a documentation service
func (r ResolverConfig) IsService() bool {
	return r.ServiceURL != ""
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration with no resolvers
func DefaultConfig() *Config {
	return &Config{
		Version:   CurrentVersion,
		Resolvers: map[string]ResolverConfig{},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <dir>/docbridge.json. A missing file
// yields the default configuration.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", CurrentVersion)
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("docbridge")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// viper splits keys on '.' and lowercases them, which would mangle
	// bundle identifiers; decode the registry from the file directly.
	data, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	var registry struct {
		Resolvers map[string]ResolverConfig `json:"resolvers"`
	}
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, err
	}
	cfg.Resolvers = registry.Resolvers
	if cfg.Resolvers == nil {
		cfg.Resolvers = map[string]ResolverConfig{}
	}

	return &cfg, nil
}

// Save writes the configuration to <dir>/docbridge.json
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "docbridge.json"), data, 0644)
}

// ResolverFor returns the resolver entry registered for a bundle identifier
func (c *Config) ResolverFor(bundleIdentifier string) (ResolverConfig, bool) {
	entry, ok := c.Resolvers[bundleIdentifier]
	return entry, ok
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}

	for bundleID, entry := range c.Resolvers {
		if entry.Executable == "" && entry.ServiceURL == "" {
			return &ConfigError{
				Field:   "resolvers." + bundleID,
				Message: "entry must set either executable or serviceURL",
			}
		}
		if entry.Executable != "" && entry.ServiceURL != "" {
			return &ConfigError{
				Field:   "resolvers." + bundleID,
				Message: "entry must set only one of executable and serviceURL",
			}
		}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s': %s", e.Field, e.Message)
}
