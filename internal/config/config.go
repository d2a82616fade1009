package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"cjd/internal/paths"
)

// Config represents the complete cjd configuration (v1 schema).
// sort_by carries no validation rule: any value other than the literal
// "key" selects value-based sorting, and callers depend on that fallback.
type Config struct {
	Version int `json:"version" mapstructure:"version" validate:"eq=1"`

	SortBy                string `json:"sort_by" mapstructure:"sort_by"`
	RemoveEmptyDuplicates bool   `json:"remove_empty_duplicates" mapstructure:"remove_empty_duplicates"`
	ModifyOriginal        bool   `json:"modify_original" mapstructure:"modify_original"`
	ReportFormat          string `json:"report_format" mapstructure:"report_format" validate:"oneof=human json yaml"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" validate:"oneof=human json"`
	Level  string `json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// HistoryConfig controls the run history store
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	Keep    int  `json:"keep" mapstructure:"keep" validate:"min=0"`
}

// WatchConfig controls the polling watcher
type WatchConfig struct {
	PollIntervalMs int `json:"poll_interval_ms" mapstructure:"poll_interval_ms" validate:"min=50"`
	DebounceMs     int `json:"debounce_ms" mapstructure:"debounce_ms" validate:"min=0"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:               1,
		SortBy:                "key",
		RemoveEmptyDuplicates: true,
		ModifyOriginal:        true,
		ReportFormat:          "human",
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    500,
		},
		Watch: WatchConfig{
			PollIntervalMs: 2000,
			DebounceMs:     750,
		},
	}
}

var validate = validator.New()

// LoadConfig loads configuration from .cjd/config.json under root, with
// environment overrides applied. A missing file yields the defaults; a
// present but invalid file is an error.
func LoadConfig(root string) (*Config, error) {
	result, err := LoadConfigWithDetails(root)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// loadConfigFile reads the standard config location via viper.
// Returns the config, the path actually used ("" when defaults), or an error.
func loadConfigFile(root string) (*Config, string, error) {
	v := viper.New()

	// Defaults let a partial config file omit any field
	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("sort_by", defaults.SortBy)
	v.SetDefault("remove_empty_duplicates", defaults.RemoveEmptyDuplicates)
	v.SetDefault("modify_original", defaults.ModifyOriginal)
	v.SetDefault("report_format", defaults.ReportFormat)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.keep", defaults.History.Keep)
	v.SetDefault("watch.poll_interval_ms", defaults.Watch.PollIntervalMs)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.CjdDir(root))

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, "", nil
		}
		return nil, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", err
	}

	return &cfg, v.ConfigFileUsed(), nil
}

// Save writes the configuration to .cjd/config.json under root
func (c *Config) Save(root string) error {
	if err := paths.EnsureDir(root); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paths.ConfigFile(root), data, 0644)
}

// Validate checks the ambient fields. The transform options themselves
// (sort_by and the two booleans) accept every value.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("fails validation rule %q", fe.Tag()),
			}
		}
		return err
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
