package config

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"

	"cjd/internal/errors"
)

// ConfigPathEnvVar points cjd at an explicit config file, bypassing the
// .cjd/config.json lookup entirely.
const ConfigPathEnvVar = "CJD_CONFIG_PATH"

// EnvOverride records a single configuration value taken from the environment.
type EnvOverride struct {
	EnvVar string `json:"env_var"`
	Path   string `json:"path"`
	Value  string `json:"value"`
}

// LoadResult is the outcome of LoadConfigWithDetails: the effective config
// plus enough provenance to explain where each value came from.
type LoadResult struct {
	Config       *Config
	ConfigPath   string // empty when no file was read
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// HasEnvOverride reports whether the given config path was set from the
// environment. Callers use this to rank env values above per-file settings.
func (r *LoadResult) HasEnvOverride(path string) bool {
	for _, o := range r.EnvOverrides {
		if o.Path == path {
			return true
		}
	}
	return false
}

// envVarMappings maps environment variables to config paths.
var envVarMappings = map[string]string{
	"CJD_SORT_BY":                 "sort_by",
	"CJD_REMOVE_EMPTY_DUPLICATES": "remove_empty_duplicates",
	"CJD_MODIFY_ORIGINAL":         "modify_original",
	"CJD_REPORT_FORMAT":           "report_format",
	"CJD_LOG_FORMAT":              "logging.format",
	"CJD_LOG_LEVEL":               "logging.level",
	"CJD_HISTORY_ENABLED":         "history.enabled",
	"CJD_HISTORY_KEEP":            "history.keep",
	"CJD_WATCH_POLL_INTERVAL_MS":  "watch.poll_interval_ms",
	"CJD_WATCH_DEBOUNCE_MS":       "watch.debounce_ms",
}

// GetSupportedEnvVars returns the recognized override variables, sorted.
// ConfigPathEnvVar is not in the list: it selects the file, it does not
// override a value in it.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings))
	for envVar := range envVarMappings {
		vars = append(vars, envVar)
	}
	sort.Strings(vars)
	return vars
}

// EnvVarPath returns the config path an environment variable maps to,
// or "" if the variable is not recognized.
func EnvVarPath(envVar string) string {
	return envVarMappings[envVar]
}

// LoadConfigWithDetails loads configuration and reports its provenance.
// Precedence below the flag layer: environment, then config file, then
// defaults. Unparseable override values are ignored, keeping the file or
// default value in place.
func LoadConfigWithDetails(root string) (*LoadResult, error) {
	if explicit := os.Getenv(ConfigPathEnvVar); explicit != "" {
		cfg, err := loadExplicitConfig(explicit)
		if err != nil {
			return nil, err
		}
		overrides := applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, errors.NewCjdError(errors.ConfigInvalid, "invalid configuration", err)
		}
		return &LoadResult{Config: cfg, ConfigPath: explicit, EnvOverrides: overrides}, nil
	}

	cfg, path, err := loadConfigFile(root)
	if err != nil {
		return nil, err
	}
	overrides := applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewCjdError(errors.ConfigInvalid, "invalid configuration", err)
	}
	return &LoadResult{
		Config:       cfg,
		ConfigPath:   path,
		UsedDefaults: path == "" && len(overrides) == 0,
		EnvOverrides: overrides,
	}, nil
}

// loadExplicitConfig reads a config file from a caller-chosen path.
// Fields absent from the file keep their defaults.
func loadExplicitConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("cannot read config file "+path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewIOError("cannot parse config file "+path, err)
	}
	return cfg, nil
}

// applyEnvOverrides mutates cfg from the environment and returns what it
// applied. Variables are applied in sorted order so the result is stable.
func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for _, envVar := range GetSupportedEnvVars() {
		raw, ok := os.LookupEnv(envVar)
		if !ok || raw == "" {
			continue
		}
		path := envVarMappings[envVar]
		if applyOverride(cfg, path, raw) {
			overrides = append(overrides, EnvOverride{EnvVar: envVar, Path: path, Value: raw})
		}
	}
	return overrides
}

// applyOverride sets one config path from its string form. Returns false
// when the value cannot be parsed for that path.
func applyOverride(cfg *Config, path, raw string) bool {
	switch path {
	case "sort_by":
		// Any string is legal here: values other than "key" select
		// value-based sorting.
		cfg.SortBy = raw
	case "remove_empty_duplicates":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		cfg.RemoveEmptyDuplicates = b
	case "modify_original":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		cfg.ModifyOriginal = b
	case "report_format":
		cfg.ReportFormat = raw
	case "logging.format":
		cfg.Logging.Format = raw
	case "logging.level":
		cfg.Logging.Level = raw
	case "history.enabled":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		cfg.History.Enabled = b
	case "history.keep":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return false
		}
		cfg.History.Keep = n
	case "watch.poll_interval_ms":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return false
		}
		cfg.Watch.PollIntervalMs = n
	case "watch.debounce_ms":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return false
		}
		cfg.Watch.DebounceMs = n
	default:
		return false
	}
	return true
}
