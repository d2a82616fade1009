package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cjd/internal/config"
)

var (
	configShowFormat string
	configShowDiff   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cjd configuration",
	Long:  "View and manage cjd configuration stored in .cjd/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the effective cjd configuration after merging the config file
and environment overrides.

Examples:
  cjd config show                  # Pretty-print the effective config
  cjd config show --format json    # Machine-readable output
  cjd config show --diff           # Only show non-default values`,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Long:  "Display all supported CJD environment variable overrides",
	RunE:  runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "human", "Output format (human, json, yaml)")
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show.
type ConfigShowResponse struct {
	ConfigPath   string               `json:"config_path,omitempty"`
	UsedDefaults bool                 `json:"used_defaults"`
	EnvOverrides []config.EnvOverride `json:"env_overrides,omitempty"`
	Config       *config.Config       `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	_, result, _, err := setup()
	if err != nil {
		return err
	}

	if configShowFormat != "human" {
		response := &ConfigShowResponse{
			ConfigPath:   result.ConfigPath,
			UsedDefaults: result.UsedDefaults,
			EnvOverrides: result.EnvOverrides,
			Config:       result.Config,
		}
		out, err := FormatResponse(response, OutputFormat(configShowFormat))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	printConfigHuman(result)
	return nil
}

func printConfigHuman(result *config.LoadResult) {
	fmt.Println("CJD Configuration")
	fmt.Println(strings.Repeat("─", 50))

	if result.UsedDefaults {
		fmt.Println("Source: defaults (no config file found)")
	} else if result.ConfigPath != "" {
		fmt.Printf("Source: %s\n", result.ConfigPath)
	} else {
		fmt.Println("Source: environment only")
	}

	if len(result.EnvOverrides) > 0 {
		fmt.Println("\nEnvironment Overrides:")
		for _, ov := range result.EnvOverrides {
			fmt.Printf("  %s=%s → %s\n", ov.EnvVar, ov.Value, ov.Path)
		}
	}

	fmt.Println()

	cfg := result.Config
	defaults := config.DefaultConfig()

	if configShowDiff {
		fmt.Println("Modified Settings (differs from defaults):")
		fmt.Println()
		printConfigDiff(cfg, defaults)
	} else {
		printConfigLine("version", cfg.Version, defaults.Version)
		printConfigLine("sort_by", cfg.SortBy, defaults.SortBy)
		printConfigLine("remove_empty_duplicates", cfg.RemoveEmptyDuplicates, defaults.RemoveEmptyDuplicates)
		printConfigLine("modify_original", cfg.ModifyOriginal, defaults.ModifyOriginal)
		printConfigLine("report_format", cfg.ReportFormat, defaults.ReportFormat)

		fmt.Println("\nlogging:")
		printConfigLine("  format", cfg.Logging.Format, defaults.Logging.Format)
		printConfigLine("  level", cfg.Logging.Level, defaults.Logging.Level)

		fmt.Println("\nhistory:")
		printConfigLine("  enabled", cfg.History.Enabled, defaults.History.Enabled)
		printConfigLine("  keep", cfg.History.Keep, defaults.History.Keep)

		fmt.Println("\nwatch:")
		printConfigLine("  poll_interval_ms", cfg.Watch.PollIntervalMs, defaults.Watch.PollIntervalMs)
		printConfigLine("  debounce_ms", cfg.Watch.DebounceMs, defaults.Watch.DebounceMs)
	}

	fmt.Println()
	fmt.Println("Use 'cjd config show --format json' for machine-readable output")
	fmt.Println("Use 'cjd config env' to see supported environment variables")
}

func printConfigLine(name string, value, defaultValue interface{}) {
	modified := ""
	if fmt.Sprintf("%v", value) != fmt.Sprintf("%v", defaultValue) {
		modified = fmt.Sprintf(" (default: %v)", defaultValue)
	}
	fmt.Printf("%s: %v%s\n", name, value, modified)
}

func printConfigDiff(cfg, defaults *config.Config) {
	diffs := []string{}

	add := func(name string, value, defaultValue interface{}) {
		if fmt.Sprintf("%v", value) != fmt.Sprintf("%v", defaultValue) {
			diffs = append(diffs, fmt.Sprintf("%s: %v (default: %v)", name, value, defaultValue))
		}
	}

	add("version", cfg.Version, defaults.Version)
	add("sort_by", cfg.SortBy, defaults.SortBy)
	add("remove_empty_duplicates", cfg.RemoveEmptyDuplicates, defaults.RemoveEmptyDuplicates)
	add("modify_original", cfg.ModifyOriginal, defaults.ModifyOriginal)
	add("report_format", cfg.ReportFormat, defaults.ReportFormat)
	add("logging.format", cfg.Logging.Format, defaults.Logging.Format)
	add("logging.level", cfg.Logging.Level, defaults.Logging.Level)
	add("history.enabled", cfg.History.Enabled, defaults.History.Enabled)
	add("history.keep", cfg.History.Keep, defaults.History.Keep)
	add("watch.poll_interval_ms", cfg.Watch.PollIntervalMs, defaults.Watch.PollIntervalMs)
	add("watch.debounce_ms", cfg.Watch.DebounceMs, defaults.Watch.DebounceMs)

	if len(diffs) == 0 {
		fmt.Println("  (no modifications - using all defaults)")
		return
	}
	for _, d := range diffs {
		fmt.Printf("  %s\n", d)
	}
}

type envVarInfo struct {
	name    string
	desc    string
	varType string
}

func runConfigEnv(cmd *cobra.Command, args []string) error {
	fmt.Println("Supported CJD Environment Variables")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println()

	categories := map[string][]envVarInfo{
		"General": {
			{config.ConfigPathEnvVar, "Path to an explicit config file", "string"},
		},
		"Transform": {
			{"CJD_SORT_BY", `Sort mode ("key" or anything else for value order)`, "string"},
			{"CJD_REMOVE_EMPTY_DUPLICATES", "Drop later duplicates without a value", "bool"},
			{"CJD_MODIFY_ORIGINAL", "Allow normalize to write files in place", "bool"},
		},
		"Output": {
			{"CJD_REPORT_FORMAT", "Report format (human, json, yaml)", "string"},
		},
		"Logging": {
			{"CJD_LOG_FORMAT", "Log format (human, json)", "string"},
			{"CJD_LOG_LEVEL", "Log level (debug, info, warn, error)", "string"},
		},
		"History": {
			{"CJD_HISTORY_ENABLED", "Record normalization runs", "bool"},
			{"CJD_HISTORY_KEEP", "Runs to keep before pruning (0 = unlimited)", "int"},
		},
		"Watch": {
			{"CJD_WATCH_POLL_INTERVAL_MS", "Poll interval for watch mode", "int"},
			{"CJD_WATCH_DEBOUNCE_MS", "Quiet period before re-normalizing", "int"},
		},
	}

	order := []string{"General", "Transform", "Output", "Logging", "History", "Watch"}
	for _, cat := range order {
		fmt.Printf("%s:\n", cat)
		for _, v := range categories[cat] {
			fmt.Printf("  %-30s %s (%s)\n", v.name, v.desc, v.varType)
		}
		fmt.Println()
	}

	fmt.Println("Example usage:")
	fmt.Println("  CJD_SORT_BY=value cjd normalize glossary.json")
	fmt.Println("  CJD_LOG_LEVEL=debug cjd watch")
	fmt.Println("  CJD_CONFIG_PATH=/etc/cjd/config.json cjd check glossary.json")
	return nil
}
