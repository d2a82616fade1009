package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cjd/internal/config"
	"cjd/internal/report"
)

// OutputFormat selects how command responses are rendered.
type OutputFormat string

const (
	FormatHuman OutputFormat = "human"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// resolveFormat picks the report format for a command: an explicit
// --format flag wins, otherwise the configured report_format applies.
func resolveFormat(cmd *cobra.Command, flagValue string, cfg *config.Config) OutputFormat {
	if cmd.Flags().Changed("format") {
		return OutputFormat(flagValue)
	}
	return OutputFormat(cfg.ReportFormat)
}

// FormatResponse renders a command response in the requested format.
func FormatResponse(response interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(response)
	case FormatYAML:
		return formatYAML(response)
	case FormatHuman, "":
		return formatHuman(response)
	default:
		return "", fmt.Errorf("unsupported format: %s (use human, json or yaml)", format)
	}
}

// formatJSON renders with HTML escaping disabled so values like "<b>"
// survive byte for byte, matching what ends up in dictionary files.
func formatJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func formatYAML(v interface{}) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func formatHuman(response interface{}) (string, error) {
	switch r := response.(type) {
	case *report.Summary:
		return r.Human(), nil
	case *HistoryResponse:
		return formatHistoryHuman(r), nil
	default:
		// No dedicated renderer; JSON is always readable
		return formatJSON(response)
	}
}

func formatHistoryHuman(h *HistoryResponse) string {
	var sb strings.Builder

	sb.WriteString("Run History\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	if len(h.Runs) == 0 {
		sb.WriteString("No runs recorded.\n")
	}

	for _, run := range h.Runs {
		mark := " "
		if run.Modified {
			mark = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s  %s\n",
			mark,
			run.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			run.File))
		sb.WriteString(fmt.Sprintf("    %d entries, %d duplicates removed, sort by %s (%d ms)\n",
			run.Stats.TotalEntries,
			run.Stats.DuplicatesRemoved,
			run.SortBy,
			run.DurationMs))
	}

	if h.Totals != nil {
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		sb.WriteString(fmt.Sprintf("Totals: %d runs over %d files, %d duplicates found, %d removed\n",
			h.Totals.Runs,
			h.Totals.Files,
			h.Totals.DuplicatesFound,
			h.Totals.DuplicatesRemoved))
		sb.WriteString("(* = file was written)\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
