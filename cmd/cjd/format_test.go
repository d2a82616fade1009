package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"cjd/internal/config"
	"cjd/internal/history"
	"cjd/internal/normalize"
	"cjd/internal/report"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, `"key": "value"`) {
		t.Error("JSON output missing expected key")
	}
	if !strings.Contains(result, `"num": 42`) {
		t.Error("JSON output missing expected number")
	}
}

func TestFormatResponse_YAML(t *testing.T) {
	resp := struct {
		Name  string `yaml:"name"`
		Value int    `yaml:"value"`
	}{
		Name:  "test",
		Value: 123,
	}

	result, err := FormatResponse(resp, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "name: test") {
		t.Error("missing name field")
	}
	if !strings.Contains(result, "value: 123") {
		t.Error("missing value field")
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	resp := map[string]string{"key": "value"}

	_, err := FormatResponse(resp, "xml")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should mention unsupported format, got: %v", err)
	}
}

func TestFormatJSON_NoHTMLEscaping(t *testing.T) {
	resp := map[string]string{"value": "<b>bold & raw</b>"}

	result, err := formatJSON(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "<b>bold & raw</b>") {
		t.Errorf("angle brackets should survive unescaped, got: %s", result)
	}
	if strings.Contains(result, `\u003c`) {
		t.Error("output contains HTML-escaped brackets")
	}
}

func TestFormatResponse_SummaryHuman(t *testing.T) {
	summary := &report.Summary{
		File:         "glossary.json",
		Modified:     true,
		SavedEntries: 3,
		Stats: normalize.Stats{
			TotalEntries:      3,
			DuplicatesFound:   1,
			DuplicatesRemoved: 1,
			EntriesWithValue:  3,
		},
		Duplicates: []normalize.DuplicateRecord{
			{Key: "alpha", Values: []interface{}{"a", "b"}},
		},
	}

	result, err := FormatResponse(summary, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "Dictionary Report: glossary.json") {
		t.Error("missing report header")
	}
	if !strings.Contains(result, "⚠ Duplicate keys found:") {
		t.Error("missing duplicate warning")
	}
	if !strings.Contains(result, "✓ Normalized and saved 3 entries") {
		t.Error("missing success line")
	}
}

func TestFormatResponse_EmptyFormatDefaultsToHuman(t *testing.T) {
	summary := &report.Summary{File: "a.json"}

	result, err := FormatResponse(summary, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "Dictionary Report: a.json") {
		t.Error("empty format should render the human report")
	}
}

func TestFormatHistoryHuman(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 2, 0, 0, time.UTC)
	resp := &HistoryResponse{
		Runs: []history.Run{
			{
				File:       "glossary.json",
				SortBy:     "key",
				Modified:   true,
				Stats:      normalize.Stats{TotalEntries: 4, DuplicatesRemoved: 1},
				DurationMs: 12,
				CreatedAt:  created,
			},
		},
		Totals: &history.Totals{
			Runs:              1,
			Files:             1,
			DuplicatesFound:   2,
			DuplicatesRemoved: 1,
		},
	}

	result := formatHistoryHuman(resp)

	if !strings.Contains(result, "Run History") {
		t.Error("missing header")
	}
	if !strings.Contains(result, "2026-03-01 10:02:00") {
		t.Error("missing run timestamp")
	}
	if !strings.Contains(result, "glossary.json") {
		t.Error("missing file name")
	}
	if !strings.Contains(result, "4 entries, 1 duplicates removed, sort by key (12 ms)") {
		t.Errorf("missing run detail line, got: %s", result)
	}
	if !strings.Contains(result, "Totals: 1 runs over 1 files, 2 duplicates found, 1 removed") {
		t.Errorf("missing totals line, got: %s", result)
	}
}

func TestFormatHistoryHuman_Empty(t *testing.T) {
	result := formatHistoryHuman(&HistoryResponse{})

	if !strings.Contains(result, "No runs recorded.") {
		t.Error("missing empty-history message")
	}
}

func TestFormatHuman_UnknownTypeFallsBackToJSON(t *testing.T) {
	resp := struct {
		Foo string `json:"foo"`
	}{Foo: "bar"}

	result, err := formatHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, `"foo": "bar"`) {
		t.Error("missing JSON fallback content")
	}
}

func TestResolveFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReportFormat = "yaml"

	cmd := &cobra.Command{}
	cmd.Flags().String("format", "", "")

	if got := resolveFormat(cmd, "", cfg); got != FormatYAML {
		t.Errorf("resolveFormat without flag = %q, want %q", got, FormatYAML)
	}

	if err := cmd.Flags().Set("format", "json"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if got := resolveFormat(cmd, "json", cfg); got != FormatJSON {
		t.Errorf("resolveFormat with flag = %q, want %q", got, FormatJSON)
	}
}
