// Package report renders the human-readable summary of a normalization run.
// Every statistics field and every duplicate record is surfaced.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cjd/internal/normalize"
)

// Summary is everything the reporter surfaces about one run
type Summary struct {
	File         string                      `json:"file"`
	Output       string                      `json:"output,omitempty"`
	Modified     bool                        `json:"modified"`
	SavedEntries int                         `json:"saved_entries"`
	Stats        normalize.Stats             `json:"stats"`
	Duplicates   []normalize.DuplicateRecord `json:"duplicates,omitempty"`
}

// Build assembles a Summary from a normalization result. The caller sets
// Modified and Output once it knows whether and where the result was
// persisted.
func Build(file string, result *normalize.Result) *Summary {
	return &Summary{
		File:         file,
		SavedEntries: len(result.Entries),
		Stats:        result.Stats,
		Duplicates:   result.Duplicates,
	}
}

// Human renders the console report
func (s *Summary) Human() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Dictionary Report: %s\n", s.File))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(s.Duplicates) > 0 {
		b.WriteString("⚠ Duplicate keys found:\n")
		for _, d := range s.Duplicates {
			b.WriteString(fmt.Sprintf("  - %q: %s\n", d.Key, valuesText(d.Values)))
		}
		b.WriteString("\n")
	}

	b.WriteString("Statistics:\n")
	b.WriteString(fmt.Sprintf("  Total entries:         %d\n", s.Stats.TotalEntries))
	b.WriteString(fmt.Sprintf("  Duplicates found:      %d\n", s.Stats.DuplicatesFound))
	b.WriteString(fmt.Sprintf("  Duplicates removed:    %d\n", s.Stats.DuplicatesRemoved))
	b.WriteString(fmt.Sprintf("  Entries with value:    %d\n", s.Stats.EntriesWithValue))
	b.WriteString(fmt.Sprintf("  Entries without value: %d\n", s.Stats.EntriesWithoutValue))
	b.WriteString("\n")

	switch {
	case s.Modified && s.Output != "" && s.Output != s.File:
		b.WriteString(fmt.Sprintf("✓ Normalized %d entries, written to %s\n", s.SavedEntries, s.Output))
	case s.Modified:
		b.WriteString(fmt.Sprintf("✓ Normalized and saved %d entries\n", s.SavedEntries))
	default:
		b.WriteString(fmt.Sprintf("✓ Normalized %d entries (file left untouched)\n", s.SavedEntries))
	}

	return b.String()
}

// valuesText renders duplicate values as a JSON array, raw non-ASCII
func valuesText(values []interface{}) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(values); err != nil {
		return fmt.Sprintf("%v", values)
	}
	return strings.TrimRight(buf.String(), "\n")
}
