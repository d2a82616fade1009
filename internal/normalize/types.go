// Package normalize turns a parsed JSON list of single-key mappings into a
// deduplicated, partitioned, sorted document plus transformation statistics.
package normalize

import (
	"bytes"
	"encoding/json"
)

// Entry is a single-key mapping {key: value}.
// Exactly one key per entry; the value is any decoded JSON value.
type Entry struct {
	Key   string
	Value interface{}
}

// MarshalJSON encodes the entry as the one-pair JSON object it came from.
// Non-ASCII and HTML characters are written raw.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(map[string]interface{}{e.Key: e.Value}); err != nil {
		return nil, err
	}

	// Remove the trailing newline added by Encode
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// SortMode selects the field entries are ordered by
type SortMode string

const (
	// SortByKey orders entries by their key
	SortByKey SortMode = "key"
	// SortByValue orders entries by their stringified value
	SortByValue SortMode = "value"
)

// Options controls a normalization pass.
// Only the literal "key" selects key-based sorting; every other SortBy
// value, recognized or not, behaves like "value". Callers depend on that
// fallback, so it is never reported as an error.
type Options struct {
	SortBy                SortMode
	RemoveEmptyDuplicates bool
}

// DefaultOptions returns the standard normalization options
func DefaultOptions() Options {
	return Options{
		SortBy:                SortByKey,
		RemoveEmptyDuplicates: true,
	}
}

// Stats summarizes one normalization pass. Computed once, immutable after.
type Stats struct {
	TotalEntries        int `json:"total_entries"`
	DuplicatesFound     int `json:"duplicates_found"`
	DuplicatesRemoved   int `json:"duplicates_removed"`
	EntriesWithValue    int `json:"entries_with_value"`
	EntriesWithoutValue int `json:"entries_without_value"`
}

// DuplicateRecord lists every value seen on non-first occurrences of a key,
// in input order. Used only for reporting, never for output content.
type DuplicateRecord struct {
	Key    string        `json:"key"`
	Values []interface{} `json:"values"`
}

// Result is the normalized document: entries with a non-empty value first,
// then entries with an empty value, each group independently sorted.
type Result struct {
	Entries    []Entry           `json:"entries"`
	Stats      Stats             `json:"stats"`
	Duplicates []DuplicateRecord `json:"duplicates,omitempty"`
}
