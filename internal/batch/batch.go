// Package batch defines run sets: TOML files that list several
// dictionaries to normalize in one invocation, each with optional
// per-entry option overrides.
package batch

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"cjd/internal/normalize"
	"cjd/internal/paths"
)

// Set represents a batch definition stored in a TOML file
type Set struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Name is an optional identifier for the set
	Name string `toml:"name,omitempty"`

	// Description is an optional human-readable description
	Description string `toml:"description,omitempty"`

	// Dictionaries is the list of dictionaries the set runs over
	Dictionaries []Entry `toml:"dictionary"`
}

// Entry represents one dictionary in a batch set
type Entry struct {
	// Path is the dictionary file to normalize
	Path string `toml:"path"`

	// SortBy overrides the configured sort mode for this entry.
	// Empty means inherit; any value other than "key" selects value sorting.
	SortBy string `toml:"sort_by,omitempty"`

	// RemoveEmptyDuplicates overrides the configured duplicate policy.
	// Nil means inherit.
	RemoveEmptyDuplicates *bool `toml:"remove_empty_duplicates,omitempty"`

	// Output redirects the normalized document to a different file
	Output string `toml:"output,omitempty"`

	// Tags are optional labels for filtering with --tag
	Tags []string `toml:"tags,omitempty"`
}

// HasTag reports whether the entry carries the given tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Apply layers the entry's overrides on top of the given base options.
func (e *Entry) Apply(base normalize.Options) normalize.Options {
	if e.SortBy != "" {
		base.SortBy = normalize.SortMode(e.SortBy)
	}
	if e.RemoveEmptyDuplicates != nil {
		base.RemoveEmptyDuplicates = *e.RemoveEmptyDuplicates
	}
	return base
}

// LoadSet reads and validates a batch set definition
func LoadSet(filePath string) (*Set, error) {
	var set Set
	if _, err := toml.DecodeFile(filePath, &set); err != nil {
		return nil, fmt.Errorf("failed to parse batch set %q: %w", filePath, err)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return &set, nil
}

// Validate checks that the set can be run
func (s *Set) Validate() error {
	if s.Version == 0 {
		s.Version = 1 // Default to version 1
	}
	if s.Version != 1 {
		return fmt.Errorf("unsupported batch set version %d", s.Version)
	}

	if len(s.Dictionaries) == 0 {
		return fmt.Errorf("batch set declares no dictionaries")
	}

	seen := make(map[string]bool)
	for i, entry := range s.Dictionaries {
		if entry.Path == "" {
			return fmt.Errorf("batch entry %d missing required 'path' field", i)
		}
		norm := paths.NormalizePath(entry.Path)
		if seen[norm] {
			return fmt.Errorf("dictionary %q declared more than once", entry.Path)
		}
		seen[norm] = true
	}

	return nil
}

// Filter returns the entries carrying the given tag.
// An empty tag selects every entry.
func (s *Set) Filter(tag string) []Entry {
	if tag == "" {
		return s.Dictionaries
	}

	var matched []Entry
	for _, entry := range s.Dictionaries {
		if entry.HasTag(tag) {
			matched = append(matched, entry)
		}
	}
	return matched
}
