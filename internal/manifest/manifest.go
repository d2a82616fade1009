// Package manifest reads and writes DICTIONARIES.toml, the project-level
// declaration of dictionary files and their per-file option overrides.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"cjd/internal/normalize"
	"cjd/internal/paths"
)

// Declaration represents one declared dictionary in DICTIONARIES.toml
type Declaration struct {
	// Path is the project-relative (or absolute) path of the dictionary file
	Path string `toml:"path"`

	// SortBy overrides the configured sort mode for this dictionary.
	// Empty means inherit; any value other than "key" selects value sorting.
	SortBy string `toml:"sort_by,omitempty"`

	// RemoveEmptyDuplicates overrides the configured duplicate policy.
	// Nil means inherit.
	RemoveEmptyDuplicates *bool `toml:"remove_empty_duplicates,omitempty"`

	// Output redirects the normalized document to a different file
	Output string `toml:"output,omitempty"`

	// Tags classify the dictionary for filtering
	Tags []string `toml:"tags,omitempty"`
}

// HasTag reports whether the declaration carries the given tag.
func (d *Declaration) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Apply layers the declaration's overrides on top of the given base options.
func (d *Declaration) Apply(base normalize.Options) normalize.Options {
	if d.SortBy != "" {
		base.SortBy = normalize.SortMode(d.SortBy)
	}
	if d.RemoveEmptyDuplicates != nil {
		base.RemoveEmptyDuplicates = *d.RemoveEmptyDuplicates
	}
	return base
}

// File represents the root structure of DICTIONARIES.toml
type File struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Dictionaries is the list of declared dictionary files
	Dictionaries []Declaration `toml:"dictionary"`
}

// Find returns the declaration whose path matches the given one, or nil.
// Paths are compared in normalized (forward-slash) form.
func (f *File) Find(path string) *Declaration {
	want := paths.NormalizePath(path)
	for i := range f.Dictionaries {
		if paths.NormalizePath(f.Dictionaries[i].Path) == want {
			return &f.Dictionaries[i]
		}
	}
	return nil
}

// Parse parses a DICTIONARIES.toml file from the given path
func Parse(filePath string) (*File, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read DICTIONARIES.toml: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse DICTIONARIES.toml: %w", err)
	}

	// Validate version
	if f.Version < 1 {
		f.Version = 1 // Default to version 1
	}

	if err := validateDeclarations(f.Dictionaries); err != nil {
		return nil, err
	}

	return &f, nil
}

// validateDeclarations rejects declarations the pipeline cannot act on.
func validateDeclarations(decls []Declaration) error {
	seen := make(map[string]bool)
	for i, decl := range decls {
		if decl.Path == "" {
			return fmt.Errorf("dictionary declaration %d missing required 'path' field", i)
		}
		norm := paths.NormalizePath(decl.Path)
		if seen[norm] {
			return fmt.Errorf("dictionary %q declared more than once", decl.Path)
		}
		seen[norm] = true
	}
	return nil
}

// Load loads the project manifest from root if it exists.
// A missing manifest is not an error: both return values are nil.
func Load(root string) (*File, error) {
	filePath := paths.ManifestFile(root)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil // No manifest
	}

	return Parse(filePath)
}

// Write writes a manifest File to the given path
func Write(filePath string, f *File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal DICTIONARIES.toml: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write DICTIONARIES.toml: %w", err)
	}

	return nil
}

// CreateExample creates an example DICTIONARIES.toml file
func CreateExample(filePath string) error {
	keepEmpty := false
	example := &File{
		Version: 1,
		Dictionaries: []Declaration{
			{
				Path: "glossary.json",
				Tags: []string{"docs"},
			},
			{
				Path:                  "data/terms.json",
				SortBy:                "value",
				RemoveEmptyDuplicates: &keepEmpty,
				Output:                "build/terms.json",
				Tags:                  []string{"data", "generated"},
			},
		},
	}

	return Write(filePath, example)
}

// DictionaryID generates a stable dictionary ID that survives renames of
// everything except the path itself.
// Format: cjd:dict:<hash>
func DictionaryID(dictPath string) string {
	normalized := paths.NormalizePath(dictPath)

	hash := sha256.Sum256([]byte(normalized))
	hashStr := hex.EncodeToString(hash[:8]) // First 8 bytes keep IDs short

	return fmt.Sprintf("cjd:dict:%s", hashStr)
}

// ParseDictionaryID extracts components from a dictionary ID.
// Returns (prefix, hash, isValid)
func ParseDictionaryID(id string) (prefix string, hash string, isValid bool) {
	if !strings.HasPrefix(id, "cjd:dict:") {
		return "", "", false
	}

	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return "", "", false
	}

	if parts[2] == "" {
		return "", "", false
	}

	return parts[0] + ":" + parts[1], parts[2], true
}

// IsValidDictionaryID checks if a string is a valid dictionary ID
func IsValidDictionaryID(id string) bool {
	_, _, isValid := ParseDictionaryID(id)
	return isValid
}
