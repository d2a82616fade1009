// Package paths resolves the .cjd workspace directory and the files inside it.
package paths

import (
	"os"
	"path/filepath"
)

const (
	// DirName is the per-project state directory
	DirName = ".cjd"
	// ConfigName is the config file inside DirName
	ConfigName = "config.json"
	// HistoryName is the run history database inside DirName
	HistoryName = "history.db"
	// ManifestName is the project dictionary manifest at the project root
	ManifestName = "DICTIONARIES.toml"
)

// CjdDir returns the state directory for a project root
func CjdDir(root string) string {
	return filepath.Join(root, DirName)
}

// ConfigFile returns the config file path for a project root
func ConfigFile(root string) string {
	return filepath.Join(root, DirName, ConfigName)
}

// HistoryDB returns the history database path for a project root
func HistoryDB(root string) string {
	return filepath.Join(root, DirName, HistoryName)
}

// ManifestFile returns the dictionary manifest path for a project root
func ManifestFile(root string) string {
	return filepath.Join(root, ManifestName)
}

// IsInitialized reports whether the project root has a .cjd directory
func IsInitialized(root string) bool {
	info, err := os.Stat(CjdDir(root))
	return err == nil && info.IsDir()
}

// EnsureDir creates the .cjd directory if it does not exist
func EnsureDir(root string) error {
	return os.MkdirAll(CjdDir(root), 0755)
}

// ResolveDictionary resolves a declared dictionary path against a project root.
// Absolute paths pass through; relative paths are joined to the root.
func ResolveDictionary(root string, declared string) string {
	if filepath.IsAbs(declared) {
		return declared
	}
	return filepath.Join(root, filepath.FromSlash(declared))
}

// NormalizePath normalizes a path by converting backslashes to forward slashes.
// Declared paths in manifests and batch sets are stored with forward slashes.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}
