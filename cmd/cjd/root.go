package main

import (
	"github.com/spf13/cobra"

	"cjd/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cjd",
	Short: "CJD - Clean JSON Dictionaries",
	Long: `CJD normalizes JSON dictionary files: arrays of single-pair objects
that map keys to values.

It validates the document shape, removes duplicate keys (first
occurrence wins), partitions entries into those with and without a
value, sorts each partition, and writes the result back in a stable,
diff-friendly layout.

Quick start:
  cjd init                    # set up .cjd/ in the current directory
  cjd check glossary.json     # validate and report, never writes
  cjd normalize glossary.json # normalize in place

Declare dictionaries in DICTIONARIES.toml to run without arguments,
keep per-file overrides, and drive 'cjd watch'.`,
	Version: version.Version,
	// Errors reach the user exactly once, through the logger in main.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("cjd version {{.Version}}\n")
}
