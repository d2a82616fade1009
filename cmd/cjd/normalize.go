package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cjd/internal/config"
	"cjd/internal/errors"
	"cjd/internal/history"
	"cjd/internal/logging"
	"cjd/internal/manifest"
	"cjd/internal/normalize"
	"cjd/internal/paths"
)

var (
	normalizeSortBy      string
	normalizeRemoveEmpty bool
	normalizeDryRun      bool
	normalizeOutput      string
	normalizeFormat      string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize a JSON dictionary",
	Long: `Normalize a JSON dictionary file: validate its shape, drop duplicate
keys (first occurrence wins), partition entries into those with and
without a value, sort each partition, and rewrite the file in a stable
layout.

Without a file argument, every dictionary declared in DICTIONARIES.toml
is normalized.

Examples:
  cjd normalize glossary.json
  cjd normalize glossary.json --sort-by value
  cjd normalize glossary.json --dry-run
  cjd normalize glossary.json -o build/glossary.json
  cjd normalize                              # all declared dictionaries`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeSortBy, "sort-by", "", `Sort mode: "key" sorts by key, anything else sorts by value`)
	normalizeCmd.Flags().BoolVar(&normalizeRemoveEmpty, "remove-empty-duplicates", true, "Drop later duplicates that carry no value")
	normalizeCmd.Flags().BoolVar(&normalizeDryRun, "dry-run", false, "Report what would change without writing")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Write the normalized document here instead of in place")
	normalizeCmd.Flags().StringVar(&normalizeFormat, "format", "", "Report format (human, json, yaml)")
	rootCmd.AddCommand(normalizeCmd)
}

// resolveNormalizeOptions layers the option sources for one dictionary:
// flag > environment > manifest declaration > config file > default.
func resolveNormalizeOptions(cmd *cobra.Command, res *config.LoadResult, decl *manifest.Declaration) normalize.Options {
	opts := baseOptions(res)
	if decl != nil {
		opts = reassertEnv(decl.Apply(opts), res)
	}
	if cmd.Flags().Changed("sort-by") {
		opts.SortBy = normalize.SortMode(normalizeSortBy)
	}
	if cmd.Flags().Changed("remove-empty-duplicates") {
		opts.RemoveEmptyDuplicates = normalizeRemoveEmpty
	}
	return opts
}

func runNormalize(cmd *cobra.Command, args []string) error {
	root, res, logger, err := setup()
	if err != nil {
		return err
	}
	cfg := res.Config
	format := resolveFormat(cmd, normalizeFormat, cfg)

	mf, err := manifest.Load(root)
	if err != nil {
		return err
	}

	store := openHistory(root, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	if len(args) == 1 {
		file := args[0]
		var decl *manifest.Declaration
		if mf != nil {
			decl = mf.Find(file)
		}

		output := normalizeOutput
		if output == "" && decl != nil && decl.Output != "" {
			output = paths.ResolveDictionary(root, decl.Output)
		}

		req := pipelineRequest{
			File:    file,
			Output:  output,
			Options: resolveNormalizeOptions(cmd, res, decl),
			// An explicit output sink is written even when in-place
			// modification is disabled; --dry-run always wins.
			Write: !normalizeDryRun && (cfg.ModifyOriginal || output != ""),
		}
		return normalizeOne(req, store, cfg, logger, format)
	}

	// Manifest-driven: normalize everything declared
	if mf == nil || len(mf.Dictionaries) == 0 {
		return errors.NewCjdError(errors.ConfigInvalid,
			"no dictionary given and no DICTIONARIES.toml found (run 'cjd init --with-manifest')", nil)
	}
	if cmd.Flags().Changed("output") {
		return errors.NewCjdError(errors.ConfigInvalid,
			"--output needs a single dictionary argument", nil)
	}

	for i := range mf.Dictionaries {
		decl := &mf.Dictionaries[i]

		output := ""
		if decl.Output != "" {
			output = paths.ResolveDictionary(root, decl.Output)
		}

		req := pipelineRequest{
			File:    paths.ResolveDictionary(root, decl.Path),
			Output:  output,
			Options: resolveNormalizeOptions(cmd, res, decl),
			Write:   !normalizeDryRun && (cfg.ModifyOriginal || output != ""),
		}
		if err := normalizeOne(req, store, cfg, logger, format); err != nil {
			return fmt.Errorf("%s: %w", decl.Path, err)
		}
	}
	return nil
}

// normalizeOne runs the pipeline for one dictionary, prints the report
// and records the run. A failed write still prints the report before the
// error goes back up: the transform result is real even if the file
// could not be saved.
func normalizeOne(req pipelineRequest, store *history.Store, cfg *config.Config, logger *logging.Logger, format OutputFormat) error {
	start := time.Now()

	summary, runErr := runPipeline(req, logger)
	if runErr != nil && summary == nil {
		return runErr
	}

	out, err := FormatResponse(summary, format)
	if err != nil {
		return err
	}
	fmt.Println(out)

	if runErr != nil {
		return errors.NewIOError("normalized but not written", runErr)
	}

	recordHistory(store, cfg.History.Keep, req, summary, time.Since(start), logger)
	return nil
}
