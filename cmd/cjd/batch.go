package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cjd/internal/batch"
	"cjd/internal/manifest"
	"cjd/internal/paths"
)

var (
	batchTag    string
	batchFormat string
	batchDryRun bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <set.toml>",
	Short: "Normalize every dictionary in a batch set",
	Long: `Run normalization over every dictionary declared in a batch set file.
Entries may carry per-dictionary overrides and tags; --tag restricts the
run to matching entries. The first failing dictionary aborts the batch.

Examples:
  cjd batch nightly.toml
  cjd batch nightly.toml --tag generated
  cjd batch nightly.toml --dry-run --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchTag, "tag", "", "Only process entries carrying this tag")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Report what would change without writing")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "Report format (human, json, yaml)")
	rootCmd.AddCommand(batchCmd)
}

// BatchResult is the per-dictionary outcome inside a batch response.
// ID is the stable dictionary ID, so consumers can track a dictionary
// across runs even if the set file is reordered.
type BatchResult struct {
	Path              string `json:"path"`
	ID                string `json:"id"`
	Entries           int    `json:"entries"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	Written           bool   `json:"written"`
}

// BatchSummary is the aggregate response for a batch run.
type BatchSummary struct {
	Set               string        `json:"set,omitempty"`
	Tag               string        `json:"tag,omitempty"`
	Results           []BatchResult `json:"results"`
	TotalEntries      int           `json:"total_entries"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	root, res, logger, err := setup()
	if err != nil {
		return err
	}
	cfg := res.Config
	format := resolveFormat(cmd, batchFormat, cfg)
	human := format == FormatHuman || format == ""

	set, err := batch.LoadSet(args[0])
	if err != nil {
		return err
	}

	entries := set.Filter(batchTag)
	if len(entries) == 0 {
		return fmt.Errorf("no dictionaries in %s match tag %q", args[0], batchTag)
	}

	store := openHistory(root, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	name := set.Name
	if name == "" {
		name = filepath.Base(args[0])
	}

	if human {
		fmt.Printf("Batch: %s (%d dictionaries)\n", name, len(entries))
		fmt.Println(strings.Repeat("=", 60))
	}

	agg := &BatchSummary{Set: set.Name, Tag: batchTag}

	for i := range entries {
		entry := &entries[i]

		output := ""
		if entry.Output != "" {
			output = paths.ResolveDictionary(root, entry.Output)
		}

		req := pipelineRequest{
			File:    paths.ResolveDictionary(root, entry.Path),
			Output:  output,
			Options: reassertEnv(entry.Apply(baseOptions(res)), res),
			Write:   !batchDryRun && (cfg.ModifyOriginal || output != ""),
		}

		start := time.Now()
		summary, err := runPipeline(req, logger)
		if err != nil {
			if human {
				fmt.Printf("✗ %s: %v\n", entry.Path, err)
			}
			return fmt.Errorf("batch aborted at %s: %w", entry.Path, err)
		}

		if human {
			line := fmt.Sprintf("✓ %s: %d entries", entry.Path, summary.SavedEntries)
			if summary.Stats.DuplicatesRemoved > 0 {
				line += fmt.Sprintf(" (%d duplicates removed)", summary.Stats.DuplicatesRemoved)
			}
			if !summary.Modified {
				line += " [not written]"
			}
			fmt.Println(line)
		}

		agg.Results = append(agg.Results, BatchResult{
			Path:              entry.Path,
			ID:                manifest.DictionaryID(entry.Path),
			Entries:           summary.SavedEntries,
			DuplicatesRemoved: summary.Stats.DuplicatesRemoved,
			Written:           summary.Modified,
		})
		agg.TotalEntries += summary.SavedEntries
		agg.DuplicatesRemoved += summary.Stats.DuplicatesRemoved

		recordHistory(store, cfg.History.Keep, req, summary, time.Since(start), logger)
	}

	if human {
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("Processed %d dictionaries: %d entries, %d duplicates removed\n",
			len(agg.Results), agg.TotalEntries, agg.DuplicatesRemoved)
		return nil
	}

	out, err := FormatResponse(agg, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
