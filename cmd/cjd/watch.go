package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cjd/internal/config"
	"cjd/internal/errors"
	"cjd/internal/manifest"
	"cjd/internal/paths"
	"cjd/internal/watcher"
)

var watchFormat string

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Watch dictionaries and normalize on change",
	Long: `Watch dictionary files and re-run normalization whenever one changes,
after a short debounce quiet period. Files whose content checksum matches
the last recorded run are skipped, so cjd's own writes do not trigger
another pass.

Without a file argument, every dictionary declared in DICTIONARIES.toml
is watched.

Examples:
  cjd watch glossary.json
  cjd watch                                  # all declared dictionaries`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFormat, "format", "", "Report format for per-change output (human, json, yaml)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, res, logger, err := setup()
	if err != nil {
		return err
	}
	cfg := res.Config
	format := resolveFormat(cmd, watchFormat, cfg)

	mf, err := manifest.Load(root)
	if err != nil {
		return err
	}

	// Resolve one pipeline request per watched path up front; the
	// handler only looks them up.
	requests := make(map[string]pipelineRequest)

	if len(args) == 1 {
		file := args[0]
		var decl *manifest.Declaration
		if mf != nil {
			decl = mf.Find(file)
		}
		requests[file] = watchRequest(root, res, file, decl)
	} else {
		if mf == nil || len(mf.Dictionaries) == 0 {
			return errors.NewCjdError(errors.ConfigInvalid,
				"nothing to watch: no dictionary given and no DICTIONARIES.toml found", nil)
		}
		for i := range mf.Dictionaries {
			decl := &mf.Dictionaries[i]
			path := paths.ResolveDictionary(root, decl.Path)
			requests[path] = watchRequest(root, res, path, decl)
		}
	}

	store := openHistory(root, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	// Last post-run checksum per path. This is what stops the watcher
	// from re-triggering on its own writes: after a pass the file's
	// checksum is remembered, and a poll event whose content matches it
	// is skipped. The history store primes it across restarts.
	lastSums := make(map[string]string)

	// Serialize handler runs so concurrent per-file debouncers do not
	// interleave reports on stdout (also guards lastSums).
	var mu sync.Mutex
	handler := func(path string, events []watcher.Event) {
		mu.Lock()
		defer mu.Unlock()

		gone := true
		for _, ev := range events {
			if ev.Type != watcher.EventDelete {
				gone = false
				break
			}
		}
		if gone {
			logger.Warn("Dictionary removed, still watching for it to return", map[string]interface{}{
				"file": path,
			})
			return
		}

		req, ok := requests[path]
		if !ok {
			return
		}

		if sum := fileChecksum(path); sum != "" {
			last, seen := lastSums[path]
			if seen && last == sum {
				logger.Info("Content unchanged, skipping", map[string]interface{}{
					"file": path,
				})
				return
			}
			if !seen && store != nil {
				if stored, err := store.LookupChecksum(path); err == nil && stored == sum {
					lastSums[path] = sum
					logger.Info("Content unchanged, skipping", map[string]interface{}{
						"file": path,
					})
					return
				}
			}
		}

		start := time.Now()
		summary, err := runPipeline(req, logger)
		if err != nil {
			logger.Error("Normalization failed", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			return
		}

		if post := fileChecksum(path); post != "" {
			lastSums[path] = post
		}

		if out, err := FormatResponse(summary, format); err == nil {
			fmt.Println(out)
		}

		recordHistory(store, cfg.History.Keep, req, summary, time.Since(start), logger)
	}

	w := watcher.New(watcher.Config{
		PollInterval: time.Duration(cfg.Watch.PollIntervalMs) * time.Millisecond,
		Debounce:     time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
	}, logger, handler)

	if err := w.Start(); err != nil {
		return err
	}
	for path := range requests {
		if err := w.WatchFile(path); err != nil {
			w.Stop()
			return err
		}
		logger.Debug("Watching dictionary", map[string]interface{}{
			"file": path,
			"id":   manifest.DictionaryID(path),
		})
	}

	fmt.Printf("Watching %d dictionaries for changes... (polling every %dms, Ctrl+C to stop)\n",
		len(requests), cfg.Watch.PollIntervalMs)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
	return w.Stop()
}

// watchRequest builds the pipeline request used every time the given
// path changes. Watch always writes (that is its purpose) unless both
// in-place modification is disabled and no output sink is declared.
func watchRequest(root string, res *config.LoadResult, path string, decl *manifest.Declaration) pipelineRequest {
	output := ""
	if decl != nil && decl.Output != "" {
		output = paths.ResolveDictionary(root, decl.Output)
	}
	return pipelineRequest{
		File:    path,
		Output:  output,
		Options: declaredOptions(res, decl),
		Write:   res.Config.ModifyOriginal || output != "",
	}
}
