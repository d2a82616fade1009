package main

import (
	"os"
	"time"

	"cjd/internal/dictfile"
	"cjd/internal/history"
	"cjd/internal/logging"
	"cjd/internal/normalize"
	"cjd/internal/report"
)

// pipelineRequest describes one normalization pass over one dictionary.
type pipelineRequest struct {
	File    string // input dictionary
	Output  string // optional separate sink; empty writes back to File
	Options normalize.Options
	Write   bool // false leaves every file untouched
}

// target is the path the normalized document is written to.
func (r pipelineRequest) target() string {
	if r.Output != "" {
		return r.Output
	}
	return r.File
}

// runPipeline loads, transforms and (when requested) writes one
// dictionary. On a write failure the summary is returned alongside the
// error: the transform succeeded, persisting it did not, and callers
// surface the two separately.
func runPipeline(req pipelineRequest, logger *logging.Logger) (*report.Summary, error) {
	start := time.Now()

	doc, err := dictfile.Load(req.File)
	if err != nil {
		return nil, err
	}

	result, err := normalize.Normalize(doc, req.Options)
	if err != nil {
		return nil, err
	}

	summary := report.Build(req.File, result)
	if req.Output != "" {
		summary.Output = req.Output
	}

	if req.Write {
		if err := dictfile.Write(req.target(), result.Entries); err != nil {
			return summary, err
		}
		summary.Modified = true
	}

	logger.Debug("Dictionary processed", map[string]interface{}{
		"file":       req.File,
		"entries":    summary.SavedEntries,
		"duplicates": result.Stats.DuplicatesFound,
		"written":    summary.Modified,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return summary, nil
}

// recordHistory persists a completed run and refreshes the stored content
// checksum for the input file. The checksum is taken after any in-place
// write, so a later 'cjd watch' can tell its own writes (and untouched
// files) apart from real edits. Best effort throughout: history problems
// are logged, never returned.
func recordHistory(store *history.Store, keep int, req pipelineRequest, summary *report.Summary, duration time.Duration, logger *logging.Logger) {
	if store == nil {
		return
	}

	run := &history.Run{
		File:        req.File,
		SortBy:      string(req.Options.SortBy),
		RemoveEmpty: req.Options.RemoveEmptyDuplicates,
		Modified:    summary.Modified,
		Stats:       summary.Stats,
		Checksum:    fileChecksum(req.File),
		DurationMs:  duration.Milliseconds(),
	}

	if err := store.RecordRun(run); err != nil {
		logger.Warn("Failed to record run", map[string]interface{}{
			"file":  req.File,
			"error": err.Error(),
		})
		return
	}

	if run.Checksum != "" {
		if err := store.StoreChecksum(req.File, run.Checksum); err != nil {
			logger.Warn("Failed to store checksum", map[string]interface{}{
				"file":  req.File,
				"error": err.Error(),
			})
		}
	}

	if keep > 0 {
		if _, err := store.Prune(keep); err != nil {
			logger.Warn("Failed to prune history", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// fileChecksum hashes the file's current content, empty on any read error.
func fileChecksum(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return history.Checksum(data)
}
