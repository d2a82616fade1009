package main

import (
	"os"

	"cjd/internal/config"
	"cjd/internal/errors"
	"cjd/internal/history"
	"cjd/internal/logging"
	"cjd/internal/manifest"
	"cjd/internal/normalize"
	"cjd/internal/paths"
)

// setup resolves the project root, loads configuration (with environment
// overrides) and builds the configured logger. A broken config file falls
// back to defaults with a warning so read-only commands keep working;
// validation failures are fatal because they mean the user asked for
// something cjd cannot honor.
func setup() (string, *config.LoadResult, *logging.Logger, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", nil, nil, errors.NewCjdError(errors.InternalError, "failed to resolve working directory", err)
	}

	result, err := config.LoadConfigWithDetails(root)
	if err != nil {
		if errors.HasCode(err, errors.ConfigInvalid) {
			return "", nil, nil, err
		}
		boot := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.WarnLevel,
		})
		boot.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		result = &config.LoadResult{
			Config:       config.DefaultConfig(),
			UsedDefaults: true,
		}
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(result.Config.Logging.Format),
		Level:  logging.ParseLevel(result.Config.Logging.Level),
	})

	return root, result, logger, nil
}

// openHistory opens the run history store when recording is enabled and
// the project is initialized. An uninitialized directory silently runs
// without history; other store failures degrade to nil with a warning,
// never a failed command.
func openHistory(root string, cfg *config.Config, logger *logging.Logger) *history.Store {
	if !cfg.History.Enabled || !paths.IsInitialized(root) {
		return nil
	}

	store, err := history.Open(root, logger)
	if err != nil {
		logger.Warn("History unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return store
}

// baseOptions derives transform options from the merged config, which
// already includes environment overrides.
func baseOptions(res *config.LoadResult) normalize.Options {
	return normalize.Options{
		SortBy:                normalize.SortMode(res.Config.SortBy),
		RemoveEmptyDuplicates: res.Config.RemoveEmptyDuplicates,
	}
}

// reassertEnv re-applies environment-backed option fields after manifest
// or batch overrides ran. Declarations sit between the config file and
// the environment in precedence, so anything the environment set must
// win over them.
func reassertEnv(opts normalize.Options, res *config.LoadResult) normalize.Options {
	if res.HasEnvOverride("sort_by") {
		opts.SortBy = normalize.SortMode(res.Config.SortBy)
	}
	if res.HasEnvOverride("remove_empty_duplicates") {
		opts.RemoveEmptyDuplicates = res.Config.RemoveEmptyDuplicates
	}
	return opts
}

// declaredOptions resolves options from config, environment and an
// optional manifest declaration, with no flag layer on top.
func declaredOptions(res *config.LoadResult, decl *manifest.Declaration) normalize.Options {
	opts := baseOptions(res)
	if decl != nil {
		opts = reassertEnv(decl.Apply(opts), res)
	}
	return opts
}
