package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cjd/internal/errors"
	"cjd/internal/logging"
	"cjd/internal/manifest"
	"cjd/internal/paths"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a dictionary and report statistics",
	Long: `Validate a JSON dictionary and report what normalization would do,
without writing anything. The exit status is non-zero when the document
is not a valid dictionary.

Without a file argument, every dictionary declared in DICTIONARIES.toml
is checked. Options come from the config file, environment and manifest;
check takes no transform flags because it changes nothing.

Examples:
  cjd check glossary.json
  cjd check glossary.json --format json
  cjd check                                  # all declared dictionaries`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "Report format (human, json, yaml)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, res, logger, err := setup()
	if err != nil {
		return err
	}
	format := resolveFormat(cmd, checkFormat, res.Config)

	mf, err := manifest.Load(root)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		file := args[0]
		var decl *manifest.Declaration
		if mf != nil {
			decl = mf.Find(file)
		}
		return checkOne(pipelineRequest{
			File:    file,
			Options: declaredOptions(res, decl),
		}, logger, format)
	}

	if mf == nil || len(mf.Dictionaries) == 0 {
		return errors.NewCjdError(errors.ConfigInvalid,
			"no dictionary given and no DICTIONARIES.toml found (run 'cjd init --with-manifest')", nil)
	}

	for i := range mf.Dictionaries {
		decl := &mf.Dictionaries[i]
		req := pipelineRequest{
			File:    paths.ResolveDictionary(root, decl.Path),
			Options: declaredOptions(res, decl),
		}
		if err := checkOne(req, logger, format); err != nil {
			return fmt.Errorf("%s: %w", decl.Path, err)
		}
	}
	return nil
}

func checkOne(req pipelineRequest, logger *logging.Logger, format OutputFormat) error {
	summary, err := runPipeline(req, logger)
	if err != nil {
		return err
	}

	out, err := FormatResponse(summary, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
