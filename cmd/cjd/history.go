package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cjd/internal/history"
)

var (
	historyLimit  int
	historyFile   string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded normalization runs",
	Long: `List past normalization runs from the local history database, newest
first, with aggregate totals.

Examples:
  cjd history
  cjd history --file glossary.json --limit 5
  cjd history --format json`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyFile, "file", "", "Only show runs for this dictionary")
	historyCmd.Flags().StringVar(&historyFormat, "format", "", "Output format (human, json, yaml)")
	rootCmd.AddCommand(historyCmd)
}

// HistoryResponse is the response for the history command.
type HistoryResponse struct {
	Runs   []history.Run   `json:"runs"`
	Totals *history.Totals `json:"totals,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	root, res, logger, err := setup()
	if err != nil {
		return err
	}
	format := resolveFormat(cmd, historyFormat, res.Config)

	// Unlike the recording path, listing is not best effort: the user
	// asked for history, so an unavailable store is a real error.
	store, err := history.Open(root, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(historyFile, historyLimit)
	if err != nil {
		return err
	}

	totals, err := store.Totals()
	if err != nil {
		return err
	}

	out, err := FormatResponse(&HistoryResponse{Runs: runs, Totals: totals}, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
