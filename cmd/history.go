package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"shared-save/core/ledger"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd lists published versions of the shared world.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List published versions of the shared world",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		rows, err := rt.ledger.History(ctx, rt.cfg.Sync.WorldID, historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return printHistoryJSON(cmd.OutOrStdout(), rows)
		}
		printHistory(cmd.OutOrStdout(), rt.cfg.Sync.WorldID, rows)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", ledger.DefaultHistoryLimit, "Number of versions to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output JSON")
	RootCmd.AddCommand(historyCmd)
}

func printHistory(out io.Writer, worldID string, rows []ledger.WorldVersion) {
	if len(rows) == 0 {
		fmt.Fprintf(out, "%s has not been published yet.\n", worldID)
		return
	}
	for _, row := range rows {
		pruned := ""
		if row.Pruned {
			pruned = " [pruned]"
		}
		fmt.Fprintf(out, "v%d  %s  %s  %d crafts  %s played%s\n",
			row.Version,
			row.CreatedAt.Local().Format(time.DateTime),
			row.Author,
			row.CraftCount,
			formatPlayTime(row.PlayTimeSeconds),
			pruned)
		for _, line := range row.Lines() {
			fmt.Fprintf(out, "      %s\n", line)
		}
	}
}

type historyEntry struct {
	ledger.WorldVersion
	Summary []string `json:"summary"`
}

func printHistoryJSON(out io.Writer, rows []ledger.WorldVersion) error {
	entries := make([]historyEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, historyEntry{WorldVersion: row, Summary: row.Lines()})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
