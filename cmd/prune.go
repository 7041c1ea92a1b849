package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pruneKeep int

// pruneCmd deletes old snapshot objects.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old snapshots of the shared world",
	Long: `Deletes the stored snapshots of every version except the newest --keep.
History entries stay and are marked as pruned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		world := rt.cfg.Sync.WorldID
		rows, err := rt.ledger.Prunable(ctx, world, pruneKeep)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			rt.logger.Info("No actions required", zap.String("world", world), zap.Int("keep", pruneKeep))
			return nil
		}

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		question := fmt.Sprintf("Delete %d snapshots of %s (versions %d to %d)?", len(rows), world, rows[0].Version, rows[len(rows)-1].Version)
		if !yesConfirm && !p.confirm(question) {
			rt.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		removed, err := rt.store.Prune(ctx, world, pruneKeep)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d snapshots.\n", removed)
		return err
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 10, "Number of newest snapshots to keep (at least 1)")
	pruneCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	RootCmd.AddCommand(pruneCmd)
}
