package cmd

import (
	"fmt"
	"io"

	"shared-save/core/reconcile"
	"shared-save/feature/worldsync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var remoteStatus bool

// statusCmd previews what an upload would contribute.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local changes since the last update",
	Long: `Lists the crafts you added, removed or altered since your world was last
updated from the shared save. With --remote the latest shared snapshot is fetched
and the merge an upload would publish is previewed. Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		dir, err := p.worldDir(rt.cfg.Sync.WorldDir)
		if err != nil {
			return err
		}
		req := worldsync.StatusRequest{WorldDir: dir, WorldID: rt.cfg.Sync.WorldID, Remote: remoteStatus}
		if remoteStatus {
			if req.Author, err = p.author(rt.cfg.Sync.Author); err != nil {
				return err
			}
		}

		res, err := rt.sync.Status(ctx, req)
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), rt.logger, req.WorldID, res)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&remoteStatus, "remote", false, "Preview the merge against the latest shared snapshot")
	RootCmd.AddCommand(statusCmd)
}

// printStatus prints local changes and the merge preview, if any.
func printStatus(out io.Writer, l *zap.Logger, worldID string, res *worldsync.StatusResult) {
	if res.NoBase {
		fmt.Fprintf(out, "%s was never updated from the shared save; every craft counts as added.\n", worldID)
	} else {
		fmt.Fprintf(out, "%s last synced at version %d.\n", worldID, res.BaseVersion)
	}

	l.Info("Local changes",
		zap.Int("added", len(res.Changes.Added)),
		zap.Int("removed", len(res.Changes.Removed)),
		zap.Int("altered", len(res.Changes.Altered)),
		zap.Int64("played_seconds", res.PlayedSeconds))

	if res.Changes.IsEmpty() {
		fmt.Fprintln(out, "No craft changes.")
	} else {
		for _, line := range changeLines(res.Changes) {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	fmt.Fprintf(out, "Played %s since the last sync.\n", formatPlayTime(res.PlayedSeconds))

	if res.Preview == nil {
		return
	}

	s := res.Preview.Plan.Summary
	l.Info("Merge preview",
		zap.Int64("against", res.RemoteVersion),
		zap.Int("added", s.Added),
		zap.Int("removed", s.Removed),
		zap.Int("altered", s.Altered),
		zap.Int("rekeyed", s.Rekeyed),
		zap.Int("resolved", s.Resolved))

	fmt.Fprintf(out, "Uploading now would publish on top of version %d:\n", res.RemoteVersion)
	printSummary(out, res.Preview.Summary)
}

func changeLines(c reconcile.ChangeSet) []string {
	lines := make([]string, 0, c.Len())
	for _, id := range c.IDs() {
		switch {
		case hasKey(c.Added, id):
			lines = append(lines, fmt.Sprintf("+ %s (%s)", c.Added[id].Name, id))
		case hasKey(c.Removed, id):
			lines = append(lines, fmt.Sprintf("- %s (%s)", c.Removed[id].Name, id))
		default:
			lines = append(lines, fmt.Sprintf("~ %s (%s)", c.Altered[id].New.Name, id))
		}
	}
	return lines
}

func hasKey[V any](m map[string]V, k string) bool {
	_, ok := m[k]
	return ok
}
