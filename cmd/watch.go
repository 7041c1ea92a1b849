package cmd

import (
	"errors"
	"fmt"

	"shared-save/core/notify"

	"github.com/spf13/cobra"
)

// watchCmd follows uploads to the shared world as they happen.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print change summaries as other players upload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, logg, err := loadSettings()
		if err != nil {
			return err
		}
		defer logg.Sync()

		n, err := notify.New(ctx, cfg.Notify, logg)
		if err != nil {
			return err
		}
		defer n.Close()

		redisNotifier, ok := n.(*notify.RedisNotifier)
		if !ok {
			return errors.New("notifications are disabled: set NOTIFY_REDIS_ADDR")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s. Press Ctrl+C to stop.\n", cfg.Sync.WorldID)
		return redisNotifier.Watch(ctx, cfg.Sync.WorldID, func(e notify.Event) {
			fmt.Fprintf(out, "%s  version %d by %s\n", e.PublishedAt.Local().Format("15:04:05"), e.Version, e.Author)
			printSummary(out, e.Lines)
		})
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
}
