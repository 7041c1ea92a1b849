package cmd

import (
	"github.com/spf13/cobra"
)

var twoWayUpload bool

// uploadCmd merges local changes into the shared snapshot.
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Merge your local changes into the shared snapshot",
	Long: `Compares your world with the snapshot it was last updated from, merges your
additions, removals and alterations into the latest shared snapshot and publishes it.

If the shared snapshot advances while merging, the merge is redone. Conflicting
alterations of the same craft abort the upload without changing anything.

Use --two-way for a world that was never updated from the shared save.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		return runUpload(ctx, rt, p, cmd.OutOrStdout(), syncOptions{twoWay: twoWayUpload})
	},
}

func init() {
	uploadCmd.Flags().BoolVar(&twoWayUpload, "two-way", false, "Merge without a retained base (nothing is removed)")
	RootCmd.AddCommand(uploadCmd)
}
