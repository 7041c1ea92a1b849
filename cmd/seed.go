package cmd

import (
	"fmt"

	"shared-save/feature/worldsync"

	"github.com/spf13/cobra"
)

// seedCmd publishes a local world as the first shared version.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Publish your world as the first version of a new shared world",
	Args:  cobra.NoArgs,
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
		author, err := p.author(rt.cfg.Sync.Author)
		if err != nil {
			return err
		}

		version, err := rt.sync.Seed(ctx, worldsync.SeedRequest{WorldDir: dir, WorldID: rt.cfg.Sync.WorldID, Author: author})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s at version %d.\n", rt.cfg.Sync.WorldID, version)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)
}
