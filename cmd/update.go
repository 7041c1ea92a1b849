package cmd

import (
	"github.com/spf13/cobra"
)

var (
	forceUpdate bool
	yesConfirm  bool
)

// updateCmd replaces the local world with the latest shared snapshot.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the latest shared snapshot into your world folder",
	Long: `Replaces your local world with the latest shared snapshot.

Local changes that were never uploaded make the update refuse. Use --force to
discard them (asks for confirmation unless --yes is given).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		if forceUpdate && !yesConfirm && !p.confirm("--force discards local changes that were never uploaded.") {
			rt.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		return runUpdate(ctx, rt, p, cmd.OutOrStdout(), syncOptions{force: forceUpdate})
	},
}

func init() {
	updateCmd.Flags().BoolVar(&forceUpdate, "force", false, "Discard local changes that were never uploaded")
	updateCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	RootCmd.AddCommand(updateCmd)
}
