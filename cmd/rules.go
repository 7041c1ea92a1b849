package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const rulesText = `
These rules keep the shared save fun for everyone. Please read them before you upload.

Rules:
 1. Give crafts names you would be happy for every player to read.
 2. Do not add to, destroy or alter another player's craft without their permission.
 3. Keep part counts low. Everyone downloads the whole world.
 4. Do not fill the launch pad or low orbit with debris and test crafts.
 5. Do not park crafts where they get in other players' way.

How it works:
 • "update" overwrites your local copy of the shared world. Upload anything you want
   to keep first; update refuses while you have changes that were never uploaded.
 • "upload" merges your changes into whatever was shared since your last update.
   Two players altering the same craft differently cannot be merged; the upload stops
   and names the craft so you can update and redo your change.
 • After an upload your in-game quicksaves are deleted so the save menu stays tidy.
 • Every upload is summarised (added, removed and altered crafts) and announced to
   the other players.
`

const menuText = `
 • New to the shared save? Type "rules" to read the rules and how syncing works.
 • To download the latest shared world, type "update".
 • To upload your crafts to the shared world, type "upload".
 • To show this menu again, type "help".
 • To quit, type "quit".
`

// rulesCmd prints the rules of the shared save.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the rules and how syncing works",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), rulesText)
	},
}

func init() {
	RootCmd.AddCommand(rulesCmd)
}
