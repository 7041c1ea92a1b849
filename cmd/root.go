package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shared-save/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir  string
	worldFlag  string
	dirFlag    string
	authorFlag string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "shared-save",
	Short: "Shared world save synchronizer",
	Long: `shared-save keeps one world save shared between players.

"update" replaces your local world with the latest shared snapshot.
"upload" merges your local changes into the shared snapshot and publishes it.
Run without a command to use the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newMenu(cmd.InOrStdin(), cmd.OutOrStdout(), &cliActions{cmd: cmd}).run(cmd.Context())
	},
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// "debug" selects the development config for readable ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", ".", "Directory holding .env and config.yaml")
	flags.StringVarP(&worldFlag, "world", "w", "", "Shared world id (overrides SYNC_WORLD_ID)")
	flags.StringVarP(&dirFlag, "dir", "d", "", "Absolute path of the local world directory (overrides SYNC_WORLD_DIR)")
	flags.StringVarP(&authorFlag, "author", "a", "", "Label attached to your uploaded changes (overrides SYNC_AUTHOR)")
}
