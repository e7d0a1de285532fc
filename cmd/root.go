package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "kata-ws",
	Short: "Kata workspace management CLI",
	Long: `kata-ws manages git worktree workspaces for Kata agents.

Each workspace is:
  - A linked git worktree on its own workspace/<slug>-<suffix> branch
  - Backed by a local repository or a cached GitHub clone
  - Recorded in a JSON registry with one active workspace at a time`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		logging.Stdout = cmd.OutOrStdout()
		logging.Stderr = cmd.ErrOrStderr()
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context;
// creates already handed to the worker pool still finish before exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdown()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default $KATA_WS_DATA_DIR or the user config dir)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
