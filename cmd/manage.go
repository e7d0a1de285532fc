package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/logging"
)

var activateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a workspace the active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivate,
}

var archiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a workspace",
	Long: `Archive a workspace. The worktree and branch are left on disk; an active
workspace stops being active.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a workspace from the registry",
	Long: `Remove a workspace from the registry.

With --remove-files the worktree is also removed: through git when it is a
linked worktree of the origin repository, otherwise as a plain directory.
The branch is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteRemoveFiles bool

func init() {
	deleteCmd.Flags().BoolVar(&deleteRemoveFiles, "remove-files", false, "Also remove the worktree from disk")
	rootCmd.AddCommand(activateCmd, archiveCmd, deleteCmd)
}

func runActivate(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	if err := svc.SetActiveWorkspace(args[0]); err != nil {
		return err
	}
	logSuccess("Workspace %s is now active", args[0])
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}
	if err := svc.ArchiveWorkspace(args[0]); err != nil {
		return err
	}
	logSuccess("Workspace %s archived", args[0])
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	logging.Debug("deleting workspace", "id", args[0], "remove_files", deleteRemoveFiles)
	if err := svc.DeleteWorkspace(cmd.Context(), args[0], deleteRemoveFiles); err != nil {
		return err
	}
	if deleteRemoveFiles {
		logSuccess("Workspace %s deleted and worktree removed", args[0])
	} else {
		logSuccess("Workspace %s deleted", args[0])
	}
	return nil
}
