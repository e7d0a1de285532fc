package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/tui"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactive workspace picker",
	Long: `Opens an interactive TUI for selecting workspaces, grouped by origin
repository.

Use arrow keys or j/k to navigate, / to filter.

Actions:
  Enter  - Make the selected workspace active
  a      - Archive the selected workspace
  d      - Delete the selected workspace (files are kept)
  q/Esc  - Quit`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

// runPicker is replaced in tests.
var runPicker = tui.RunPicker

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	svc := a.Service

	logging.Debug("picker mode started")

	all, err := svc.ListWorkspaces()
	if err != nil {
		return err
	}
	activeID, err := svc.GetActiveWorkspaceID()
	if err != nil {
		return err
	}

	workspaces := all
	if !a.Settings.ShowArchived {
		workspaces = make([]*workspace.Workspace, 0, len(all))
		for _, ws := range all {
			if !ws.IsArchived() {
				workspaces = append(workspaces, ws)
			}
		}
	}

	if len(workspaces) == 0 {
		logInfo("No workspaces found. Create one with: kata-ws create local --repo <path> --name <name>")
		return nil
	}

	result, err := runPicker(workspaces, activeID)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action)

	if result.Workspace == nil {
		return nil
	}
	id := result.Workspace.ID

	switch result.Action {
	case tui.ActionActivate:
		if err := svc.SetActiveWorkspace(id); err != nil {
			return err
		}
		logSuccess("Workspace %s is now active", result.Workspace.Name)
		fmt.Fprintln(cmd.OutOrStdout(), result.Workspace.WorktreePath)

	case tui.ActionArchive:
		if err := svc.ArchiveWorkspace(id); err != nil {
			return err
		}
		logSuccess("Workspace %s archived", result.Workspace.Name)

	case tui.ActionDelete:
		if err := svc.DeleteWorkspace(cmd.Context(), id, false); err != nil {
			return err
		}
		logSuccess("Workspace %s deleted", result.Workspace.Name)
		logInfo("The worktree is still at %s; use 'kata-ws delete %s --remove-files' next time to remove it", result.Workspace.WorktreePath, id)
	}

	return nil
}
