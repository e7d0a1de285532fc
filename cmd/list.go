package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workspaces",
	Long: `List workspaces in registry order. The active workspace is marked with *.

Archived workspaces are hidden unless --all is given or show_archived is set
in config.toml.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the active workspace",
	Args:  cobra.NoArgs,
	RunE:  runActive,
}

var (
	listAll  bool
	listJSON bool
)

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include archived workspaces")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output workspaces as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(activeCmd)
}

type listOutput struct {
	Workspaces        []*workspace.Workspace `json:"workspaces"`
	ActiveWorkspaceID *string                `json:"activeWorkspaceId"`
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	all, err := a.Service.ListWorkspaces()
	if err != nil {
		return err
	}
	activeID, err := a.Service.GetActiveWorkspaceID()
	if err != nil {
		return err
	}

	showArchived := listAll || a.Settings.ShowArchived
	visible := make([]*workspace.Workspace, 0, len(all))
	for _, ws := range all {
		if ws.IsArchived() && !showArchived {
			continue
		}
		visible = append(visible, ws)
	}

	if listJSON {
		out := listOutput{Workspaces: visible}
		if activeID != "" {
			out.ActiveWorkspaceID = &activeID
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if len(visible) == 0 {
		logInfo("No workspaces found. Create one with: kata-ws create local --repo <path> --name <name>")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  %-38s %-24s %-9s %s\n", "ID", "NAME", "STATUS", "BRANCH")
	for _, ws := range visible {
		printWorkspace(w, ws, ws.ID == activeID)
	}
	if hidden := len(all) - len(visible); hidden > 0 {
		fmt.Fprintf(w, "\n%d archived workspace(s) hidden, use --all to show\n", hidden)
	}
	return nil
}

func runActive(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	id, err := svc.GetActiveWorkspaceID()
	if err != nil {
		return err
	}
	if id == "" {
		logInfo("No active workspace")
		return nil
	}

	ws, err := svc.GetWorkspace(id)
	if err != nil {
		return err
	}
	printWorkspaceDetails(cmd.OutOrStdout(), ws)
	return nil
}
