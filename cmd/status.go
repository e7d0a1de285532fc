package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show detailed status of a workspace",
	Long: `Show a workspace record and check it against the disk: the worktree and
origin repository exist, git lists the worktree, and the recorded branch is
checked out.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	ws, err := a.Service.GetWorkspace(args[0])
	if err != nil {
		return err
	}
	activeID, err := a.Service.GetActiveWorkspaceID()
	if err != nil {
		return err
	}

	result := health.NewChecker(a.Runner).Check(cmd.Context(), ws)
	status := health.Summarize(ws, result)

	w := cmd.OutOrStdout()
	printWorkspaceDetails(w, ws)
	fmt.Fprintf(w, "  Status:   %s\n", ws.Status)
	fmt.Fprintf(w, "  Active:   %s\n", boolStatus(ws.ID == activeID))
	fmt.Fprintf(w, "  Created:  %s (%s ago)\n", ws.CreatedAt, result.Age)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Health Checks:")
	fmt.Fprintf(w, "  Repository: %s\n", boolStatus(result.RepoExists))
	fmt.Fprintf(w, "  Worktree:   %s\n", boolStatus(result.WorktreeExists))
	if !ws.IsArchived() && result.WorktreeExists {
		fmt.Fprintf(w, "  Linked:     %s\n", boolStatus(result.LinkedWorktree))
		if result.LinkedWorktree {
			fmt.Fprintf(w, "  Branch:     %s\n", boolStatus(result.CurrentBranch == ws.Branch))
		}
	}
	fmt.Fprintf(w, "  Summary:    %s\n", status)

	return nil
}

func boolStatus(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
