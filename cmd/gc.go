package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/health"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

var gcForce bool

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Find orphaned worktrees and stale workspace records",
	Long: `Reconciles the worktrees directory with the registry.

Without --force, prints what was found (dry run).
With --force, removes orphaned worktree directories. Records are never
removed by gc; use 'kata-ws delete' for those.

Detects:
  - Orphaned worktrees: directories in the worktrees directory with no record
  - Stale records: non-archived workspaces whose worktree is missing

Git keeps bookkeeping for removed worktrees until 'git worktree prune' runs
in the origin repository.`,
	Args: cobra.NoArgs,
	RunE: runGC,
}

func init() {
	gcCmd.Flags().BoolVar(&gcForce, "force", false, "Actually remove orphaned worktrees (default is dry run)")
	rootCmd.AddCommand(gcCmd)
}

// gcResult tracks what gc found and would/did clean up.
type gcResult struct {
	orphanedWorktrees []string
	staleWorkspaces   []*workspace.Workspace
}

func (r *gcResult) empty() bool {
	return len(r.orphanedWorktrees) == 0 && len(r.staleWorkspaces) == 0
}

func runGC(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	workspaces, err := a.Service.ListWorkspaces()
	if err != nil {
		return err
	}

	orphans, err := health.FindOrphans(a.Paths.WorktreesDir, workspaces)
	if err != nil {
		return fmt.Errorf("failed to scan worktrees directory: %w", err)
	}

	result := &gcResult{orphanedWorktrees: orphans}
	for _, ws := range workspaces {
		if ws.IsArchived() {
			continue
		}
		if _, err := os.Stat(ws.WorktreePath); os.IsNotExist(err) {
			result.staleWorkspaces = append(result.staleWorkspaces, ws)
		}
	}

	if result.empty() {
		logInfo("No orphaned worktrees or stale records found")
		return nil
	}

	w := cmd.OutOrStdout()
	if !gcForce {
		printGCDryRun(w, result)
		return nil
	}

	return executeGC(w, result)
}

func printGCDryRun(w io.Writer, result *gcResult) {
	fmt.Fprintln(w, "Dry run (use --force to actually clean up):")
	fmt.Fprintln(w)
	printStale(w, result)

	if len(result.orphanedWorktrees) > 0 {
		fmt.Fprintln(w, "Orphaned worktrees (no matching record):")
		for _, path := range result.orphanedWorktrees {
			fmt.Fprintf(w, "  %s\n", path)
		}
		fmt.Fprintln(w)
	}
}

func printStale(w io.Writer, result *gcResult) {
	if len(result.staleWorkspaces) == 0 {
		return
	}
	fmt.Fprintln(w, "Stale records (worktree missing):")
	for _, ws := range result.staleWorkspaces {
		fmt.Fprintf(w, "  %s %s (%s)\n", ws.ID, ws.Name, ws.WorktreePath)
	}
	fmt.Fprintln(w)
}

func executeGC(w io.Writer, result *gcResult) error {
	printStale(w, result)

	var failed int
	for _, path := range result.orphanedWorktrees {
		logging.Debug("removing orphaned worktree", "path", path)
		if err := os.RemoveAll(path); err != nil {
			logWarning("Failed to remove %s: %v", path, err)
			failed++
			continue
		}
		logSuccess("Removed %s", path)
	}

	if failed > 0 {
		return fmt.Errorf("failed to remove %d orphaned worktree(s)", failed)
	}
	return nil
}
