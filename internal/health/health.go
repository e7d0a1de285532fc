package health

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/system"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// Status represents the health status of a workspace
type Status string

const (
	StatusHealthy        Status = "healthy"
	StatusMissing        Status = "missing"
	StatusDetached       Status = "detached"
	StatusBranchMismatch Status = "branch-mismatch"
	StatusArchived       Status = "archived"
)

// CheckResult contains the results of health checks
type CheckResult struct {
	WorktreeExists bool
	RepoExists     bool
	LinkedWorktree bool
	// CurrentBranch is the branch git reports for the worktree, "" when
	// detached or not listed.
	CurrentBranch string
	Age           string
}

// Checker inspects workspaces through git.
type Checker struct {
	git *workspace.Git
	now func() time.Time
	log *slog.Logger
}

// NewChecker creates a checker that runs git through runner.
func NewChecker(runner system.Runner) *Checker {
	return &Checker{
		git: workspace.NewGit(runner),
		now: time.Now,
		log: logging.With("component", logging.CompHealth),
	}
}

// Check performs all health checks for a workspace. Archived workspaces get
// only the filesystem checks.
func (c *Checker) Check(ctx context.Context, ws *workspace.Workspace) *CheckResult {
	result := &CheckResult{
		WorktreeExists: isDir(ws.WorktreePath),
		RepoExists:     isDir(ws.RepoRootPath),
		Age:            age(ws.CreatedAt, c.now()),
	}
	if ws.IsArchived() || !result.WorktreeExists || !result.RepoExists {
		return result
	}

	worktrees, err := c.git.ListWorktrees(ctx, ws.RepoRootPath)
	if err != nil {
		c.log.Debug("failed to list worktrees", "id", ws.ID, "repo", ws.RepoRootPath, "error", err)
		return result
	}
	target := canonical(ws.WorktreePath)
	for i, wt := range worktrees {
		if i == 0 || canonical(wt.Path) != target {
			continue
		}
		result.LinkedWorktree = true
		result.CurrentBranch = wt.Branch
		break
	}
	return result
}

// Summarize reduces a check result to a single status.
func Summarize(ws *workspace.Workspace, r *CheckResult) Status {
	switch {
	case ws.IsArchived():
		return StatusArchived
	case !r.WorktreeExists:
		return StatusMissing
	case !r.LinkedWorktree:
		return StatusDetached
	case r.CurrentBranch != ws.Branch:
		return StatusBranchMismatch
	default:
		return StatusHealthy
	}
}

// GetSummary checks ws and returns its status.
func (c *Checker) GetSummary(ctx context.Context, ws *workspace.Workspace) Status {
	return Summarize(ws, c.Check(ctx, ws))
}

// FindOrphans returns the directories directly under worktreesDir that no
// workspace record points at, sorted. A missing worktreesDir has no orphans.
func FindOrphans(worktreesDir string, workspaces []*workspace.Workspace) ([]string, error) {
	entries, err := os.ReadDir(worktreesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", worktreesDir, err)
	}

	known := make(map[string]bool, len(workspaces))
	for _, ws := range workspaces {
		known[canonical(ws.WorktreePath)] = true
	}

	var orphans []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(worktreesDir, entry.Name())
		if !known[canonical(path)] {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// age renders the time since a persisted timestamp, or "unknown".
func age(createdAt string, now time.Time) string {
	t, err := workspace.ParseTime(createdAt)
	if err != nil {
		return "unknown"
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	return formatDuration(d)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
