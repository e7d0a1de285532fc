// Package health checks that a workspace record still matches the disk.
//
// A record can drift from its worktree: the directory may have been removed
// by hand, the worktree pruned from the origin repository, or a different
// branch checked out in it.
//
// # Health Status
//
// Workspace health is represented by Status:
//
//	StatusHealthy        - Worktree present, linked to the origin, on its branch
//	StatusMissing        - Worktree directory is gone
//	StatusDetached       - Directory exists but git does not list it as a worktree
//	StatusBranchMismatch - Worktree has another branch (or none) checked out
//	StatusArchived       - Workspace is archived; nothing else is checked
//
// # Checks
//
//	checker := health.NewChecker(runner)
//	result := checker.Check(ctx, ws)
//	// result.WorktreeExists, .RepoExists, .LinkedWorktree, .CurrentBranch, .Age
//
//	status := checker.GetSummary(ctx, ws)
//
// Worktree directories that no record points at are found with FindOrphans.
package health
