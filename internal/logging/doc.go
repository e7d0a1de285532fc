// Package logging provides logging utilities for kata-ws.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("provisioning worktree", "repo", repo, "branch", branch)
//	logging.Warn("worktree remove failed, falling back", "path", path, "error", err)
//
// Components tag their records so they can be filtered:
//
//	log := logging.With("component", logging.CompRegistry)
//
// When a log file is configured, SetupFile tees records into a rotating
// JSON file (lumberjack) next to the regular stderr output.
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Cloning %s...", url)
//	logging.UserSuccess("Workspace %s created", name)
//	logging.UserWarning("Archived workspaces hidden, use --all")
//	logging.UserError("Cleanup failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
