// Package lifecycle provides workspace lifecycle management for kata-ws.
//
// Service ties the provisioner, the GitHub resolver and the registry
// together. Provisioning and cleanup run on a bounded worker pool; the
// registry is only touched once provisioning has succeeded.
//
// # Creating workspaces
//
//	svc := lifecycle.New(reg, runner, pool, paths, lifecycle.WithAudit(auditLog))
//
//	ws, err := svc.CreateLocalWorkspace(ctx, lifecycle.CreateLocalInput{
//	    RepoPath:      "/path/to/repo",
//	    WorkspaceName: "KAT-154",
//	})
//
// Three sources are supported:
//
//   - CreateLocalWorkspace: a worktree of a local repository
//   - CreateGithubWorkspace: a worktree of a cached clone of a GitHub repository
//   - CreateNewGithubWorkspace: a new private GitHub repository, cloned and worked in
//
// A created workspace is ready and becomes the active workspace.
//
// # Deleting workspaces
//
// DeleteWorkspace removes the record first. With removeFiles the worktree
// is then removed with git worktree remove when it is a linked worktree of
// its origin repository, and deleted recursively otherwise.
package lifecycle
