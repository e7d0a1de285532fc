// Package registry persists the catalog of workspaces and the active
// workspace pointer.
//
// The registry is a single JSON document:
//
//	{
//	  "workspaces": [ ... ],
//	  "activeWorkspaceId": "ws_..." | null
//	}
//
// It is loaded once by Open and rewritten atomically after every mutation.
// All mutation goes through Update, which holds the registry lock only for
// the in-memory change and the save. After every successful call:
//
//   - workspace ids are unique
//   - the active id, if set, names an existing workspace
//   - archiving or removing the active workspace clears the active id
//   - no workspace's worktree path equals its repository root
//   - no workspace uses the branch main or master
//
// A panic inside Update poisons the registry; every later call fails with
// errors.KindStateUnavailable.
package registry
