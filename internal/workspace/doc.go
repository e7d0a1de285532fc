// Package workspace defines the workspace record and provisions the git
// worktrees that back it.
//
// # Records
//
// Workspace is the persisted record kept by the registry. Ids are "ws_"
// followed by 32 hex digits; SuffixFromID derives the four-character suffix
// used in branch and directory names:
//
//	id := workspace.NewID()               // ws_3f9a...
//	suffix := workspace.SuffixFromID(id)  // 3f9a
//
// # Naming
//
//	workspace.Slugify("KAT 154!!")              // kat-154
//	workspace.DeriveBranchName("KAT 154", "3f9a") // workspace/kat-154-3f9a
//
// # Provisioning
//
// Provisioner validates a LocalRequest and runs, through a system.Runner:
//
//	git rev-parse --is-inside-work-tree
//	git show-ref --verify --quiet refs/heads/<branch>
//	git symbolic-ref --short refs/remotes/origin/HEAD   (base ref probe)
//	git branch --show-current                           (base ref probe)
//	git worktree add <path> -b <branch> <base>
//
// Branches named main or master are always rejected.
package workspace
