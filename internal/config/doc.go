// Package config resolves kata-ws paths and user settings.
//
// # Data Directory
//
// Everything kata-ws persists lives under one data directory, taken from
// $KATA_WS_DATA_DIR or <user config dir>/kata-cloud-agents:
//
//	config.toml                    user settings
//	workspaces/workspaces.json     workspace registry
//	workspaces/<slug>-<suffix>/    worktrees
//	repo-cache/github/<owner>__<repo>/  GitHub cache clones
//	audit/<id>.events.jsonl        lifecycle audit logs
//
// # Settings
//
// config.toml is optional. Recognized keys:
//
//	worktrees_dir = "/abs/path"   # where worktrees are created
//	clone_root    = "/abs/path"   # where GitHub clones are cached
//	max_workers   = 4             # concurrent git/gh jobs
//	git_binary    = "git"
//	gh_binary     = "gh"
//	log_file      = "/abs/path/kata-ws.log"
//	log_level     = "debug"
//	show_archived = false
//
// Unknown keys and invalid values are reported as malformed state.
package config
