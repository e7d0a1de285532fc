// Package remote resolves GitHub repositories into local cache clones and
// provisions workspaces from them.
//
// Only https://github.com/<owner>/<repo> URLs are accepted. Cache clones
// live at <root>/<owner>__<repo> and are refreshed with
// `git fetch --all --prune` on reuse. New repositories are created through
// the GitHub CLI (gh), which must be installed and authenticated.
package remote
