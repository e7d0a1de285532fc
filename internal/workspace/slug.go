package workspace

import "strings"

// BranchPrefix prefixes every derived workspace branch.
const BranchPrefix = "workspace/"

// Slugify renders a name as a branch- and path-safe slug. ASCII letters and
// digits are lower-cased, every other run of characters becomes a single
// '-', and edge dashes are trimmed. An empty result becomes "workspace".
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "workspace"
	}
	return slug
}

// DeriveBranchName returns the default branch for a workspace name and suffix.
func DeriveBranchName(name, suffix string) string {
	return BranchPrefix + Slugify(name) + "-" + suffix
}

// DirectoryName returns the worktree directory name for a workspace.
func DirectoryName(name, suffix string) string {
	return Slugify(name) + "-" + suffix
}

// IsProtectedBranch reports whether branch is one a workspace may never use.
func IsProtectedBranch(branch string) bool {
	b := strings.TrimSpace(branch)
	return b == "main" || b == "master"
}
