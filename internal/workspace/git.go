package workspace

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/system"
)

// Git wraps the git invocations used for worktree provisioning.
type Git struct {
	runner system.Runner
}

// NewGit returns a Git bound to runner.
func NewGit(runner system.Runner) *Git {
	return &Git{runner: runner}
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	return g.runner.Run(ctx, system.ToolGit, args, dir)
}

// IsInsideWorkTree reports whether dir is inside a git work tree. Git
// failures are returned as errors rather than reported as false.
func (g *Git) IsInsideWorkTree(ctx context.Context, dir string) (bool, error) {
	out, err := g.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

// BranchExists probes refs/heads/<branch>. Exit status 1 means the ref is
// missing; any other failure is a hard error.
func (g *Git) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	_, err := g.run(ctx, repo, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	if err == nil {
		return true, nil
	}
	if system.ExitCodeOf(err) == 1 {
		return false, nil
	}
	return false, err
}

// OriginDefaultBranch returns origin's symbolic HEAD, e.g. "origin/main".
func (g *Git) OriginDefaultBranch(ctx context.Context, repo string) (string, error) {
	return g.run(ctx, repo, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
}

// CurrentBranch returns the checked-out local branch, or "" when detached.
func (g *Git) CurrentBranch(ctx context.Context, repo string) (string, error) {
	return g.run(ctx, repo, "branch", "--show-current")
}

// AddWorktree creates a worktree at path on a new branch cut from base.
func (g *Git) AddWorktree(ctx context.Context, repo, path, branch, base string) error {
	_, err := g.run(ctx, repo, "worktree", "add", path, "-b", branch, base)
	return err
}

// RemoveWorktree force-removes the worktree at path.
func (g *Git) RemoveWorktree(ctx context.Context, repo, path string) error {
	_, err := g.run(ctx, repo, "worktree", "remove", "--force", path)
	return err
}

// DeleteBranch force-deletes branch.
func (g *Git) DeleteBranch(ctx context.Context, repo, branch string) error {
	_, err := g.run(ctx, repo, "branch", "-D", branch)
	return err
}

// Clone clones url into dest.
func (g *Git) Clone(ctx context.Context, url, dest string) error {
	_, err := g.run(ctx, "", "clone", url, dest)
	return err
}

// FetchAll fetches every remote of repo, pruning stale refs.
func (g *Git) FetchAll(ctx context.Context, repo string) error {
	_, err := g.run(ctx, repo, "fetch", "--all", "--prune")
	return err
}

// Worktree is one entry of `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	Head     string
	Branch   string
	Bare     bool
	Detached bool
}

// ListWorktrees returns the worktrees of repo. The first entry is the main
// working tree.
func (g *Git) ListWorktrees(ctx context.Context, repo string) ([]Worktree, error) {
	out, err := g.run(ctx, repo, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

func parseWorktreeList(out string) []Worktree {
	var worktrees []Worktree
	var cur *Worktree

	flush := func() {
		if cur != nil {
			worktrees = append(worktrees, *cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case cur == nil:
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			cur.Bare = true
		case line == "detached":
			cur.Detached = true
		}
	}
	flush()
	return worktrees
}

// IsLinkedWorktree reports whether path is a linked (non-main) worktree of
// repo.
func (g *Git) IsLinkedWorktree(ctx context.Context, repo, path string) (bool, error) {
	worktrees, err := g.ListWorktrees(ctx, repo)
	if err != nil {
		return false, err
	}
	target := canonicalOrClean(path)
	for i, wt := range worktrees {
		if i == 0 {
			continue
		}
		if canonicalOrClean(wt.Path) == target {
			return true, nil
		}
	}
	logging.Debug("path is not a linked worktree", "component", logging.CompWorkspace, "repo", repo, "path", path)
	return false, nil
}

// canonicalOrClean resolves symlinks when the path exists and falls back to
// a cleaned absolute path otherwise.
func canonicalOrClean(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Canonicalize returns the absolute, symlink-free form of an existing path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.IoFailure("failed to resolve "+path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.IoFailure("failed to resolve "+path, err)
	}
	return resolved, nil
}
