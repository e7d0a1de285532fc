package workspace

import (
	"context"
	"os"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/system"
)

// LocalRequest describes a worktree to provision from an existing repository.
type LocalRequest struct {
	// RepoPath is the origin repository on disk.
	RepoPath string
	// Name is the human-readable workspace name.
	Name string
	// Branch overrides the derived branch name when non-blank.
	Branch string
	// BaseRef overrides base-ref detection when non-blank.
	BaseRef string
	// Suffix disambiguates derived branch and directory names.
	Suffix string
	// DestinationRoot is the directory worktrees are created under.
	DestinationRoot string
}

// Provisioner creates isolated git worktrees for new workspaces.
type Provisioner struct {
	git *Git
}

// NewProvisioner returns a Provisioner that invokes git through runner.
func NewProvisioner(runner system.Runner) *Provisioner {
	return &Provisioner{git: NewGit(runner)}
}

// Git exposes the underlying git helper.
func (p *Provisioner) Git() *Git {
	return p.git
}

// Prepare validates req and creates a worktree on a new branch.
func (p *Provisioner) Prepare(ctx context.Context, req LocalRequest) (*Prepared, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.InvalidInput("workspace name is required")
	}
	if strings.TrimSpace(req.DestinationRoot) == "" {
		return nil, errors.InvalidInput("worktree destination root is required")
	}

	repoPath := strings.TrimSpace(req.RepoPath)
	info, err := os.Stat(repoPath)
	if repoPath == "" || err != nil {
		return nil, errors.InvalidInput("repository path does not exist: %s", req.RepoPath)
	}
	if !info.IsDir() {
		return nil, errors.InvalidInput("repository path is not a directory: %s", req.RepoPath)
	}
	repoRoot, err := Canonicalize(repoPath)
	if err != nil {
		return nil, errors.InvalidInput("cannot resolve repository path %s: %v", req.RepoPath, err)
	}
	inside, err := p.git.IsInsideWorkTree(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, errors.InvalidInput("not a git work tree: %s", repoRoot)
	}

	branch := strings.TrimSpace(req.Branch)
	if branch == "" {
		branch = DeriveBranchName(name, req.Suffix)
	}
	if IsProtectedBranch(branch) {
		return nil, errors.InvalidInput("workspace branch cannot be main/master")
	}
	exists, err := p.git.BranchExists(ctx, repoRoot, branch)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.InvalidInput("branch already exists: %s", branch)
	}

	baseRef := strings.TrimSpace(req.BaseRef)
	if baseRef == "" {
		baseRef = p.resolveBaseRef(ctx, repoRoot)
	}

	worktreePath, err := securejoin.SecureJoin(req.DestinationRoot, DirectoryName(name, req.Suffix))
	if err != nil {
		return nil, errors.InvalidInput("invalid worktree path under %s: %v", req.DestinationRoot, err)
	}
	if _, err := os.Lstat(worktreePath); err == nil {
		return nil, errors.InvalidInput("worktree path already exists: %s", worktreePath)
	}
	if err := os.MkdirAll(req.DestinationRoot, 0755); err != nil {
		return nil, errors.IoFailure("failed to create worktree directory "+req.DestinationRoot, err)
	}

	logging.Debug("adding worktree",
		"component", logging.CompWorkspace,
		"repo", repoRoot,
		"path", worktreePath,
		"branch", branch,
		"base", baseRef)
	if err := p.git.AddWorktree(ctx, repoRoot, worktreePath, branch, baseRef); err != nil {
		return nil, err
	}

	canonicalWorktree, err := Canonicalize(worktreePath)
	if err != nil {
		return nil, err
	}
	if canonicalWorktree == repoRoot {
		return nil, errors.InvalidInput("worktree path must differ from repository root: %s", repoRoot)
	}

	return &Prepared{
		RepoRootPath: repoRoot,
		WorktreePath: canonicalWorktree,
		Branch:       branch,
		BaseRef:      baseRef,
	}, nil
}

// resolveBaseRef picks the ref a new branch is cut from: origin's default
// branch, then the current branch, then HEAD. Probe failures fall through.
func (p *Provisioner) resolveBaseRef(ctx context.Context, repo string) string {
	if ref, err := p.git.OriginDefaultBranch(ctx, repo); err == nil && strings.TrimSpace(ref) != "" {
		return strings.TrimSpace(ref)
	}
	if ref, err := p.git.CurrentBranch(ctx, repo); err == nil && strings.TrimSpace(ref) != "" {
		return strings.TrimSpace(ref)
	}
	return "HEAD"
}
