package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/system"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// repoListLimit caps the number of repositories requested from gh.
const repoListLimit = 200

// ExistingRequest provisions a workspace from an existing GitHub repository.
type ExistingRequest struct {
	URL             string
	Name            string
	Branch          string
	BaseRef         string
	Suffix          string
	DestinationRoot string
	// CloneRoot overrides the cache root when non-blank.
	CloneRoot string
}

// NewRequest creates a GitHub repository and provisions a workspace from it.
type NewRequest struct {
	// Repository is "name" or "owner/name".
	Repository      string
	Name            string
	Branch          string
	BaseRef         string
	Suffix          string
	DestinationRoot string
	CloneRoot       string
}

// NewResult is the outcome of CreateNew.
type NewResult struct {
	Prepared *workspace.Prepared
	// RepoURL is the canonical URL of the created repository.
	RepoURL string
}

// Resolver maintains cache clones of GitHub repositories and provisions
// worktrees from them.
type Resolver struct {
	runner      system.Runner
	provisioner *workspace.Provisioner
	cacheRoot   string
	log         *slog.Logger
}

// NewResolver returns a Resolver. cacheRoot is used when a request does not
// name its own clone root.
func NewResolver(runner system.Runner, provisioner *workspace.Provisioner, cacheRoot string) *Resolver {
	return &Resolver{
		runner:      runner,
		provisioner: provisioner,
		cacheRoot:   cacheRoot,
		log:         logging.With("component", logging.CompRemote),
	}
}

func (r *Resolver) rootFor(cloneRoot string) string {
	if strings.TrimSpace(cloneRoot) != "" {
		return cloneRoot
	}
	return r.cacheRoot
}

// CreateFromExisting refreshes (or clones) the cache copy of req.URL and
// provisions a worktree from it.
func (r *Resolver) CreateFromExisting(ctx context.Context, req ExistingRequest) (*workspace.Prepared, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.InvalidInput("workspace name is required")
	}
	if workspace.IsProtectedBranch(req.Branch) {
		return nil, errors.InvalidInput("workspace branch cannot be main/master")
	}
	repo, err := ParseRepoURL(req.URL)
	if err != nil {
		return nil, err
	}
	cachePath, err := repo.CachePath(r.rootFor(req.CloneRoot))
	if err != nil {
		return nil, err
	}

	git := r.provisioner.Git()
	if _, err := os.Stat(cachePath); err == nil {
		r.log.Info("refreshing cached repository", "repo", repo.FullName(), "path", cachePath)
		if err := git.FetchAll(ctx, cachePath); err != nil {
			return nil, err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
			return nil, errors.IoFailure("failed to create cache directory", err)
		}
		r.log.Info("cloning repository", "url", req.URL, "path", cachePath)
		if err := git.Clone(ctx, strings.TrimSpace(req.URL), cachePath); err != nil {
			return nil, err
		}
	}

	return r.provisioner.Prepare(ctx, workspace.LocalRequest{
		RepoPath:        cachePath,
		Name:            req.Name,
		Branch:          req.Branch,
		BaseRef:         req.BaseRef,
		Suffix:          req.Suffix,
		DestinationRoot: req.DestinationRoot,
	})
}

// CreateNew creates a private GitHub repository with a README, clones it into
// the cache and provisions a worktree from the clone.
func (r *Resolver) CreateNew(ctx context.Context, req NewRequest) (*NewResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.InvalidInput("workspace name is required")
	}
	if workspace.IsProtectedBranch(req.Branch) {
		return nil, errors.InvalidInput("workspace branch cannot be main/master")
	}
	owner, name, err := SplitRepoName(req.Repository)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		owner, err = r.AuthenticatedUser(ctx)
		if err != nil {
			return nil, err
		}
	}
	repo := Repo{Owner: owner, Name: name}

	root := r.rootFor(req.CloneRoot)
	dest, err := repo.CachePath(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Lstat(dest); err == nil {
		return nil, errors.InvalidInput("clone destination already exists: %s", dest)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.IoFailure("failed to create cache directory", err)
	}

	// gh clones into <cwd>/<name>, so create in a staging directory and move
	// the clone into place.
	staging, err := os.MkdirTemp(root, ".create-")
	if err != nil {
		return nil, errors.IoFailure("failed to create staging directory", err)
	}
	defer os.RemoveAll(staging)

	r.log.Info("creating repository", "repo", repo.FullName())
	args := []string{"repo", "create", repo.FullName(), "--private", "--add-readme", "--clone"}
	if _, err := r.runner.Run(ctx, system.ToolGH, args, staging); err != nil {
		return nil, err
	}
	if err := os.Rename(filepath.Join(staging, name), dest); err != nil {
		return nil, errors.IoFailure("failed to move clone of "+repo.FullName()+" into place", err)
	}

	prepared, err := r.provisioner.Prepare(ctx, workspace.LocalRequest{
		RepoPath:        dest,
		Name:            req.Name,
		Branch:          req.Branch,
		BaseRef:         req.BaseRef,
		Suffix:          req.Suffix,
		DestinationRoot: req.DestinationRoot,
	})
	if err != nil {
		return nil, err
	}
	return &NewResult{Prepared: prepared, RepoURL: repo.URL()}, nil
}

// AuthenticatedUser returns the login gh is authenticated as.
func (r *Resolver) AuthenticatedUser(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, system.ToolGH, []string{"api", "user", "--jq", ".login"}, "")
	if err != nil {
		return "", err
	}
	login := strings.TrimSpace(out)
	if login == "" {
		return "", errors.InvalidInput("could not determine the GitHub user, run `gh auth login` or pass <owner>/<name>")
	}
	return login, nil
}

// ListRepositories returns the non-archived source repositories visible to
// the authenticated gh user.
func (r *Resolver) ListRepositories(ctx context.Context) ([]Candidate, error) {
	args := []string{
		"repo", "list",
		"--json", "nameWithOwner,url,isPrivate,updatedAt",
		"--source", "--no-archived",
		"--limit", strconv.Itoa(repoListLimit),
	}
	out, err := r.runner.Run(ctx, system.ToolGH, args, "")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var candidates []Candidate
	if err := json.Unmarshal([]byte(out), &candidates); err != nil {
		return nil, errors.Wrap(errors.KindExternalToolFailure, "unexpected output from gh repo list", err)
	}
	if len(candidates) > repoListLimit {
		candidates = candidates[:repoListLimit]
	}
	r.log.Debug("listed repositories", "count", len(candidates))
	return candidates, nil
}
