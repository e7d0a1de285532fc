package lifecycle

import (
	"context"

	"github.com/gannonh/kata-cloud-agents/internal/audit"
	"github.com/gannonh/kata-cloud-agents/internal/registry"
	"github.com/gannonh/kata-cloud-agents/internal/remote"
	"github.com/gannonh/kata-cloud-agents/internal/worker"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// provision prepares the worktree for a new workspace and reports the
// source recorded on it.
type provision func(ctx context.Context, suffix string) (prepared *workspace.Prepared, source string, err error)

// CreateLocalWorkspace creates a worktree from a local repository and makes
// it the active workspace.
func (s *Service) CreateLocalWorkspace(ctx context.Context, in CreateLocalInput) (*workspace.Workspace, error) {
	return s.create(ctx, workspace.SourceLocal, in.WorkspaceName, func(ctx context.Context, suffix string) (*workspace.Prepared, string, error) {
		prepared, err := s.provisioner.Prepare(ctx, workspace.LocalRequest{
			RepoPath:        in.RepoPath,
			Name:            in.WorkspaceName,
			Branch:          in.BranchName,
			BaseRef:         in.BaseRef,
			Suffix:          suffix,
			DestinationRoot: s.paths.WorktreesDir,
		})
		return prepared, in.RepoPath, err
	})
}

// CreateGithubWorkspace creates a worktree from a cached clone of an existing
// GitHub repository and makes it the active workspace.
func (s *Service) CreateGithubWorkspace(ctx context.Context, in CreateGithubInput) (*workspace.Workspace, error) {
	return s.create(ctx, workspace.SourceGithub, in.WorkspaceName, func(ctx context.Context, suffix string) (*workspace.Prepared, string, error) {
		prepared, err := s.resolver.CreateFromExisting(ctx, remote.ExistingRequest{
			URL:             in.RepoURL,
			Name:            in.WorkspaceName,
			Branch:          in.BranchName,
			BaseRef:         in.BaseRef,
			Suffix:          suffix,
			DestinationRoot: s.paths.WorktreesDir,
			CloneRoot:       in.CloneRootPath,
		})
		return prepared, in.RepoURL, err
	})
}

// CreateNewGithubWorkspace creates a private GitHub repository, clones it and
// makes a worktree of the clone the active workspace. The workspace source is
// the new repository's URL.
func (s *Service) CreateNewGithubWorkspace(ctx context.Context, in CreateNewGithubInput) (*workspace.Workspace, error) {
	return s.create(ctx, workspace.SourceGithub, in.WorkspaceName, func(ctx context.Context, suffix string) (*workspace.Prepared, string, error) {
		result, err := s.resolver.CreateNew(ctx, remote.NewRequest{
			Repository:      in.RepositoryName,
			Name:            in.WorkspaceName,
			Branch:          in.BranchName,
			BaseRef:         in.BaseRef,
			Suffix:          suffix,
			DestinationRoot: s.paths.WorktreesDir,
			CloneRoot:       in.CloneRootPath,
		})
		if err != nil {
			return nil, "", err
		}
		return result.Prepared, result.RepoURL, nil
	})
}

// create runs provisioning and the registry commit as one pool job, so a
// caller that stops waiting still ends up with a recorded workspace.
func (s *Service) create(ctx context.Context, sourceType workspace.SourceType, name string, prepare provision) (*workspace.Workspace, error) {
	id := s.newID()
	suffix := workspace.SuffixFromID(id)
	log := s.log.With("id", id, "source_type", sourceType)

	return worker.Do(ctx, s.pool, func(ctx context.Context) (*workspace.Workspace, error) {
		log.Debug("provisioning workspace", "name", name)
		prepared, source, err := prepare(ctx, suffix)
		if err != nil {
			log.Debug("provisioning failed", "error", err)
			return nil, err
		}

		var created *workspace.Workspace
		err = s.registry.Update(func(tx *registry.Tx) error {
			if err := tx.Insert(workspace.New(id, name, sourceType, source, prepared, tx.Now())); err != nil {
				return err
			}
			if err := tx.SetActive(id); err != nil {
				return err
			}
			ws, err := tx.Get(id)
			if err != nil {
				return err
			}
			created = ws.Clone()
			return nil
		})
		if err != nil {
			log.Warn("provisioned worktree could not be recorded, rolling back", "path", prepared.WorktreePath, "error", err)
			s.rollback(ctx, prepared)
			return nil, err
		}

		log.Info("workspace created", "name", created.Name, "branch", created.Branch, "path", created.WorktreePath)
		s.record(audit.EventCreate, id, created.Branch+" at "+created.WorktreePath)
		return created, nil
	})
}

// rollback removes a worktree that was provisioned but never recorded,
// along with its branch.
func (s *Service) rollback(ctx context.Context, p *workspace.Prepared) {
	log := s.log.With("path", p.WorktreePath, "branch", p.Branch)
	git := s.provisioner.Git()
	if err := git.RemoveWorktree(ctx, p.RepoRootPath, p.WorktreePath); err != nil {
		log.Debug("git worktree remove failed, deleting directory", "error", err)
		if err := s.removeAll(p.WorktreePath); err != nil {
			log.Warn("failed to remove unrecorded worktree", "error", err)
		}
	}
	if err := git.DeleteBranch(ctx, p.RepoRootPath, p.Branch); err != nil {
		log.Warn("failed to delete branch of unrecorded worktree", "error", err)
	}
}
