package lifecycle

import (
	"context"
	"os"

	"github.com/gannonh/kata-cloud-agents/internal/audit"
	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/worker"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// DeleteWorkspace removes id from the registry. When removeFiles is set the
// worktree is then removed from disk. The record is removed before cleanup
// starts and stays removed if cleanup fails. Cleanup runs even if ctx is
// done before it starts.
func (s *Service) DeleteWorkspace(ctx context.Context, id string, removeFiles bool) error {
	removed, err := s.registry.Remove(id)
	if err != nil {
		return err
	}
	s.log.Info("workspace deleted", "id", id, "remove_files", removeFiles)
	s.record(audit.EventDelete, id, removed.Name)

	if !removeFiles {
		return nil
	}
	_, err = worker.DoDetached(ctx, s.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.cleanup(ctx, removed)
	})
	return err
}

// cleanup removes the worktree of a deleted workspace. git is asked first so
// the origin repository forgets the worktree; anything git cannot remove is
// deleted recursively.
func (s *Service) cleanup(ctx context.Context, ws *workspace.Workspace) error {
	path := ws.WorktreePath
	log := s.log.With("id", ws.ID, "path", path)

	if _, err := os.Lstat(path); os.IsNotExist(err) {
		log.Debug("worktree already gone")
		s.record(audit.EventCleanup, ws.ID, "worktree already gone")
		return nil
	}

	git := s.provisioner.Git()
	linked, err := git.IsLinkedWorktree(ctx, ws.RepoRootPath, path)
	switch {
	case err != nil:
		log.Debug("could not list worktrees of origin repository", "repo", ws.RepoRootPath, "error", err)
	case linked:
		if err := git.RemoveWorktree(ctx, ws.RepoRootPath, path); err != nil {
			log.Warn("git worktree remove failed, deleting directory", "error", err)
		} else {
			log.Debug("worktree removed by git")
			s.record(audit.EventCleanup, ws.ID, "git worktree removed")
			return nil
		}
	}

	if err := s.removeAll(path); err != nil {
		log.Warn("failed to remove worktree directory", "error", err)
		s.record(audit.EventError, ws.ID, "cleanup failed: "+err.Error())
		return errors.IoFailure("failed to remove worktree "+path, err)
	}
	log.Debug("worktree directory removed")
	s.record(audit.EventCleanup, ws.ID, "directory removed")
	return nil
}
