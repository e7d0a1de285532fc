package lifecycle

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/gannonh/kata-cloud-agents/internal/audit"
	"github.com/gannonh/kata-cloud-agents/internal/config"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/registry"
	"github.com/gannonh/kata-cloud-agents/internal/remote"
	"github.com/gannonh/kata-cloud-agents/internal/system"
	"github.com/gannonh/kata-cloud-agents/internal/worker"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// Service creates, tracks and removes workspaces.
type Service struct {
	registry    *registry.Registry
	provisioner *workspace.Provisioner
	resolver    *remote.Resolver
	pool        *worker.Pool
	paths       *config.Paths
	audit       *audit.Logger

	newID     func() string
	removeAll func(path string) error

	listing singleflight.Group
	log     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAudit records lifecycle events to l.
func WithAudit(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

// WithIDGenerator replaces workspace.NewID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithRemoveAll replaces os.RemoveAll for the cleanup fallback.
func WithRemoveAll(fn func(path string) error) Option {
	return func(s *Service) {
		s.removeAll = fn
	}
}

// New returns a Service. Worktrees are created under paths.WorktreesDir and
// GitHub clones are cached under paths.RepoCacheDir.
func New(reg *registry.Registry, runner system.Runner, pool *worker.Pool, paths *config.Paths, opts ...Option) *Service {
	provisioner := workspace.NewProvisioner(runner)
	s := &Service{
		registry:    reg,
		provisioner: provisioner,
		resolver:    remote.NewResolver(runner, provisioner, paths.RepoCacheDir),
		pool:        pool,
		paths:       paths,
		newID:       workspace.NewID,
		removeAll:   os.RemoveAll,
		log:         logging.With("component", logging.CompLifecycle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the backing registry.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Wait blocks until background work such as abandoned creates and cleanups
// has finished.
func (s *Service) Wait() {
	s.pool.Wait()
}

// ListWorkspaces returns every workspace, archived ones included.
func (s *Service) ListWorkspaces() ([]*workspace.Workspace, error) {
	return s.registry.List()
}

// GetWorkspace returns the workspace with the given id.
func (s *Service) GetWorkspace(id string) (*workspace.Workspace, error) {
	return s.registry.Get(id)
}

// GetActiveWorkspaceID returns the active workspace id, or "" when none is
// active.
func (s *Service) GetActiveWorkspaceID() (string, error) {
	return s.registry.ActiveID()
}

// SetActiveWorkspace makes id the active workspace.
func (s *Service) SetActiveWorkspace(id string) error {
	if err := s.registry.SetActive(id); err != nil {
		return err
	}
	s.log.Debug("workspace activated", "id", id)
	s.record(audit.EventActivate, id, "")
	return nil
}

// ArchiveWorkspace marks id archived. Files on disk are left alone.
func (s *Service) ArchiveWorkspace(id string) error {
	if err := s.registry.Archive(id); err != nil {
		return err
	}
	s.log.Debug("workspace archived", "id", id)
	s.record(audit.EventArchive, id, "")
	return nil
}

// SuggestRemoteRepositories ranks the gh user's repositories against query.
func (s *Service) SuggestRemoteRepositories(ctx context.Context, query string) ([]remote.Suggestion, error) {
	candidates, err := s.RemoteRepositories(ctx)
	if err != nil {
		return nil, err
	}
	return remote.Rank(query, candidates), nil
}

// RemoteRepositories returns every repository gh lists for the user,
// unranked. Concurrent calls share one gh invocation.
func (s *Service) RemoteRepositories(ctx context.Context) ([]remote.Candidate, error) {
	ch := s.listing.DoChan("repos", func() (any, error) {
		return worker.Do(context.WithoutCancel(ctx), s.pool, s.resolver.ListRepositories)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]remote.Candidate), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AuditEvents returns the recorded lifecycle events for id. Events of
// deleted workspaces remain available.
func (s *Service) AuditEvents(id string) ([]audit.Event, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.Events(id)
}

func (s *Service) record(t audit.EventType, id, details string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogEvent(t, id, details); err != nil {
		s.log.Warn("failed to write audit event", "id", id, "type", t, "error", err)
	}
}
