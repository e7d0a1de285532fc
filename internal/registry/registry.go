package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// document is the on-disk form of the registry.
type document struct {
	Workspaces        []*workspace.Workspace `json:"workspaces"`
	ActiveWorkspaceID *string                `json:"activeWorkspaceId"`
}

// state is the in-memory registry contents.
type state struct {
	workspaces []*workspace.Workspace
	active     string
}

func (s *state) clone() *state {
	c := &state{
		workspaces: make([]*workspace.Workspace, len(s.workspaces)),
		active:     s.active,
	}
	for i, ws := range s.workspaces {
		c.workspaces[i] = ws.Clone()
	}
	return c
}

func (s *state) index(id string) int {
	for i, ws := range s.workspaces {
		if ws.ID == id {
			return i
		}
	}
	return -1
}

// check verifies every registry invariant.
func (s *state) check() error {
	seen := make(map[string]bool, len(s.workspaces))
	for _, ws := range s.workspaces {
		if ws == nil {
			return fmt.Errorf("registry contains an empty workspace entry")
		}
		if seen[ws.ID] {
			return fmt.Errorf("duplicate workspace id %s", ws.ID)
		}
		seen[ws.ID] = true
		if err := ws.Validate(); err != nil {
			return err
		}
	}
	if s.active != "" && !seen[s.active] {
		return fmt.Errorf("active workspace %s does not exist", s.active)
	}
	return nil
}

// Registry is the durable workspace catalog.
type Registry struct {
	mu       sync.Mutex
	path     string
	state    *state
	poisoned bool
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Open loads the registry stored at path. A missing file yields an empty
// registry; the file is created on first save.
func Open(path string, opts ...Option) (*Registry, error) {
	r := &Registry{
		path:  path,
		state: &state{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.Debug("registry file not found, starting empty", "component", logging.CompRegistry, "path", path)
		return r, nil
	}
	if err != nil {
		return nil, errors.IoFailure("failed to read workspace registry", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.MalformedState(path, err)
	}
	r.state.workspaces = doc.Workspaces
	if doc.ActiveWorkspaceID != nil {
		r.state.active = *doc.ActiveWorkspaceID
	}
	if err := r.state.check(); err != nil {
		return nil, errors.MalformedState(path, err)
	}

	logging.Debug("registry loaded", "component", logging.CompRegistry, "path", path, "count", len(r.state.workspaces))
	return r, nil
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// List returns a copy of every workspace in insertion order.
func (r *Registry) List() ([]*workspace.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poisoned {
		return nil, errors.StateUnavailable()
	}
	return r.state.clone().workspaces, nil
}

// Get returns a copy of the workspace with the given id.
func (r *Registry) Get(id string) (*workspace.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poisoned {
		return nil, errors.StateUnavailable()
	}
	i := r.state.index(id)
	if i < 0 {
		return nil, errors.NotFound(id)
	}
	return r.state.workspaces[i].Clone(), nil
}

// ActiveID returns the active workspace id, or "" when none is active.
func (r *Registry) ActiveID() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poisoned {
		return "", errors.StateUnavailable()
	}
	return r.state.active, nil
}

// Save writes the current state to disk.
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poisoned {
		return errors.StateUnavailable()
	}
	return r.save(r.state)
}

// Update applies fn to the registry as one unit: invariants are checked and
// the result is saved before the lock is released. If fn, the check or the
// save fails, the in-memory state is left as it was.
func (r *Registry) Update(fn func(tx *Tx) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poisoned {
		return errors.StateUnavailable()
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.poisoned = true
			logging.Error("panic while mutating registry", "component", logging.CompRegistry, "panic", rec)
			err = errors.Wrap(errors.KindStateUnavailable, errors.StateUnavailable().Message, fmt.Errorf("panic: %v", rec))
		}
	}()

	next := r.state.clone()
	tx := &Tx{state: next, now: r.now()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := next.check(); err != nil {
		return errors.InvalidInput("registry update rejected: %v", err)
	}
	if err := r.save(next); err != nil {
		return err
	}
	r.state = next
	return nil
}

// Insert adds ws to the registry.
func (r *Registry) Insert(ws *workspace.Workspace) error {
	return r.Update(func(tx *Tx) error { return tx.Insert(ws) })
}

// SetActive marks id as the active workspace.
func (r *Registry) SetActive(id string) error {
	return r.Update(func(tx *Tx) error { return tx.SetActive(id) })
}

// Archive marks id as archived.
func (r *Registry) Archive(id string) error {
	return r.Update(func(tx *Tx) error { return tx.Archive(id) })
}

// Remove deletes id from the registry and returns the removed record.
func (r *Registry) Remove(id string) (*workspace.Workspace, error) {
	var removed *workspace.Workspace
	err := r.Update(func(tx *Tx) error {
		ws, err := tx.Remove(id)
		removed = ws
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// save atomically replaces the registry file with s. Callers must hold r.mu.
func (r *Registry) save(s *state) error {
	doc := document{Workspaces: s.workspaces}
	if doc.Workspaces == nil {
		doc.Workspaces = []*workspace.Workspace{}
	}
	if s.active != "" {
		active := s.active
		doc.ActiveWorkspaceID = &active
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.IoFailure("failed to encode workspace registry", err)
	}
	data = append(bytes.TrimSpace(data), '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.IoFailure("failed to create registry directory", err)
	}
	if err := atomicWrite(r.path, data); err != nil {
		return errors.IoFailure("failed to write workspace registry", err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".workspaces-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
