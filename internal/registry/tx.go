package registry

import (
	"time"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// Tx is a pending registry mutation handed to Update callbacks. Changes are
// only visible to other callers once Update commits them.
type Tx struct {
	state *state
	now   time.Time
}

// Now returns the time assigned to this update. Every record touched by
// the update is stamped with it.
func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) stamp() string {
	return workspace.FormatTime(tx.now)
}

// Get returns the pending record for id. The record may be modified in place.
func (tx *Tx) Get(id string) (*workspace.Workspace, error) {
	i := tx.state.index(id)
	if i < 0 {
		return nil, errors.NotFound(id)
	}
	return tx.state.workspaces[i], nil
}

// ActiveID returns the pending active id.
func (tx *Tx) ActiveID() string {
	return tx.state.active
}

// Insert appends a copy of ws.
func (tx *Tx) Insert(ws *workspace.Workspace) error {
	if ws == nil {
		return errors.InvalidInput("workspace is required")
	}
	if tx.state.index(ws.ID) >= 0 {
		return errors.InvalidInput("workspace already exists: %s", ws.ID)
	}
	if err := ws.Validate(); err != nil {
		return errors.InvalidInput("%v", err)
	}
	tx.state.workspaces = append(tx.state.workspaces, ws.Clone())
	return nil
}

// SetActive makes id the active workspace and records the open time.
func (tx *Tx) SetActive(id string) error {
	ws, err := tx.Get(id)
	if err != nil {
		return err
	}
	opened := tx.stamp()
	ws.UpdatedAt = opened
	ws.LastOpenedAt = &opened
	tx.state.active = id
	return nil
}

// Archive marks id archived, clearing the active pointer if it names id.
func (tx *Tx) Archive(id string) error {
	ws, err := tx.Get(id)
	if err != nil {
		return err
	}
	ws.Status = workspace.StatusArchived
	ws.UpdatedAt = tx.stamp()
	if tx.state.active == id {
		tx.state.active = ""
	}
	return nil
}

// Remove deletes id, clearing the active pointer if it names id.
func (tx *Tx) Remove(id string) (*workspace.Workspace, error) {
	i := tx.state.index(id)
	if i < 0 {
		return nil, errors.NotFound(id)
	}
	removed := tx.state.workspaces[i]
	tx.state.workspaces = append(tx.state.workspaces[:i:i], tx.state.workspaces[i+1:]...)
	if tx.state.active == id {
		tx.state.active = ""
	}
	return removed.Clone(), nil
}
