package workspace

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceType identifies where a workspace's repository came from.
type SourceType string

const (
	SourceLocal  SourceType = "local"
	SourceGithub SourceType = "github"
)

// Status is the lifecycle state of a workspace.
type Status string

const (
	StatusCreating Status = "creating"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
	StatusArchived Status = "archived"
)

// TimeFormat is the persisted timestamp layout: UTC with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// IDPrefix prefixes every generated workspace id.
const IDPrefix = "ws_"

// suffixLen is the number of id characters used to disambiguate names.
const suffixLen = 4

// Workspace is a persisted workspace record.
type Workspace struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SourceType   SourceType `json:"sourceType"`
	Source       string     `json:"source"`
	RepoRootPath string     `json:"repoRootPath"`
	WorktreePath string     `json:"worktreePath"`
	Branch       string     `json:"branch"`
	BaseRef      *string    `json:"baseRef"`
	Status       Status     `json:"status"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
	LastOpenedAt *string    `json:"lastOpenedAt"`
}

// Prepared is the result of provisioning a worktree, before it becomes a
// Workspace record.
type Prepared struct {
	RepoRootPath string
	WorktreePath string
	Branch       string
	BaseRef      string
}

// New assembles a ready workspace from a provisioning result.
func New(id, name string, sourceType SourceType, source string, p *Prepared, now time.Time) *Workspace {
	ts := FormatTime(now)
	ws := &Workspace{
		ID:           id,
		Name:         strings.TrimSpace(name),
		SourceType:   sourceType,
		Source:       source,
		RepoRootPath: p.RepoRootPath,
		WorktreePath: p.WorktreePath,
		Branch:       p.Branch,
		Status:       StatusReady,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if p.BaseRef != "" {
		ref := p.BaseRef
		ws.BaseRef = &ref
	}
	return ws
}

// Clone returns a deep copy of the workspace.
func (w *Workspace) Clone() *Workspace {
	c := *w
	if w.BaseRef != nil {
		ref := *w.BaseRef
		c.BaseRef = &ref
	}
	if w.LastOpenedAt != nil {
		ts := *w.LastOpenedAt
		c.LastOpenedAt = &ts
	}
	return &c
}

// IsArchived reports whether the workspace has been archived.
func (w *Workspace) IsArchived() bool {
	return w.Status == StatusArchived
}

// Validate checks that a workspace record is well formed.
func (w *Workspace) Validate() error {
	switch {
	case w.ID == "":
		return fmt.Errorf("workspace id must not be empty")
	case strings.TrimSpace(w.Name) == "":
		return fmt.Errorf("workspace %s: name must not be empty", w.ID)
	case w.Source == "":
		return fmt.Errorf("workspace %s: source must not be empty", w.ID)
	case w.RepoRootPath == "" || w.WorktreePath == "":
		return fmt.Errorf("workspace %s: repository and worktree paths must be set", w.ID)
	case w.RepoRootPath == w.WorktreePath:
		return fmt.Errorf("workspace %s: worktree path must differ from repository root", w.ID)
	case strings.TrimSpace(w.Branch) == "":
		return fmt.Errorf("workspace %s: branch must not be empty", w.ID)
	case IsProtectedBranch(w.Branch):
		return fmt.Errorf("workspace %s: branch cannot be main/master", w.ID)
	}

	switch w.SourceType {
	case SourceLocal, SourceGithub:
	default:
		return fmt.Errorf("workspace %s: unknown source type %q", w.ID, w.SourceType)
	}
	switch w.Status {
	case StatusCreating, StatusReady, StatusError, StatusArchived:
	default:
		return fmt.Errorf("workspace %s: unknown status %q", w.ID, w.Status)
	}

	for field, ts := range map[string]*string{
		"createdAt":    &w.CreatedAt,
		"updatedAt":    &w.UpdatedAt,
		"lastOpenedAt": w.LastOpenedAt,
	} {
		if ts == nil {
			continue
		}
		if _, err := ParseTime(*ts); err != nil {
			return fmt.Errorf("workspace %s: invalid %s %q", w.ID, field, *ts)
		}
	}
	return nil
}

// NewID generates a fresh workspace id.
func NewID() string {
	return IDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SuffixFromID returns the short name suffix derived from an id: the first
// four characters after the "ws_" prefix.
func SuffixFromID(id string) string {
	s := strings.TrimPrefix(id, IDPrefix)
	if len(s) > suffixLen {
		s = s[:suffixLen]
	}
	return s
}

// FormatTime renders t in the persisted timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a persisted timestamp. Any RFC 3339 value is accepted.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
