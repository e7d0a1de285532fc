package workspace

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	pattern := regexp.MustCompile(`^ws_[0-9a-f]{32}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewID()
		if !pattern.MatchString(id) {
			t.Fatalf("NewID() = %q, does not match %s", id, pattern)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSuffixFromID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"ws_3f9a0c11aa", "3f9a"},
		{"ws_ab", "ab"},
		{"abcdef", "abcd"},
	}
	for _, tt := range tests {
		if got := SuffixFromID(tt.id); got != tt.want {
			t.Errorf("SuffixFromID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 891234567, time.FixedZone("X", 3600))
	got := FormatTime(ts)
	if got != "2026-03-04T04:06:07.891Z" {
		t.Errorf("FormatTime() = %q", got)
	}
	parsed, err := ParseTime(got)
	if err != nil {
		t.Fatalf("ParseTime() error = %v", err)
	}
	if !parsed.Equal(ts.Truncate(time.Millisecond)) {
		t.Errorf("ParseTime() = %v", parsed)
	}
}

func sampleWorkspace() *Workspace {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return New("ws_abcd1234", "Demo", SourceLocal, "/src/demo", &Prepared{
		RepoRootPath: "/src/demo",
		WorktreePath: "/data/workspaces/demo-abcd",
		Branch:       "workspace/demo-abcd",
		BaseRef:      "main",
	}, now)
}

func TestNew(t *testing.T) {
	ws := sampleWorkspace()
	if ws.Status != StatusReady {
		t.Errorf("Status = %q, want ready", ws.Status)
	}
	if ws.CreatedAt != ws.UpdatedAt || ws.CreatedAt != "2026-01-02T03:04:05.000Z" {
		t.Errorf("timestamps = %q / %q", ws.CreatedAt, ws.UpdatedAt)
	}
	if ws.BaseRef == nil || *ws.BaseRef != "main" {
		t.Errorf("BaseRef = %v", ws.BaseRef)
	}
	if ws.LastOpenedAt != nil {
		t.Error("LastOpenedAt should be unset")
	}
	if err := ws.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	ws := sampleWorkspace()
	opened := "2026-01-02T03:04:05.000Z"
	ws.LastOpenedAt = &opened

	c := ws.Clone()
	*c.BaseRef = "other"
	*c.LastOpenedAt = "changed"
	c.Name = "changed"

	if *ws.BaseRef != "main" || *ws.LastOpenedAt != opened || ws.Name != "Demo" {
		t.Error("Clone shares state with the original")
	}
}

func TestValidate(t *testing.T) {
	bad := "yesterday"
	tests := []struct {
		name    string
		mutate  func(*Workspace)
		wantErr string
	}{
		{"missing id", func(w *Workspace) { w.ID = "" }, "id"},
		{"blank name", func(w *Workspace) { w.Name = "  " }, "name"},
		{"same paths", func(w *Workspace) { w.WorktreePath = w.RepoRootPath }, "differ"},
		{"main branch", func(w *Workspace) { w.Branch = "main" }, "main/master"},
		{"master branch", func(w *Workspace) { w.Branch = "master" }, "main/master"},
		{"unknown source", func(w *Workspace) { w.SourceType = "svn" }, "source type"},
		{"unknown status", func(w *Workspace) { w.Status = "gone" }, "status"},
		{"bad timestamp", func(w *Workspace) { w.LastOpenedAt = &bad }, "lastOpenedAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := sampleWorkspace()
			tt.mutate(ws)
			err := ws.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
