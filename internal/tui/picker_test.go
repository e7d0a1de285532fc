package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

func sampleWorkspaces() []*workspace.Workspace {
	return []*workspace.Workspace{
		{
			ID: "ws_1111", Name: "KAT-154", SourceType: workspace.SourceLocal,
			RepoRootPath: "/home/user/kata", WorktreePath: "/data/workspaces/kat-154-1111",
			Branch: "workspace/kat-154-1111", Status: workspace.StatusReady,
		},
		{
			ID: "ws_2222", Name: "Old", SourceType: workspace.SourceLocal,
			RepoRootPath: "/home/user/kata", WorktreePath: "/data/workspaces/old-2222",
			Branch: "workspace/old-2222", Status: workspace.StatusArchived,
		},
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path   string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"/home/user/workspace", 20, "/home/user/workspace"},
		{"/home/user/very/long/path/to/workspace", 20, "...path/to/workspace"},
		{"", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := truncatePath(tt.path, tt.maxLen); got != tt.want {
				t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestWorkspaceItemMethods(t *testing.T) {
	ws := sampleWorkspaces()[0]
	item := workspaceItem{ws: ws, active: true}

	if got := item.Title(); got != "KAT-154 (active)" {
		t.Errorf("Title() = %q", got)
	}
	if got := (workspaceItem{ws: ws}).Title(); got != "KAT-154" {
		t.Errorf("inactive Title() = %q", got)
	}
	if !strings.Contains(item.FilterValue(), "workspace/kat-154-1111") {
		t.Error("FilterValue should include the branch")
	}
	desc := item.Description()
	for _, want := range []string{"✓", "workspace/kat-154-1111", "local"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description %q should contain %q", desc, want)
		}
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status workspace.Status
		icon   string
	}{
		{workspace.StatusReady, "✓"},
		{workspace.StatusError, "⚠"},
		{workspace.StatusCreating, "○"},
		{workspace.StatusArchived, "●"},
	}
	for _, tt := range tests {
		if got := statusIcon(tt.status); got != tt.icon {
			t.Errorf("statusIcon(%s) = %q, want %q", tt.status, got, tt.icon)
		}
	}
}

func TestModelKeyHandling(t *testing.T) {
	keys := []struct {
		name   string
		msg    tea.KeyMsg
		action Action
	}{
		{"activate with enter", tea.KeyMsg{Type: tea.KeyEnter}, ActionActivate},
		{"archive with a", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, ActionArchive},
		{"delete with d", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}, ActionDelete},
		{"quit with q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, ActionQuit},
		{"quit with esc", tea.KeyMsg{Type: tea.KeyEsc}, ActionQuit},
	}

	for _, tt := range keys {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPicker(sampleWorkspaces(), "ws_1111")
			newModel, cmd := m.Update(tt.msg)
			model := newModel.(Model)

			if model.result.Action != tt.action {
				t.Errorf("Action = %v, want %v", model.result.Action, tt.action)
			}
			if !model.quitting || cmd == nil {
				t.Error("picker should quit")
			}
			if tt.action != ActionQuit && (model.result.Workspace == nil || model.result.Workspace.ID != "ws_1111") {
				t.Errorf("Workspace = %+v, want the first workspace", model.result.Workspace)
			}
		})
	}

	t.Run("cursor starts past the header", func(t *testing.T) {
		m := NewPicker(sampleWorkspaces(), "")
		if _, ok := m.list.SelectedItem().(workspaceItem); !ok {
			t.Errorf("selected item = %#v, want a workspace", m.list.SelectedItem())
		}
	})

	t.Run("window size update", func(t *testing.T) {
		m := NewPicker(sampleWorkspaces(), "")
		newModel, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
		model := newModel.(Model)

		if model.width != 100 || model.height != 50 {
			t.Errorf("size = %dx%d, want 100x50", model.width, model.height)
		}
		if cmd != nil {
			t.Error("Window size update should not return a command")
		}
	})
}

func TestModelView(t *testing.T) {
	m := NewPicker(sampleWorkspaces(), "")
	view := m.View()
	for _, want := range []string{"[enter] Activate", "[a] Archive", "[d] Delete", "[q] Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}

	m.quitting = true
	if view := m.View(); view != "" {
		t.Errorf("Quitting view should be empty, got %q", view)
	}
}

func TestRunPickerEmpty(t *testing.T) {
	result, err := RunPicker(nil, "")
	if err != nil {
		t.Fatalf("RunPicker() error = %v", err)
	}
	if result.Action != ActionNone {
		t.Errorf("Action = %v, want ActionNone", result.Action)
	}
}

func TestSimplePicker(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		output := SimplePicker(nil, "")
		if !strings.Contains(output, "No workspaces found") {
			t.Error("Should indicate no workspaces found")
		}
		if !strings.Contains(output, "kata-ws create local") {
			t.Error("Should show how to create a workspace")
		}
	})

	t.Run("with workspaces", func(t *testing.T) {
		output := SimplePicker(sampleWorkspaces(), "ws_1111")
		for _, want := range []string{"Kata Workspaces", "1.*✓ KAT-154 [ws_1111]", "2. ● Old", "workspace/old-2222"} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q:\n%s", want, output)
			}
		}
	})
}

func TestActionConstants(t *testing.T) {
	actions := []Action{ActionNone, ActionActivate, ActionArchive, ActionDelete, ActionQuit}
	seen := make(map[Action]bool)
	for _, a := range actions {
		if seen[a] {
			t.Errorf("Duplicate action value: %v", a)
		}
		seen[a] = true
	}
}
