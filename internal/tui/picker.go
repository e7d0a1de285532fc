package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionActivate
	ActionArchive
	ActionDelete
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action    Action
	Workspace *workspace.Workspace
}

// workspaceItem implements list.Item for workspace display
type workspaceItem struct {
	ws     *workspace.Workspace
	active bool
}

func (i workspaceItem) Title() string {
	if i.active {
		return i.ws.Name + " (active)"
	}
	return i.ws.Name
}

func (i workspaceItem) Description() string {
	return fmt.Sprintf("%s %s | %s | %s",
		statusIcon(i.ws.Status),
		i.ws.Branch,
		i.ws.SourceType,
		truncatePath(i.ws.WorktreePath, 40),
	)
}

func (i workspaceItem) FilterValue() string {
	return i.ws.Name + " " + i.ws.Branch
}

func statusIcon(s workspace.Status) string {
	switch s {
	case workspace.StatusReady:
		return "✓"
	case workspace.StatusError:
		return "⚠"
	case workspace.StatusCreating:
		return "○"
	default:
		return "●"
	}
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the workspace picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a workspace picker grouped by origin repository.
func NewPicker(workspaces []*workspace.Workspace, activeID string) Model {
	items := buildGroupedItems(workspaces, activeID)

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = "Kata Workspaces"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	skipHeaders(&l, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) selected() (*workspace.Workspace, bool) {
	item, ok := m.list.SelectedItem().(workspaceItem)
	if !ok {
		return nil, false
	}
	return item.ws, true
}

func (m Model) finish(action Action, ws *workspace.Workspace) (tea.Model, tea.Cmd) {
	m.result = PickerResult{Action: action, Workspace: ws}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if ws, ok := m.selected(); ok {
				return m.finish(ActionActivate, ws)
			}
		case "a":
			if ws, ok := m.selected(); ok {
				return m.finish(ActionArchive, ws)
			}
		case "d":
			if ws, ok := m.selected(); ok {
				return m.finish(ActionDelete, ws)
			}
		case "q", "esc":
			return m.finish(ActionQuit, nil)
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		skipHeaders(&m.list, navigationDirection(msg))
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Activate  [a] Archive  [d] Delete  [/] Filter  [q] Quit")
	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive workspace picker
func RunPicker(workspaces []*workspace.Workspace, activeID string) (PickerResult, error) {
	if len(workspaces) == 0 {
		return PickerResult{Action: ActionNone}, nil
	}

	p := tea.NewProgram(NewPicker(workspaces, activeID), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}
	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive rendering of the workspace list
func SimplePicker(workspaces []*workspace.Workspace, activeID string) string {
	var sb strings.Builder

	sb.WriteString("Kata Workspaces\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(workspaces) == 0 {
		sb.WriteString("No workspaces found.\n")
		sb.WriteString("Create one with: kata-ws create local --repo <path> --name <name>\n")
		return sb.String()
	}

	for i, ws := range workspaces {
		marker := " "
		if ws.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%d.%s%s %s [%s]\n", i+1, marker, statusIcon(ws.Status), ws.Name, ws.ID)
		fmt.Fprintf(&sb, "   Branch: %s | Path: %s\n\n", ws.Branch, truncatePath(ws.WorktreePath, 40))
	}
	return sb.String()
}
