package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// headerItem is a non-selectable group separator in the picker list.
type headerItem struct {
	label string
}

func (h headerItem) FilterValue() string { return "" }
func (h headerItem) Title() string       { return h.label }
func (h headerItem) Description() string { return "" }

// groupKey returns the grouping key for a workspace: the remote URL for
// GitHub workspaces, the origin repository otherwise.
func groupKey(ws *workspace.Workspace) string {
	if ws.SourceType == workspace.SourceGithub && ws.Source != "" {
		return strings.TrimSuffix(ws.Source, ".git")
	}
	return ws.RepoRootPath
}

// buildGroupedItems groups workspaces by origin and returns list items
// with headerItem separators. Groups are sorted; workspaces keep their
// registry order inside a group.
func buildGroupedItems(workspaces []*workspace.Workspace, activeID string) []list.Item {
	if len(workspaces) == 0 {
		return nil
	}

	type group struct {
		key        string
		workspaces []*workspace.Workspace
	}
	groupMap := make(map[string]*group)
	for _, ws := range workspaces {
		key := groupKey(ws)
		g, ok := groupMap[key]
		if !ok {
			g = &group{key: key}
			groupMap[key] = g
		}
		g.workspaces = append(g.workspaces, ws)
	}

	groups := make([]*group, 0, len(groupMap))
	for _, g := range groupMap {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].key < groups[j].key
	})

	var items []list.Item
	for _, g := range groups {
		items = append(items, headerItem{label: shortenGroupKey(g.key)})
		for _, ws := range g.workspaces {
			items = append(items, workspaceItem{ws: ws, active: ws.ID == activeID})
		}
	}
	return items
}

// headerStyle is the style for group header items.
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("241")).
	PaddingLeft(2)

// groupedDelegate renders both headerItem and workspaceItem in the picker list.
type groupedDelegate struct {
	inner list.DefaultDelegate
}

func newGroupedDelegate() groupedDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	return groupedDelegate{inner: delegate}
}

func (d groupedDelegate) Height() int                             { return d.inner.Height() }
func (d groupedDelegate) Spacing() int                            { return d.inner.Spacing() }
func (d groupedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d groupedDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if h, ok := item.(headerItem); ok {
		fmt.Fprint(w, headerStyle.Render(h.label))
		return
	}
	d.inner.Render(w, m, index, item)
}

// skipHeaders moves the cursor off a headerItem, preferring direction
// (1 down, -1 up).
func skipHeaders(l *list.Model, direction int) {
	items := l.Items()
	if len(items) == 0 {
		return
	}

	idx := l.Index()
	if _, ok := items[idx].(headerItem); !ok {
		return
	}

	for _, next := range []int{idx + direction, idx - direction} {
		if next >= 0 && next < len(items) {
			if _, ok := items[next].(headerItem); !ok {
				l.Select(next)
				return
			}
		}
	}

	for i := 0; i < len(items); i++ {
		candidate := (idx + i*direction + len(items)) % len(items)
		if _, ok := items[candidate].(headerItem); !ok {
			l.Select(candidate)
			return
		}
	}
}

// navigationDirection returns -1 for up/k and 1 otherwise.
func navigationDirection(msg tea.KeyMsg) int {
	switch msg.String() {
	case "up", "k":
		return -1
	default:
		return 1
	}
}

// shortenGroupKey keeps the last two path or URL segments.
func shortenGroupKey(key string) string {
	parts := strings.Split(strings.TrimRight(key, "/"), "/")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return key
}
