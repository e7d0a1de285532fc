package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gannonh/kata-cloud-agents/internal/remote"
)

// suggestionItem implements list.Item for a ranked repository.
type suggestionItem struct {
	s remote.Suggestion
}

func (i suggestionItem) Title() string { return i.s.NameWithOwner }

func (i suggestionItem) Description() string {
	visibility := "public"
	if i.s.IsPrivate {
		visibility = "private"
	}
	return fmt.Sprintf("%s | %s | updated %s", i.s.URL, visibility, i.s.UpdatedAt)
}

func (i suggestionItem) FilterValue() string { return i.s.NameWithOwner }

// RepoModel is the bubbletea model for choosing a GitHub repository. Typing
// re-ranks the candidates; up and down move the selection.
type RepoModel struct {
	query      textinput.Model
	list       list.Model
	candidates []remote.Candidate
	chosen     *remote.Suggestion
	done       bool
}

// NewRepoPicker creates a repository picker over candidates, pre-filled with
// query.
func NewRepoPicker(candidates []remote.Candidate, query string) RepoModel {
	ti := textinput.New()
	ti.Placeholder = "owner/name"
	ti.CharLimit = 128
	ti.Width = 50
	ti.SetValue(query)
	ti.Focus()

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(nil, delegate, 80, 16)
	l.Title = "GitHub Repositories"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	m := RepoModel{query: ti, list: l, candidates: candidates}
	m.rerank()
	return m
}

func (m *RepoModel) rerank() {
	ranked := remote.Rank(m.query.Value(), m.candidates)
	items := make([]list.Item, len(ranked))
	for i, s := range ranked {
		items[i] = suggestionItem{s: s}
	}
	m.list.SetItems(items)
	m.list.Select(0)
}

func (m RepoModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m RepoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(suggestionItem); ok {
				s := item.s
				m.chosen = &s
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		before := m.query.Value()
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		if m.query.Value() != before {
			m.rerank()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m RepoModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.query.View())
	b.WriteString("\n\n")
	if len(m.list.Items()) == 0 {
		b.WriteString(dimStyle.Render("No matching repositories."))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[type] Filter  [↑/↓] Move  [enter] Select  [esc] Cancel"))
	return b.String()
}

// Chosen returns the selected repository, if any.
func (m RepoModel) Chosen() (remote.Suggestion, bool) {
	if m.chosen == nil {
		return remote.Suggestion{}, false
	}
	return *m.chosen, true
}

// RunRepoPicker runs the interactive repository picker.
func RunRepoPicker(candidates []remote.Candidate, query string) (remote.Suggestion, bool, error) {
	p := tea.NewProgram(NewRepoPicker(candidates, query), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return remote.Suggestion{}, false, err
	}
	s, ok := finalModel.(RepoModel).Chosen()
	return s, ok, nil
}
