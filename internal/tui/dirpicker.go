package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DirectoryPicker asks the user for a directory. ok is false when the user
// cancelled.
type DirectoryPicker interface {
	PickDirectory(defaultPath string) (path string, ok bool, err error)
}

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// dirModel is a path prompt that completes directory names on tab.
type dirModel struct {
	input     textinput.Model
	chosen    string
	cancelled bool
	done      bool
	errMsg    string
}

func newDirModel(defaultPath string) dirModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/repository"
	ti.CharLimit = 256
	ti.Width = 60
	ti.ShowSuggestions = true
	ti.SetValue(defaultPath)
	ti.Focus()

	m := dirModel{input: ti}
	m.updateSuggestions()
	return m
}

func (m dirModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m dirModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			path := expandTilde(strings.TrimSpace(m.input.Value()))
			if path == "" {
				return m, nil
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				m.errMsg = "not a directory: " + path
				return m, nil
			}
			m.chosen = path
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.errMsg = ""
	m.updateSuggestions()
	return m, cmd
}

func (m dirModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("Repository directory:"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Enter the path to a git repository. Tab to complete, Esc to cancel."))
	return b.String()
}

func (m *dirModel) updateSuggestions() {
	m.input.SetSuggestions(directorySuggestions(m.input.Value()))
}

// directorySuggestions lists the non-hidden subdirectories matching the last
// path element of val. A leading ~ is kept in the suggestions.
func directorySuggestions(val string) []string {
	if val == "" {
		return nil
	}

	expanded := expandTilde(val)
	dir, prefix := expanded, ""
	if info, err := os.Stat(expanded); err != nil || !info.IsDir() {
		dir = filepath.Dir(expanded)
		prefix = filepath.Base(expanded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	home, _ := os.UserHomeDir()
	var suggestions []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}
		full := filepath.Join(dir, name)
		if strings.HasPrefix(val, "~") && home != "" {
			full = "~" + strings.TrimPrefix(full, home)
		}
		suggestions = append(suggestions, full)
	}
	return suggestions
}

func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// PromptPicker is the terminal DirectoryPicker.
type PromptPicker struct{}

// PickDirectory runs the path prompt.
func (PromptPicker) PickDirectory(defaultPath string) (string, bool, error) {
	p := tea.NewProgram(newDirModel(defaultPath))
	finalModel, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m := finalModel.(dirModel)
	if m.cancelled || m.chosen == "" {
		return "", false, nil
	}
	return m.chosen, true, nil
}
