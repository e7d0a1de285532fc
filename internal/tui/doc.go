// Package tui provides terminal user interface components for kata-ws.
//
// This package uses the Bubble Tea framework for the interactive parts of
// the CLI.
//
// # Workspace Picker
//
// The picker lists workspaces grouped by origin repository:
//
//	result, err := tui.RunPicker(workspaces, activeID)
//	switch result.Action {
//	case tui.ActionActivate:
//	    // Make result.Workspace active
//	case tui.ActionArchive:
//	    // Archive result.Workspace
//	case tui.ActionDelete:
//	    // Delete result.Workspace
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// Keys: enter (activate), a (archive), d (delete), / (filter), q (quit).
// SimplePicker renders the same list without a terminal.
//
// # Repository Picker
//
// RunRepoPicker shows gh repositories ranked by remote.Rank and re-ranks
// them as the query is edited.
//
// # Directory Picker
//
// DirectoryPicker is the seam used when a command needs a repository path.
// PromptPicker implements it with a path prompt that completes directory
// names on tab.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
