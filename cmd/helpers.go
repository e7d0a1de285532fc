package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gannonh/kata-cloud-agents/internal/app"
	"github.com/gannonh/kata-cloud-agents/internal/config"
	"github.com/gannonh/kata-cloud-agents/internal/lifecycle"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

var (
	application *app.App

	// appOptions are appended when the App is built. Tests use them to
	// swap in a mock runner and a fixed clock.
	appOptions []app.Option
)

// getApp builds the App on first use so that help and usage output never
// touch the data directory.
func getApp() (*app.App, error) {
	if application != nil {
		return application, nil
	}

	var opts []app.Option
	if dataDir != "" {
		abs, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("invalid --data-dir: %w", err)
		}
		opts = append(opts, app.WithPaths(config.PathsFor(abs)))
	}
	opts = append(opts, appOptions...)

	a, err := app.New(opts...)
	if err != nil {
		return nil, err
	}
	if a.Settings.LogFile != "" {
		logging.SetupFile(logging.FileConfig{
			Path:  a.Settings.LogFile,
			Level: a.Settings.LogLevel,
		}, verbose, jsonOutput, os.Stderr)
	}

	application = a
	return a, nil
}

// service returns the lifecycle service of the shared App.
func service() (*lifecycle.Service, error) {
	a, err := getApp()
	if err != nil {
		return nil, err
	}
	return a.Service, nil
}

// shutdown waits for background work and releases the log file.
func shutdown() {
	if application != nil {
		application.Close()
		application = nil
	}
	_ = logging.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWorkspace(w io.Writer, ws *workspace.Workspace, active bool) {
	marker := " "
	if active {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %-38s %-24s %-9s %s\n", marker, ws.ID, ws.Name, ws.Status, ws.Branch)
}

func printWorkspaceDetails(w io.Writer, ws *workspace.Workspace) {
	fmt.Fprintf(w, "  ID:       %s\n", ws.ID)
	fmt.Fprintf(w, "  Name:     %s\n", ws.Name)
	fmt.Fprintf(w, "  Source:   %s (%s)\n", ws.Source, ws.SourceType)
	fmt.Fprintf(w, "  Branch:   %s\n", ws.Branch)
	if ws.BaseRef != nil {
		fmt.Fprintf(w, "  Base:     %s\n", *ws.BaseRef)
	}
	fmt.Fprintf(w, "  Worktree: %s\n", ws.WorktreePath)
}
