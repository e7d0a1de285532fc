// Package app provides the application context for kata-ws.
//
// This package wires the workspace lifecycle dependencies using the
// functional options pattern, enabling testing through dependency injection.
//
// # App Context
//
//	type App struct {
//	    Paths    *config.Paths      // data directory layout
//	    Settings *config.Settings   // config.toml
//	    Runner   system.Runner      // git and gh
//	    Registry *registry.Registry // workspaces.json
//	    Pool     *worker.Pool       // bounded subprocess work
//	    Audit    *audit.Logger      // lifecycle events
//	    Service  *lifecycle.Service
//	}
//
// # Creating an App
//
//	// Production usage
//	a, err := app.New()
//
//	// Testing with custom dependencies
//	a, err := app.New(
//	    app.WithPaths(config.PathsFor(t.TempDir())),
//	    app.WithRunner(system.NewMockRunner()),
//	)
//
// # Available Options
//
//	WithPaths(paths)       // Custom path configuration
//	WithSettings(settings) // Skip reading config.toml
//	WithRunner(runner)     // Custom command runner
//	WithClock(now)         // Registry timestamps
//	WithIDGenerator(fn)    // Workspace ids
//	WithRemoveAll(fn)      // Recursive delete used by cleanup
package app
