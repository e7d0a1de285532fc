package app

import (
	"time"

	"github.com/gannonh/kata-cloud-agents/internal/audit"
	"github.com/gannonh/kata-cloud-agents/internal/config"
	"github.com/gannonh/kata-cloud-agents/internal/lifecycle"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/registry"
	"github.com/gannonh/kata-cloud-agents/internal/system"
	"github.com/gannonh/kata-cloud-agents/internal/worker"
)

// App holds the application dependencies
type App struct {
	// Paths holds the configured paths
	Paths *config.Paths

	// Settings is the loaded config.toml
	Settings *config.Settings

	// Runner executes git and gh
	Runner system.Runner

	Registry *registry.Registry
	Pool     *worker.Pool
	Audit    *audit.Logger

	// Service is the workspace lifecycle API
	Service *lifecycle.Service

	clock     func() time.Time
	newID     func() string
	removeAll func(string) error
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithSettings skips loading config.toml
func WithSettings(s *config.Settings) Option {
	return func(a *App) {
		a.Settings = s
	}
}

// WithRunner sets a custom command runner
func WithRunner(r system.Runner) Option {
	return func(a *App) {
		a.Runner = r
	}
}

// WithClock sets the registry clock
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.clock = now
	}
}

// WithIDGenerator sets the workspace id generator
func WithIDGenerator(fn func() string) Option {
	return func(a *App) {
		a.newID = fn
	}
}

// WithRemoveAll sets the recursive delete used by worktree cleanup
func WithRemoveAll(fn func(string) error) Option {
	return func(a *App) {
		a.removeAll = fn
	}
}

// New creates a new App with the given options.
// Paths default to config.DefaultPaths, settings are read from the paths'
// config file and the runner executes the real git and gh binaries.
func New(opts ...Option) (*App, error) {
	a := &App{clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	if a.Paths == nil {
		paths, err := config.DefaultPaths()
		if err != nil {
			return nil, err
		}
		a.Paths = paths
	}
	if a.Settings == nil {
		settings, err := config.LoadSettings(a.Paths.ConfigFile)
		if err != nil {
			return nil, err
		}
		a.Settings = settings
	}
	a.Paths = a.Paths.Apply(a.Settings)

	if a.Runner == nil {
		a.Runner = system.NewExecRunner(a.Settings.Binaries())
	}

	reg, err := registry.Open(a.Paths.RegistryFile, registry.WithClock(a.clock))
	if err != nil {
		return nil, err
	}
	a.Registry = reg
	a.Pool = worker.New(a.Settings.MaxWorkers)
	a.Audit = audit.NewLogger(a.Paths.AuditDir)

	svcOpts := []lifecycle.Option{lifecycle.WithAudit(a.Audit)}
	if a.newID != nil {
		svcOpts = append(svcOpts, lifecycle.WithIDGenerator(a.newID))
	}
	if a.removeAll != nil {
		svcOpts = append(svcOpts, lifecycle.WithRemoveAll(a.removeAll))
	}
	a.Service = lifecycle.New(a.Registry, a.Runner, a.Pool, a.Paths, svcOpts...)

	logging.Debug("app initialized",
		"data_dir", a.Paths.DataDir,
		"registry", a.Paths.RegistryFile,
		"workers", a.Pool.Size())
	return a, nil
}

// Close waits for background work to finish.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Wait()
	}
}
