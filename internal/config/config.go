package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/worker"
)

const (
	// AppDirName is the directory created under the user config dir.
	AppDirName = "kata-cloud-agents"

	// DataDirEnv overrides the data directory.
	DataDirEnv = "KATA_WS_DATA_DIR"

	// ConfigFileName is the settings file inside the data directory.
	ConfigFileName = "config.toml"
)

// Paths holds the configured paths
type Paths struct {
	DataDir      string
	RegistryFile string
	WorktreesDir string
	RepoCacheDir string
	AuditDir     string
	ConfigFile   string
}

// PathsFor returns the default layout under dataDir.
func PathsFor(dataDir string) *Paths {
	return &Paths{
		DataDir:      dataDir,
		RegistryFile: filepath.Join(dataDir, "workspaces", "workspaces.json"),
		WorktreesDir: filepath.Join(dataDir, "workspaces"),
		RepoCacheDir: filepath.Join(dataDir, "repo-cache", "github"),
		AuditDir:     filepath.Join(dataDir, "audit"),
		ConfigFile:   filepath.Join(dataDir, ConfigFileName),
	}
}

// DefaultDataDir returns $KATA_WS_DATA_DIR, or <user config dir>/kata-cloud-agents.
func DefaultDataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(DataDirEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.IoFailure("failed to locate the user config directory", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// DefaultPaths returns the default path configuration
func DefaultPaths() (*Paths, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return PathsFor(dir), nil
}

// Apply returns a copy of p with the directory overrides from s.
func (p *Paths) Apply(s *Settings) *Paths {
	c := *p
	if s == nil {
		return &c
	}
	if s.WorktreesDir != "" {
		c.WorktreesDir = s.WorktreesDir
	}
	if s.CloneRoot != "" {
		c.RepoCacheDir = s.CloneRoot
	}
	return &c
}

// Settings are the user-tunable options read from config.toml.
type Settings struct {
	// WorktreesDir overrides where workspace worktrees are created.
	WorktreesDir string `toml:"worktrees_dir"`
	// CloneRoot overrides where GitHub cache clones are kept.
	CloneRoot string `toml:"clone_root"`
	// MaxWorkers bounds concurrent git/gh work.
	MaxWorkers int `toml:"max_workers"`
	// GitBinary and GHBinary override the tool executables.
	GitBinary string `toml:"git_binary"`
	GHBinary  string `toml:"gh_binary"`
	// LogFile enables a rotating JSON debug log.
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
	// ShowArchived lists archived workspaces by default.
	ShowArchived bool `toml:"show_archived"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	return &Settings{
		MaxWorkers: worker.DefaultSize,
		LogLevel:   "debug",
	}
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", s.MaxWorkers)
	}
	for key, path := range map[string]string{
		"worktrees_dir": s.WorktreesDir,
		"clone_root":    s.CloneRoot,
		"log_file":      s.LogFile,
	} {
		if path != "" && !filepath.IsAbs(path) {
			return fmt.Errorf("%s must be an absolute path, got %q", key, path)
		}
	}
	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", s.LogLevel)
	}
	return nil
}

// LoadSettings reads config.toml from path. A missing file yields defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	meta, err := toml.DecodeFile(path, settings)
	if err != nil {
		return nil, errors.Wrap(errors.KindMalformedState, fmt.Sprintf("failed to parse %s", path), err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.KindMalformedState, fmt.Sprintf("unknown settings in %s: %s", path, strings.Join(keys, ", ")))
	}

	settings.WorktreesDir = expandHome(settings.WorktreesDir)
	settings.CloneRoot = expandHome(settings.CloneRoot)
	settings.LogFile = expandHome(settings.LogFile)

	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(errors.KindMalformedState, fmt.Sprintf("invalid settings in %s", path), err)
	}
	return settings, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Binaries returns the tool-to-binary overrides for the command runner.
func (s *Settings) Binaries() map[string]string {
	bins := make(map[string]string)
	if s.GitBinary != "" {
		bins["git"] = s.GitBinary
	}
	if s.GHBinary != "" {
		bins["gh"] = s.GHBinary
	}
	return bins
}
