package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gannonh/kata-cloud-agents/internal/app"
	"github.com/gannonh/kata-cloud-agents/internal/config"
	"github.com/gannonh/kata-cloud-agents/internal/system"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// FixedTime is the clock used by test environments.
var FixedTime = time.Date(2026, 2, 3, 14, 5, 12, 250_000_000, time.UTC)

// TestEnv holds the test environment
type TestEnv struct {
	T      *testing.T
	TmpDir string
	Paths  *config.Paths
	Runner *system.MockRunner
	App    *app.App
}

// NewTestEnv creates a test environment backed by a MockRunner that behaves
// like a repository without an origin remote. Extra options are applied
// after the defaults.
func NewTestEnv(t *testing.T, opts ...app.Option) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	paths := config.PathsFor(filepath.Join(tmpDir, "data"))
	runner := MockRepo(t)

	all := append([]app.Option{
		app.WithPaths(paths),
		app.WithSettings(config.DefaultSettings()),
		app.WithRunner(runner),
		app.WithClock(func() time.Time { return FixedTime }),
	}, opts...)
	a, err := app.New(all...)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(a.Close)

	return &TestEnv{
		T:      t,
		TmpDir: tmpDir,
		Paths:  a.Paths,
		Runner: runner,
		App:    a,
	}
}

// CreateRepoDir creates an empty directory standing in for a repository.
func (e *TestEnv) CreateRepoDir(name string) string {
	e.T.Helper()

	path := filepath.Join(e.TmpDir, "repos", name)
	if err := os.MkdirAll(path, 0755); err != nil {
		e.T.Fatalf("Failed to create repo dir: %v", err)
	}
	return path
}

// AddWorkspace inserts ws directly into the registry.
func (e *TestEnv) AddWorkspace(ws *workspace.Workspace) {
	e.T.Helper()

	if err := e.App.Registry.Insert(ws); err != nil {
		e.T.Fatalf("Failed to insert workspace: %v", err)
	}
}

// MockRepo returns a MockRunner that answers the provisioning probes like a
// repository with no origin remote on branch "develop", and creates the
// directories that clone, gh repo create and worktree add would.
func MockRepo(t *testing.T) *system.MockRunner {
	t.Helper()

	m := system.NewMockRunner()
	m.AddResponse("git rev-parse --is-inside-work-tree", "true")
	m.AddFailure("git show-ref", 1, "")
	m.AddFailure("git symbolic-ref", 128, "fatal: ref refs/remotes/origin/HEAD is not a symbolic ref")
	m.AddResponse("git branch --show-current", "develop")
	m.AddResponse("git worktree list --porcelain", "")
	m.Hook = func(cmd system.MockCommand) {
		var dir string
		switch {
		case cmd.Tool == system.ToolGit && len(cmd.Args) >= 3 && cmd.Args[0] == "clone":
			dir = cmd.Args[2]
		case cmd.Tool == system.ToolGit && len(cmd.Args) >= 3 && cmd.Args[0] == "worktree" && cmd.Args[1] == "add":
			dir = cmd.Args[2]
		case cmd.Tool == system.ToolGH && len(cmd.Args) >= 3 && cmd.Args[0] == "repo" && cmd.Args[1] == "create":
			name := cmd.Args[2]
			if i := strings.LastIndex(name, "/"); i >= 0 {
				name = name[i+1:]
			}
			dir = filepath.Join(cmd.Cwd, name)
		}
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Errorf("mock mkdir %s: %v", dir, err)
			}
		}
	}
	return m
}

// SampleWorkspace returns a valid ready workspace record.
func SampleWorkspace(id, name string) *workspace.Workspace {
	suffix := workspace.SuffixFromID(id)
	dir := workspace.DirectoryName(name, suffix)
	return workspace.New(id, name, workspace.SourceLocal, "/src/repo", &workspace.Prepared{
		RepoRootPath: "/src/repo",
		WorktreePath: "/data/workspaces/" + dir,
		Branch:       workspace.DeriveBranchName(name, suffix),
		BaseRef:      "origin/main",
	}, FixedTime)
}

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH, skipping test")
	}
}

// Git runs git in dir and returns its trimmed output.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %s: %v", args, output, err)
	}
	return strings.TrimSpace(string(output))
}

// InitRepo creates a git repository with one commit on branch main.
func InitRepo(t *testing.T) string {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	if output, err := exec.Command("git", "init", dir).CombinedOutput(); err != nil {
		t.Fatalf("failed to init git repo: %s: %v", output, err)
	}
	Git(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	Git(t, dir, "config", "user.email", "test@test.com")
	Git(t, dir, "config", "user.name", "Test User")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	Git(t, dir, "add", ".")
	Git(t, dir, "commit", "-m", "Initial commit")
	return dir
}
