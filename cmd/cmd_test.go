package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gannonh/kata-cloud-agents/internal/app"
	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
	"github.com/gannonh/kata-cloud-agents/internal/remote"
	"github.com/gannonh/kata-cloud-agents/internal/system"
	"github.com/gannonh/kata-cloud-agents/internal/testutil"
	"github.com/gannonh/kata-cloud-agents/internal/tui"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

// testEnv holds test environment state
type testEnv struct {
	tmpDir  string
	dataDir string
	runner  *system.MockRunner
	nextID  int
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &testEnv{
		tmpDir:  tmpDir,
		dataDir: filepath.Join(tmpDir, "data"),
		runner:  testutil.MockRepo(t),
	}

	appOptions = []app.Option{
		app.WithRunner(env.runner),
		app.WithClock(func() time.Time { return testutil.FixedTime }),
		app.WithIDGenerator(func() string {
			env.nextID++
			return fmt.Sprintf("ws_%04d%s", env.nextID, strings.Repeat("0", 28))
		}),
	}
	t.Cleanup(func() { appOptions = nil })

	return env
}

func (e *testEnv) createRepo(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(e.tmpDir, "repos", name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create repo: %v", err)
	}
	return path
}

// run executes the CLI against the environment's data directory.
func (e *testEnv) run(args ...string) (string, string, error) {
	return executeCommand(append(args, "--data-dir", e.dataDir)...)
}

func (e *testEnv) list(t *testing.T, args ...string) listOutput {
	t.Helper()

	stdout, _, err := e.run(append([]string{"list", "--json"}, args...)...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var out listOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, stdout)
	}
	return out
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	resetFlags(rootCmd)

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	shutdown()

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)
	logging.Stdout = os.Stdout
	logging.Stderr = os.Stderr

	return stdout.String(), stderr.String(), err
}

type fakeDirPicker struct {
	path string
	ok   bool
}

func (f fakeDirPicker) PickDirectory(string) (string, bool, error) {
	return f.path, f.ok, nil
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "kata-ws") {
		t.Error("Help output should contain 'kata-ws'")
	}
	if !strings.Contains(stdout, "worktree") {
		t.Error("Help output should mention worktrees")
	}
	for _, sub := range []string{"create", "list", "activate", "archive", "delete", "suggest", "pick", "audit-log"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("Help output should list %q", sub)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}

	for _, flag := range []string{"--verbose", "--json", "--data-dir"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("Should have %s flag", flag)
		}
	}
}

func TestCreateCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("create", "local", "--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}
	for _, flag := range []string{"--repo", "--name", "--branch", "--base-ref"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("create local help should mention %s", flag)
		}
	}
}

func TestCommandRequiresArgs(t *testing.T) {
	for _, name := range []string{"activate", "archive", "delete", "audit-log"} {
		t.Run(name, func(t *testing.T) {
			env := setupTestEnv(t)
			if _, _, err := env.run(name); err == nil {
				t.Errorf("%s without an id should fail", name)
			}
		})
	}
}

func TestCreateLocal(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	stdout, _, err := env.run("create", "local", "--repo", repo, "--name", "KAT-154")
	if err != nil {
		t.Fatalf("create local failed: %v", err)
	}
	if !strings.Contains(stdout, "workspace/kat-154-0001") {
		t.Errorf("output should show the branch:\n%s", stdout)
	}

	out := env.list(t)
	if len(out.Workspaces) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(out.Workspaces))
	}
	ws := out.Workspaces[0]
	if ws.Source != repo || ws.Status != workspace.StatusReady {
		t.Errorf("workspace = %+v", ws)
	}
	if out.ActiveWorkspaceID == nil || *out.ActiveWorkspaceID != ws.ID {
		t.Errorf("ActiveWorkspaceID = %v, want %s", out.ActiveWorkspaceID, ws.ID)
	}
}

func TestCreateLocal_RequiresName(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	_, _, err := env.run("create", "local", "--repo", repo)
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("err = %v, want required flag error", err)
	}
	if len(env.runner.Calls()) != 0 {
		t.Errorf("no tools should run, got %v", env.runner.Lines())
	}
}

func TestCreateLocal_ProtectedBranch(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	_, _, err := env.run("create", "local", "--repo", repo, "--name", "x", "--branch", "main")
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	if code := errors.GetExitCode(err); code != errors.ExitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, errors.ExitInvalidInput)
	}
}

func TestCreateLocal_DirectoryPrompt(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")
	t.Cleanup(func() { dirPicker = tui.PromptPicker{} })

	t.Run("cancelled", func(t *testing.T) {
		dirPicker = fakeDirPicker{}
		stdout, _, err := env.run("create", "local", "--name", "KAT-1")
		if err != nil {
			t.Fatalf("cancelled prompt should not fail: %v", err)
		}
		if !strings.Contains(stdout, "Cancelled") {
			t.Errorf("output = %q", stdout)
		}
		if got := env.list(t); len(got.Workspaces) != 0 {
			t.Errorf("expected no workspaces, got %d", len(got.Workspaces))
		}
	})

	t.Run("chosen", func(t *testing.T) {
		dirPicker = fakeDirPicker{path: repo, ok: true}
		if _, _, err := env.run("create", "local", "--name", "KAT-1"); err != nil {
			t.Fatalf("create local failed: %v", err)
		}
		got := env.list(t)
		if len(got.Workspaces) != 1 || got.Workspaces[0].Source != repo {
			t.Errorf("workspaces = %+v", got.Workspaces)
		}
	})
}

func TestCreateGithub(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.run("create", "github", "--url", "https://github.com/acme/widgets.git", "--name", "KAT-200")
	if err != nil {
		t.Fatalf("create github failed: %v", err)
	}
	if !env.runner.Called("git clone https://github.com/acme/widgets.git") {
		t.Errorf("expected a clone, got %v", env.runner.Lines())
	}

	_, _, err = env.run("create", "github", "--url", "https://gitlab.com/acme/widgets", "--name", "x")
	if err == nil || !strings.Contains(err.Error(), "github.com") {
		t.Errorf("err = %v, want a github.com host error", err)
	}
}

func TestCreateGithub_RepoPicker(t *testing.T) {
	env := setupTestEnv(t)
	env.runner.AddResponse("gh repo list", `[{"nameWithOwner":"acme/widgets","url":"https://github.com/acme/widgets","isPrivate":true,"updatedAt":"2026-01-01T00:00:00Z"}]`)
	t.Cleanup(func() { repoPicker = tui.RunRepoPicker })

	var offered []remote.Candidate
	repoPicker = func(candidates []remote.Candidate, query string) (remote.Suggestion, bool, error) {
		offered = candidates
		return remote.Suggestion{Candidate: candidates[0]}, true, nil
	}

	if _, _, err := env.run("create", "github", "--name", "KAT-200"); err != nil {
		t.Fatalf("create github failed: %v", err)
	}
	if len(offered) != 1 || offered[0].NameWithOwner != "acme/widgets" {
		t.Errorf("offered = %+v", offered)
	}
	got := env.list(t)
	if len(got.Workspaces) != 1 || got.Workspaces[0].Source != "https://github.com/acme/widgets" {
		t.Errorf("workspaces = %+v", got.Workspaces)
	}
}

func TestCreateGithub_RepoPickerGetsEveryCandidate(t *testing.T) {
	env := setupTestEnv(t)
	var entries []string
	for i := 0; i < 30; i++ {
		entries = append(entries, fmt.Sprintf(
			`{"nameWithOwner":"acme/repo-%02d","url":"https://github.com/acme/repo-%02d","isPrivate":false,"updatedAt":"2026-01-%02dT00:00:00Z"}`,
			i, i, 28-i%28))
	}
	env.runner.AddResponse("gh repo list", "["+strings.Join(entries, ",")+"]")
	t.Cleanup(func() { repoPicker = tui.RunRepoPicker })

	var offered []remote.Candidate
	repoPicker = func(candidates []remote.Candidate, query string) (remote.Suggestion, bool, error) {
		offered = candidates
		return remote.Suggestion{}, false, nil
	}

	if _, _, err := env.run("create", "github", "--name", "KAT-200"); err != nil {
		t.Fatalf("create github failed: %v", err)
	}
	if len(offered) != 30 {
		t.Fatalf("picker got %d candidates, want all 30", len(offered))
	}
	if got := remote.Rank("repo-29", offered); len(got) != 1 || got[0].NameWithOwner != "acme/repo-29" {
		t.Errorf("repository past the suggestion cap should be reachable, got %+v", got)
	}
}

func TestListHidesArchived(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	for _, name := range []string{"one", "two"} {
		if _, _, err := env.run("create", "local", "--repo", repo, "--name", name); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}
	first := env.list(t).Workspaces[0].ID
	if _, _, err := env.run("archive", first); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	if got := env.list(t); len(got.Workspaces) != 1 {
		t.Errorf("default list should hide archived, got %d", len(got.Workspaces))
	}
	if got := env.list(t, "--all"); len(got.Workspaces) != 2 {
		t.Errorf("--all should show archived, got %d", len(got.Workspaces))
	}

	stdout, _, err := env.run("list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "1 archived workspace(s) hidden") {
		t.Errorf("table output should mention hidden workspaces:\n%s", stdout)
	}
}

func TestActivateAndActive(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	for _, name := range []string{"one", "two"} {
		if _, _, err := env.run("create", "local", "--repo", repo, "--name", name); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}
	first := env.list(t).Workspaces[0]

	if _, _, err := env.run("activate", first.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	stdout, _, err := env.run("active")
	if err != nil {
		t.Fatalf("active failed: %v", err)
	}
	if !strings.Contains(stdout, first.ID) {
		t.Errorf("active output should show %s:\n%s", first.ID, stdout)
	}

	_, _, err = env.run("activate", "ws_missing")
	if code := errors.GetExitCode(err); code != errors.ExitNotFound {
		t.Errorf("exit code = %d, want %d (err %v)", code, errors.ExitNotFound, err)
	}
}

func TestDeleteRemoveFiles(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	if _, _, err := env.run("create", "local", "--repo", repo, "--name", "gone"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ws := env.list(t).Workspaces[0]
	if _, err := os.Stat(ws.WorktreePath); err != nil {
		t.Fatalf("worktree should exist: %v", err)
	}

	if _, _, err := env.run("delete", ws.ID, "--remove-files"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(ws.WorktreePath); !os.IsNotExist(err) {
		t.Errorf("worktree should be removed, stat err = %v", err)
	}
	got := env.list(t)
	if len(got.Workspaces) != 0 || got.ActiveWorkspaceID != nil {
		t.Errorf("registry after delete = %+v", got)
	}
}

func TestSuggest(t *testing.T) {
	env := setupTestEnv(t)
	env.runner.AddResponse("gh repo list", `[
		{"nameWithOwner":"acme/tools","url":"https://github.com/acme/tools","isPrivate":false,"updatedAt":"2026-02-01T00:00:00Z"},
		{"nameWithOwner":"acme/widgets","url":"https://github.com/acme/widgets","isPrivate":true,"updatedAt":"2026-01-01T00:00:00Z"}
	]`)

	stdout, _, err := env.run("suggest", "widgets", "--json")
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	var got []remote.Suggestion
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("suggest output is not JSON: %v\n%s", err, stdout)
	}
	if len(got) != 1 || got[0].NameWithOwner != "acme/widgets" {
		t.Errorf("suggestions = %+v", got)
	}

	stdout, _, err = env.run("suggest", "nothing-matches")
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if !strings.Contains(stdout, "No repositories match") {
		t.Errorf("output = %q", stdout)
	}
}

func TestPick(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")
	t.Cleanup(func() { runPicker = tui.RunPicker })

	if _, _, err := env.run("create", "local", "--repo", repo, "--name", "picked"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var offered int
	runPicker = func(workspaces []*workspace.Workspace, activeID string) (tui.PickerResult, error) {
		offered = len(workspaces)
		return tui.PickerResult{Action: tui.ActionArchive, Workspace: workspaces[0]}, nil
	}
	if _, _, err := env.run("pick"); err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if offered != 1 {
		t.Errorf("picker got %d workspaces, want 1", offered)
	}

	got := env.list(t, "--all")
	if len(got.Workspaces) != 1 || !got.Workspaces[0].IsArchived() {
		t.Errorf("workspace should be archived: %+v", got.Workspaces)
	}

	stdout, _, err := env.run("pick")
	if err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if !strings.Contains(stdout, "No workspaces found") {
		t.Errorf("archived workspaces should not be offered:\n%s", stdout)
	}
}

func TestAuditLog(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	if _, _, err := env.run("create", "local", "--repo", repo, "--name", "audited"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := env.list(t).Workspaces[0].ID
	if _, _, err := env.run("delete", id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	stdout, _, err := env.run("audit-log", id)
	if err != nil {
		t.Fatalf("audit-log failed: %v", err)
	}
	for _, want := range []string{"create", "delete", id} {
		if !strings.Contains(stdout, want) {
			t.Errorf("audit log should contain %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = env.run("audit-log", "ws_unknown")
	if err != nil {
		t.Fatalf("audit-log failed: %v", err)
	}
	if !strings.Contains(stdout, "No events found") {
		t.Errorf("output = %q", stdout)
	}
}

func TestStatus(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	if _, _, err := env.run("create", "local", "--repo", repo, "--name", "checked"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ws := env.list(t).Workspaces[0]
	env.runner.AddResponse("git worktree list --porcelain",
		"worktree "+repo+"\nHEAD abc\nbranch refs/heads/develop\n\nworktree "+ws.WorktreePath+"\nHEAD def\nbranch refs/heads/"+ws.Branch+"\n")

	stdout, _, err := env.run("status", ws.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{ws.ID, "Health Checks:", "Summary:    healthy"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("status output should contain %q:\n%s", want, stdout)
		}
	}

	if err := os.RemoveAll(ws.WorktreePath); err != nil {
		t.Fatal(err)
	}
	stdout, _, err = env.run("status", ws.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(stdout, "Summary:    missing") {
		t.Errorf("status should report the missing worktree:\n%s", stdout)
	}

	if _, _, err := env.run("status", "ws_missing"); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGC(t *testing.T) {
	env := setupTestEnv(t)
	repo := env.createRepo(t, "kata")

	for _, name := range []string{"kept", "stale"} {
		if _, _, err := env.run("create", "local", "--repo", repo, "--name", name); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}
	stale := env.list(t).Workspaces[1]
	if err := os.RemoveAll(stale.WorktreePath); err != nil {
		t.Fatal(err)
	}
	orphan := filepath.Join(env.dataDir, "workspaces", "leftover-9999")
	if err := os.MkdirAll(orphan, 0755); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := env.run("gc")
	if err != nil {
		t.Fatalf("gc failed: %v", err)
	}
	for _, want := range []string{"Dry run", orphan, stale.ID} {
		if !strings.Contains(stdout, want) {
			t.Errorf("gc output should contain %q:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Errorf("dry run should not remove anything: %v", err)
	}

	if _, _, err := env.run("gc", "--force"); err != nil {
		t.Fatalf("gc --force failed: %v", err)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Errorf("orphan should be removed, stat err = %v", err)
	}
	if got := env.list(t); len(got.Workspaces) != 2 {
		t.Errorf("gc must not remove records, got %d", len(got.Workspaces))
	}
}
