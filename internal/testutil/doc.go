// Package testutil provides test fixtures and utilities.
//
// # Fixtures
//
// Registry fixtures are embedded using go:embed:
//
//	fixtures/valid_registry.json
//	fixtures/invalid_registry.json
//	fixtures/malformed_registry.json
//
//	fx, err := testutil.ValidRegistry()
//	err = testutil.InstallFixture("malformed_registry.json", paths.RegistryFile)
//
// # Test Environment
//
// NewTestEnv builds an app.App over a temporary data directory with a
// MockRunner and a fixed clock:
//
//	env := testutil.NewTestEnv(t)
//	repo := env.CreateRepoDir("kata")
//	ws, err := env.App.Service.CreateLocalWorkspace(ctx, lifecycle.CreateLocalInput{
//	    RepoPath:      repo,
//	    WorkspaceName: "KAT-154",
//	})
//
// # Git
//
// InitRepo creates a real repository with one commit on main and skips the
// test when git is not installed.
package testutil
