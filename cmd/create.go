package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/lifecycle"
	"github.com/gannonh/kata-cloud-agents/internal/tui"
	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a workspace",
	Long: `Create a workspace: a new git worktree on its own branch, recorded in the
registry and made active.

Sources:
  local       an existing repository on this machine
  github      an existing GitHub repository, cloned into the repository cache
  github-new  a new private GitHub repository created with gh`,
}

var createLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Create a workspace from a local repository",
	Long: `Create a workspace from a local repository.

Without --repo an interactive directory prompt is shown.

Examples:
  kata-ws create local --repo ~/src/kata --name KAT-154
  kata-ws create local --repo . --name spike --base-ref origin/develop`,
	Args: cobra.NoArgs,
	RunE: runCreateLocal,
}

var createGithubCmd = &cobra.Command{
	Use:   "github",
	Short: "Create a workspace from an existing GitHub repository",
	Long: `Create a workspace from an existing GitHub repository.

The repository is cloned once into the cache and fetched on later creates.
Without --url an interactive picker over your gh repositories is shown.

Examples:
  kata-ws create github --url https://github.com/acme/widgets --name KAT-200`,
	Args: cobra.NoArgs,
	RunE: runCreateGithub,
}

var createGithubNewCmd = &cobra.Command{
	Use:   "github-new",
	Short: "Create a new private GitHub repository and a workspace in it",
	Long: `Create a new private GitHub repository with gh and a workspace in it.

--repo-name is "name" or "owner/name"; a missing owner is the
authenticated gh user.

Examples:
  kata-ws create github-new --repo-name scratch --name first-pass`,
	Args: cobra.NoArgs,
	RunE: runCreateGithubNew,
}

var (
	createName      string
	createBranch    string
	createBaseRef   string
	createRepo      string
	createURL       string
	createCloneRoot string
	createRepoName  string
)

// dirPicker and repoPicker are replaced in tests.
var (
	dirPicker  tui.DirectoryPicker = tui.PromptPicker{}
	repoPicker                     = tui.RunRepoPicker
)

func init() {
	for _, c := range []*cobra.Command{createLocalCmd, createGithubCmd, createGithubNewCmd} {
		c.Flags().StringVarP(&createName, "name", "n", "", "Workspace name (required)")
		c.Flags().StringVar(&createBranch, "branch", "", "Branch to create (default workspace/<slug>-<suffix>)")
		c.Flags().StringVar(&createBaseRef, "base-ref", "", "Ref to branch from (default: detected)")
		_ = c.MarkFlagRequired("name")
	}
	createLocalCmd.Flags().StringVarP(&createRepo, "repo", "r", "", "Path to the local repository")
	createGithubCmd.Flags().StringVarP(&createURL, "url", "u", "", "GitHub repository URL")
	createGithubCmd.Flags().StringVar(&createCloneRoot, "clone-root", "", "Repository cache root")
	createGithubNewCmd.Flags().StringVar(&createRepoName, "repo-name", "", "Repository to create, name or owner/name (required)")
	createGithubNewCmd.Flags().StringVar(&createCloneRoot, "clone-root", "", "Repository cache root")
	_ = createGithubNewCmd.MarkFlagRequired("repo-name")

	createCmd.AddCommand(createLocalCmd, createGithubCmd, createGithubNewCmd)
	rootCmd.AddCommand(createCmd)
}

func runCreateLocal(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	repo := createRepo
	if repo == "" {
		cwd, _ := os.Getwd()
		path, ok, err := dirPicker.PickDirectory(cwd)
		if err != nil {
			return fmt.Errorf("directory prompt failed: %w", err)
		}
		if !ok {
			logInfo("Cancelled")
			return nil
		}
		repo = path
	}

	logInfo("Creating workspace %s from %s", createName, repo)
	ws, err := svc.CreateLocalWorkspace(cmd.Context(), lifecycle.CreateLocalInput{
		RepoPath:      repo,
		WorkspaceName: createName,
		BranchName:    createBranch,
		BaseRef:       createBaseRef,
	})
	if err != nil {
		return err
	}
	reportCreated(cmd, ws)
	return nil
}

func runCreateGithub(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	url := createURL
	if url == "" {
		candidates, err := svc.RemoteRepositories(cmd.Context())
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return errors.InvalidInput("no GitHub repositories found; pass --url")
		}
		chosen, ok, err := repoPicker(candidates, "")
		if err != nil {
			return fmt.Errorf("repository picker failed: %w", err)
		}
		if !ok {
			logInfo("Cancelled")
			return nil
		}
		url = chosen.URL
	}

	logInfo("Creating workspace %s from %s", createName, url)
	ws, err := svc.CreateGithubWorkspace(cmd.Context(), lifecycle.CreateGithubInput{
		RepoURL:       url,
		WorkspaceName: createName,
		CloneRootPath: createCloneRoot,
		BranchName:    createBranch,
		BaseRef:       createBaseRef,
	})
	if err != nil {
		return err
	}
	reportCreated(cmd, ws)
	return nil
}

func runCreateGithubNew(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	logInfo("Creating repository %s", createRepoName)
	ws, err := svc.CreateNewGithubWorkspace(cmd.Context(), lifecycle.CreateNewGithubInput{
		RepositoryName: createRepoName,
		WorkspaceName:  createName,
		CloneRootPath:  createCloneRoot,
		BranchName:     createBranch,
		BaseRef:        createBaseRef,
	})
	if err != nil {
		return err
	}
	reportCreated(cmd, ws)
	return nil
}

func reportCreated(cmd *cobra.Command, ws *workspace.Workspace) {
	logSuccess("Workspace %s created and activated", ws.Name)
	printWorkspaceDetails(cmd.OutOrStdout(), ws)
}
