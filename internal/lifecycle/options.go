package lifecycle

// CreateLocalInput holds the options for a workspace backed by a local
// repository.
type CreateLocalInput struct {
	// RepoPath is the origin repository (required)
	RepoPath string `json:"repoPath"`

	// WorkspaceName is the display name (required)
	WorkspaceName string `json:"workspaceName"`

	// BranchName overrides the derived workspace/<slug>-<suffix> branch
	BranchName string `json:"branchName,omitempty"`

	// BaseRef overrides the detected base ref
	BaseRef string `json:"baseRef,omitempty"`
}

// CreateGithubInput holds the options for a workspace backed by an existing
// GitHub repository.
type CreateGithubInput struct {
	// RepoURL is https://github.com/<owner>/<repo>[.git] (required)
	RepoURL string `json:"repoUrl"`

	WorkspaceName string `json:"workspaceName"`

	// CloneRootPath overrides the repository cache root
	CloneRootPath string `json:"cloneRootPath,omitempty"`

	BranchName string `json:"branchName,omitempty"`
	BaseRef    string `json:"baseRef,omitempty"`
}

// CreateNewGithubInput holds the options for a workspace backed by a newly
// created GitHub repository.
type CreateNewGithubInput struct {
	// RepositoryName is "name" or "owner/name". A missing owner resolves to
	// the authenticated gh user.
	RepositoryName string `json:"repositoryName"`

	WorkspaceName string `json:"workspaceName"`
	CloneRootPath string `json:"cloneRootPath,omitempty"`
	BranchName    string `json:"branchName,omitempty"`
	BaseRef       string `json:"baseRef,omitempty"`
}
