// Package system isolates external tool invocation behind a narrow interface
// so provisioning code can be tested without real git or gh binaries.
package system

import (
	"context"

	shellquote "github.com/kballard/go-shellquote"
)

// Runner executes an external tool (git or gh) as a subprocess.
type Runner interface {
	// Run executes tool with args in cwd and returns trimmed stdout.
	// An empty cwd inherits the current working directory.
	//
	// A tool that cannot be located fails with KindToolUnavailable.
	// A tool that ran and exited nonzero fails with KindExternalToolFailure
	// carrying the exit code and trimmed stderr.
	Run(ctx context.Context, tool string, args []string, cwd string) (string, error)
}

// Tool names understood by the default runner.
const (
	ToolGit = "git"
	ToolGH  = "gh"
)

// remedies holds install/auth guidance per tool for KindToolUnavailable.
var remedies = map[string]string{
	ToolGit: "install git and make sure it is on your PATH",
	ToolGH:  "install the GitHub CLI (gh) and authenticate with `gh auth login`",
}

// Remedy returns the install guidance for a tool.
func Remedy(tool string) string {
	if r, ok := remedies[tool]; ok {
		return r
	}
	return "install " + tool + " and make sure it is on your PATH"
}

// CommandLine renders a tool invocation as a shell-quoted string for logs
// and error messages.
func CommandLine(tool string, args []string) string {
	return shellquote.Join(append([]string{tool}, args...)...)
}
