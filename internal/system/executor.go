package system

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
)

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// Binaries maps a tool name to the binary to execute. Tools missing
	// from the map run under their own name.
	Binaries map[string]string
}

// NewExecRunner returns a Runner backed by real subprocesses.
func NewExecRunner(binaries map[string]string) *ExecRunner {
	return &ExecRunner{Binaries: binaries}
}

func (r *ExecRunner) binary(tool string) string {
	if bin, ok := r.Binaries[tool]; ok && bin != "" {
		return bin
	}
	return tool
}

func (r *ExecRunner) Run(ctx context.Context, tool string, args []string, cwd string) (string, error) {
	bin := r.binary(tool)
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", errors.ToolUnavailable(tool, Remedy(tool))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = cwd
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	line := CommandLine(tool, args)
	logging.Debug("running command", "component", logging.CompRunner, "cmd", line, "cwd", cwd)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return "", toolFailure(tool, args, exitErr.ExitCode(), stderr.String())
		}
		if stderrors.Is(err, exec.ErrNotFound) {
			return "", errors.ToolUnavailable(tool, Remedy(tool))
		}
		return "", errors.IoFailure(fmt.Sprintf("failed to start %s", line), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// toolFailure builds the KindExternalToolFailure error for a nonzero exit.
// The captured stderr is kept verbatim; a synthesized message is used only
// when the tool wrote nothing to stderr.
func toolFailure(tool string, args []string, exitCode int, stderr string) error {
	line := CommandLine(tool, args)
	trimmed := strings.TrimSpace(stderr)
	msg := fmt.Sprintf("%s failed: %s", line, trimmed)
	if trimmed == "" {
		msg = fmt.Sprintf("%s exited with status %d", line, exitCode)
	}
	return errors.ToolFailed(tool, args, exitCode, trimmed, msg)
}

// ExitCodeOf returns the tool exit code carried by err, or -1 when err is
// not an external tool failure.
func ExitCodeOf(err error) int {
	var e *errors.Error
	if errors.As(err, &e) && e.Kind == errors.KindExternalToolFailure {
		return e.ExitCode
	}
	return -1
}
