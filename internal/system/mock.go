package system

import (
	"context"
	"strings"
	"sync"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
)

// MockRunner implements Runner for testing.
type MockRunner struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command prefixes to responses.
	// Key format: "tool arg1 arg2..."; the longest matching prefix wins.
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// Hook, if set, runs before the response is returned. It lets tests
	// create files the real tool would have created.
	Hook func(cmd MockCommand)
}

// MockCommand records an executed command.
type MockCommand struct {
	Tool string
	Args []string
	Cwd  string
}

// Line returns the command as "tool arg1 arg2...".
func (c MockCommand) Line() string {
	return strings.Join(append([]string{c.Tool}, c.Args...), " ")
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output string
	Err    error
}

// NewMockRunner creates a new MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Commands:  make([]MockCommand, 0),
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse adds a successful response for a command prefix.
func (m *MockRunner) AddResponse(pattern string, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output}
}

// AddFailure makes commands matching pattern exit with the given status.
func (m *MockRunner) AddFailure(pattern string, exitCode int, stderr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields := strings.Fields(pattern)
	var tool string
	var args []string
	if len(fields) > 0 {
		tool, args = fields[0], fields[1:]
	}
	m.Responses[pattern] = MockResponse{Err: toolFailure(tool, args, exitCode, stderr)}
}

// SetMissing makes every invocation of tool fail as if it were not installed.
func (m *MockRunner) SetMissing(tool string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[tool] = MockResponse{Err: errors.ToolUnavailable(tool, Remedy(tool))}
}

func (m *MockRunner) Run(ctx context.Context, tool string, args []string, cwd string) (string, error) {
	m.mu.Lock()
	cmd := MockCommand{Tool: tool, Args: append([]string(nil), args...), Cwd: cwd}
	m.Commands = append(m.Commands, cmd)
	resp := m.match(cmd.Line())
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil && resp.Err == nil {
		hook(cmd)
	}
	return resp.Output, resp.Err
}

// match returns the response for the longest registered prefix of line.
// Callers must hold m.mu.
func (m *MockRunner) match(line string) MockResponse {
	best := -1
	var resp MockResponse
	for pattern, r := range m.Responses {
		if line != pattern && !strings.HasPrefix(line, pattern+" ") {
			continue
		}
		if len(pattern) > best {
			best = len(pattern)
			resp = r
		}
	}
	if best < 0 {
		return m.DefaultResponse
	}
	return resp
}

// Calls returns a copy of the recorded commands.
func (m *MockRunner) Calls() []MockCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCommand(nil), m.Commands...)
}

// Lines returns the recorded commands rendered with MockCommand.Line.
func (m *MockRunner) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		lines[i] = c.Line()
	}
	return lines
}

// Called reports whether any recorded command starts with prefix.
func (m *MockRunner) Called(prefix string) bool {
	for _, line := range m.Lines() {
		if line == prefix || strings.HasPrefix(line, prefix+" ") {
			return true
		}
	}
	return false
}

// LastCommand returns the most recently executed command.
func (m *MockRunner) LastCommand() (MockCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return MockCommand{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Reset clears all recorded commands.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]MockCommand, 0)
}
