package errors

import (
	"errors"
	"fmt"
)

// Exit codes for kata-ws
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitNotFound         = 2
	ExitInvalidInput     = 3
	ExitIoFailure        = 4
	ExitMalformedState   = 5
	ExitToolUnavailable  = 6
	ExitToolFailed       = 7
	ExitStateUnavailable = 8
)

// Kind classifies a workspace error.
type Kind int

const (
	KindUnknown Kind = iota
	KindIoFailure
	KindMalformedState
	KindInvalidInput
	KindNotFound
	KindToolUnavailable
	KindExternalToolFailure
	KindStateUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindIoFailure:
		return "io_failure"
	case KindMalformedState:
		return "malformed_state"
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindToolUnavailable:
		return "tool_unavailable"
	case KindExternalToolFailure:
		return "external_tool_failure"
	case KindStateUnavailable:
		return "state_unavailable"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code for this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindIoFailure:
		return ExitIoFailure
	case KindMalformedState:
		return ExitMalformedState
	case KindInvalidInput:
		return ExitInvalidInput
	case KindNotFound:
		return ExitNotFound
	case KindToolUnavailable:
		return ExitToolUnavailable
	case KindExternalToolFailure:
		return ExitToolFailed
	case KindStateUnavailable:
		return ExitStateUnavailable
	default:
		return ExitGeneralError
	}
}

// Error is the base error type for kata-ws
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Tool details, set for KindExternalToolFailure.
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with an Error
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// InvalidInput returns an error for caller-supplied data that fails validation
func InvalidInput(format string, args ...any) *Error {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an error for an unknown workspace id
func NotFound(id string) *Error {
	return New(KindNotFound, fmt.Sprintf("workspace not found: %s", id))
}

// IoFailure returns an error for a filesystem read or write failure
func IoFailure(op string, cause error) *Error {
	return Wrap(KindIoFailure, op, cause)
}

// MalformedState returns an error for persisted state that cannot be parsed
func MalformedState(path string, cause error) *Error {
	return Wrap(KindMalformedState, fmt.Sprintf("malformed workspace state in %s", path), cause)
}

// ToolUnavailable returns an error for a required binary missing from PATH
func ToolUnavailable(tool, remedy string) *Error {
	return New(KindToolUnavailable, fmt.Sprintf("%s not found in PATH: %s", tool, remedy))
}

// ToolFailed returns an error for an external tool that ran and exited nonzero.
// message is the full user-facing text including the captured diagnostics.
func ToolFailed(tool string, args []string, exitCode int, stderr, message string) *Error {
	return &Error{
		Kind:     KindExternalToolFailure,
		Message:  message,
		Tool:     tool,
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// StateUnavailable returns the error reported once the in-memory registry
// can no longer be trusted.
func StateUnavailable() *Error {
	return New(KindStateUnavailable, "workspace state unavailable, restart the application")
}

// KindOf returns the Kind of the first Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return KindOf(err).ExitCode()
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
