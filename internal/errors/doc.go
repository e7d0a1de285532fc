// Package errors provides typed errors with exit codes for kata-ws.
//
// # Error Kinds
//
// Every error produced by the workspace engine carries one Kind:
//
//	KindIoFailure           // filesystem read/write failed
//	KindMalformedState      // registry JSON present but unparseable
//	KindInvalidInput        // caller data failed validation
//	KindNotFound            // unknown workspace id
//	KindToolUnavailable     // git or gh missing from PATH
//	KindExternalToolFailure // git or gh ran and exited nonzero
//	KindStateUnavailable    // registry poisoned by a panic, restart required
//
// # Error Constructors
//
//	errors.InvalidInput("branch already exists: %s", branch)
//	errors.NotFound(id)
//	errors.IoFailure("failed to write registry", err)
//	errors.ToolUnavailable("gh", "install gh and run gh auth login")
//
// # Matching
//
// Internal code matches on kind, never on message text:
//
//	if errors.IsKind(err, errors.KindNotFound) { ... }
//
// The CLI converts an error to text and an exit code only at the boundary:
//
//	os.Exit(errors.GetExitCode(err))
package errors
