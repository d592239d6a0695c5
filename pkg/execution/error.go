package execution

import (
	"fmt"

	"github.com/buildbarn/bb-remote-node/pkg/digest"
)

// ErrorKind tags the vocabulary of errors an Execution Backend or the
// setup thunk that precedes it may raise.
type ErrorKind int

const (
	// KindInvalidArgument signals a malformed request: a missing
	// required field, or a deprecated field that must be absent.
	KindInvalidArgument ErrorKind = iota
	// KindBlobNotFound signals a CAS lookup miss while resolving
	// the action, command, or input tree.
	KindBlobNotFound
	// KindIO signals a filesystem failure while materializing the
	// sandbox or collecting outputs.
	KindIO
	// KindInternal signals a bug in the engine or backend.
	KindInternal
)

// Error is the error type returned by a setup thunk or a Backend. The
// RBE service layer embeds it into the status of a terminal
// ExecuteResponse, whether it arose during setup or while running the
// backend; its Kind determines the status code used.
type Error struct {
	Kind   ErrorKind
	Digest digest.Digest
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidArgument:
		return fmt.Sprintf("invalid argument: %s", e.Reason)
	case KindBlobNotFound:
		return fmt.Sprintf("blob not found: %s", e.Digest)
	case KindIO:
		return fmt.Sprintf("i/o error: %s", e.Cause)
	default:
		return fmt.Sprintf("internal error: %s", e.Reason)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewInvalidArgumentError creates an Error of kind KindInvalidArgument.
func NewInvalidArgumentError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Reason: fmt.Sprintf(format, args...)}
}

// NewBlobNotFoundError creates an Error of kind KindBlobNotFound for
// the given digest.
func NewBlobNotFoundError(d digest.Digest) *Error {
	return &Error{Kind: KindBlobNotFound, Digest: d}
}

// NewIOError wraps a filesystem or transport error as KindIO.
func NewIOError(cause error) *Error {
	return &Error{Kind: KindIO, Cause: cause}
}

// NewInternalError creates an Error of kind KindInternal.
func NewInternalError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Reason: fmt.Sprintf(format, args...)}
}
