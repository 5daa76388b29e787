package sandbox

import (
	"errors"
	"fmt"
	"os"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

var (
	// ErrPathTraversal is returned when a path escapes the sandbox root
	ErrPathTraversal = errors.New("path escapes sandbox root")

	// ErrNotFound is returned when the target does not exist
	ErrNotFound = errors.New("no such file or directory")

	// ErrPermissionDenied is returned when the target is not accessible
	ErrPermissionDenied = errors.New("permission denied")
)

// Error wraps a filesystem operation failure with its protocol error
// kind. The user-supplied path is reported, never the resolved one.
type Error struct {
	Op   string
	Path string
	Kind string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// ErrorKind returns the protocol error kind for this error.
func (e *Error) ErrorKind() string { return e.Kind }

func traversalError(op, path string) *Error {
	return &Error{Op: op, Path: path, Kind: protocol.ErrKindPathTraversal, Err: ErrPathTraversal}
}

// wrapOSError translates an I/O failure into a kinded sandbox error.
func wrapOSError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var kindedErr *Error
	if errors.As(err, &kindedErr) {
		return err
	}

	switch {
	case os.IsNotExist(err):
		return &Error{Op: op, Path: path, Kind: protocol.ErrKindNotFound, Err: ErrNotFound}
	case os.IsPermission(err):
		return &Error{Op: op, Path: path, Kind: protocol.ErrKindPermissionDenied, Err: ErrPermissionDenied}
	default:
		return &Error{Op: op, Path: path, Kind: protocol.ErrKindExecutionError, Err: err}
	}
}
