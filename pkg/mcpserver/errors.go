package mcpserver

import (
	"errors"
	"fmt"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

// Error is a kinded dispatch error. Validation errors carry the name of
// the offending parameter in Param.
type Error struct {
	Kind    string
	Param   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("parameter %q: %s", e.Param, e.Message)
	}
	return e.Message
}

// ErrorKind returns the protocol error kind for this error.
func (e *Error) ErrorKind() string { return e.Kind }

func duplicateTool(name string) *Error {
	return &Error{Kind: protocol.ErrKindDuplicateTool, Message: fmt.Sprintf("tool already registered: %s", name)}
}

func unknownTool(name string) *Error {
	return &Error{Kind: protocol.ErrKindUnknownTool, Message: fmt.Sprintf("tool not found: %s", name)}
}

func missingParameter(param string) *Error {
	return &Error{Kind: protocol.ErrKindMissingParameter, Param: param, Message: "required parameter is missing"}
}

func unexpectedParameter(param string) *Error {
	return &Error{Kind: protocol.ErrKindUnexpectedParameter, Param: param, Message: "parameter is not declared by the tool"}
}

func typeMismatch(param, expected string) *Error {
	return &Error{Kind: protocol.ErrKindTypeMismatch, Param: param, Message: fmt.Sprintf("expected %s", expected)}
}

func executionError(msg string) *Error {
	return &Error{Kind: protocol.ErrKindExecutionError, Message: msg}
}

// kinded is implemented by errors that carry a protocol error kind.
type kinded interface {
	ErrorKind() string
}

// KindOf maps an error to its protocol error kind. Errors without an
// explicit kind are execution errors.
func KindOf(err error) string {
	var k kinded
	if errors.As(err, &k) && k.ErrorKind() != "" {
		return k.ErrorKind()
	}
	return protocol.ErrKindExecutionError
}
