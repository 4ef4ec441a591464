// Package fserr defines the two error layers of the server.
//
// An OperationError is an expected failure of a single operation (bad
// argument, sandbox violation, missing file). It is reported to the caller as
// ordinary result text. A Fault is an unexpected failure of the server itself
// and is the only error the dispatcher turns into a protocol-level error.
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies an OperationError.
type Kind string

const (
	InvalidArgument   Kind = "invalid_argument"
	PermissionDenied  Kind = "permission_denied"
	UnsupportedFormat Kind = "unsupported_format"
	NotFound          Kind = "not_found"
	NotADirectory     Kind = "not_a_directory"
	IO                Kind = "io"
)

// OperationError is a recoverable, user-facing failure.
type OperationError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// New creates an OperationError with a formatted message.
func New(kind Kind, format string, args ...any) *OperationError {
	return &OperationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches err as the cause of a new OperationError.
func Wrap(kind Kind, err error, format string, args ...any) *OperationError {
	return &OperationError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Common messages shared by every operation.
var (
	ErrAccessDenied       = New(PermissionDenied, "Access denied")
	ErrPathRequired       = New(InvalidArgument, "File path is required")
	ErrFileTypeNotAllowed = New(UnsupportedFormat, "File type not allowed")
	ErrNotADirectory      = New(NotADirectory, "Not a valid directory")
)

// FromFS classifies an error returned by the os or io/fs packages.
func FromFS(err error, path string) *OperationError {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(NotFound, err, "Path not found: %s", path)
	case errors.Is(err, fs.ErrPermission):
		return Wrap(PermissionDenied, err, "Access denied: %s", path)
	default:
		return Wrap(IO, err, "Cannot access %s", path)
	}
}

// KindOf returns the kind of the first OperationError in err's chain, or IO
// when there is none.
func KindOf(err error) Kind {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return IO
}

// IsKind reports whether err carries an OperationError of the given kind.
func IsKind(err error, kind Kind) bool {
	var opErr *OperationError
	return errors.As(err, &opErr) && opErr.Kind == kind
}

// Fault is an unexpected server failure. Only the dispatcher reports it, as
// an internal error.
type Fault struct {
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault wraps err as a Fault.
func NewFault(err error, format string, args ...any) *Fault {
	return &Fault{Message: fmt.Sprintf(format, args...), Err: err}
}

// IsFault reports whether err is, or wraps, a Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}
