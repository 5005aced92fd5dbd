package subprocess

import (
	"errors"
	"fmt"
)

// Sentinel errors. Transient conditions (timeout, EOF, a child that has
// not exited yet) are ordinary return values and never wrapped in the
// error types below.
var (
	// ErrHandleReleased is returned by operations on a handle whose
	// resources have already been released.
	ErrHandleReleased = errors.New("subprocess: handle already released")

	// ErrNotRunning is returned when an operation requires a live child.
	ErrNotRunning = errors.New("subprocess: process is not running")

	// ErrUnsupportedSignal is returned when a signal name has no numeric
	// value on the current platform.
	ErrUnsupportedSignal = errors.New("subprocess: signal not supported on this platform")

	// ErrNoSuchProcess is returned when a signal cannot be delivered
	// because the target already exited.
	ErrNoSuchProcess = errors.New("subprocess: no such process")
)

// SpawnErrorKind classifies why a spawn failed.
type SpawnErrorKind int

const (
	// SpawnExecutableNotFound means the executable path did not resolve
	// to an existing file.
	SpawnExecutableNotFound SpawnErrorKind = iota
	// SpawnPermissionDenied means the file exists but is not executable
	// by the current user.
	SpawnPermissionDenied
	// SpawnResourceExhausted means pipe or process creation failed for
	// lack of OS resources.
	SpawnResourceExhausted
	// SpawnOSFailure covers any other native spawn failure.
	SpawnOSFailure
)

func (k SpawnErrorKind) String() string {
	switch k {
	case SpawnExecutableNotFound:
		return "executable not found"
	case SpawnPermissionDenied:
		return "permission denied"
	case SpawnResourceExhausted:
		return "resource exhausted"
	default:
		return "os spawn failure"
	}
}

// SpawnError reports a failed spawn. No handle is returned alongside it;
// any pipes created before the failure have been closed.
type SpawnError struct {
	Kind SpawnErrorKind
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// SignalErrorKind classifies why a signal delivery failed.
type SignalErrorKind int

const (
	// SignalUnsupportedOnPlatform means the symbolic name is absent from
	// the platform's signal registry.
	SignalUnsupportedOnPlatform SignalErrorKind = iota
	// SignalNoSuchProcess means the target process already exited.
	SignalNoSuchProcess
)

// SignalError reports a failed signal delivery.
type SignalError struct {
	Kind SignalErrorKind
	Name string
	Err  error
}

func (e *SignalError) Error() string {
	switch e.Kind {
	case SignalUnsupportedOnPlatform:
		return fmt.Sprintf("signal %s: unsupported on this platform", e.Name)
	default:
		return fmt.Sprintf("signal %s: %v", e.Name, e.Err)
	}
}

func (e *SignalError) Unwrap() error { return e.Err }

// ReadError reports a genuine stream read failure, distinct from the
// timeout and EOF conditions which are ordinary results.
type ReadError struct {
	Stream Stream
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Stream, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed write to the child's standard input, most
// commonly a broken pipe after the child exited.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write stdin: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// HandleError reports an operation attempted on an invalid or already
// released handle.
type HandleError struct {
	Op  string
	Err error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *HandleError) Unwrap() error { return e.Err }
