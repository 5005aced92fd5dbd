package subprocess

import "fmt"

// State describes the lifecycle of a child process as last observed
// through the OS wait primitives.
type State int

const (
	// StateUnknown means no wait operation has observed the process yet.
	StateUnknown State = iota
	// StateRunning means the process was alive at the last observation.
	StateRunning
	// StateExited means the process terminated on its own with an exit code.
	StateExited
	// StateSignaled means the process was terminated by a signal.
	StateSignaled
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateSignaled:
		return "signaled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the state can no longer change.
func (s State) Terminal() bool {
	return s == StateExited || s == StateSignaled
}

// ExitStatus holds the status information of a child process after its
// termination has been observed.
//
// When the process was terminated by a signal, Code carries the signal
// number, matching the underlying wait-status convention, and Signaled
// is true.
type ExitStatus struct {
	PID      int
	Code     int
	Signaled bool
	Err      error
}

// Success reports whether the process exited on its own with code zero.
func (s ExitStatus) Success() bool {
	return !s.Signaled && s.Code == 0
}

func (s ExitStatus) Error() error {
	if s.Success() {
		return nil
	}
	if s.Err == nil {
		return nil
	}
	if s.Signaled {
		return fmt.Errorf("terminated by signal %d: %w", s.Code, s.Err)
	}
	return fmt.Errorf("exit status %d: %w", s.Code, s.Err)
}

func (s ExitStatus) Unwrap() error {
	return s.Err
}

func (s ExitStatus) String() string {
	if s.Signaled {
		return fmt.Sprintf("pid %d terminated by signal %d", s.PID, s.Code)
	}
	return fmt.Sprintf("pid %d exited with code %d", s.PID, s.Code)
}
