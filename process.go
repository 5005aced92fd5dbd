package subprocess

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Process is the caller-facing handle for a spawned child: it owns the
// three pipe transports wired to the child's standard streams and tracks
// the child's lifecycle state. A handle is created by Spawn and must be
// released with Release when no longer needed; releasing closes the
// parent-held pipe ends but does not terminate the child.
//
// All methods are safe for concurrent use, though the package is
// designed around a single control flow driving each handle.
type Process struct {
	id   string
	name string
	path string
	args []string
	pid  int

	cmd    *exec.Cmd
	stdin  writeTransport
	stdout readTransport
	stderr readTransport

	clock  clockwork.Clock
	logger *zap.Logger
	table  *Table

	state atomic.Int32
	done  chan struct{}

	mu       sync.Mutex
	exit     ExitStatus
	released bool
}

// ID returns the opaque handle identifier assigned at spawn time.
func (p *Process) ID() string { return p.id }

// PID returns the OS process id of the child.
func (p *Process) PID() int { return p.pid }

// Path returns the resolved executable path the child was spawned from.
func (p *Process) Path() string { return p.path }

// State returns the last observed lifecycle state. Once a terminal state
// has been recorded it never changes again.
func (p *Process) State() State {
	return State(p.state.Load())
}

// Wait blocks until the child exits or the timeout elapses and returns
// the current state. A negative timeout waits indefinitely, zero polls.
// A child that outlives the timeout simply yields StateRunning.
func (p *Process) Wait(timeout time.Duration) State {
	switch {
	case timeout < 0:
		<-p.done
	case timeout > 0:
		select {
		case <-p.done:
		case <-p.clock.After(timeout):
		}
	}
	return p.State()
}

// Done returns a channel closed once the child's termination has been
// observed. It allows waiting from several goroutines at once.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitStatus returns the recorded exit status. ok is false while the
// child is still running.
func (p *Process) ExitStatus() (ExitStatus, bool) {
	select {
	case <-p.done:
	default:
		return ExitStatus{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exit, true
}

// reap runs once per handle: it waits for the child, records the exit
// status and wakes every waiter. The terminal state is written before
// the done channel closes, so no stale poll can ever overwrite it.
func (p *Process) reap() {
	waitErr := p.cmd.Wait()
	status := decodeExitStatus(p.pid, p.cmd, waitErr)

	p.mu.Lock()
	p.exit = status
	p.mu.Unlock()

	if status.Signaled {
		p.state.Store(int32(StateSignaled))
	} else {
		p.state.Store(int32(StateExited))
	}
	close(p.done)

	p.logger.Debug("child process exited",
		zap.String("handle", p.id),
		zap.Int("pid", p.pid),
		zap.Int("code", status.Code),
		zap.Bool("signaled", status.Signaled),
	)
	if p.table != nil {
		p.table.reaped(p)
	}
}

// Terminate requests graceful shutdown of the child. On POSIX this
// delivers SIGTERM; on Windows, which has no graceful primitive for an
// arbitrary process, it behaves exactly like Kill. Calling Terminate on
// an already exited child is a no-op.
func (p *Process) Terminate() error {
	if p.isReleased() {
		return &HandleError{Op: "terminate", Err: ErrHandleReleased}
	}
	if p.State() != StateRunning {
		return nil
	}
	err := terminateProcess(p.cmd.Process)
	if err == nil || errors.Is(err, ErrNoSuchProcess) {
		return nil
	}
	return fmt.Errorf("terminate pid %d: %w", p.pid, err)
}

// Kill forces immediate termination of the child. It is the only
// termination path guaranteed to succeed against a live process.
// Calling Kill on an already exited child is a no-op.
func (p *Process) Kill() error {
	if p.isReleased() {
		return &HandleError{Op: "kill", Err: ErrHandleReleased}
	}
	if p.State() != StateRunning {
		return nil
	}
	err := killProcess(p.cmd.Process)
	if err == nil || errors.Is(err, ErrNoSuchProcess) {
		return nil
	}
	return fmt.Errorf("kill pid %d: %w", p.pid, err)
}

// Signal delivers the named signal from the registry to the child.
func (p *Process) Signal(name string) error {
	if p.isReleased() {
		return &HandleError{Op: "signal", Err: ErrHandleReleased}
	}
	num, ok := SignalNum(name)
	if !ok {
		return &SignalError{Kind: SignalUnsupportedOnPlatform, Name: name, Err: ErrUnsupportedSignal}
	}
	if p.State() != StateRunning {
		return &SignalError{Kind: SignalNoSuchProcess, Name: name, Err: ErrNoSuchProcess}
	}
	err := sendSignal(p.cmd.Process, num)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoSuchProcess) {
		return &SignalError{Kind: SignalNoSuchProcess, Name: name, Err: ErrNoSuchProcess}
	}
	return fmt.Errorf("signal %s to pid %d: %w", name, p.pid, err)
}

// Read returns bytes from the child's stdout or stderr, honoring the
// transport timeout semantics: negative blocks, zero polls, positive
// waits up to the deadline. A timeout with no data yields (nil, nil);
// end of stream yields (nil, io.EOF) once drained.
func (p *Process) Read(stream Stream, timeout time.Duration) ([]byte, error) {
	if p.isReleased() {
		return nil, &HandleError{Op: "read " + stream.String(), Err: ErrHandleReleased}
	}
	switch stream {
	case Stdout:
		return p.stdout.Read(timeout)
	case Stderr:
		return p.stderr.Read(timeout)
	default:
		return nil, &ReadError{Stream: stream, Err: errors.New("stream is not readable")}
	}
}

// Write sends bytes to the child's stdin and returns the count accepted.
// On a full pipe buffer the call blocks under normal OS back-pressure
// until the child drains its input.
func (p *Process) Write(b []byte) (int, error) {
	if p.isReleased() {
		return 0, &HandleError{Op: "write stdin", Err: ErrHandleReleased}
	}
	return p.stdin.Write(b)
}

// CloseInput closes the child's stdin, signaling end of input. Children
// that read until EOF, like filters, exit soon after.
func (p *Process) CloseInput() error {
	if p.isReleased() {
		return &HandleError{Op: "close stdin", Err: ErrHandleReleased}
	}
	return p.stdin.Close()
}

// Release deterministically frees the handle's resources: all three
// pipe ends are closed and, on the threaded backend, the reader
// goroutines are joined. The child itself is not terminated. Release is
// idempotent; any further operation on the handle fails with a
// HandleError.
func (p *Process) Release() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return nil
	}
	p.released = true
	p.mu.Unlock()

	err := errors.Join(
		p.stdin.Close(),
		p.stdout.Close(),
		p.stderr.Close(),
	)
	if p.table != nil {
		p.table.remove(p.id)
	}
	p.logger.Debug("handle released",
		zap.String("handle", p.id),
		zap.Int("pid", p.pid),
	)
	return err
}

func (p *Process) isReleased() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func (p *Process) String() string {
	return fmt.Sprintf("%s (pid %d, %s)", p.name, p.pid, p.State())
}
