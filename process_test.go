//go:build !windows

package subprocess

import (
	"errors"
	"io"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testWait = 5 * time.Second

// spawnShell runs a short shell script as the child.
func spawnShell(t *testing.T, script string, opts ...Option) *Process {
	t.Helper()
	p, err := Spawn("sh", []string{"-c", script}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = p.Kill()
		p.Wait(testWait)
		_ = p.Release()
	})
	return p
}

// readLine accumulates stream bytes until a newline arrives or the
// deadline passes.
func readLine(t *testing.T, p *Process, stream Stream, deadline time.Duration) string {
	t.Helper()
	var out []byte
	until := time.Now().Add(deadline)
	for time.Now().Before(until) {
		b, err := p.Read(stream, 50*time.Millisecond)
		out = append(out, b...)
		if len(out) > 0 && out[len(out)-1] == '\n' {
			break
		}
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	return string(out)
}

func TestSpawnStateIsRunning(t *testing.T) {
	p := spawnShell(t, "sleep 30")

	require.Equal(t, StateRunning, p.State())
	require.NotEqual(t, StateUnknown, p.Wait(0))
	require.Positive(t, p.PID())

	_, ok := p.ExitStatus()
	require.False(t, ok)
}

func TestEchoRoundtrip(t *testing.T) {
	p := spawnShell(t, `read _ n; echo "$n"`)

	n, err := p.Write([]byte("echo 1\n"))
	require.NoError(t, err)
	require.Equal(t, 7, n)

	require.Equal(t, "1\n", readLine(t, p, Stdout, testWait))
}

func TestStderrIsIndependent(t *testing.T) {
	p := spawnShell(t, `echo out; echo err 1>&2`)

	require.Equal(t, "out\n", readLine(t, p, Stdout, testWait))
	require.Equal(t, "err\n", readLine(t, p, Stderr, testWait))
}

func TestReadZeroTimeoutNeverBlocks(t *testing.T) {
	p := spawnShell(t, "sleep 30")

	start := time.Now()
	b, err := p.Read(Stdout, 0)
	require.NoError(t, err)
	require.Empty(t, b)
	require.Less(t, time.Since(start), time.Second)
}

func TestReadTimeoutReturnsEmpty(t *testing.T) {
	p := spawnShell(t, "sleep 30")

	start := time.Now()
	b, err := p.Read(Stdout, 100*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, b)
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)
}

func TestKillReportsSignal(t *testing.T) {
	p := spawnShell(t, "sleep 30")

	require.NoError(t, p.Kill())
	require.Equal(t, StateSignaled, p.Wait(testWait))

	status, ok := p.ExitStatus()
	require.True(t, ok)
	require.True(t, status.Signaled)
	require.Equal(t, int(syscall.SIGKILL), status.Code)

	// Further termination requests on an exited child are no-ops.
	require.NoError(t, p.Kill())
	require.NoError(t, p.Terminate())
}

func TestTerminateReportsSignal(t *testing.T) {
	p := spawnShell(t, "sleep 30")

	require.NoError(t, p.Terminate())
	require.Equal(t, StateSignaled, p.Wait(testWait))

	status, ok := p.ExitStatus()
	require.True(t, ok)
	require.True(t, status.Signaled)
	require.Equal(t, int(syscall.SIGTERM), status.Code)
}

func TestTerminateIgnoredThenKilled(t *testing.T) {
	p := spawnShell(t, `trap "" TERM; echo ready; while true; do sleep 1; done`)
	// The trap is installed by the time the child can print.
	require.Equal(t, "ready\n", readLine(t, p, Stdout, testWait))

	require.NoError(t, p.Terminate())
	require.Equal(t, StateRunning, p.Wait(time.Second))

	require.NoError(t, p.Kill())
	require.Equal(t, StateSignaled, p.Wait(testWait))
	status, _ := p.ExitStatus()
	require.Equal(t, int(syscall.SIGKILL), status.Code)
}

func TestExitCodeRecorded(t *testing.T) {
	p := spawnShell(t, "exit 3")

	require.Equal(t, StateExited, p.Wait(testWait))
	status, ok := p.ExitStatus()
	require.True(t, ok)
	require.False(t, status.Signaled)
	require.Equal(t, 3, status.Code)
	require.False(t, status.Success())
}

func TestTerminalStateIsStable(t *testing.T) {
	p := spawnShell(t, "exit 0")

	require.Equal(t, StateExited, p.Wait(testWait))
	for i := 0; i < 3; i++ {
		require.Equal(t, StateExited, p.Wait(0))
	}
	status, _ := p.ExitStatus()
	require.True(t, status.Success())
}

func TestSignalUnsupportedName(t *testing.T) {
	p := spawnShell(t, "sleep 30")

	err := p.Signal("SIGNOTREAL")
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	require.Equal(t, SignalUnsupportedOnPlatform, sigErr.Kind)
	require.ErrorIs(t, err, ErrUnsupportedSignal)

	// The child was left untouched.
	require.Equal(t, StateRunning, p.Wait(100*time.Millisecond))
}

func TestSignalAfterExit(t *testing.T) {
	p := spawnShell(t, "exit 0")
	require.Equal(t, StateExited, p.Wait(testWait))

	err := p.Signal("SIGTERM")
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	require.Equal(t, SignalNoSuchProcess, sigErr.Kind)
	require.ErrorIs(t, err, ErrNoSuchProcess)
}

func TestSignalDelivery(t *testing.T) {
	p := spawnShell(t, `trap 'echo usr1; exit 0' USR1; echo ready; while true; do sleep 1; done`)
	require.Equal(t, "ready\n", readLine(t, p, Stdout, testWait))

	require.NoError(t, p.Signal("SIGUSR1"))
	require.Equal(t, "usr1\n", readLine(t, p, Stdout, testWait))
	require.Equal(t, StateExited, p.Wait(testWait))
}

func TestReadAfterExitDrainsThenEOF(t *testing.T) {
	p := spawnShell(t, "printf hi")
	require.Equal(t, StateExited, p.Wait(testWait))

	var out []byte
	var err error
	for {
		var b []byte
		b, err = p.Read(Stdout, time.Second)
		out = append(out, b...)
		if err != nil || len(b) == 0 {
			break
		}
	}
	require.Equal(t, "hi", string(out))
	require.ErrorIs(t, err, io.EOF)

	// EOF is sticky once drained.
	_, err = p.Read(Stdout, 0)
	require.ErrorIs(t, err, io.EOF)
}

func TestWriteAfterExitFails(t *testing.T) {
	p := spawnShell(t, "exit 0")
	require.Equal(t, StateExited, p.Wait(testWait))

	_, err := p.Write([]byte("anyone there?\n"))
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
}

func TestCloseInputEndsFilter(t *testing.T) {
	p := spawnShell(t, "cat")

	_, err := p.Write([]byte("last words\n"))
	require.NoError(t, err)
	require.NoError(t, p.CloseInput())

	require.Equal(t, "last words\n", readLine(t, p, Stdout, testWait))
	require.Equal(t, StateExited, p.Wait(testWait))
}

func TestReleaseIsIdempotent(t *testing.T) {
	p, err := Spawn("sh", []string{"-c", "exit 0"})
	require.NoError(t, err)
	p.Wait(testWait)

	require.NoError(t, p.Release())
	require.NoError(t, p.Release())

	_, err = p.Read(Stdout, 0)
	var handleErr *HandleError
	require.ErrorAs(t, err, &handleErr)
	require.ErrorIs(t, err, ErrHandleReleased)

	_, err = p.Write([]byte("x"))
	require.ErrorIs(t, err, ErrHandleReleased)
	require.ErrorIs(t, p.Terminate(), ErrHandleReleased)
	require.ErrorIs(t, p.Kill(), ErrHandleReleased)
	require.ErrorIs(t, p.Signal("SIGTERM"), ErrHandleReleased)
}

func TestStringer(t *testing.T) {
	p := spawnShell(t, "sleep 30")
	require.Contains(t, p.String(), "sh")
	require.Contains(t, p.String(), "running")
}
