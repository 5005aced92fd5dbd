//go:build !windows

package subprocess

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func createCommand(path string, args []string) *exec.Cmd {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = sysProcAttr()
	return cmd
}

// terminateProcess delivers the platform's graceful-termination signal.
func terminateProcess(proc *os.Process) error {
	return sendSignal(proc, int(unix.SIGTERM))
}

// killProcess delivers the forced-termination signal, which cannot be
// caught or ignored.
func killProcess(proc *os.Process) error {
	return sendSignal(proc, int(unix.SIGKILL))
}

func sendSignal(proc *os.Process, num int) error {
	err := proc.Signal(syscall.Signal(num))
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, unix.ESRCH) {
		return ErrNoSuchProcess
	}
	return err
}

// decodeExitStatus translates the wait result into an ExitStatus. When
// the child died to a signal, Code carries the signal number per the
// wait-status convention.
func decodeExitStatus(pid int, cmd *exec.Cmd, waitErr error) ExitStatus {
	status := ExitStatus{PID: pid, Err: waitErr}

	if waitErr == nil {
		status.Code = cmd.ProcessState.ExitCode()
		return status
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				status.Signaled = true
				status.Code = int(ws.Signal())
				return status
			}
			status.Code = ws.ExitStatus()
			return status
		}
		status.Code = exitErr.ExitCode()
		return status
	}

	// Wait failed for a non-exit reason; the code is unknowable.
	status.Code = -1
	return status
}
