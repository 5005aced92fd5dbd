//go:build windows

package subprocess

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// createCommand spawns the child into a new hidden console, so console
// ctrl events can be generated for it without disturbing the parent.
func createCommand(path string, args []string) *exec.Cmd {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_CONSOLE,
		HideWindow:    true,
	}
	return cmd
}

// terminateProcess has no graceful primitive to build on: Windows offers
// nothing equivalent to SIGTERM for an arbitrary process, so graceful
// termination is defined to behave exactly like Kill here.
func terminateProcess(proc *os.Process) error {
	return killProcess(proc)
}

func killProcess(proc *os.Process) error {
	err := proc.Kill()
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrProcessDone) {
		return ErrNoSuchProcess
	}
	return err
}

func sendSignal(proc *os.Process, num int) error {
	var err error
	switch syscall.Signal(num) {
	case syscall.SIGINT:
		err = interruptProcess(proc.Pid)
	case syscall.SIGTERM, syscall.SIGKILL:
		return killProcess(proc)
	default:
		// The registry never hands out other values on Windows.
		return ErrUnsupportedSignal
	}
	if err != nil && errors.Is(err, os.ErrProcessDone) {
		return ErrNoSuchProcess
	}
	return err
}

// decodeExitStatus translates the wait result into an ExitStatus.
// Windows has no terminated-by-signal notion; TerminateProcess surfaces
// as exit code 1.
func decodeExitStatus(pid int, cmd *exec.Cmd, waitErr error) ExitStatus {
	status := ExitStatus{PID: pid, Err: waitErr}

	if waitErr == nil {
		status.Code = cmd.ProcessState.ExitCode()
		return status
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		status.Code = exitErr.ExitCode()
		return status
	}

	status.Code = -1
	return status
}
