//go:build windows

package subprocess

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// Windows has no POSIX signal delivery. The registry keeps the handful
// of names the platform can approximate and marks everything else
// absent: SIGKILL and SIGTERM map to TerminateProcess, SIGINT to a
// console CTRL+C event.
var windowsSignals = map[string]int{
	"SIGINT":  int(syscall.SIGINT),
	"SIGKILL": int(syscall.SIGKILL),
	"SIGTERM": int(syscall.SIGTERM),
}

func lookupSignal(name string) (int, bool) {
	num, ok := windowsSignals[name]
	return num, ok
}

// interruptProcess simulates a CTRL+C event in the child's console. The
// parent temporarily detaches from its own console, attaches to the
// child's, and emits the event there.
func interruptProcess(pid int) error {
	if err := windows.FreeConsole(); err != nil {
		return err
	}
	if err := windows.AttachConsole(uint32(pid)); err != nil {
		return err
	}
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, 0)
}
