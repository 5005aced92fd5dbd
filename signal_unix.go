//go:build !windows

package subprocess

import "golang.org/x/sys/unix"

// lookupSignal resolves a symbolic name through the C library's signal
// numbering for this platform. SignalNum returns zero for names the
// platform does not define.
func lookupSignal(name string) (int, bool) {
	num := unix.SignalNum(name)
	if num == 0 {
		return 0, false
	}
	return int(num), true
}
