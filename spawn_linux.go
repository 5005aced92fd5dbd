//go:build linux

package subprocess

import "syscall"

// sysProcAttr asks the kernel to deliver SIGKILL to the child if the
// parent dies without having released it, so crashed parents do not
// leak children.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}
}
