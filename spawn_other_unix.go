//go:build !windows && !linux

package subprocess

import "syscall"

// Only Linux offers a parent-death signal; elsewhere the default
// attributes are used.
func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
