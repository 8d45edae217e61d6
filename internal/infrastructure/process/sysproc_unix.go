//go:build !windows

package process

import "syscall"

// detachedAttr puts the daemon in its own process group so terminal signals
// aimed at the caller do not reach it.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
