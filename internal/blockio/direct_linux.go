//go:build linux

package blockio

import "syscall"

// directOpenFlag returns the platform flag that requests uncached,
// page-cache-bypassing I/O.
func directOpenFlag() int {
	return syscall.O_DIRECT
}

// directIOSupported reports whether this platform can request O_DIRECT.
func directIOSupported() bool {
	return true
}
