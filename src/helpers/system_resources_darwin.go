//go:build darwin

package helpers

import "golang.org/x/sys/unix"

// GetTotalSystemMemoryMB returns the physical memory in MB, 0 when unknown.
func GetTotalSystemMemoryMB() int {
	bytes, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0
	}
	return int(bytes / 1024 / 1024)
}
