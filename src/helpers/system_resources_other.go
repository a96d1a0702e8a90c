//go:build !linux && !darwin && !windows

package helpers

// GetTotalSystemMemoryMB is not probed on this platform.
func GetTotalSystemMemoryMB() int {
	return 0
}
