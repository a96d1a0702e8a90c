//go:build linux

package helpers

import (
	"os"
	"strconv"
	"strings"
)

// cgroup limits come first so containers do not size against the host.
var cgroupLimitFiles = []string{
	"/sys/fs/cgroup/memory.max",
	"/sys/fs/cgroup/memory/memory.limit_in_bytes",
}

// GetTotalSystemMemoryMB returns the memory available to the process in MB,
// 0 when unknown.
func GetTotalSystemMemoryMB() int {
	hostMB := meminfoTotalMB()
	for _, path := range cgroupLimitFiles {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		limit, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil || limit <= 0 {
			// "max" means unlimited
			continue
		}
		limitMB := int(limit / 1024 / 1024)
		if hostMB == 0 || limitMB < hostMB {
			return limitMB
		}
	}
	return hostMB
}

func meminfoTotalMB() int {
	raw, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(raw), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "MemTotal:" {
			kb, err := strconv.Atoi(fields[1])
			if err != nil {
				return 0
			}
			return kb / 1024
		}
	}
	return 0
}
