package platform

import (
	"os"
	"strconv"
	"strings"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
)

// Alive reports whether pid currently belongs to a live process whose
// command line contains marker. The marker check guards against the classic
// PID-reuse bug (§4.1/§4.7): an unrelated process that happens to reuse a
// dead daemon's PID must not be mistaken for it.
func Alive(pid int, marker string) bool {
	if pid <= 0 {
		return false
	}
	proc, err := gopsprocess.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil || !running {
		return false
	}
	if marker == "" {
		return true
	}
	cmdline, err := proc.Cmdline()
	if err != nil {
		return false
	}
	return strings.Contains(cmdline, marker)
}

// WritePIDFile atomically writes pid to path (via the teacher's
// write-temp-then-rename pattern, reused from internal/daemon/registry.go).
func WritePIDFile(path string, pid int) error {
	return AtomicWriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// ReadPIDFile returns the pid recorded at path, or 0 if unreadable/invalid.
func ReadPIDFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
