package platform

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskStatus reports the free-space fraction of the volume containing path,
// used by the drive-verification and low-disk gates (§4.2, EDISK002/003).
type DiskStatus struct {
	TotalBytes uint64
	FreeBytes  uint64
	UsedPct    float64
}

// Disk returns disk usage for the volume containing path.
func Disk(path string) (DiskStatus, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return DiskStatus{}, err
	}
	return DiskStatus{
		TotalBytes: usage.Total,
		FreeBytes:  usage.Free,
		UsedPct:    usage.UsedPercent,
	}, nil
}

// ModTime returns the last-modified time of path, used by the watcher's
// poll-mode fallback and by change-set detection.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Exists is a small readability helper used throughout the gate checks.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
