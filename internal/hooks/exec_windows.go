//go:build windows

package hooks

import "os"

// Windows has no executable bit; any regular file at the hook path counts.
func isExecutable(info os.FileInfo) bool {
	return !info.IsDir()
}
