//go:build unix

package hooks

import "os"

func isExecutable(info os.FileInfo) bool {
	return info.Mode()&0o111 != 0
}
