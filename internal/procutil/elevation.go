package procutil

import (
	"os"
	"runtime"
)

// Elevated reports whether the current process runs with administrative
// privileges. Informational only: injection tends to misreport failure when
// not elevated, it does not necessarily fail.
func Elevated() bool {
	if runtime.GOOS == "windows" {
		// Opening a raw physical drive requires administrator rights.
		f, err := os.Open(`\\.\PHYSICALDRIVE0`)
		if err != nil {
			return false
		}
		f.Close()
		return true
	}
	return os.Geteuid() == 0
}
