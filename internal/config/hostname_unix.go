//go:build unix

package config

import (
	"os"

	"golang.org/x/sys/unix"
)

// Hostname returns the kernel node name, falling back to os.Hostname.
func Hostname() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		if name := unix.ByteSliceToString(uts.Nodename[:]); name != "" {
			return name
		}
	}
	name, _ := os.Hostname()
	return name
}
