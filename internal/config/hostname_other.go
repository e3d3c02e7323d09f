//go:build !unix

package config

import "os"

// Hostname returns the host name reported by the operating system.
func Hostname() string {
	name, _ := os.Hostname()
	return name
}
