//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// detach starts the child in a new session so it outlives the compositor
// and does not receive its terminal's signals.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
