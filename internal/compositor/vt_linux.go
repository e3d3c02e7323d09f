//go:build linux

package compositor

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Console ioctls from <linux/vt.h>.
const (
	vtActivate   = 0x5606
	vtWaitActive = 0x5607
)

// VTSwitcher switches the active Linux virtual terminal through the
// console device.
type VTSwitcher struct {
	// Device is the console to issue ioctls on. Empty means /dev/tty0.
	Device string

	// Wait blocks until the switch has completed.
	Wait bool
}

// SwitchVT activates virtual terminal n.
func (v VTSwitcher) SwitchVT(n int) error {
	if n < 1 || n > 63 {
		return fmt.Errorf("switch vt: terminal %d out of range", n)
	}
	dev := v.Device
	if dev == "" {
		dev = "/dev/tty0"
	}

	f, err := os.OpenFile(dev, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return fmt.Errorf("switch vt: %w", err)
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.IoctlSetInt(fd, vtActivate, n); err != nil {
		return fmt.Errorf("switch vt %d: %w", n, err)
	}
	if v.Wait {
		if err := unix.IoctlSetInt(fd, vtWaitActive, n); err != nil {
			return fmt.Errorf("wait for vt %d: %w", n, err)
		}
	}
	return nil
}
