//go:build !linux

package compositor

import "fmt"

// VTSwitcher is unavailable outside Linux.
type VTSwitcher struct {
	Device string
	Wait   bool
}

// SwitchVT always fails with ErrUnsupported.
func (v VTSwitcher) SwitchVT(n int) error {
	return fmt.Errorf("switch vt %d: %w", n, ErrUnsupported)
}
