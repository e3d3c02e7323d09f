// Package device applies per-device input settings when devices attach.
package device

import (
	"github.com/dshills/tessera/internal/logging"
)

// Device is an attached pointer or touchpad.
type Device interface {
	Name() string
	SetNaturalScrolling(enabled bool)
	SetTapEnabled(enabled bool)
}

// Defaults are the settings applied to every attached device.
type Defaults struct {
	NaturalScrolling bool
	TapToClick       bool
}

// DefaultSettings returns natural scrolling and tap-to-click both on.
func DefaultSettings() Defaults {
	return Defaults{NaturalScrolling: true, TapToClick: true}
}

// Apply configures dev.
func (d Defaults) Apply(dev Device) {
	dev.SetNaturalScrolling(d.NaturalScrolling)
	dev.SetTapEnabled(d.TapToClick)
}

// Tracker remembers attached devices so new defaults can be reapplied to
// all of them after a reload.
type Tracker struct {
	defaults Defaults
	devices  []Device
	logger   *logging.Logger
}

// NewTracker creates a tracker applying defaults.
func NewTracker(defaults Defaults, log *logging.Logger) *Tracker {
	return &Tracker{
		defaults: defaults,
		logger:   log.WithComponent("device"),
	}
}

// Attach applies the current defaults to dev and remembers it.
func (t *Tracker) Attach(dev Device) {
	t.defaults.Apply(dev)
	t.devices = append(t.devices, dev)
	t.logger.Info("device attached",
		"name", dev.Name(),
		"natural_scrolling", t.defaults.NaturalScrolling,
		"tap", t.defaults.TapToClick)
}

// SetDefaults replaces the defaults and reapplies them to every known device.
func (t *Tracker) SetDefaults(d Defaults) {
	t.defaults = d
	for _, dev := range t.devices {
		d.Apply(dev)
	}
}

// Defaults returns the current defaults.
func (t *Tracker) Defaults() Defaults {
	return t.defaults
}

// Devices returns the attached devices in attachment order.
func (t *Tracker) Devices() []Device {
	out := make([]Device, len(t.devices))
	copy(out, t.devices)
	return out
}
