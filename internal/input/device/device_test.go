package device

import (
	"testing"

	"github.com/dshills/tessera/internal/logging"
)

type fakeDevice struct {
	name    string
	natural bool
	tap     bool
	calls   int
}

func (d *fakeDevice) Name() string { return d.name }

func (d *fakeDevice) SetNaturalScrolling(enabled bool) {
	d.natural = enabled
	d.calls++
}

func (d *fakeDevice) SetTapEnabled(enabled bool) {
	d.tap = enabled
	d.calls++
}

func TestDefaultSettings(t *testing.T) {
	d := DefaultSettings()
	if !d.NaturalScrolling || !d.TapToClick {
		t.Errorf("DefaultSettings() = %+v, want both enabled", d)
	}
}

func TestTracker_Attach(t *testing.T) {
	tr := NewTracker(DefaultSettings(), logging.Null)
	dev := &fakeDevice{name: "touchpad"}

	tr.Attach(dev)
	if !dev.natural || !dev.tap {
		t.Errorf("device = %+v, want defaults applied", dev)
	}
	if len(tr.Devices()) != 1 {
		t.Errorf("Devices() = %d, want 1", len(tr.Devices()))
	}
}

func TestTracker_SetDefaultsReapplies(t *testing.T) {
	tr := NewTracker(DefaultSettings(), nil)
	a := &fakeDevice{name: "a"}
	b := &fakeDevice{name: "b"}
	tr.Attach(a)
	tr.Attach(b)

	tr.SetDefaults(Defaults{NaturalScrolling: false, TapToClick: true})
	for _, dev := range []*fakeDevice{a, b} {
		if dev.natural || !dev.tap {
			t.Errorf("%s = %+v after SetDefaults", dev.name, dev)
		}
		if dev.calls != 4 {
			t.Errorf("%s calls = %d, want 4", dev.name, dev.calls)
		}
	}
	if tr.Defaults().NaturalScrolling {
		t.Error("Defaults() not updated")
	}
}
