package headless

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/input/device"
	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/logging"
)

// recordingEvents collects what the backend delivers.
type recordingEvents struct {
	keys    []key.Event
	devices []string
	ready   int
}

func (r *recordingEvents) KeyPressed(ev key.Event) { r.keys = append(r.keys, ev) }
func (r *recordingEvents) DeviceAdded(dev device.Device) { r.devices = append(r.devices, dev.Name()) }
func (r *recordingEvents) GraphicsReady() { r.ready++ }

func TestBackend_Run(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"Super+Shift+q",
		"",
		"XF86AudioMute",
		"!device touchpad",
		"Hyper+x",
		"Ctrl+Alt+F2",
	}, "\n")

	b := New(strings.NewReader(input), &bytes.Buffer{}, logging.Null, WithDevices("keyboard"))
	ev := &recordingEvents{}
	if err := b.Run(context.Background(), ev); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if ev.ready != 1 {
		t.Errorf("GraphicsReady called %d times, want 1", ev.ready)
	}
	wantDevices := []string{"virtual-pointer", "keyboard", "touchpad"}
	if strings.Join(ev.devices, ",") != strings.Join(wantDevices, ",") {
		t.Errorf("devices = %v, want %v", ev.devices, wantDevices)
	}

	want := []string{"Super+Shift+q", "XF86AudioMute", "Ctrl+Alt+F2"}
	if len(ev.keys) != len(want) {
		t.Fatalf("keys = %v, want %v", ev.keys, want)
	}
	for i, w := range want {
		if ev.keys[i].String() != w {
			t.Errorf("keys[%d] = %q, want %q", i, ev.keys[i].String(), w)
		}
	}
	if len(b.Devices()) != 3 {
		t.Errorf("Devices() = %d, want 3", len(b.Devices()))
	}
}

func TestBackend_RunStopsOnCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	b := New(r, &bytes.Buffer{}, logging.Null)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, &recordingEvents{}) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestStatusWriter(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatusWriter(&buf)
	_ = s.SetStatus("2024-03-01 12:00")
	_ = s.SetStatus("2024-03-01 12:01")
	if buf.String() != "2024-03-01 12:00\n2024-03-01 12:01\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSeat_Records(t *testing.T) {
	s := NewSeat("default", logging.Null)
	s.Focus(compositor.Left)
	s.Move(compositor.Up)
	s.CreateSplit(compositor.Vertical)
	s.ToggleFullscreen()
	s.ShowWorkspace("3")
	s.SetWorkspace("4")
	s.Close()
	s.SetRepeatRate(60, 250)
	s.SetFocusFollowsMouse(true)
	if err := s.SetKeymap("us"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetKeymap(""); !errors.Is(err, ErrEmptyKeymap) {
		t.Errorf("SetKeymap(\"\") error = %v", err)
	}

	want := []string{
		"focus left", "move up", "split vertical", "toggle-fullscreen",
		"show-workspace 3", "set-workspace 4", "close",
		"repeat-rate 60 250", "focus-follows-mouse true", "keymap us",
	}
	got := s.Actions()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Actions() = %v\nwant %v", got, want)
	}
	if rate, delay := s.RepeatRate(); rate != 60 || delay != 250 {
		t.Errorf("RepeatRate() = %d, %d", rate, delay)
	}
	if s.Keymap() != "us" || !s.FocusFollowsMouse() {
		t.Error("seat settings not recorded")
	}
}

func TestSeat_OnAction(t *testing.T) {
	s := NewSeat("default", logging.Null)
	var seen []string
	s.OnAction(func(action string) {
		// Runs unlocked, so the seat can be read back.
		seen = append(seen, action+"/"+strconv.Itoa(len(s.Actions())))
	})
	s.Focus(compositor.Right)
	s.Close()

	if got := strings.Join(seen, "|"); got != "focus right/1|close/2" {
		t.Errorf("OnAction saw %q", got)
	}
}

type fakeSwitcher struct{ got []int }

func (f *fakeSwitcher) SwitchVT(n int) error {
	f.got = append(f.got, n)
	return nil
}

func TestSession(t *testing.T) {
	sw := &fakeSwitcher{}
	s := NewSession(sw, logging.Null)

	if _, ok := s.GfxAPI(); ok {
		t.Error("GfxAPI should be unset initially")
	}
	_ = s.SetGfxAPI(compositor.Vulkan)
	if api, ok := s.GfxAPI(); !ok || api != compositor.Vulkan {
		t.Errorf("GfxAPI() = %v, %v", api, ok)
	}

	_ = s.SwitchVT(2)
	if len(s.VTs()) != 1 || s.VTs()[0] != 2 {
		t.Errorf("VTs() = %v", s.VTs())
	}
	if len(sw.got) != 1 || sw.got[0] != 2 {
		t.Errorf("switcher got %v", sw.got)
	}
}
