package headless

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/logging"
	"github.com/dshills/tessera/internal/status"
)

// Device is a virtual input device.
type Device struct {
	name string

	mu      sync.Mutex
	natural bool
	tap     bool
}

// NewDevice creates a virtual device.
func NewDevice(name string) *Device {
	return &Device{name: name}
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// SetNaturalScrolling sets natural scrolling.
func (d *Device) SetNaturalScrolling(enabled bool) {
	d.mu.Lock()
	d.natural = enabled
	d.mu.Unlock()
}

// SetTapEnabled sets tap-to-click.
func (d *Device) SetTapEnabled(enabled bool) {
	d.mu.Lock()
	d.tap = enabled
	d.mu.Unlock()
}

// Settings returns the device's natural scrolling and tap settings.
func (d *Device) Settings() (natural, tap bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.natural, d.tap
}

// StatusWriter writes each status as a line.
type StatusWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStatusWriter creates a sink writing to w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	return &StatusWriter{w: w}
}

// SetStatus writes text followed by a newline.
func (s *StatusWriter) SetStatus(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, text)
	return err
}

// Backend reads key specifications from an input stream.
//
// Lines are trimmed; blank lines and lines starting with '#' are skipped.
// "!device <name>" attaches a virtual device. Anything else is parsed as a
// key specification and delivered as a press.
type Backend struct {
	in      io.Reader
	seat    *Seat
	session *Session
	sink    *StatusWriter
	devices []string
	logger  *logging.Logger

	mu       sync.Mutex
	attached []*Device
}

// Option configures a Backend.
type Option func(*Backend)

// WithDevices attaches virtual devices with these names at startup.
func WithDevices(names ...string) Option {
	return func(b *Backend) {
		b.devices = append(b.devices, names...)
	}
}

// WithVTSwitcher forwards VT switches to sw.
func WithVTSwitcher(sw interface{ SwitchVT(n int) error }) Option {
	return func(b *Backend) {
		b.session.switcher = sw
	}
}

// New creates a headless backend reading presses from in and writing status
// lines to out.
func New(in io.Reader, out io.Writer, log *logging.Logger, opts ...Option) *Backend {
	log = logging.OrDefault(log)
	b := &Backend{
		in:      in,
		seat:    NewSeat("default", log),
		session: NewSession(nil, log),
		sink:    NewStatusWriter(out),
		devices: []string{"virtual-pointer"},
		logger:  log.WithComponent("headless"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "headless".
func (b *Backend) Name() string { return "headless" }

// Seat returns the default seat.
func (b *Backend) Seat() compositor.Seat { return b.seat }

// RecordingSeat returns the seat with its recording accessors.
func (b *Backend) RecordingSeat() *Seat { return b.seat }

// Session returns the session.
func (b *Backend) Session() compositor.Session { return b.session }

// RecordingSession returns the session with its recording accessors.
func (b *Backend) RecordingSession() *Session { return b.session }

// StatusSink returns the line writer.
func (b *Backend) StatusSink() status.Sink { return b.sink }

// Devices returns the virtual devices attached so far.
func (b *Backend) Devices() []*Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Device, len(b.attached))
	copy(out, b.attached)
	return out
}

// Run signals graphics-ready, attaches the startup devices and then delivers
// presses until the input ends or ctx is cancelled.
func (b *Backend) Run(ctx context.Context, events compositor.Events) error {
	events.GraphicsReady()
	for _, name := range b.devices {
		b.attach(events, name)
	}

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(b.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("headless input: %w", err)
					}
				default:
				}
				b.logger.Info("input closed")
				return nil
			}
			b.handleLine(events, line)
		}
	}
}

func (b *Backend) handleLine(events compositor.Events, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	if name, ok := strings.CutPrefix(line, "!device "); ok {
		b.attach(events, strings.TrimSpace(name))
		return
	}

	ev, err := key.Parse(line)
	if err != nil {
		b.logger.Warn("ignoring input line", "line", line, "error", err)
		return
	}
	events.KeyPressed(key.NewEvent(ev.Key, ev.Modifiers))
}

func (b *Backend) attach(events compositor.Events, name string) {
	dev := NewDevice(name)
	b.mu.Lock()
	b.attached = append(b.attached, dev)
	b.mu.Unlock()
	events.DeviceAdded(dev)
}

// Close does nothing; the input stream belongs to the caller.
func (b *Backend) Close() error { return nil }
