// Package terminal is a nested compositor backend that runs inside a
// terminal emulator. Key presses come from tcell, seat actions are listed in
// the window, and the status text sits on the bottom row.
package terminal

import (
	"context"
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/compositor/headless"
	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/logging"
	"github.com/dshills/tessera/internal/status"
)

// DeviceName is the input device reported for the terminal keyboard.
const DeviceName = "terminal-keyboard"

// ErrQuit is returned by Run when the user pressed Ctrl+C.
var ErrQuit = errors.New("terminal: quit requested")

const title = "tessera: Ctrl+C quits"

var quitKey = key.Event{Key: key.Key('c'), Modifiers: key.ModCtrl}

// Backend draws into a tcell screen.
type Backend struct {
	screen  tcell.Screen
	seat    *headless.Seat
	session *headless.Session
	logger  *logging.Logger

	mu     sync.Mutex
	status string
	closed bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithVTSwitcher forwards session.vt requests to sw.
func WithVTSwitcher(sw interface{ SwitchVT(n int) error }) Option {
	return func(b *Backend) {
		b.session = headless.NewSession(sw, b.logger)
	}
}

// New creates a backend on the controlling terminal.
func New(log *logging.Logger, opts ...Option) (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, log, opts...)
}

// NewWithScreen creates a backend on screen and initialises it.
func NewWithScreen(screen tcell.Screen, log *logging.Logger, opts ...Option) (*Backend, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	log = logging.OrDefault(log).WithComponent("terminal")
	b := &Backend{
		screen:  screen,
		seat:    headless.NewSeat("default", log),
		session: headless.NewSession(nil, log),
		logger:  log,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.seat.OnAction(func(string) { b.draw() })
	return b, nil
}

// Name identifies the backend.
func (b *Backend) Name() string { return "terminal" }

// Seat returns the seat.
func (b *Backend) Seat() compositor.Seat { return b.seat }

// Session returns the session.
func (b *Backend) Session() compositor.Session { return b.session }

// StatusSink returns the bottom-row status sink.
func (b *Backend) StatusSink() status.Sink {
	return status.SinkFunc(b.SetStatus)
}

// SetStatus replaces the status text and redraws.
func (b *Backend) SetStatus(text string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("terminal: closed")
	}
	b.status = text
	b.mu.Unlock()
	b.draw()
	return nil
}

// Status returns the current status text.
func (b *Backend) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Run delivers terminal events until ctx is done or Ctrl+C is pressed.
func (b *Backend) Run(ctx context.Context, events compositor.Events) error {
	events.GraphicsReady()
	events.DeviceAdded(headless.NewDevice(DeviceName))
	b.draw()

	stop := context.AfterFunc(ctx, func() {
		_ = b.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			k, ok := ConvertKey(e)
			if !ok {
				b.logger.Debug("unmapped terminal key", "key", e.Name())
				continue
			}
			if k.Chord() == quitKey {
				return ErrQuit
			}
			events.KeyPressed(k)
		case *tcell.EventResize:
			b.screen.Sync()
			b.draw()
		}
	}
}

// draw repaints the title, the recent seat actions and the status row.
func (b *Backend) draw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	s := b.screen
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	drawText(s, 0, 0, w, title, tcell.StyleDefault.Bold(true))

	actions := b.seat.Actions()
	rows := h - 2
	if rows > 0 && len(actions) > rows {
		actions = actions[len(actions)-rows:]
	}
	for i, a := range actions {
		if i >= rows {
			break
		}
		drawText(s, 0, 1+i, w, a, tcell.StyleDefault)
	}

	if h > 1 {
		text := runewidth.Truncate(b.status, w, "…")
		x := w - runewidth.StringWidth(text)
		drawText(s, x, h-1, w-x, text, tcell.StyleDefault.Reverse(true))
	}
	s.Show()
}

// drawText writes text from (x, y), at most width cells wide.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	used := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if used+rw > width {
			return
		}
		s.SetContent(x+used, y, r, nil, style)
		used += rw
	}
}

// Close restores the terminal.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.screen.Fini()
	return nil
}
