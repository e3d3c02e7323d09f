// Package headless is a compositor backend without a display. Key presses
// are read as specifications ("Super+Shift+q") one per line, status text is
// written as lines, and seat actions are logged and recorded.
//
// It drives scripted runs and the app tests.
package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/logging"
	"github.com/dshills/tessera/internal/workspace"
)

// ErrEmptyKeymap is returned by SetKeymap for an empty layout name.
var ErrEmptyKeymap = errors.New("headless: empty keymap")

// Seat records every action it is asked to perform.
type Seat struct {
	name string

	mu      sync.Mutex
	actions []string

	keymap            string
	repeatRate        int
	repeatDelay       int
	focusFollowsMouse bool

	onAction func(action string)
	logger   *logging.Logger
}

// NewSeat creates a recording seat.
func NewSeat(name string, log *logging.Logger) *Seat {
	return &Seat{
		name:   name,
		logger: log.WithComponent("seat").WithField("seat", name),
	}
}

func (s *Seat) record(format string, args ...any) {
	action := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.actions = append(s.actions, action)
	fn := s.onAction
	s.mu.Unlock()
	s.logger.Info("seat action", "action", action)
	if fn != nil {
		fn(action)
	}
}

// OnAction registers fn to run after each recorded action.
func (s *Seat) OnAction(fn func(action string)) {
	s.mu.Lock()
	s.onAction = fn
	s.mu.Unlock()
}

// Actions returns the recorded actions in order.
func (s *Seat) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.actions))
	copy(out, s.actions)
	return out
}

// Name returns the seat name.
func (s *Seat) Name() string { return s.name }

// ShowWorkspace records the switch.
func (s *Seat) ShowWorkspace(id workspace.ID) { s.record("show-workspace %s", id) }

// SetWorkspace records the move.
func (s *Seat) SetWorkspace(id workspace.ID) { s.record("set-workspace %s", id) }

// Focus records a focus change.
func (s *Seat) Focus(dir compositor.Direction) { s.record("focus %s", dir) }

// Move records a window move.
func (s *Seat) Move(dir compositor.Direction) { s.record("move %s", dir) }

// ToggleFullscreen records the toggle.
func (s *Seat) ToggleFullscreen() { s.record("toggle-fullscreen") }

// CreateSplit records a new split.
func (s *Seat) CreateSplit(axis compositor.Axis) { s.record("split %s", axis) }

// Close records a close request.
func (s *Seat) Close() { s.record("close") }

// SetKeymap records the layout.
func (s *Seat) SetKeymap(layout string) error {
	if layout == "" {
		return ErrEmptyKeymap
	}
	s.mu.Lock()
	s.keymap = layout
	s.mu.Unlock()
	s.record("keymap %s", layout)
	return nil
}

// SetRepeatRate records the repeat settings.
func (s *Seat) SetRepeatRate(rate, delay int) {
	s.mu.Lock()
	s.repeatRate, s.repeatDelay = rate, delay
	s.mu.Unlock()
	s.record("repeat-rate %d %d", rate, delay)
}

// SetFocusFollowsMouse records the mode.
func (s *Seat) SetFocusFollowsMouse(enabled bool) {
	s.mu.Lock()
	s.focusFollowsMouse = enabled
	s.mu.Unlock()
	s.record("focus-follows-mouse %t", enabled)
}

// Keymap returns the last layout set.
func (s *Seat) Keymap() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keymap
}

// RepeatRate returns the last repeat settings.
func (s *Seat) RepeatRate() (rate, delay int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeatRate, s.repeatDelay
}

// FocusFollowsMouse returns the last focus mode.
func (s *Seat) FocusFollowsMouse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusFollowsMouse
}

// Session records lifecycle requests. VT switches are forwarded to a
// switcher when one is configured.
type Session struct {
	mu       sync.Mutex
	gfx      compositor.GfxAPI
	gfxSet   bool
	vts      []int
	switcher interface{ SwitchVT(n int) error }
	logger   *logging.Logger
}

// NewSession creates a session. switcher may be nil.
func NewSession(switcher interface{ SwitchVT(n int) error }, log *logging.Logger) *Session {
	return &Session{
		switcher: switcher,
		logger:   log.WithComponent("session"),
	}
}

// SwitchVT records the request and forwards it when a switcher is set.
func (s *Session) SwitchVT(n int) error {
	s.mu.Lock()
	s.vts = append(s.vts, n)
	s.mu.Unlock()
	s.logger.Info("switch vt", "vt", n)
	if s.switcher != nil {
		return s.switcher.SwitchVT(n)
	}
	return nil
}

// SetGfxAPI records the API.
func (s *Session) SetGfxAPI(api compositor.GfxAPI) error {
	s.mu.Lock()
	s.gfx, s.gfxSet = api, true
	s.mu.Unlock()
	s.logger.Info("graphics api", "api", api.String())
	return nil
}

// GfxAPI returns the last API set and whether one was set.
func (s *Session) GfxAPI() (compositor.GfxAPI, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gfx, s.gfxSet
}

// VTs returns the requested VT switches in order.
func (s *Session) VTs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.vts))
	copy(out, s.vts)
	return out
}
