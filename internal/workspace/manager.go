package workspace

import (
	"sort"

	"github.com/dshills/tessera/internal/logging"
)

// Manager hands out one Navigator per seat, created on first use.
// Navigators live as long as the Manager, so history survives reloads.
type Manager struct {
	navigators map[string]*Navigator
	initial    ID
	strict     bool
	logger     *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithInitial sets the workspace new seats start on.
func WithInitial(id ID) ManagerOption {
	return func(m *Manager) {
		if id != "" {
			m.initial = id
		}
	}
}

// WithLogger sets the logger handed to new navigators.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l.WithComponent("workspace")
	}
}

// WithStrictNavigators makes navigators created from now on strict.
func WithStrictNavigators(strict bool) ManagerOption {
	return func(m *Manager) {
		m.strict = strict
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		navigators: make(map[string]*Navigator),
		initial:    DefaultID,
		logger:     logging.Null,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// For returns the navigator for seat, creating it with display on first use.
// display is ignored for seats that already have a navigator.
func (m *Manager) For(seat string, display Display) *Navigator {
	if n, ok := m.navigators[seat]; ok {
		return n
	}
	n := NewNavigator(display, m.initial,
		WithNavigatorLogger(m.logger.WithField("seat", seat)),
		WithStrict(m.strict),
	)
	m.navigators[seat] = n
	m.logger.Debug("navigator created", "seat", seat, "initial", string(m.initial))
	return n
}

// Lookup returns the navigator for seat if one exists.
func (m *Manager) Lookup(seat string) (*Navigator, bool) {
	n, ok := m.navigators[seat]
	return n, ok
}

// Seats returns the names of seats with a navigator, sorted.
func (m *Manager) Seats() []string {
	seats := make([]string, 0, len(m.navigators))
	for name := range m.navigators {
		seats = append(seats, name)
	}
	sort.Strings(seats)
	return seats
}
