// Package status drives the compositor's status text: a clock that
// renders on wall-clock aligned boundaries.
//
// The Scheduler never touches its state from a timer goroutine. Timers only
// post a Tick; the owning event loop hands it back through HandleTick.
package status

import (
	"errors"
	"time"

	strftime "github.com/ncruces/go-strftime"

	"github.com/dshills/tessera/internal/logging"
)

// Defaults.
const (
	DefaultPeriod = 5 * time.Second
	DefaultFormat = "%Y-%m-%d %H:%M"
)

// ErrNoSink is returned by New when no sink is given.
var ErrNoSink = errors.New("status: no sink")

// Sink receives rendered status text.
type Sink interface {
	SetStatus(text string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(text string) error

// SetStatus calls f(text).
func (f SinkFunc) SetStatus(text string) error {
	return f(text)
}

// Tick is posted by a timer when a deadline is reached.
type Tick struct {
	// Generation identifies the schedule that armed the timer.
	Generation uint64

	// Deadline is the instant the timer was armed for.
	// Zero for ticks armed while the clock was unavailable.
	Deadline time.Time
}

// State is the scheduler lifecycle state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateTicking
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateTicking:
		return "ticking"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Config is the schedule configuration.
type Config struct {
	// Period between renders. Non-positive means DefaultPeriod.
	Period time.Duration

	// Format is a strftime pattern. Empty means DefaultFormat.
	Format string
}

// DefaultConfig returns the default schedule.
func DefaultConfig() Config {
	return Config{Period: DefaultPeriod, Format: DefaultFormat}
}

func (c Config) withDefaults() Config {
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	return c
}

// Render formats t with a strftime pattern.
func Render(format string, t time.Time) string {
	return strftime.Format(format, t)
}

// Scheduler renders the status on aligned wall-clock boundaries.
type Scheduler struct {
	cfg   Config
	clock Clock
	sink  Sink
	post  func(Tick)
	loc   *time.Location

	state      State
	generation uint64
	deadline   time.Time
	timer      Timer

	// degraded is set while the clock is unavailable.
	degraded bool

	logger *logging.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock. The default is SystemClock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l.WithComponent("status")
	}
}

// WithConfig sets the initial schedule.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = cfg.withDefaults()
	}
}

// WithLocation sets the time zone used for rendering. The default is
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates an idle scheduler. post delivers ticks to the event loop and
// must not block for long; it is called from timer goroutines.
func New(sink Sink, post func(Tick), opts ...Option) (*Scheduler, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	s := &Scheduler{
		cfg:    DefaultConfig(),
		clock:  SystemClock{},
		sink:   sink,
		post:   post,
		loc:    time.Local,
		logger: logging.Null,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the active schedule configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Generation returns the current schedule generation.
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

// NextDeadline returns the deadline of the armed timer.
// Zero while degraded or not running.
func (s *Scheduler) NextDeadline() time.Time {
	return s.deadline
}

// Degraded reports whether the scheduler is firing relative to the last
// tick because the wall clock is unavailable.
func (s *Scheduler) Degraded() bool {
	return s.degraded
}

// Start renders immediately and arms the first aligned deadline.
// Start on a running scheduler does nothing.
func (s *Scheduler) Start() {
	if s.state == StateArmed || s.state == StateTicking {
		return
	}

	now := s.clock.Now().Round(0)
	if now.IsZero() {
		s.state = StateArmed
		s.enterDegraded()
		s.state = StateTicking
		s.armRelative()
		return
	}

	s.degraded = false
	// An already aligned now is covered by the immediate render.
	s.deadline = nextAlignedAfter(now, s.cfg.Period)
	s.state = StateArmed
	s.push(now)
	s.state = StateTicking
	s.arm(s.deadline, s.deadline.Sub(now))
	s.logger.Debug("status schedule started",
		"period", s.cfg.Period.String(),
		"deadline", s.deadline.Format(time.RFC3339Nano),
		"generation", s.generation)
}

// HandleTick processes a tick posted by a timer. It reports whether the
// tick was current; stale ticks are ignored.
func (s *Scheduler) HandleTick(t Tick) bool {
	if t.Generation != s.generation || s.state != StateTicking {
		s.logger.Debug("stale status tick ignored",
			"tick_generation", t.Generation,
			"generation", s.generation,
			"state", s.state.String())
		return false
	}

	// Skew checks compare wall time only.
	now := s.clock.Now().Round(0)
	if now.IsZero() {
		s.enterDegraded()
		s.armRelative()
		return true
	}

	next := t.Deadline.Round(0).Add(s.cfg.Period)
	switch {
	case t.Deadline.IsZero():
		s.degraded = false
		next = nextAlignedAfter(now, s.cfg.Period)
		s.logger.Info("clock available, status realigned",
			"deadline", next.Format(time.RFC3339Nano))
	case !next.After(now):
		s.logger.Warn("status deadline already passed, realigning",
			"deadline", next.Format(time.RFC3339Nano),
			"now", now.Format(time.RFC3339Nano))
		next = nextAlignedAfter(now, s.cfg.Period)
	case next.Sub(now) > s.cfg.Period:
		s.logger.Warn("clock moved backwards, realigning",
			"deadline", next.Format(time.RFC3339Nano),
			"now", now.Format(time.RFC3339Nano))
		next = nextAlignedAfter(now, s.cfg.Period)
	}

	s.push(now)
	s.deadline = next
	s.arm(next, next.Sub(now))
	return true
}

// Reconfigure cancels the running schedule and starts a new generation
// with cfg. Ticks from the old generation are ignored afterwards.
func (s *Scheduler) Reconfigure(cfg Config) {
	s.cancel()
	s.cfg = cfg.withDefaults()
	s.state = StateIdle
	s.Start()
}

// Stop cancels the schedule.
func (s *Scheduler) Stop() {
	s.cancel()
	s.state = StateCancelled
}

func (s *Scheduler) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.deadline = time.Time{}
}

func (s *Scheduler) arm(deadline time.Time, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	gen := s.generation
	post := s.post
	s.timer = s.clock.AfterFunc(delay, func() {
		if post != nil {
			post(Tick{Generation: gen, Deadline: deadline})
		}
	})
}

func (s *Scheduler) armRelative() {
	s.deadline = time.Time{}
	s.arm(time.Time{}, s.cfg.Period)
}

func (s *Scheduler) enterDegraded() {
	if !s.degraded {
		s.logger.Warn("clock unavailable, status firing every period",
			"period", s.cfg.Period.String())
	}
	s.degraded = true
}

func (s *Scheduler) push(now time.Time) {
	text := Render(s.cfg.Format, now.In(s.loc))
	if err := s.sink.SetStatus(text); err != nil {
		s.logger.Warn("status sink failed", "error", err, "text", text)
	}
}
