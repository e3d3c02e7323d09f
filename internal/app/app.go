// Package app wires the compositor core together: configuration, the key
// binding table, the workspace navigator, the status scheduler and the
// launcher, all driven from a single event loop fed by a backend.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/tessera/internal/action"
	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/config"
	"github.com/dshills/tessera/internal/config/script"
	"github.com/dshills/tessera/internal/config/watcher"
	"github.com/dshills/tessera/internal/input/device"
	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/input/keymap"
	"github.com/dshills/tessera/internal/integration/process"
	"github.com/dshills/tessera/internal/logging"
	"github.com/dshills/tessera/internal/status"
	"github.com/dshills/tessera/internal/workspace"
)

// DefaultShutdownTimeout bounds how long Run waits for the backend to stop.
const DefaultShutdownTimeout = 2 * time.Second

// failureQueue is the number of spawn failures buffered for the loop.
const failureQueue = 16

// Backend is the display server side of the compositor. It owns the seat
// and session and reports what it observes through compositor.Events.
type Backend interface {
	Name() string
	Seat() compositor.Seat
	Session() compositor.Session
	StatusSink() status.Sink

	// Run delivers events until ctx is done or the backend's input ends.
	Run(ctx context.Context, events compositor.Events) error
	Close() error
}

// Application is the central coordinator for all tessera components.
//
// Everything below the channel block is owned by the event loop goroutine
// once Run has started.
type Application struct {
	backend Backend
	opts    Options
	logger  *logging.Logger
	host    string

	// Inbound events, written by the backend, timers and the watcher.
	keys     chan key.Event
	attached chan device.Device
	ready    chan struct{}
	ticks    chan status.Tick
	failures chan process.Failure
	reloads  chan struct{}
	done     chan struct{}
	doneOnce sync.Once

	cfg        *config.Config
	profile    config.Profile
	script     *script.Runtime
	registry   *keymap.Registry
	catalog    *action.Catalog
	workspaces *workspace.Manager
	navigator  *workspace.Navigator
	devices    *device.Tracker
	scheduler  *status.Scheduler
	launcher   action.Launcher
	processes  *process.Launcher
	watcher    *watcher.Watcher
	metrics    *Metrics

	reloadPending bool
	quitRequested bool
	started       bool

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	// Empty searches the default locations.
	ConfigPath string

	// Host overrides the host name used for profile selection.
	Host string

	// Watch reloads the configuration when its files change.
	Watch bool

	// Logger receives all records. Nil uses the process-wide logger.
	Logger *logging.Logger

	// Launcher starts spawned programs. Nil uses a detached process launcher.
	Launcher action.Launcher

	// Strict panics on re-entrant dispatch or navigator use instead of
	// logging it.
	Strict bool

	// Clock drives the status scheduler. Nil uses the system clock.
	Clock status.Clock

	// ShutdownTimeout bounds the wait for the backend after the loop exits.
	ShutdownTimeout time.Duration
}

// New creates an Application on backend, loading the configuration and
// building the binding table. Failures are returned as *InitError.
func New(backend Backend, opts Options) (*Application, error) {
	if backend == nil {
		return nil, &InitError{Component: "backend", Err: ErrNoBackend}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	app := &Application{
		backend:  backend,
		opts:     opts,
		logger:   logging.OrDefault(opts.Logger).WithComponent("app"),
		keys:     make(chan key.Event),
		attached: make(chan device.Device),
		ready:    make(chan struct{}),
		ticks:    make(chan status.Tick),
		failures: make(chan process.Failure, failureQueue),
		reloads:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		metrics:  NewMetrics(),
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Profile returns the profile resolved for this host.
func (app *Application) Profile() config.Profile {
	return app.profile
}

// Host returns the host name used for profile selection.
func (app *Application) Host() string {
	return app.host
}

// Registry returns the active binding table.
func (app *Application) Registry() *keymap.Registry {
	return app.registry
}

// Navigator returns the workspace navigator of the backend's seat.
func (app *Application) Navigator() *workspace.Navigator {
	return app.navigator
}

// Scheduler returns the status scheduler.
func (app *Application) Scheduler() *status.Scheduler {
	return app.scheduler
}

// Devices returns the input device tracker.
func (app *Application) Devices() *device.Tracker {
	return app.devices
}

// Metrics returns the event loop counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// IsRunning returns true if the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
