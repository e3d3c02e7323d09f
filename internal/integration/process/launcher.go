package process

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/tessera/internal/logging"
)

// Failure reports a launch that could not be started.
type Failure struct {
	ID      string
	Request Request
	Err     error
}

// Launcher starts detached programs and reaps them.
//
// Launcher is safe for concurrent use. Exit callbacks run on the reaping
// goroutine.
type Launcher struct {
	mu        sync.Mutex
	processes map[string]*Process

	// closed indicates the launcher no longer accepts spawns.
	closed atomic.Bool

	// spawned counts successful launches.
	spawned atomic.Uint64

	onFailure func(Failure)
	onExit    func(p *Process)

	// newID produces launch IDs.
	newID func() string

	logger *logging.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithFailureHandler sets a callback for launches that fail to start.
// The handler owns reporting the failure. It runs on the goroutine that called Launch and must not block.
func WithFailureHandler(fn func(Failure)) LauncherOption {
	return func(l *Launcher) {
		l.onFailure = fn
	}
}

// WithExitHandler sets a callback for when a launched process exits.
func WithExitHandler(fn func(p *Process)) LauncherOption {
	return func(l *Launcher) {
		l.onExit = fn
	}
}

// WithLogger sets the launcher's logger.
func WithLogger(log *logging.Logger) LauncherOption {
	return func(l *Launcher) {
		l.logger = log.WithComponent("launcher")
	}
}

// WithIDFunc overrides launch ID generation.
func WithIDFunc(fn func() string) LauncherOption {
	return func(l *Launcher) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// NewLauncher creates a launcher.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		processes: make(map[string]*Process),
		newID:     func() string { return uuid.New().String() },
		logger:    logging.Null,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Spawn launches program with args. See Launch.
func (l *Launcher) Spawn(program string, args ...string) (*Process, error) {
	return l.Launch(Request{Program: program, Args: args})
}

// Launch starts req without waiting for it.
//
// A start failure is returned and also handed to the failure handler.
// The returned Process is tracked until it exits.
func (l *Launcher) Launch(req Request) (*Process, error) {
	id := l.newID()

	if req.Program == "" {
		return nil, l.fail(id, req, ErrEmptyProgram)
	}
	if l.closed.Load() {
		return nil, l.fail(id, req, ErrLauncherClosed)
	}

	proc := newProcess(id, req)

	l.mu.Lock()
	err := proc.start()
	if err == nil {
		l.processes[id] = proc
	}
	l.mu.Unlock()

	if err != nil {
		return nil, l.fail(id, req, err)
	}

	l.spawned.Add(1)
	l.logger.Info("spawned", "id", id, "command", req.String(), "pid", proc.PID())

	go l.reap(proc)
	return proc, nil
}

// fail reports err to the failure handler, or logs it when there is none.
func (l *Launcher) fail(id string, req Request, err error) error {
	if l.onFailure != nil {
		l.onFailure(Failure{ID: id, Request: req, Err: err})
		return err
	}
	l.logger.Error("spawn failed", "id", id, "command", req.String(), "error", err)
	return err
}

// reap waits for exit, reports it and stops tracking the process.
func (l *Launcher) reap(proc *Process) {
	<-proc.Done()

	if code := proc.ExitCode(); code != 0 {
		l.logger.Debug("process exited", "id", proc.ID, "command", proc.Request.String(),
			"code", code, "state", proc.State().String())
	}

	if l.onExit != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.logger.Error("exit handler panicked", "id", proc.ID, "panic", r)
				}
			}()
			l.onExit(proc)
		}()
	}

	l.mu.Lock()
	delete(l.processes, proc.ID)
	l.mu.Unlock()
}

// Count returns the number of processes still running.
func (l *Launcher) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.processes)
}

// Spawned returns the number of successful launches.
func (l *Launcher) Spawned() uint64 {
	return l.spawned.Load()
}

// Close stops accepting launches. Running children are left alone.
func (l *Launcher) Close() {
	l.closed.Store(true)
}

// IsClosed reports whether Close has been called.
func (l *Launcher) IsClosed() bool {
	return l.closed.Load()
}
