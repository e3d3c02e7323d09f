package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/integration/process"
)

// Run starts the scheduler and the backend, then runs the event loop until
// the backend stops, session.quit runs, Shutdown is called or ctx is done.
// Run may be called once.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()
	defer app.shutdown()

	app.scheduler.Start()
	if app.watcher != nil {
		if err := app.watcher.Start(); err != nil {
			app.logger.Warn("config watcher not started", "error", err)
		}
	}

	backendErr := make(chan error, 1)
	go func() {
		backendErr <- app.backend.Run(ctx, &loopEvents{app: app, ctx: ctx})
	}()

	stopped, err := app.eventLoop(ctx, backendErr)
	cancel()
	if !stopped {
		select {
		case <-backendErr:
		case <-time.After(app.opts.ShutdownTimeout):
			app.logger.Warn("backend did not stop", "error", ErrShutdownTimeout)
		}
	}
	return err
}

// eventLoop is the main application loop. It reports whether the backend
// had already stopped when it returned.
func (app *Application) eventLoop(ctx context.Context, backendErr <-chan error) (bool, error) {
	for {
		var start time.Time
		select {
		case <-ctx.Done():
			return false, nil

		case err := <-backendErr:
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			app.logger.Info("backend stopped", "backend", app.backend.Name())
			return true, err

		case ev := <-app.keys:
			start = time.Now()
			app.handleKey(ev)

		case t := <-app.ticks:
			start = time.Now()
			app.metrics.RecordTick(app.scheduler.HandleTick(t))

		case dev := <-app.attached:
			start = time.Now()
			app.devices.Attach(dev)

		case <-app.ready:
			start = time.Now()
			app.graphicsReady()

		case f := <-app.failures:
			start = time.Now()
			app.handleFailure(f)

		case <-app.reloads:
			start = time.Now()
			app.reloadPending = true
		}

		// Requests made by an action apply once it has returned.
		if app.reloadPending {
			app.reloadPending = false
			app.reload()
		}
		app.metrics.RecordEvent(time.Since(start))
		if app.quitRequested {
			app.logger.Info("quit requested")
			return false, nil
		}
	}
}

// handleKey dispatches one key press through the active table.
func (app *Application) handleKey(ev key.Event) {
	bound := app.registry.DispatchEvent(ev)
	app.metrics.RecordKey(bound)
	if !bound {
		app.logger.Debug("unbound key", "key", ev.String())
	}
}

// graphicsReady launches the startup commands the first time graphics come
// up. Later signals, for example after a VT switch back, do nothing.
func (app *Application) graphicsReady() {
	if app.started {
		app.logger.Debug("graphics ready again")
		return
	}
	app.started = true

	for _, c := range app.cfg.Startup {
		req := process.Request{Program: c.Program, Args: append([]string(nil), c.Args...)}
		if _, err := app.launcher.Launch(req); err != nil {
			app.logger.Debug("startup command not started", "command", req.String(), "error", err)
		}
	}
	app.logger.Info("graphics ready", "startup", len(app.cfg.Startup))
}

// handleFailure reports a spawn that could not be started.
func (app *Application) handleFailure(f process.Failure) {
	app.metrics.RecordSpawnFailure()
	app.logger.Error("spawn failed",
		"id", f.ID,
		"command", f.Request.String(),
		"error", f.Err)
}

// reload rebuilds the configuration. On failure the active configuration
// stays in place.
func (app *Application) reload() {
	cfg, rt, err := app.loadConfig()
	if err != nil {
		app.logger.Error("reload failed, keeping current configuration",
			"error", NewComponentError("config", "reload", err))
		app.metrics.RecordReload(false)
		return
	}
	app.metrics.RecordReload(true)

	app.apply(cfg, rt)
	app.scheduler.Reconfigure(cfg.Status.Schedule())
	app.watchConfigFiles()
	app.logger.Info("configuration reloaded",
		"config", cfg.Source,
		"profile", app.profile.Name,
		"bindings", app.registry.Len(),
		"generation", app.scheduler.Generation())
}
