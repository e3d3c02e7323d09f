package app

import (
	"github.com/dshills/tessera/internal/integration/process"
	"github.com/dshills/tessera/internal/status"
)

// Shutdown stops a running event loop. It is safe to call from any
// goroutine and does nothing when the loop is not running.
func (app *Application) Shutdown() {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// RequestReload asks the loop to reload the configuration. Requests made
// while one is pending are coalesced.
func (app *Application) RequestReload() {
	select {
	case app.reloads <- struct{}{}:
	default:
	}
}

// shutdown releases every component once. Children started by the
// launcher keep running.
func (app *Application) shutdown() {
	app.doneOnce.Do(func() {
		close(app.done)

		app.scheduler.Stop()
		if app.watcher != nil {
			if err := app.watcher.Stop(); err != nil {
				app.logger.Debug("config watcher stop", "error", err)
			}
		}
		if app.processes != nil {
			app.processes.Close()
			app.logger.Debug("launcher closed",
				"spawned", app.processes.Spawned(),
				"running", app.processes.Count())
		}
		if app.script != nil {
			app.script.Close()
		}
		if err := app.backend.Close(); err != nil {
			app.logger.Warn("backend close failed", "error", err)
		}
		app.logger.Info("shutdown complete", app.metrics.Snapshot().LogValues()...)
	})
}

// postTick hands a timer tick to the loop. It runs on timer goroutines.
func (app *Application) postTick(t status.Tick) {
	select {
	case app.ticks <- t:
	case <-app.done:
	}
}

// postFailure queues a spawn failure. The launcher calls it on the loop
// goroutine, so it never blocks.
func (app *Application) postFailure(f process.Failure) {
	select {
	case app.failures <- f:
	default:
		app.logger.Warn("spawn failure dropped", "command", f.Request.String())
	}
}

// loopLifecycle serves session.quit and session.reload. Both run on the
// loop and only record the request.
type loopLifecycle struct {
	app *Application
}

func (l loopLifecycle) Quit() {
	l.app.quitRequested = true
}

func (l loopLifecycle) Reload() {
	l.app.reloadPending = true
}
