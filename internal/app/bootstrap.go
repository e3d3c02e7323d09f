package app

import (
	"github.com/dshills/tessera/internal/action"
	"github.com/dshills/tessera/internal/config"
	"github.com/dshills/tessera/internal/config/script"
	"github.com/dshills/tessera/internal/config/watcher"
	"github.com/dshills/tessera/internal/input/device"
	"github.com/dshills/tessera/internal/input/keymap"
	"github.com/dshills/tessera/internal/integration/process"
	"github.com/dshills/tessera/internal/status"
	"github.com/dshills/tessera/internal/workspace"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", b.initConfig},
		{"launcher", b.initLauncher},
		{"workspace", b.initWorkspaces},
		{"status", b.initScheduler},
		{"keymap", b.initBindings},
		{"watcher", b.initWatcher},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}

	b.app.logger.Info("initialized",
		"backend", b.app.backend.Name(),
		"host", b.app.host,
		"profile", b.app.profile.Name,
		"config", b.app.cfg.Source,
		"bindings", b.app.registry.Len())
	return nil
}

// initConfig resolves the host and loads the configuration and script.
func (b *bootstrapper) initConfig() error {
	app := b.app
	app.host = app.opts.Host
	if app.host == "" {
		app.host = config.Hostname()
	}

	cfg, rt, err := app.loadConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.script = rt
	return nil
}

// initLauncher creates the process launcher unless one was supplied.
func (b *bootstrapper) initLauncher() error {
	app := b.app
	if app.opts.Launcher != nil {
		app.launcher = app.opts.Launcher
		return nil
	}
	app.processes = process.NewLauncher(
		process.WithLogger(app.logger),
		process.WithFailureHandler(app.postFailure),
	)
	app.launcher = app.processes
	return nil
}

// initWorkspaces creates the navigator of the backend's seat. Navigators
// live as long as the application, so history survives reloads.
func (b *bootstrapper) initWorkspaces() error {
	app := b.app
	app.workspaces = workspace.NewManager(
		workspace.WithInitial(workspace.ID(app.cfg.Workspace.Default)),
		workspace.WithLogger(app.logger),
		workspace.WithStrictNavigators(app.opts.Strict),
	)
	seat := app.backend.Seat()
	app.navigator = app.workspaces.For(seat.Name(), seat)
	app.devices = device.NewTracker(app.cfg.Input.DeviceDefaults(), app.logger)
	return nil
}

// initScheduler creates the status scheduler. It starts with Run.
func (b *bootstrapper) initScheduler() error {
	app := b.app
	opts := []status.Option{
		status.WithConfig(app.cfg.Status.Schedule()),
		status.WithLogger(app.logger),
	}
	if app.opts.Clock != nil {
		opts = append(opts, status.WithClock(app.opts.Clock))
	}

	s, err := status.New(app.backend.StatusSink(), app.postTick, opts...)
	if err != nil {
		return err
	}
	app.scheduler = s
	return nil
}

// initBindings builds the binding table and configures the seat.
func (b *bootstrapper) initBindings() error {
	b.app.apply(b.app.cfg, b.app.script)
	return nil
}

// initWatcher watches the configuration files when asked to.
func (b *bootstrapper) initWatcher() error {
	app := b.app
	if !app.opts.Watch {
		return nil
	}
	w, err := watcher.New(watcher.WithLogger(app.logger))
	if err != nil {
		return err
	}
	w.OnChange(func(ev watcher.Event) {
		app.logger.Info("config changed", "path", ev.Path, "op", ev.Op.String())
		app.RequestReload()
	})
	app.watcher = w
	app.watchConfigFiles()
	return nil
}

// cleanup releases the components initialized so far.
func (b *bootstrapper) cleanup() {
	app := b.app
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "config":
			if app.script != nil {
				app.script.Close()
			}
		case "launcher":
			if app.processes != nil {
				app.processes.Close()
			}
		case "watcher":
			if app.watcher != nil {
				app.watcher.Stop()
			}
		}
	}
}

// loadConfig loads the configuration file and evaluates its script.
func (app *Application) loadConfig() (*config.Config, *script.Runtime, error) {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Script == "" {
		return cfg, nil, nil
	}

	rt, err := script.Eval(cfg, cfg.Script,
		script.WithHostname(app.host),
		script.WithLogger(app.logger))
	if err != nil {
		return nil, nil, NewComponentError("script", cfg.Script, err)
	}
	// The script may have set values the file could not.
	if err := cfg.Validate(); err != nil {
		rt.Close()
		return nil, nil, err
	}
	return cfg, rt, nil
}

// apply makes cfg the active configuration. The previous script runtime is
// closed once the new table no longer refers to it.
func (app *Application) apply(cfg *config.Config, rt *script.Runtime) {
	catalog := action.NewCatalog(action.Deps{
		Seat:      app.backend.Seat(),
		Session:   app.backend.Session(),
		Navigator: app.navigator,
		Launcher:  app.launcher,
		Lifecycle: loopLifecycle{app: app},
		Logger:    app.logger,
	})

	var resolver keymap.ActionResolver = catalog
	if rt != nil {
		resolver = rt.Resolver(catalog)
	}

	reg := keymap.NewRegistry(
		keymap.WithLogger(app.logger),
		keymap.WithStrict(app.opts.Strict),
	)
	for _, err := range keymap.LoadBindings(reg, cfg.Specs(), resolver) {
		app.logger.Warn("binding skipped", "error", err)
	}

	old := app.script
	app.cfg = cfg
	app.script = rt
	app.catalog = catalog
	app.registry = reg
	if old != nil && old != rt {
		old.Close()
	}

	app.configureSeat()
	app.devices.SetDefaults(cfg.Input.DeviceDefaults())
}

// configureSeat resolves the profile and applies it with the input settings.
func (app *Application) configureSeat() {
	cfg := app.cfg
	app.profile = cfg.ResolveProfile(app.host)

	if err := app.backend.Session().SetGfxAPI(app.profile.GfxAPI); err != nil {
		app.logger.Warn("set gfx api failed", "api", app.profile.GfxAPI.String(), "error", err)
	}

	seat := app.backend.Seat()
	if err := seat.SetKeymap(app.profile.Keymap); err != nil {
		app.logger.Warn("set keymap failed", "layout", app.profile.Keymap, "error", err)
	}
	seat.SetRepeatRate(cfg.Input.RepeatRate, cfg.Input.RepeatDelay)
	seat.SetFocusFollowsMouse(cfg.Input.FocusFollowsMouse)
}

// watchConfigFiles adds the active file and script to the watcher.
func (app *Application) watchConfigFiles() {
	if app.watcher == nil {
		return
	}
	for _, path := range []string{app.cfg.Source, app.cfg.Script} {
		if path == "" {
			continue
		}
		if err := app.watcher.Watch(path); err != nil {
			app.logger.Warn("cannot watch config file", "path", path, "error", err)
		}
	}
}
