// Package script evaluates the Lua init file that extends the configuration.
//
// The script sees a sandboxed interpreter (base, table, string and math
// libraries only) and a global "tessera" table:
//
//	tessera.hostname()                   -- host name used for profiles
//	tessera.set(path, value)             -- scalar setting, e.g. "input.repeat_rate"
//	tessera.bind(keys, action)           -- exact binding
//	tessera.bind_masked(keys, action)    -- masked binding
//	tessera.startup(program, args...)    -- command run when graphics are ready
//	tessera.run(action, args...)         -- run an action now (from bound functions)
//	tessera.log(msg)                     -- write to the log
//
// An action is a string such as "workspace.show 3", a list such as
// {"exec.spawn", "firefox"}, a list of such lists run in order, or a Lua
// function. Functions are bound as "lua.call <n>" and resolved through
// Runtime.Resolver.
package script

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tessera/internal/config"
	"github.com/dshills/tessera/internal/input/keymap"
	"github.com/dshills/tessera/internal/logging"
)

// CallAction is the action name for Lua functions bound to keys.
const CallAction = "lua.call"

// DefaultTimeout bounds evaluation of the script and of each bound function.
const DefaultTimeout = 5 * time.Second

// Errors for script operations.
var (
	// ErrClosed is returned when operating on a closed runtime.
	ErrClosed = errors.New("lua runtime is closed")

	// ErrNoFunction is returned for a lua.call with an unknown index.
	ErrNoFunction = errors.New("no such lua function")

	// ErrNoDispatcher is returned by tessera.run when no resolver is set.
	ErrNoDispatcher = errors.New("no action resolver")
)

// Runtime is one evaluated init script. It is not safe for use from
// multiple goroutines beyond the mutex around each call.
type Runtime struct {
	mu sync.Mutex
	L  *lua.LState

	cfg      *config.Config
	host     string
	funcs    []*lua.LFunction
	resolver keymap.ActionResolver
	timeout  time.Duration
	logger   *logging.Logger
	closed   bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		r.logger = logging.OrDefault(l).WithComponent("script")
	}
}

// WithTimeout bounds each evaluation and function call.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHostname sets the value returned by tessera.hostname.
func WithHostname(host string) Option {
	return func(r *Runtime) {
		r.host = host
	}
}

// New creates a sandboxed runtime that records into cfg.
func New(cfg *config.Config, opts ...Option) *Runtime {
	r := &Runtime{
		cfg:     cfg,
		host:    config.Hostname(),
		timeout: DefaultTimeout,
		logger:  logging.Null,
	}
	for _, opt := range opts {
		opt(r)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	r.L = L
	r.install()
	return r
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Eval evaluates the file at path.
func Eval(cfg *config.Config, path string, opts ...Option) (*Runtime, error) {
	r := New(cfg, opts...)
	if err := r.DoFile(path); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// DoFile executes a Lua file.
func (r *Runtime) DoFile(path string) error {
	return r.do(func() error { return r.L.DoFile(path) })
}

// DoString executes a Lua chunk.
func (r *Runtime) DoString(code string) error {
	return r.do(func() error { return r.L.DoString(code) })
}

func (r *Runtime) do(fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// Functions returns the number of bound Lua functions.
func (r *Runtime) Functions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.funcs)
}

// Call runs the bound function with index n.
func (r *Runtime) Call(n int) error {
	r.mu.Lock()
	if n < 0 || n >= len(r.funcs) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoFunction, n)
	}
	fn := r.funcs[n]
	r.mu.Unlock()

	return r.do(func() error {
		return r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
}

// Resolver returns a resolver that handles lua.call and passes every other
// command to next. tessera.run uses next as well.
func (r *Runtime) Resolver(next keymap.ActionResolver) keymap.ActionResolver {
	r.mu.Lock()
	r.resolver = next
	r.mu.Unlock()

	return keymap.ActionResolverFunc(func(cmd keymap.Command) (keymap.Action, error) {
		if cmd.Name != CallAction {
			if next == nil {
				return nil, fmt.Errorf("%w: %s", ErrNoDispatcher, cmd.Name)
			}
			return next.ResolveAction(cmd)
		}
		if len(cmd.Args) != 1 {
			return nil, fmt.Errorf("%s: want 1 argument, got %d", CallAction, len(cmd.Args))
		}
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n < 0 || n >= r.Functions() {
			return nil, fmt.Errorf("%w: %s", ErrNoFunction, cmd.Args[0])
		}
		return func() {
			if err := r.Call(n); err != nil {
				r.logger.Error("lua action failed", "fn", n, "error", err)
			}
		}, nil
	})
}

// Close releases the interpreter.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}
