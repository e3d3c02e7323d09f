package script

import (
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tessera/internal/config"
)

// install registers the tessera table. The functions run while r.mu is
// held by do, so they touch fields directly.
func (r *Runtime) install() {
	mod := r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"hostname":    r.luaHostname,
		"set":         r.luaSet,
		"bind":        r.luaBind(false),
		"bind_masked": r.luaBind(true),
		"startup":     r.luaStartup,
		"run":         r.luaRun,
		"log":         r.luaLog,
	})
	r.L.SetGlobal("tessera", mod)
	r.L.SetGlobal("print", r.L.NewFunction(r.luaLog))
}

func (r *Runtime) luaHostname(L *lua.LState) int {
	L.Push(lua.LString(r.host))
	return 1
}

func (r *Runtime) luaSet(L *lua.LState) int {
	path := L.CheckString(1)
	value := L.CheckAny(2)
	text := lua.LVAsString(value)
	if value.Type() == lua.LTBool {
		text = strconv.FormatBool(lua.LVAsBool(value))
	}
	if err := r.cfg.Set(path, text); err != nil {
		L.RaiseError("tessera.set: %v", err)
	}
	return 0
}

func (r *Runtime) luaBind(masked bool) lua.LGFunction {
	return func(L *lua.LState) int {
		keys := L.CheckString(1)
		b := config.BindingConfig{Keys: keys, Masked: masked}

		switch v := L.CheckAny(2).(type) {
		case lua.LString:
			b.Action = string(v)
		case *lua.LFunction:
			b.Action = CallAction
			b.Args = []string{strconv.Itoa(len(r.funcs))}
			r.funcs = append(r.funcs, v)
		case *lua.LTable:
			actions, err := tableActions(v)
			if err != nil {
				L.ArgError(2, err.Error())
			}
			b.Actions = actions
		default:
			L.ArgError(2, "action must be a string, list or function")
		}

		r.cfg.Bindings = append(r.cfg.Bindings, b)
		return 0
	}
}

// tableActions reads {"name", "arg"...} or a list of such lists.
func tableActions(t *lua.LTable) ([]config.ActionConfig, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("empty action list")
	}
	if _, nested := t.RawGetInt(1).(*lua.LTable); !nested {
		a, err := tableAction(t)
		if err != nil {
			return nil, err
		}
		return []config.ActionConfig{a}, nil
	}

	var out []config.ActionConfig
	for i := 1; i <= t.Len(); i++ {
		sub, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a list", i)
		}
		a, err := tableAction(sub)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func tableAction(t *lua.LTable) (config.ActionConfig, error) {
	var words []string
	for i := 1; i <= t.Len(); i++ {
		v := t.RawGetInt(i)
		switch v.Type() {
		case lua.LTString, lua.LTNumber:
			words = append(words, lua.LVAsString(v))
		default:
			return config.ActionConfig{}, fmt.Errorf("element %d is a %s", i, v.Type())
		}
	}
	if len(words) == 0 || strings.TrimSpace(words[0]) == "" {
		return config.ActionConfig{}, fmt.Errorf("missing action name")
	}
	a := config.ActionConfig{Action: words[0]}
	if len(words) > 1 {
		a.Args = words[1:]
	}
	return a, nil
}

func (r *Runtime) luaStartup(L *lua.LState) int {
	cmd := config.CommandConfig{Program: L.CheckString(1)}
	for i := 2; i <= L.GetTop(); i++ {
		cmd.Args = append(cmd.Args, lua.LVAsString(L.Get(i)))
	}
	r.cfg.Startup = append(r.cfg.Startup, cmd)
	return 0
}

func (r *Runtime) luaRun(L *lua.LState) int {
	name := L.CheckString(1)
	var args []string
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, lua.LVAsString(L.Get(i)))
	}
	cmd := config.ActionConfig{Action: name, Args: args}.Command()

	if cmd.Name == CallAction {
		n := -1
		if len(cmd.Args) == 1 {
			n, _ = strconv.Atoi(cmd.Args[0])
		}
		if n < 0 || n >= len(r.funcs) {
			L.RaiseError("tessera.run: %v: %s", ErrNoFunction, strings.Join(cmd.Args, " "))
		}
		L.Push(r.funcs[n])
		L.Call(0, 0)
		return 0
	}

	if r.resolver == nil {
		L.RaiseError("tessera.run: %v", ErrNoDispatcher)
	}
	action, err := r.resolver.ResolveAction(cmd)
	if err != nil {
		L.RaiseError("tessera.run: %v", err)
	}
	if action != nil {
		action()
	}
	return 0
}

func (r *Runtime) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	r.logger.Info(strings.Join(parts, " "))
	return 0
}
