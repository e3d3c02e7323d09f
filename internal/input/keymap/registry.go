package keymap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/logging"
)

// Registration and dispatch errors.
var (
	ErrNilAction         = errors.New("binding has no action")
	ErrNoKey             = errors.New("binding has no key")
	ErrInvalidModifiers  = errors.New("binding has unknown modifiers")
	ErrReentrantDispatch = errors.New("re-entrant dispatch")
)

// Registry is the binding table.
type Registry struct {
	// bindings holds each key's bindings in registration order.
	bindings map[key.Key][]*Binding

	// next is the registration position handed to the next binding.
	next uint64

	conflicts  []Conflict
	onConflict func(Conflict)

	// dispatching is set while an action runs.
	dispatching bool

	// strict turns rejected re-entrant dispatch into a panic.
	strict bool

	logger *logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for conflicts and action failures.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = l.WithComponent("keymap")
	}
}

// WithStrict makes re-entrant dispatch panic instead of being logged.
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithConflictHandler registers a callback invoked for every replaced binding.
func WithConflictHandler(fn func(Conflict)) Option {
	return func(r *Registry) {
		r.onConflict = fn
	}
}

// NewRegistry creates an empty binding table.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bindings: make(map[key.Key][]*Binding),
		logger:   logging.Null,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a binding to the table.
//
// A binding for an occupied (key, mods, mode) slot replaces the old one and
// moves to the newest registration position. The replacement is logged and
// recorded as a Conflict; it is never an error.
func (r *Registry) Register(b Binding) error {
	if b.Action == nil {
		return fmt.Errorf("%s: %w", b.Spec(), ErrNilAction)
	}
	if b.Key == key.KeyNone {
		return ErrNoKey
	}
	if !b.Mods.IsValid() {
		return fmt.Errorf("%s: %w", b.Spec(), ErrInvalidModifiers)
	}

	nb := b
	nb.seq = r.next
	r.next++

	list := r.bindings[nb.Key]
	for i, old := range list {
		if !old.sameSlot(&nb) {
			continue
		}
		c := Conflict{
			Key:      nb.Key,
			Mods:     nb.Mods,
			Mode:     nb.Mode,
			Replaced: old.Name,
			By:       nb.Name,
		}
		r.conflicts = append(r.conflicts, c)
		r.logger.Warn("binding replaced",
			"keys", nb.Spec(),
			"mode", nb.Mode.String(),
			"old", old.Name,
			"new", nb.Name,
		)
		if r.onConflict != nil {
			r.onConflict(c)
		}
		list = append(list[:i], list[i+1:]...)
		break
	}

	r.bindings[nb.Key] = append(list, &nb)
	return nil
}

// Bind registers an exact binding from a specification like "Super+q".
func (r *Registry) Bind(spec, name string, action Action) error {
	return r.bindSpec(spec, name, MatchExact, action)
}

// BindMasked registers a masked binding from a specification.
// The specification's modifiers become the required subset.
func (r *Registry) BindMasked(spec, name string, action Action) error {
	return r.bindSpec(spec, name, MatchMasked, action)
}

func (r *Registry) bindSpec(spec, name string, mode MatchMode, action Action) error {
	ev, err := key.Parse(spec)
	if err != nil {
		return err
	}
	return r.Register(Binding{
		Key:    ev.Key,
		Mods:   ev.Modifiers,
		Mode:   mode,
		Name:   name,
		Action: action,
	})
}

// Resolve returns the binding Dispatch would fire for a press, without
// invoking it.
func (r *Registry) Resolve(k key.Key, pressed key.Modifier) (Binding, bool) {
	b := r.resolve(k, pressed)
	if b == nil {
		return Binding{}, false
	}
	return *b, true
}

func (r *Registry) resolve(k key.Key, pressed key.Modifier) *Binding {
	list := r.bindings[k]
	if len(list) == 0 {
		return nil
	}

	for _, b := range list {
		if b.Mode == MatchExact && b.Mods == pressed {
			return b
		}
	}

	// list is in registration order, so a strictly larger subset is
	// required to displace an earlier candidate.
	var best *Binding
	for _, b := range list {
		if b.Mode != MatchMasked || !b.matches(pressed) {
			continue
		}
		if best == nil || b.Mods.Count() > best.Mods.Count() {
			best = b
		}
	}
	return best
}

// Dispatch resolves a press and runs the matching action.
// It reports whether an action ran. Unmapped presses are dropped.
//
// A panicking action is recovered and logged. Dispatch called from inside
// an action is rejected; in strict mode it panics with ErrReentrantDispatch.
func (r *Registry) Dispatch(k key.Key, pressed key.Modifier) bool {
	if r.dispatching {
		r.logger.Error("re-entrant dispatch rejected",
			"keys", key.Event{Key: k, Modifiers: pressed}.String())
		if r.strict {
			panic(ErrReentrantDispatch)
		}
		return false
	}

	b := r.resolve(k, pressed)
	if b == nil {
		return false
	}

	r.logger.Debug("dispatch", "keys", key.Event{Key: k, Modifiers: pressed}.String(), "action", b.Name)
	r.invoke(b)
	return true
}

// DispatchEvent dispatches a key event.
func (r *Registry) DispatchEvent(ev key.Event) bool {
	return r.Dispatch(ev.Key, ev.Modifiers)
}

func (r *Registry) invoke(b *Binding) {
	r.dispatching = true
	defer func() {
		r.dispatching = false
		if rec := recover(); rec != nil {
			if err, ok := rec.(error); ok && r.strict && errors.Is(err, ErrReentrantDispatch) {
				panic(rec)
			}
			r.logger.Error("action panicked",
				"keys", b.Spec(),
				"action", b.Name,
				"panic", fmt.Sprint(rec),
			)
		}
	}()
	b.Action()
}

// Dispatching reports whether an action is currently running.
func (r *Registry) Dispatching() bool {
	return r.dispatching
}

// Bindings returns all bindings in registration order.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, r.Len())
	for _, list := range r.bindings {
		for _, b := range list {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

// Len returns the number of bindings in the table.
func (r *Registry) Len() int {
	n := 0
	for _, list := range r.bindings {
		n += len(list)
	}
	return n
}

// Conflicts returns the replacements recorded so far.
func (r *Registry) Conflicts() []Conflict {
	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}
