package model

import (
	"errors"
	"fmt"
	"sync"
)

// Unit errors.
var (
	ErrAlreadyAttached = errors.New("unit already attached")
	ErrNotAttached     = errors.New("unit not attached")
	ErrDuplicateParam  = errors.New("duplicate parameter name")
	ErrParamNotFound   = errors.New("parameter not found")
)

// UnitState represents the lifecycle state of a unit.
type UnitState uint8

const (
	// StateUnloaded - unit is not loaded into a host.
	StateUnloaded UnitState = iota

	// StateAttached - unit is loaded and its attach hook has run.
	StateAttached
)

// String returns the state name.
func (s UnitState) String() string {
	switch s {
	case StateUnloaded:
		return "UNLOADED"
	case StateAttached:
		return "ATTACHED"
	default:
		return "UNKNOWN"
	}
}

// UnitInfo holds the descriptive metadata of a unit. It has no runtime
// behavior; host tooling surfaces it for introspection.
type UnitInfo struct {
	// Name is the unit identifier, unique within a host.
	Name string

	// Author is the unit author.
	Author string

	// Description is a human-readable description.
	Description string

	// License is the unit license identifier.
	License string

	// Version is the unit version string.
	Version string
}

// Hook is a lifecycle callback. Hooks run synchronously in the host's
// load/unload path and must not block.
type Hook func(ctx *HookContext)

// HookContext gives a lifecycle hook access to the unit's parameters
// and to the host's log sink.
type HookContext struct {
	unit *Unit
	logf func(format string, args ...any)
}

// Unit returns the unit the hook runs for.
func (c *HookContext) Unit() *Unit {
	return c.unit
}

// Value returns the current value of the named parameter, or 0 when the
// parameter does not exist.
func (c *HookContext) Value(name string) int64 {
	p, err := c.unit.Param(name)
	if err != nil {
		return 0
	}
	return p.Value()
}

// SetValue sets the named parameter through the internal (owner) path.
func (c *HookContext) SetValue(name string, v int64) error {
	p, err := c.unit.Param(name)
	if err != nil {
		return err
	}
	return p.SetValueInternal(v)
}

// Logf writes one informational record to the host's log sink.
func (c *HookContext) Logf(format string, args ...any) {
	if c.logf != nil {
		c.logf(format, args...)
	}
}

// Unit is a loadable component: descriptive metadata, a set of
// access-controlled parameters, and a pair of lifecycle hooks.
//
// A Unit is built once, loaded into a host, and discarded after unload;
// it never re-enters the attached state without a fresh load.
type Unit struct {
	mu sync.Mutex

	info  UnitInfo
	state UnitState

	// Parameters by name, plus registration order for stable listings.
	params map[string]*Param
	order  []string

	attachHook Hook
	detachHook Hook
}

// New creates a new unit with the given metadata.
func New(info UnitInfo) *Unit {
	return &Unit{
		info:   info,
		state:  StateUnloaded,
		params: make(map[string]*Param),
	}
}

// Info returns the unit metadata.
func (u *Unit) Info() UnitInfo {
	return u.info
}

// Name returns the unit name.
func (u *Unit) Name() string {
	return u.info.Name
}

// State returns the current lifecycle state.
func (u *Unit) State() UnitState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// AddParam registers a parameter. Registration happens once, before the
// unit is loaded; adding a parameter to an attached unit is rejected.
func (u *Unit) AddParam(meta *ParamMetadata) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateUnloaded {
		return fmt.Errorf("cannot register %q: unit is %s", meta.Name, u.state)
	}
	if _, exists := u.params[meta.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateParam, meta.Name)
	}

	u.params[meta.Name] = NewParam(meta)
	u.order = append(u.order, meta.Name)
	return nil
}

// OnAttach sets the attach hook.
func (u *Unit) OnAttach(hook Hook) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.attachHook = hook
}

// OnDetach sets the detach hook.
func (u *Unit) OnDetach(hook Hook) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.detachHook = hook
}

// Param returns the named parameter.
func (u *Unit) Param(name string) (*Param, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	p, exists := u.params[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrParamNotFound, name)
	}
	return p, nil
}

// Params returns the parameters in registration order.
func (u *Unit) Params() []*Param {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]*Param, 0, len(u.order))
	for _, name := range u.order {
		out = append(out, u.params[name])
	}
	return out
}

// Attach transitions the unit from Unloaded to Attached and runs the
// attach hook exactly once. The host guarantees single invocation; a
// second attach is a host contract violation and returns
// ErrAlreadyAttached.
func (u *Unit) Attach(logf func(format string, args ...any)) error {
	u.mu.Lock()
	if u.state != StateUnloaded {
		u.mu.Unlock()
		return ErrAlreadyAttached
	}
	u.state = StateAttached
	hook := u.attachHook
	u.mu.Unlock()

	if hook != nil {
		hook(&HookContext{unit: u, logf: logf})
	}
	return nil
}

// Detach transitions the unit from Attached to Unloaded and runs the
// detach hook exactly once. Detaching an unloaded unit is a host
// contract violation and returns ErrNotAttached, never a silent no-op.
// The detach hook observes the live parameter cells, including any
// value written while the unit was attached.
func (u *Unit) Detach(logf func(format string, args ...any)) error {
	u.mu.Lock()
	if u.state != StateAttached {
		u.mu.Unlock()
		return ErrNotAttached
	}
	u.state = StateUnloaded
	hook := u.detachHook
	u.mu.Unlock()

	if hook != nil {
		hook(&HookContext{unit: u, logf: logf})
	}
	return nil
}
