package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modhost-project/modhost-go/pkg/log"
	"github.com/modhost-project/modhost-go/pkg/model"
)

// Host errors.
var (
	// ErrUnitAlreadyLoaded indicates a unit with the same name is loaded.
	ErrUnitAlreadyLoaded = errors.New("unit already loaded")

	// ErrUnitNotLoaded indicates no loaded unit has the given name.
	ErrUnitNotLoaded = errors.New("unit not loaded")

	// ErrNilUnit indicates a nil unit was passed to Load.
	ErrNilUnit = errors.New("unit is nil")

	// ErrPermissionDenied indicates the caller lacks write privilege.
	ErrPermissionDenied = errors.New("permission denied")
)

// Option is a persistent parameter override applied when a unit loads.
type Option struct {
	Param  string
	Value  int64
	Source string
}

// OptionSource provides persistent options for units. Implemented by
// the options package; a nil source means no overrides.
type OptionSource interface {
	OptionsFor(unit string) []Option
}

// Config configures a Host.
type Config struct {
	// ID identifies this host in log events and discovery records.
	// Generated when empty.
	ID string

	// Logger for human-readable debug output (optional).
	Logger *slog.Logger

	// EventLogger for structured event capture (optional).
	EventLogger log.Logger

	// Options supplies persistent parameter overrides (optional).
	Options OptionSource
}

// loadedUnit tracks a unit the host has attached.
type loadedUnit struct {
	unit       *model.Unit
	instanceID string
	loadedAt   time.Time
}

// Host owns loaded units and mediates all access to them.
type Host struct {
	mu sync.RWMutex

	id      string
	loaded  map[string]*loadedUnit
	order   []string
	logger  *slog.Logger
	events  log.Logger
	options OptionSource

	// Event handlers
	handlersMu sync.RWMutex
	handlers   []EventHandler
}

// New creates a host.
func New(config Config) *Host {
	id := config.ID
	if id == "" {
		id = "modhost-" + uuid.New().String()[:8]
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	events := config.EventLogger
	if events == nil {
		events = &log.NoopLogger{}
	}

	return &Host{
		id:      id,
		loaded:  make(map[string]*loadedUnit),
		logger:  logger,
		events:  events,
		options: config.Options,
	}
}

// ID returns the host identifier.
func (h *Host) ID() string {
	return h.id
}

// Load applies persistent options to the unit, runs its attach hook,
// and registers it with the host. Returns the instance ID assigned to
// this load. A unit whose name is already loaded is rejected with
// ErrUnitAlreadyLoaded.
func (h *Host) Load(unit *model.Unit) (string, error) {
	if unit == nil {
		return "", ErrNilUnit
	}
	name := unit.Name()
	if name == "" {
		return "", fmt.Errorf("%w: unit has no name", ErrNilUnit)
	}

	h.mu.Lock()
	instanceID, err := h.loadLocked(unit, name)
	h.mu.Unlock()
	if err != nil {
		return "", err
	}

	// Handlers run outside the lock so they may call back into the host.
	h.notify(Event{
		Kind:       EventUnitLoaded,
		Unit:       name,
		InstanceID: instanceID,
	})

	return instanceID, nil
}

func (h *Host) loadLocked(unit *model.Unit, name string) (string, error) {
	if _, exists := h.loaded[name]; exists {
		return "", fmt.Errorf("%w: %s", ErrUnitAlreadyLoaded, name)
	}

	// Persistent options take effect before the attach hook runs, so
	// the hook observes the configured values. The internal write path
	// is used so read-only parameters can be configured too.
	h.applyOptions(unit)

	instanceID := uuid.New().String()

	if err := unit.Attach(h.hookLogf(name)); err != nil {
		h.logger.Error("unit attach failed", "unit", name, "error", err)
		h.emit(log.Event{
			Unit:     name,
			Level:    log.LevelError,
			Category: log.CategoryError,
			Error: &log.ErrorEventData{
				Message: err.Error(),
				Context: "attach",
			},
		})
		return "", fmt.Errorf("attach %s: %w", name, err)
	}

	h.loaded[name] = &loadedUnit{
		unit:       unit,
		instanceID: instanceID,
		loadedAt:   time.Now(),
	}
	h.order = append(h.order, name)

	h.logger.Info("unit loaded", "unit", name, "instance", instanceID)
	h.emit(log.Event{
		Unit:     name,
		Level:    log.LevelInfo,
		Category: log.CategoryLifecycle,
		Lifecycle: &log.LifecycleEvent{
			Phase:      log.PhaseAttach,
			InstanceID: instanceID,
		},
	})
	h.emit(log.Event{
		Unit:     name,
		Level:    log.LevelInfo,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityUnit,
			OldState: model.StateUnloaded.String(),
			NewState: model.StateAttached.String(),
		},
	})

	return instanceID, nil
}

// Unload runs the unit's detach hook and removes it from the host.
func (h *Host) Unload(name string) error {
	h.mu.Lock()
	instanceID, err := h.unloadLocked(name)
	h.mu.Unlock()
	if err != nil {
		return err
	}

	h.notify(Event{
		Kind:       EventUnitUnloaded,
		Unit:       name,
		InstanceID: instanceID,
	})

	return nil
}

func (h *Host) unloadLocked(name string) (string, error) {
	lu, exists := h.loaded[name]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnitNotLoaded, name)
	}

	if err := lu.unit.Detach(h.hookLogf(name)); err != nil {
		h.logger.Error("unit detach failed", "unit", name, "error", err)
		h.emit(log.Event{
			Unit:     name,
			Level:    log.LevelError,
			Category: log.CategoryError,
			Error: &log.ErrorEventData{
				Message: err.Error(),
				Context: "detach",
			},
		})
		return "", fmt.Errorf("detach %s: %w", name, err)
	}

	delete(h.loaded, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}

	h.logger.Info("unit unloaded", "unit", name, "instance", lu.instanceID)
	h.emit(log.Event{
		Unit:     name,
		Level:    log.LevelInfo,
		Category: log.CategoryLifecycle,
		Lifecycle: &log.LifecycleEvent{
			Phase:      log.PhaseDetach,
			InstanceID: lu.instanceID,
		},
	})
	h.emit(log.Event{
		Unit:     name,
		Level:    log.LevelInfo,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityUnit,
			OldState: model.StateAttached.String(),
			NewState: model.StateUnloaded.String(),
		},
	})

	return lu.instanceID, nil
}

// Shutdown unloads all units in reverse load order. The first detach
// error is returned but shutdown continues past it.
func (h *Host) Shutdown() error {
	h.mu.Lock()
	var firstErr error
	var unloaded []Event
	for i := len(h.order) - 1; i >= 0; i-- {
		name := h.order[i]
		instanceID, err := h.unloadLocked(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		unloaded = append(unloaded, Event{
			Kind:       EventUnitUnloaded,
			Unit:       name,
			InstanceID: instanceID,
		})
	}
	h.mu.Unlock()

	for _, ev := range unloaded {
		h.notify(ev)
	}
	return firstErr
}

// Unit returns a loaded unit by name.
func (h *Host) Unit(name string) (*model.Unit, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	lu, exists := h.loaded[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotLoaded, name)
	}
	return lu.unit, nil
}

// ReadParam reads the current value of a unit parameter. All
// parameters are readable regardless of access mode.
func (h *Host) ReadParam(unit, param string) (int64, error) {
	h.mu.RLock()
	lu, exists := h.loaded[unit]
	h.mu.RUnlock()

	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUnitNotLoaded, unit)
	}

	p, err := lu.unit.Param(param)
	if err != nil {
		return 0, err
	}
	return p.Value(), nil
}

// WriteResult reports the values observed around a successful write.
type WriteResult struct {
	OldValue int64
	NewValue int64
}

// WriteParam writes a unit parameter. Read-only parameters are
// rejected with model.ErrParamNotWritable for every caller; writable
// parameters additionally require a privileged caller.
func (h *Host) WriteParam(unit, param string, value int64, privileged bool) (WriteResult, error) {
	h.mu.RLock()
	lu, exists := h.loaded[unit]
	h.mu.RUnlock()

	if !exists {
		return WriteResult{}, fmt.Errorf("%w: %s", ErrUnitNotLoaded, unit)
	}

	p, err := lu.unit.Param(param)
	if err != nil {
		return WriteResult{}, err
	}

	if !p.Access().CanWrite() {
		return WriteResult{}, fmt.Errorf("%w: %s.%s", model.ErrParamNotWritable, unit, param)
	}
	if !privileged {
		return WriteResult{}, fmt.Errorf("%w: write to %s.%s", ErrPermissionDenied, unit, param)
	}

	old := p.Value()
	if err := p.SetValue(value); err != nil {
		return WriteResult{}, err
	}

	h.logger.Info("param written", "unit", unit, "param", param, "old", old, "new", value)
	h.emit(log.Event{
		Unit:     unit,
		Level:    log.LevelInfo,
		Category: log.CategoryParam,
		Param: &log.ParamEvent{
			Param:      param,
			OldValue:   old,
			NewValue:   value,
			Privileged: privileged,
		},
	})

	h.notify(Event{
		Kind:       EventParamWritten,
		Unit:       unit,
		InstanceID: lu.instanceID,
		Param:      param,
		OldValue:   old,
		NewValue:   value,
	})

	return WriteResult{OldValue: old, NewValue: value}, nil
}

// UnitStatus summarizes one loaded unit.
type UnitStatus struct {
	Name       string
	InstanceID string
	State      model.UnitState
	LoadedAt   time.Time
	ParamCount int
}

// List returns the status of all loaded units, sorted by name.
func (h *Host) List() []UnitStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	statuses := make([]UnitStatus, 0, len(h.loaded))
	for name, lu := range h.loaded {
		statuses = append(statuses, UnitStatus{
			Name:       name,
			InstanceID: lu.instanceID,
			State:      lu.unit.State(),
			LoadedAt:   lu.loadedAt,
			ParamCount: len(lu.unit.Params()),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// ParamStatus describes one parameter of a loaded unit.
type ParamStatus struct {
	Name        string
	Value       int64
	Access      model.AccessMode
	Default     int64
	MinValue    *int64
	MaxValue    *int64
	Unit        string
	Description string
}

// UnitDescription describes a loaded unit and its parameters.
type UnitDescription struct {
	Info       model.UnitInfo
	InstanceID string
	State      model.UnitState
	LoadedAt   time.Time
	Params     []ParamStatus
}

// Describe returns the full description of a loaded unit, parameters
// in registration order.
func (h *Host) Describe(name string) (UnitDescription, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	lu, exists := h.loaded[name]
	if !exists {
		return UnitDescription{}, fmt.Errorf("%w: %s", ErrUnitNotLoaded, name)
	}

	params := lu.unit.Params()
	desc := UnitDescription{
		Info:       lu.unit.Info(),
		InstanceID: lu.instanceID,
		State:      lu.unit.State(),
		LoadedAt:   lu.loadedAt,
		Params:     make([]ParamStatus, 0, len(params)),
	}
	for _, p := range params {
		meta := p.Metadata()
		desc.Params = append(desc.Params, ParamStatus{
			Name:        meta.Name,
			Value:       p.Value(),
			Access:      meta.Access,
			Default:     meta.Default,
			MinValue:    meta.MinValue,
			MaxValue:    meta.MaxValue,
			Unit:        meta.Unit,
			Description: meta.Description,
		})
	}
	return desc, nil
}

// applyOptions writes persistent overrides through the internal path.
// Unknown parameters and constraint violations are logged and skipped
// so one bad option line cannot block a load.
func (h *Host) applyOptions(unit *model.Unit) {
	if h.options == nil {
		return
	}
	name := unit.Name()
	for _, opt := range h.options.OptionsFor(name) {
		p, err := unit.Param(opt.Param)
		if err != nil {
			h.logger.Warn("ignoring option for unknown parameter",
				"unit", name, "param", opt.Param, "source", opt.Source)
			continue
		}
		old := p.Value()
		if err := p.SetValueInternal(opt.Value); err != nil {
			h.logger.Warn("ignoring invalid option value",
				"unit", name, "param", opt.Param, "value", opt.Value,
				"source", opt.Source, "error", err)
			continue
		}
		h.logger.Debug("applied option",
			"unit", name, "param", opt.Param, "value", opt.Value, "source", opt.Source)
		h.emit(log.Event{
			Unit:     name,
			Level:    log.LevelInfo,
			Category: log.CategoryParam,
			Param: &log.ParamEvent{
				Param:      opt.Param,
				OldValue:   old,
				NewValue:   opt.Value,
				Privileged: true,
			},
		})
	}
}

// hookLogf builds the log function handed to a unit's hooks. Hook
// output goes to both the slog logger and the event log.
func (h *Host) hookLogf(unit string) func(format string, args ...any) {
	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		h.logger.Info(msg, "unit", unit)
		h.emit(log.Event{
			Unit:     unit,
			Level:    log.LevelInfo,
			Category: log.CategoryMessage,
			Message:  msg,
		})
	}
}

// emit stamps and forwards a structured event.
func (h *Host) emit(event log.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.HostID = h.id
	h.events.Log(event)
}
