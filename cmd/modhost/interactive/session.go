package interactive

import (
	"fmt"
	"log/slog"

	"github.com/modhost-project/modhost-go/pkg/examples"
	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/options"
	"github.com/modhost-project/modhost-go/pkg/wire"
)

// Session is the unit-management surface the console drives. It is
// satisfied by a remote surface client and by LocalSession.
type Session interface {
	List() ([]wire.UnitSummary, error)
	Info(unit string) (*wire.InfoResponsePayload, error)
	Read(unit, param string) (int64, error)
	Write(unit, param string, value int64) (*wire.WriteResponsePayload, error)
}

// LocalSession drives an in-process host directly. Beyond the Session
// operations it supports loading and unloading built-in units,
// persistent option management, and runtime log level changes.
type LocalSession struct {
	host     *host.Host
	store    *options.Store
	logLevel *slog.LevelVar
}

// NewLocalSession wraps an in-process host. The store and level may be
// nil, disabling the corresponding commands.
func NewLocalSession(h *host.Host, store *options.Store, level *slog.LevelVar) *LocalSession {
	return &LocalSession{
		host:     h,
		store:    store,
		logLevel: level,
	}
}

// List returns summaries of the loaded units.
func (s *LocalSession) List() ([]wire.UnitSummary, error) {
	statuses := s.host.List()
	units := make([]wire.UnitSummary, 0, len(statuses))
	for _, st := range statuses {
		description := ""
		if desc, err := s.host.Describe(st.Name); err == nil {
			description = desc.Info.Description
		}
		units = append(units, wire.UnitSummary{
			Name:        st.Name,
			Description: description,
			State:       st.State.String(),
			ParamCount:  st.ParamCount,
			InstanceID:  st.InstanceID,
		})
	}
	return units, nil
}

// Info returns the metadata and parameters of one loaded unit.
func (s *LocalSession) Info(unit string) (*wire.InfoResponsePayload, error) {
	desc, err := s.host.Describe(unit)
	if err != nil {
		return nil, err
	}

	payload := &wire.InfoResponsePayload{
		Name:        desc.Info.Name,
		Author:      desc.Info.Author,
		Description: desc.Info.Description,
		License:     desc.Info.License,
		Version:     desc.Info.Version,
		State:       desc.State.String(),
		Params:      make([]wire.ParamDescriptor, 0, len(desc.Params)),
	}
	for _, p := range desc.Params {
		payload.Params = append(payload.Params, wire.ParamDescriptor{
			Name:        p.Name,
			Access:      p.Access.String(),
			Value:       p.Value,
			Default:     p.Default,
			Description: p.Description,
			Unit:        p.Unit,
		})
	}
	return payload, nil
}

// Read reads a parameter value.
func (s *LocalSession) Read(unit, param string) (int64, error) {
	return s.host.ReadParam(unit, param)
}

// Write writes a parameter value. Local sessions are always privileged.
func (s *LocalSession) Write(unit, param string, value int64) (*wire.WriteResponsePayload, error) {
	result, err := s.host.WriteParam(unit, param, value, true)
	if err != nil {
		return nil, err
	}
	return &wire.WriteResponsePayload{
		OldValue: result.OldValue,
		NewValue: result.NewValue,
	}, nil
}

// Load loads a built-in unit by name.
func (s *LocalSession) Load(name string) (string, error) {
	unit := examples.New(name)
	if unit == nil {
		return "", fmt.Errorf("unknown unit: %s (available: %v)", name, examples.Names())
	}
	return s.host.Load(unit)
}

// Unload unloads a unit.
func (s *LocalSession) Unload(name string) error {
	return s.host.Unload(name)
}

// Options returns the persistent options recorded for a unit, or nil
// when no option store is configured.
func (s *LocalSession) Options(unit string) []host.Option {
	if s.store == nil {
		return nil
	}
	return s.store.OptionsFor(unit)
}

// SetOption persists a parameter override. It takes effect on the next
// load of the unit.
func (s *LocalSession) SetOption(unit, param string, value int64) error {
	if s.store == nil {
		return fmt.Errorf("no options directory configured")
	}
	s.store.Set(unit, param, value)
	return s.store.Save()
}

// SetLogLevel changes the runtime log level.
func (s *LocalSession) SetLogLevel(level string) error {
	if s.logLevel == nil {
		return fmt.Errorf("log level is not adjustable")
	}
	switch level {
	case "debug":
		s.logLevel.Set(slog.LevelDebug)
	case "info":
		s.logLevel.Set(slog.LevelInfo)
	case "warn":
		s.logLevel.Set(slog.LevelWarn)
	case "error":
		s.logLevel.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
