package model

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Parameter errors.
var (
	ErrParamNotWritable = errors.New("parameter is not writable")
	ErrParamOutOfRange  = errors.New("parameter value out of range")
)

// ParamMetadata describes a parameter's properties.
type ParamMetadata struct {
	// Name is the parameter identifier, unique within the unit.
	Name string

	// Access defines the external access rules.
	Access AccessMode

	// Default is the initial value.
	Default int64

	// MinValue is the minimum allowed value (nil = unbounded).
	MinValue *int64

	// MaxValue is the maximum allowed value (nil = unbounded).
	MaxValue *int64

	// Unit is the unit of measurement, if any.
	Unit string

	// Description is a human-readable description, surfaced by the
	// host's introspection interface.
	Description string
}

// Param is a named, access-controlled integer cell.
//
// The backing storage is atomic: the host may service external writes
// concurrently with the unit's own reads (in particular the detach-time
// read), and the detach hook must observe the latest written value.
type Param struct {
	metadata *ParamMetadata
	value    atomic.Int64
}

// NewParam creates a parameter initialized to its default value.
func NewParam(meta *ParamMetadata) *Param {
	p := &Param{metadata: meta}
	p.value.Store(meta.Default)
	return p
}

// Name returns the parameter name.
func (p *Param) Name() string {
	return p.metadata.Name
}

// Metadata returns the parameter metadata.
func (p *Param) Metadata() *ParamMetadata {
	return p.metadata
}

// Access returns the parameter access mode.
func (p *Param) Access() AccessMode {
	return p.metadata.Access
}

// Value returns the current value.
func (p *Param) Value() int64 {
	return p.value.Load()
}

// SetValue sets the value through the external write path.
// Returns ErrParamNotWritable when the access mode forbids writes, or
// ErrParamOutOfRange when the value violates a constraint.
func (p *Param) SetValue(v int64) error {
	if !p.metadata.Access.CanWrite() {
		return ErrParamNotWritable
	}
	return p.setValueInternal(v)
}

// SetValueInternal sets the value without checking the access mode.
// Used by the owning unit and by the host's load-time option overlay,
// which may initialize read-only parameters.
func (p *Param) SetValueInternal(v int64) error {
	return p.setValueInternal(v)
}

func (p *Param) setValueInternal(v int64) error {
	if err := p.checkRange(v); err != nil {
		return err
	}
	p.value.Store(v)
	return nil
}

func (p *Param) checkRange(v int64) error {
	if p.metadata.MinValue != nil && v < *p.metadata.MinValue {
		return fmt.Errorf("%w: %d < %d", ErrParamOutOfRange, v, *p.metadata.MinValue)
	}
	if p.metadata.MaxValue != nil && v > *p.metadata.MaxValue {
		return fmt.Errorf("%w: %d > %d", ErrParamOutOfRange, v, *p.metadata.MaxValue)
	}
	return nil
}
