package log

import (
	"time"
)

// Event represents a host log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// HostID identifies the host that emitted the event.
	HostID string `cbor:"2,keyasint,omitempty"`

	// Unit is the unit name, for unit-scoped events.
	Unit string `cbor:"3,keyasint,omitempty"`

	// Level is the event severity.
	Level Level `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// ConnectionID identifies the control-plane connection, if any.
	ConnectionID string `cbor:"6,keyasint,omitempty"`

	// Direction indicates message flow for control-plane events.
	Direction Direction `cbor:"14,keyasint,omitempty"`

	// RemoteAddr is the peer address for control-plane events.
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Message is the human-readable record. Lifecycle hooks write their
	// attach/detach lines here.
	Message string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Lifecycle   *LifecycleEvent   `cbor:"9,keyasint,omitempty"`  // Unit load/unload
	Param       *ParamEvent       `cbor:"10,keyasint,omitempty"` // Parameter access
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // Connection/unit state
	Frame       *FrameEvent       `cbor:"12,keyasint,omitempty"` // Transport layer
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Level is the event severity.
type Level uint8

const (
	// LevelInfo indicates an informational record.
	LevelInfo Level = 0
	// LevelWarn indicates a recoverable anomaly.
	LevelWarn Level = 1
	// LevelError indicates a failed operation.
	LevelError Level = 2
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle indicates a unit attach/detach record.
	CategoryLifecycle Category = 0
	// CategoryParam indicates a parameter read/write.
	CategoryParam Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
	// CategoryMessage indicates control-plane traffic.
	CategoryMessage Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryParam:
		return "PARAM"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	case CategoryMessage:
		return "MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// LifecyclePhase distinguishes attach from detach records.
type LifecyclePhase uint8

const (
	// PhaseAttach indicates the unit was loaded and its attach hook ran.
	PhaseAttach LifecyclePhase = 0
	// PhaseDetach indicates the unit was unloaded and its detach hook ran.
	PhaseDetach LifecyclePhase = 1
)

// String returns the phase name.
func (p LifecyclePhase) String() string {
	switch p {
	case PhaseAttach:
		return "ATTACH"
	case PhaseDetach:
		return "DETACH"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent captures a unit load/unload.
type LifecycleEvent struct {
	// Phase is attach or detach.
	Phase LifecyclePhase `cbor:"1,keyasint"`

	// InstanceID is the UUID assigned to this load of the unit.
	InstanceID string `cbor:"2,keyasint,omitempty"`
}

// ParamEvent captures an external parameter access.
type ParamEvent struct {
	// Param is the parameter name.
	Param string `cbor:"1,keyasint"`

	// OldValue is the value before a write.
	OldValue int64 `cbor:"2,keyasint"`

	// NewValue is the value after a write (or the value read).
	NewValue int64 `cbor:"3,keyasint"`

	// Privileged indicates whether the caller held write privilege.
	Privileged bool `cbor:"4,keyasint,omitempty"`
}

// StateEntity identifies what kind of entity changed state.
type StateEntity uint8

const (
	// StateEntityUnit indicates a unit lifecycle state change.
	StateEntityUnit StateEntity = 0
	// StateEntityConnection indicates a control-plane connection state change.
	StateEntityConnection StateEntity = 1
	// StateEntityHost indicates a host state change.
	StateEntityHost StateEntity = 2
)

// String returns the entity name.
func (e StateEntity) String() string {
	switch e {
	case StateEntityUnit:
		return "UNIT"
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityHost:
		return "HOST"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures unit and connection lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state name.
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state name.
	NewState string `cbor:"3,keyasint"`

	// Reason describes why the transition happened, if known.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes the operation that failed.
	Context string `cbor:"2,keyasint,omitempty"`
}
