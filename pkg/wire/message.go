package wire

import (
	"fmt"
)

// CBOR map keys for message encoding.
// All control-plane messages use integer keys for efficiency.
const (
	KeyMessageID  = 1
	KeyOpOrStatus = 2 // Operation (request) or Status (response)
	KeyUnit       = 3
	KeyParam      = 4
	KeyPayload    = 5
	KeyToken      = 6
)

// Request represents a control-plane request from a management client
// to a host.
type Request struct {
	MessageID uint32    `cbor:"1,keyasint"`
	Operation Operation `cbor:"2,keyasint"`
	Unit      string    `cbor:"3,keyasint,omitempty"`
	Param     string    `cbor:"4,keyasint,omitempty"`
	Payload   any       `cbor:"5,keyasint,omitempty"`

	// Token establishes write privilege. Only meaningful for OpWrite;
	// the host compares it against its configured write token.
	Token string `cbor:"6,keyasint,omitempty"`
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.MessageID == 0 {
		return fmt.Errorf("messageId 0 is reserved")
	}
	if !r.Operation.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Operation)
	}
	switch r.Operation {
	case OpInfo:
		if r.Unit == "" {
			return fmt.Errorf("%s requires a unit name", r.Operation)
		}
	case OpRead, OpWrite:
		if r.Unit == "" || r.Param == "" {
			return fmt.Errorf("%s requires unit and parameter names", r.Operation)
		}
	}
	return nil
}

// Response represents a control-plane response from a host.
type Response struct {
	MessageID uint32 `cbor:"1,keyasint"`
	Status    Status `cbor:"2,keyasint"`
	Payload   any    `cbor:"3,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// UnitSummary is one entry of a List response payload.
type UnitSummary struct {
	Name        string `cbor:"1,keyasint"`
	Description string `cbor:"2,keyasint,omitempty"`
	State       string `cbor:"3,keyasint"`
	ParamCount  int    `cbor:"4,keyasint"`
	InstanceID  string `cbor:"5,keyasint,omitempty"`
}

// ListResponsePayload is the payload of a List response.
type ListResponsePayload struct {
	Units []UnitSummary `cbor:"1,keyasint,omitempty"`
}

// ParamDescriptor describes one parameter in an Info response.
type ParamDescriptor struct {
	Name        string `cbor:"1,keyasint"`
	Access      string `cbor:"2,keyasint"` // "rw" or "ro"
	Value       int64  `cbor:"3,keyasint"`
	Default     int64  `cbor:"4,keyasint"`
	Description string `cbor:"5,keyasint,omitempty"`
	Unit        string `cbor:"6,keyasint,omitempty"`
}

// InfoResponsePayload is the payload of an Info response.
type InfoResponsePayload struct {
	Name        string            `cbor:"1,keyasint"`
	Author      string            `cbor:"2,keyasint,omitempty"`
	Description string            `cbor:"3,keyasint,omitempty"`
	License     string            `cbor:"4,keyasint,omitempty"`
	Version     string            `cbor:"5,keyasint,omitempty"`
	State       string            `cbor:"6,keyasint"`
	Params      []ParamDescriptor `cbor:"7,keyasint,omitempty"`
}

// ReadResponsePayload is the payload of a Read response.
type ReadResponsePayload struct {
	Value int64 `cbor:"1,keyasint"`
}

// WritePayload is the payload of a Write request.
type WritePayload struct {
	Value int64 `cbor:"1,keyasint"`
}

// WriteResponsePayload is the payload of a Write response.
type WriteResponsePayload struct {
	OldValue int64 `cbor:"1,keyasint"`
	NewValue int64 `cbor:"2,keyasint"`
}

// ExtractWriteValue extracts the value from a write request payload.
// After a CBOR round-trip the Payload is a raw map, not *WritePayload,
// so this function handles both typed and untyped forms.
func ExtractWriteValue(payload any) (int64, bool) {
	switch p := payload.(type) {
	case *WritePayload:
		return p.Value, true
	case WritePayload:
		return p.Value, true
	case map[any]any:
		return extractIntKey1(p)
	case map[uint64]any:
		if v, ok := p[uint64(1)]; ok {
			return toInt64(v)
		}
	}
	return 0, false
}

func extractIntKey1(m map[any]any) (int64, bool) {
	for k, v := range m {
		if kn, ok := toInt64(k); ok && kn == 1 {
			return toInt64(v)
		}
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
