package wire

// Operation represents a control-plane operation.
type Operation uint8

const (
	// OpList returns summaries of all loaded units.
	OpList Operation = 1

	// OpInfo returns a unit's metadata and parameter descriptors.
	OpInfo Operation = 2

	// OpRead gets the current value of a parameter.
	OpRead Operation = 3

	// OpWrite sets the value of a parameter. Requires write privilege.
	OpWrite Operation = 4
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpList:
		return "List"
	case OpInfo:
		return "Info"
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the operation is a valid control-plane operation.
func (o Operation) IsValid() bool {
	return o >= OpList && o <= OpWrite
}
