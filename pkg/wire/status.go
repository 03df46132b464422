package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusInvalidUnit indicates the unit is not loaded.
	StatusInvalidUnit Status = 1

	// StatusInvalidParam indicates the parameter doesn't exist.
	StatusInvalidParam Status = 2

	// StatusNotWritable indicates an attempt to write a read-only parameter.
	StatusNotWritable Status = 3

	// StatusPermissionDenied indicates the caller lacks write privilege.
	StatusPermissionDenied Status = 4

	// StatusInvalidValue indicates a value violates a parameter constraint.
	StatusInvalidValue Status = 5

	// StatusUnsupported indicates the operation is not supported.
	StatusUnsupported Status = 6

	// StatusInternal indicates an internal host error.
	StatusInternal Status = 7
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidUnit:
		return "INVALID_UNIT"
	case StatusInvalidParam:
		return "INVALID_PARAM"
	case StatusNotWritable:
		return "NOT_WRITABLE"
	case StatusPermissionDenied:
		return "PERMISSION_DENIED"
	case StatusInvalidValue:
		return "INVALID_VALUE"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}
