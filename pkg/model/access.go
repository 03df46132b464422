package model

import "io/fs"

// AccessMode defines the external access rules for a parameter.
// The mode is fixed at registration and never changes for the lifetime
// of the unit.
type AccessMode uint8

const (
	// AccessReadWrite allows any caller to read and privileged callers
	// to write the parameter.
	AccessReadWrite AccessMode = iota

	// AccessReadOnly allows any caller to read the parameter; every
	// external write is rejected.
	AccessReadOnly
)

// CanWrite returns true if external writes are permitted at all.
func (a AccessMode) CanWrite() bool {
	return a == AccessReadWrite
}

// String returns the access mode short name.
func (a AccessMode) String() string {
	switch a {
	case AccessReadWrite:
		return "rw"
	case AccessReadOnly:
		return "ro"
	default:
		return "unknown"
	}
}

// ModeBits returns the classic permission-bit rendering of the access
// mode (0644 for ReadWrite, 0444 for ReadOnly). Display only; the host
// checks the AccessMode enum, never these bits.
func (a AccessMode) ModeBits() fs.FileMode {
	if a.CanWrite() {
		return 0o644
	}
	return 0o444
}

// AccessModeFromBits derives an AccessMode from permission bits: any
// write bit makes the parameter ReadWrite.
func AccessModeFromBits(mode fs.FileMode) AccessMode {
	if mode&0o222 != 0 {
		return AccessReadWrite
	}
	return AccessReadOnly
}
