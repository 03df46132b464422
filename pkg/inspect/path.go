// Package inspect provides host inspection and parameter manipulation
// utilities.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "testunit/test_value")
//   - Searching loaded units by name
//   - Reading and writing parameters
//   - Formatting output for display
package inspect

import (
	"errors"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path format")
)

// Path represents a parsed inspection path.
// Format: unit or unit/param.
type Path struct {
	// Unit is the unit name.
	Unit string

	// Param is the parameter name (empty for partial paths).
	Param string

	// IsPartial indicates the path names only a unit (used for
	// operations that show all parameters).
	IsPartial bool

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "unit/param" - one parameter
//   - "unit.param" - same, dotted form
//   - "unit" - partial (for listing parameters)
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	sep := "/"
	if !strings.Contains(input, "/") && strings.Contains(input, ".") {
		sep = "."
	}

	if strings.HasPrefix(input, sep) || strings.HasSuffix(input, sep) {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, sep)
	switch len(parts) {
	case 1:
		return &Path{Unit: parts[0], IsPartial: true, Raw: input}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return nil, ErrInvalidPath
		}
		return &Path{Unit: parts[0], Param: parts[1], Raw: input}, nil
	default:
		return nil, ErrInvalidPath
	}
}

// String returns the canonical slash form of the path.
func (p *Path) String() string {
	if p.IsPartial {
		return p.Unit
	}
	return p.Unit + "/" + p.Param
}
