package inspect

import (
	"fmt"
	"strings"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes access mode and file mode bits.
	ShowMetadata bool

	// ShowDescriptions includes parameter descriptions.
	ShowDescriptions bool

	// IndentWidth is the number of spaces per indent level.
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a parameter value with its optional unit.
func (f *Formatter) FormatValue(value int64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%d", value)
	}
	return fmt.Sprintf("%d %s", value, unit)
}

// FormatTree formats the full host tree for display.
func (f *Formatter) FormatTree(tree *HostTree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Host: %s\n", tree.HostID)
	fmt.Fprintf(&b, "Units: %d\n", len(tree.Units))
	b.WriteString("---\n")

	for idx := range tree.Units {
		b.WriteString(f.FormatUnit(&tree.Units[idx], 0))
	}
	return b.String()
}

// FormatUnit formats one unit node for display.
func (f *Formatter) FormatUnit(unit *UnitNode, depth int) string {
	var b strings.Builder

	header := fmt.Sprintf("%s [%s]", unit.Name, unit.State)
	if unit.Version != "" {
		header += " v" + unit.Version
	}
	b.WriteString(f.Indent(depth, header) + "\n")

	if f.ShowDescriptions && unit.Description != "" {
		b.WriteString(f.Indent(depth+1, unit.Description) + "\n")
	}

	for idx := range unit.Params {
		b.WriteString(f.Indent(depth+1, f.FormatParam(&unit.Params[idx])) + "\n")
	}
	return b.String()
}

// FormatParam formats one parameter for display, in the style
//
//	test_value = 42 (rw, 0644)
func (f *Formatter) FormatParam(p *ParamNode) string {
	line := fmt.Sprintf("%s = %s", p.Name, f.FormatValue(p.Value, p.Unit))
	if f.ShowMetadata {
		line += fmt.Sprintf(" (%s, %04o)", p.Access, p.Access.ModeBits())
	}
	if f.ShowDescriptions && p.Description != "" {
		line += " - " + p.Description
	}
	return line
}

// FormatInfo formats unit metadata the way a module information dump
// would, one field per line.
func (f *Formatter) FormatInfo(unit *UnitNode) string {
	var b strings.Builder
	writeField := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-12s %s\n", name+":", value)
		}
	}
	writeField("name", unit.Name)
	writeField("description", unit.Description)
	writeField("author", unit.Author)
	writeField("license", unit.License)
	writeField("version", unit.Version)
	writeField("state", unit.State)
	writeField("instance", unit.InstanceID)

	for idx := range unit.Params {
		p := &unit.Params[idx]
		desc := p.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Fprintf(&b, "%-12s %s:%s (%s)\n", "parm:", p.Name, desc, p.Access)
	}
	return b.String()
}
