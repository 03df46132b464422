package examples

import (
	"sort"

	"github.com/modhost-project/modhost-go/pkg/model"
)

// builders maps unit names to their constructors.
var builders = map[string]func() *model.Unit{
	TestUnitName: NewTestUnit,
	"thermostat": func() *model.Unit { return NewThermostat(DefaultThermostatConfig()) },
}

// New constructs a built-in unit by name. Returns nil for unknown names.
func New(name string) *model.Unit {
	build, ok := builders[name]
	if !ok {
		return nil
	}
	return build()
}

// Names returns the built-in unit names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
