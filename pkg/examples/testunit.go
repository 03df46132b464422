package examples

import (
	"github.com/modhost-project/modhost-go/pkg/model"
)

// Test unit parameter defaults.
const (
	TestUnitName         = "testunit"
	TestValueDefault     = 42
	ReadOnlyValueDefault = 7
)

// NewTestUnit builds the canonical test unit: one writable integer
// parameter, one read-only integer parameter, and hooks that report
// the writable value on load and unload.
func NewTestUnit() *model.Unit {
	u := model.New(model.UnitInfo{
		Name:        TestUnitName,
		Author:      "Nomi",
		Description: "Small test module for developing a Python-based kernel module tool",
		License:     "GPL",
		Version:     "1.0",
	})

	mustAdd(u, &model.ParamMetadata{
		Name:        "test_value",
		Access:      model.AccessReadWrite,
		Default:     TestValueDefault,
		Description: "Simple test parameter that can be modified at runtime",
	})
	mustAdd(u, &model.ParamMetadata{
		Name:        "readonly_value",
		Access:      model.AccessReadOnly,
		Default:     ReadOnlyValueDefault,
		Description: "Read-only parameter (cannot be modified at runtime)",
	})

	u.OnAttach(func(ctx *model.HookContext) {
		ctx.Logf("Test module loaded. Current value: %d", ctx.Value("test_value"))
	})
	u.OnDetach(func(ctx *model.HookContext) {
		ctx.Logf("Test module unloaded. Final value was: %d", ctx.Value("test_value"))
	})

	return u
}

// mustAdd registers a parameter on a freshly built unit. Registration
// on an unloaded unit with unique names cannot fail.
func mustAdd(u *model.Unit, meta *model.ParamMetadata) {
	if err := u.AddParam(meta); err != nil {
		panic(err)
	}
}
