// Package model implements the modhost unit data model.
//
// # Unit Model
//
// A Unit is a loadable component that exposes tunable state to the host
// environment:
//
//	Unit
//	├── identity metadata (name, author, description, license)
//	├── Params (named, access-controlled integer cells)
//	└── lifecycle hooks (attach, detach)
//
// Units are built declaratively before loading:
//
//	u := model.New(model.UnitInfo{Name: "testunit", ...})
//	u.AddParam(&model.ParamMetadata{Name: "test_value", ...})
//	u.OnAttach(func(ctx *model.HookContext) { ... })
//
// # Access Control
//
// Every parameter carries an AccessMode, fixed at registration:
//   - ReadWrite: readable by anyone, writable by privileged callers
//   - ReadOnly: readable by anyone, never externally writable
//
// The host environment enforces caller privilege; the model enforces the
// access mode itself: Param.SetValue on a read-only parameter always
// fails with ErrParamNotWritable.
//
// # Lifecycle
//
// A unit is either Unloaded or Attached. The host attaches it exactly
// once per load and detaches it exactly once per unload. Attach and
// detach hooks run synchronously and observe the live parameter cells,
// so a detach hook sees any value written while the unit was attached.
package model
