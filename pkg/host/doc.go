// Package host implements the module host that owns loaded units.
//
// A Host mediates every external interaction with a unit: loading and
// unloading, parameter reads and writes, and enumeration. Units never
// talk to the outside world directly. The host applies persistent
// option overrides before a unit's attach hook runs, routes hook log
// output to the host's loggers, and enforces the access policy on
// parameter writes.
//
// The host emits a structured log event for every lifecycle
// transition, parameter change, and hook message, and notifies
// registered event handlers so embedding applications can react to
// unit activity.
package host
