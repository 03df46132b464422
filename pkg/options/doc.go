// Package options provides persistent parameter overrides for units.
//
// Overrides live in plain-text .conf files inside a configuration
// directory. Each relevant line has the form
//
//	options <unit> <param>=<value> [<param>=<value> ...]
//
// Comment lines start with '#'. Files are read in lexical order and
// later files win for the same unit and parameter, so local overrides
// can be layered over distribution defaults. Malformed lines are
// skipped and reported as warnings, never as fatal errors.
//
// The Store also maintains a managed file inside the directory for
// overrides set at runtime, so they survive host restarts.
package options
