// Package examples provides reference units demonstrating how to
// build loadable units with the modhost library.
//
// The example units show:
//   - Unit construction and parameter registration
//   - Access mode selection for parameters
//   - Attach and detach hook implementation
//
// Available examples:
//   - TestUnit: the canonical two-parameter unit used throughout the
//     documentation and the integration tests
//   - Thermostat: a unit with bounded parameters and a derived value
//
// These can serve as templates for real unit implementations.
package examples
