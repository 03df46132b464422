// Package log provides structured event logging for modhost.
//
// Every host operation (unit lifecycle, parameter access, control-plane
// traffic) is captured as an Event and handed to a Logger. Loggers are
// composable: a FileLogger persists events as a CBOR stream, a
// SlogAdapter mirrors them to a slog.Logger for console output, a
// MemoryLogger buffers them for inspection in tests, and a MultiLogger
// fans out to several sinks at once.
//
// Event files written by FileLogger are read back with Reader, which
// supports filtering by unit, category, level and time range. The
// modhost-log command is a thin CLI over Reader.
package log
