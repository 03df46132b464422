package log

// Logger is the interface applications implement to receive host log events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records a host event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking affects
	// the host's load/unload and parameter paths.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
