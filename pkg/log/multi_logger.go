package log

// MultiLogger fans an event out to several loggers, typically a
// FileLogger for the persistent record plus a SlogAdapter for the
// console.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger builds a MultiLogger over the given sinks. Events are
// delivered in argument order.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
