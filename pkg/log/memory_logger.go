package log

import "sync"

// MemoryLogger buffers events in memory. It backs the host's in-process
// log sink assertions in tests and the CLI's recent-events view.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event

	// limit caps the buffer; 0 means unbounded.
	limit int
}

// NewMemoryLogger creates an unbounded in-memory logger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// NewBoundedMemoryLogger creates a memory logger that retains at most
// limit events, discarding the oldest first.
func NewBoundedMemoryLogger(limit int) *MemoryLogger {
	return &MemoryLogger{limit: limit}
}

// Log appends the event to the buffer.
func (m *MemoryLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	if m.limit > 0 && len(m.events) > m.limit {
		m.events = m.events[len(m.events)-m.limit:]
	}
}

// Events returns a copy of the buffered events.
func (m *MemoryLogger) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Messages returns the Message field of every buffered event that has
// one, in order.
func (m *MemoryLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, e := range m.events {
		if e.Message != "" {
			out = append(out, e.Message)
		}
	}
	return out
}

// Reset discards all buffered events.
func (m *MemoryLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Compile-time interface satisfaction check.
var _ Logger = (*MemoryLogger)(nil)
