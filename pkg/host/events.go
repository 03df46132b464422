package host

// EventKind identifies a host event.
type EventKind uint8

const (
	// EventUnitLoaded fires after a unit's attach hook completes.
	EventUnitLoaded EventKind = iota

	// EventUnitUnloaded fires after a unit's detach hook completes.
	EventUnitUnloaded

	// EventParamWritten fires after a successful external write.
	EventParamWritten
)

// String returns a human-readable name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventUnitLoaded:
		return "unit-loaded"
	case EventUnitUnloaded:
		return "unit-unloaded"
	case EventParamWritten:
		return "param-written"
	default:
		return "unknown"
	}
}

// Event notifies an embedding application of unit activity.
type Event struct {
	Kind       EventKind
	Unit       string
	InstanceID string

	// Set for EventParamWritten.
	Param    string
	OldValue int64
	NewValue int64
}

// EventHandler receives host events. Handlers run synchronously on
// the calling goroutine after the host has released its internal
// lock, so they may call back into the host. They must not block.
type EventHandler func(Event)

// OnEvent registers an event handler.
func (h *Host) OnEvent(handler EventHandler) {
	if handler == nil {
		return
	}
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	h.handlers = append(h.handlers, handler)
}

func (h *Host) notify(event Event) {
	h.handlersMu.RLock()
	handlers := make([]EventHandler, len(h.handlers))
	copy(handlers, h.handlers)
	h.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
