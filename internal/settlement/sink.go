package settlement

import "swapchain/internal/domain"

// EventSink receives settlement events after an operation has
// committed. Publish is called with the engine's mutex held to
// preserve event ordering, so implementations must not block: buffer
// or drop instead.
type EventSink interface {
	Publish(e domain.SettlementEvent)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(e domain.SettlementEvent)

// Publish calls f(e).
func (f SinkFunc) Publish(e domain.SettlementEvent) {
	f(e)
}
