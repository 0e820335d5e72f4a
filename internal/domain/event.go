package domain

// EventType classifies a settlement event.
type EventType string

// Settlement event types
const (
	EventOrderCreated   EventType = "ORDER_CREATED"
	EventOrderFilled    EventType = "ORDER_FILLED"
	EventOrderCancelled EventType = "ORDER_CANCELLED"
)

// SettlementEvent records a committed state transition of an order.
// Events are emitted by the settlement engine after commit and are
// append-only; together with the orders table they form the audit trail.
// Corresponds to the settlement_events table in ClickHouse.
type SettlementEvent struct {
	Type       EventType
	OrderID    OrderID
	Maker      Identity
	Taker      Identity // set on ORDER_FILLED, empty otherwise
	TokenIn    AssetID
	TokenOut   AssetID
	AmountIn   uint64
	AmountOut  uint64
	Status     OrderStatus // order status after the transition
	OccurredAt int64       // Unix timestamp in milliseconds
}
