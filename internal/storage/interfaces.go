package storage

import (
	"context"

	"swapchain/internal/domain"
)

// OrderStore provides access to orders storage. Records are created once,
// read freely, and mutated only through SetStatus; they are never deleted
// (terminal orders are retained for auditability).
type OrderStore interface {
	// Create inserts a new order with a freshly assigned id and returns it.
	// The order's ID field is ignored on input. Returns ErrDuplicateKey if
	// the assigned id already exists (must not happen by construction).
	Create(ctx context.Context, o *domain.Order) (domain.OrderID, error)

	// GetByID retrieves an order by its id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)

	// SetStatus transitions an order from Open to a terminal status.
	// Returns ErrNotFound if the order does not exist and
	// ErrInvalidTransition unless the current status is Open and the new
	// status is Filled or Cancelled.
	SetStatus(ctx context.Context, id domain.OrderID, status domain.OrderStatus) error

	// GetByStatus retrieves all orders with the given status, ordered by id ASC.
	GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	// GetByMaker retrieves all orders created by a maker, ordered by id ASC.
	GetByMaker(ctx context.Context, maker domain.Identity) ([]*domain.Order, error)
}

// SettlementEventStore provides access to the append-only settlement
// event audit trail.
type SettlementEventStore interface {
	// Insert appends a settlement event.
	Insert(ctx context.Context, e *domain.SettlementEvent) error

	// GetByOrderID retrieves all events for an order, ordered by occurred_at ASC.
	GetByOrderID(ctx context.Context, id domain.OrderID) ([]*domain.SettlementEvent, error)
}
