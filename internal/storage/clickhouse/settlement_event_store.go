package clickhouse

import (
	"context"
	"fmt"

	"swapchain/internal/domain"
	"swapchain/internal/storage"
)

// SettlementEventStore implements storage.SettlementEventStore using
// ClickHouse. The table is append-only; MergeTree does not enforce
// uniqueness and none is needed, since events record transitions that
// the engine already made one-shot.
type SettlementEventStore struct {
	conn *Conn
}

// NewSettlementEventStore creates a new SettlementEventStore.
func NewSettlementEventStore(conn *Conn) *SettlementEventStore {
	return &SettlementEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SettlementEventStore = (*SettlementEventStore)(nil)

// Insert appends a settlement event.
func (s *SettlementEventStore) Insert(ctx context.Context, e *domain.SettlementEvent) error {
	if e == nil || e.OrderID == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO settlement_events (
			event_type, order_id, maker, taker, token_in, token_out,
			amount_in, amount_out, status, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	err := s.conn.Exec(ctx, query,
		string(e.Type),
		uint64(e.OrderID),
		string(e.Maker),
		string(e.Taker),
		string(e.TokenIn),
		string(e.TokenOut),
		e.AmountIn,
		e.AmountOut,
		string(e.Status),
		e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement event: %w", err)
	}
	return nil
}

// GetByOrderID retrieves all events for an order, ordered by occurred_at ASC.
func (s *SettlementEventStore) GetByOrderID(ctx context.Context, id domain.OrderID) ([]*domain.SettlementEvent, error) {
	query := `
		SELECT event_type, order_id, maker, taker, token_in, token_out,
		       amount_in, amount_out, status, occurred_at
		FROM settlement_events
		WHERE order_id = $1
		ORDER BY occurred_at ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(id))
	if err != nil {
		return nil, fmt.Errorf("get settlement events by order id: %w", err)
	}
	defer rows.Close()

	var events []*domain.SettlementEvent
	for rows.Next() {
		var e domain.SettlementEvent
		var eventType, maker, taker, tokenIn, tokenOut, status string
		var orderID uint64

		err := rows.Scan(&eventType, &orderID, &maker, &taker, &tokenIn, &tokenOut,
			&e.AmountIn, &e.AmountOut, &status, &e.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan settlement event row: %w", err)
		}

		e.Type = domain.EventType(eventType)
		e.OrderID = domain.OrderID(orderID)
		e.Maker = domain.Identity(maker)
		e.Taker = domain.Identity(taker)
		e.TokenIn = domain.AssetID(tokenIn)
		e.TokenOut = domain.AssetID(tokenOut)
		e.Status = domain.OrderStatus(status)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlement event rows: %w", err)
	}

	return events, nil
}
