package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"swapchain/internal/domain"
	"swapchain/internal/storage"
)

// OrderStore implements storage.OrderStore using PostgreSQL. Ids come
// from a BIGSERIAL column, which keeps them unique and monotonically
// increasing across restarts.
//
// Amounts are stored as BIGINT; values above 1<<63-1 are rejected by
// the insert rather than silently truncated.
type OrderStore struct {
	pool *Pool
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(pool *Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

const orderColumns = "id, maker, token_in, token_out, amount_in, amount_out, status, created_at"

// Create inserts a new order and returns its assigned id.
func (s *OrderStore) Create(ctx context.Context, o *domain.Order) (domain.OrderID, error) {
	if o == nil || o.Maker == "" {
		return 0, storage.ErrInvalidInput
	}
	if o.AmountIn > maxBigint || o.AmountOut > maxBigint {
		return 0, fmt.Errorf("%w: amount exceeds BIGINT range", storage.ErrInvalidInput)
	}

	query := `
		INSERT INTO orders (maker, token_in, token_out, amount_in, amount_out, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		string(o.Maker),
		string(o.TokenIn),
		string(o.TokenOut),
		int64(o.AmountIn),
		int64(o.AmountOut),
		string(o.Status),
		o.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return domain.OrderID(id), nil
}

// GetByID retrieves an order by its id. Returns ErrNotFound if absent.
func (s *OrderStore) GetByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, int64(id))
	o, err := scanOrder(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

// SetStatus transitions an order from Open to a terminal status.
// The WHERE clause on the current status makes the transition one-shot
// even across concurrent connections.
func (s *OrderStore) SetStatus(ctx context.Context, id domain.OrderID, status domain.OrderStatus) error {
	if !status.Terminal() {
		return storage.ErrInvalidTransition
	}

	query := `
		UPDATE orders
		SET status = $2
		WHERE id = $1 AND status = $3
	`

	tag, err := s.pool.Exec(ctx, query, int64(id), string(status), string(domain.StatusOpen))
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: distinguish a missing order from a terminal one.
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return storage.ErrInvalidTransition
}

// GetByStatus retrieves all orders with the given status, ordered by id ASC.
func (s *OrderStore) GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("get orders by status: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// GetByMaker retrieves all orders created by a maker, ordered by id ASC.
func (s *OrderStore) GetByMaker(ctx context.Context, maker domain.Identity) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE maker = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(maker))
	if err != nil {
		return nil, fmt.Errorf("get orders by maker: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

const maxBigint = 1<<63 - 1

// scanOrder scans a single row into an Order.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var id, amountIn, amountOut int64
	var maker, tokenIn, tokenOut, status string

	err := row.Scan(&id, &maker, &tokenIn, &tokenOut, &amountIn, &amountOut, &status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	o.ID = domain.OrderID(id)
	o.Maker = domain.Identity(maker)
	o.TokenIn = domain.AssetID(tokenIn)
	o.TokenOut = domain.AssetID(tokenOut)
	o.AmountIn = uint64(amountIn)
	o.AmountOut = uint64(amountOut)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// scanOrders scans multiple rows into a slice of Order.
func scanOrders(rows pgx.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}
