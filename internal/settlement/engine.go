// Package settlement implements the order escrow state machine: the
// create, fill and cancel operations over the order store and the
// escrow ledger. The engine is the only component that mutates the two
// together; each operation either fully applies or fully rolls back.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"swapchain/internal/access"
	"swapchain/internal/assets"
	"swapchain/internal/domain"
	"swapchain/internal/escrow"
	"swapchain/internal/observability"
	"swapchain/internal/storage"
)

// Options configures a settlement engine. Orders, Escrow and Assets
// are required; the rest is optional.
type Options struct {
	Orders  storage.OrderStore
	Escrow  *escrow.Ledger
	Assets  assets.Ledger
	Owner   domain.Identity
	Metrics *observability.Metrics
	Logger  *log.Logger
	Sinks   []EventSink
}

// Engine owns the order store and the escrow ledger and settles swaps
// against the injected asset ledger. A single mutex serializes every
// mutating critical section: racing fill/cancel attempts on one order
// commit first-wins, and the loser observes ErrOrderNotOpen.
//
// Ordering discipline: engine state (escrow, order status) is mutated
// only after the external transfer it accounts for has succeeded, and
// status commits strictly last. An order on which an
// internal-consistency violation is ever observed is quarantined and
// refuses further mutation.
type Engine struct {
	mu     sync.Mutex
	orders storage.OrderStore
	escrow *escrow.Ledger
	assets assets.Ledger
	owner  domain.Identity

	metrics *observability.Metrics
	logger  *log.Logger
	sinks   []EventSink

	// quarantined orders are frozen after an invariant breach; guarded by mu.
	quarantined map[domain.OrderID]struct{}
}

// NewEngine wires a settlement engine from its dependencies.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Orders == nil || opts.Escrow == nil || opts.Assets == nil {
		return nil, errors.New("settlement: orders, escrow and assets are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[settlement] ", log.LstdFlags)
	}

	return &Engine{
		orders:      opts.Orders,
		escrow:      opts.Escrow,
		assets:      opts.Assets,
		owner:       opts.Owner,
		metrics:     opts.Metrics,
		logger:      logger,
		sinks:       opts.Sinks,
		quarantined: make(map[domain.OrderID]struct{}),
	}, nil
}

// Owner returns the administrative identity set at deployment.
// The owner role carries no settlement capabilities.
func (e *Engine) Owner() domain.Identity {
	return e.owner
}

// GetOrder retrieves an order by id. Read-only.
func (e *Engine) GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return e.getOrder(ctx, id)
}

// ListOrders retrieves all orders with the given status. Read-only.
func (e *Engine) ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	orders, err := e.orders.GetByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// EscrowBalance returns the engine's tracked custodial holding of an
// asset. Read-only.
func (e *Engine) EscrowBalance(asset domain.AssetID) uint64 {
	return e.escrow.Balance(asset)
}

// DepositAndCreateOrder debits amountIn of tokenIn from the maker into
// engine custody and creates an Open order demanding amountOut of
// tokenOut in exchange. Returns the new order id. No state is created
// if the deposit transfer fails.
func (e *Engine) DepositAndCreateOrder(
	ctx context.Context,
	maker domain.Identity,
	tokenIn, tokenOut domain.AssetID,
	amountIn, amountOut uint64,
) (domain.OrderID, error) {
	start := time.Now()

	if err := validateOrderParams(maker, tokenIn, tokenOut, amountIn, amountOut); err != nil {
		e.countError("create", "invalid_order")
		return 0, err
	}

	// Take custody of the maker's deposit first; nothing to roll back yet.
	if err := e.assets.Debit(ctx, tokenIn, maker, amountIn); err != nil {
		e.countTransferFailure("create")
		return 0, fmt.Errorf("%w: deposit %d of %s from maker: %v", ErrTransferFailed, amountIn, tokenIn, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.escrow.Credit(tokenIn, amountIn); err != nil {
		// Cannot account for the deposit: hand it back and fail closed.
		e.returnDeposit(ctx, tokenIn, maker, amountIn, 0)
		e.countError("create", "inconsistency")
		return 0, fmt.Errorf("%w: escrow credit: %v", ErrInternalInconsistency, err)
	}

	order := &domain.Order{
		Maker:     maker,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Status:    domain.StatusOpen,
		CreatedAt: time.Now().UnixMilli(),
	}

	id, err := e.orders.Create(ctx, order)
	if err != nil {
		if dbErr := e.escrow.Debit(tokenIn, amountIn); dbErr != nil {
			e.logger.Printf("unwind escrow credit after failed create: %v", dbErr)
		}
		e.returnDeposit(ctx, tokenIn, maker, amountIn, 0)
		e.countError("create", "store")
		return 0, fmt.Errorf("create order: %w", err)
	}
	order.ID = id

	if e.metrics != nil {
		e.metrics.OrdersCreated.Inc()
		e.metrics.OpenOrders.Inc()
		e.metrics.SettlementLatency.WithLabelValues("create").Observe(time.Since(start).Seconds())
	}
	e.updateHoldingGauge(tokenIn)
	e.emit(domain.SettlementEvent{
		Type:       domain.EventOrderCreated,
		OrderID:    id,
		Maker:      maker,
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		AmountIn:   amountIn,
		AmountOut:  amountOut,
		Status:     domain.StatusOpen,
		OccurredAt: time.Now().UnixMilli(),
	})

	return id, nil
}

// FillOrder settles an open order: the taker deposits AmountOut of
// TokenOut, the maker is paid that deposit, the taker receives the
// escrowed AmountIn of TokenIn, and the order becomes Filled. The
// taker deposit and the two payout legs form one atomic unit: any
// failure unwinds every prior effect, including the taker's deposit.
func (e *Engine) FillOrder(ctx context.Context, id domain.OrderID, taker domain.Identity) error {
	start := time.Now()

	// Pre-checks outside the critical section so a taker is never
	// debited for an order that is already terminal.
	order, err := e.getOrder(ctx, id)
	if err != nil {
		e.countError("fill", "not_found")
		return err
	}
	if order.Status != domain.StatusOpen {
		e.countError("fill", "not_open")
		return &NotOpenError{ID: id, Status: order.Status}
	}
	if err := access.RequireNotMaker(order, taker); err != nil {
		e.countError("fill", "unauthorized")
		return err
	}

	// Take transient custody of the taker's counter-asset. If the order
	// is gone by the time the critical section is entered, this deposit
	// is refunded. Order fields are immutable, so the pre-read values
	// stay valid for the refund path.
	deposit, depositAsset := order.AmountOut, order.TokenOut
	if err := e.assets.Debit(ctx, depositAsset, taker, deposit); err != nil {
		e.countTransferFailure("fill")
		return fmt.Errorf("%w: deposit %d of %s from taker: %v", ErrTransferFailed, deposit, depositAsset, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isQuarantined(id) {
		e.returnDeposit(ctx, depositAsset, taker, deposit, id)
		return fmt.Errorf("%w: order %d is quarantined", ErrInternalInconsistency, id)
	}

	// Re-read under the lock: a racing fill or cancel may have committed
	// between the pre-check and here. First committed wins.
	order, err = e.getOrder(ctx, id)
	if err != nil {
		e.returnDeposit(ctx, depositAsset, taker, deposit, id)
		return err
	}
	if order.Status != domain.StatusOpen {
		e.returnDeposit(ctx, depositAsset, taker, deposit, id)
		e.countError("fill", "not_open")
		return &NotOpenError{ID: id, Status: order.Status}
	}

	// Leg 1: the taker deposit enters custody, then pays the maker out.
	if err := e.escrow.Credit(order.TokenOut, order.AmountOut); err != nil {
		e.quarantine(id)
		e.returnDeposit(ctx, order.TokenOut, taker, order.AmountOut, id)
		e.countError("fill", "inconsistency")
		return fmt.Errorf("%w: escrow credit of taker deposit: %v", ErrInternalInconsistency, err)
	}
	if err := e.assets.Credit(ctx, order.TokenOut, order.Maker, order.AmountOut); err != nil {
		if dbErr := e.escrow.Debit(order.TokenOut, order.AmountOut); dbErr != nil {
			e.quarantine(id)
			return fmt.Errorf("%w: unwind after maker payout failure: %v", ErrInternalInconsistency, dbErr)
		}
		e.returnDeposit(ctx, order.TokenOut, taker, order.AmountOut, id)
		e.countTransferFailure("fill")
		return fmt.Errorf("%w: pay maker %d of %s: %v", ErrTransferFailed, order.AmountOut, order.TokenOut, err)
	}
	if err := e.escrow.Debit(order.TokenOut, order.AmountOut); err != nil {
		e.quarantine(id)
		e.countError("fill", "inconsistency")
		return fmt.Errorf("%w: escrow debit after maker payout: %v", ErrInternalInconsistency, err)
	}

	// Leg 2: the escrowed deposit is released to the taker.
	if err := e.assets.Credit(ctx, order.TokenIn, taker, order.AmountIn); err != nil {
		// Unwind leg 1: reclaim the maker payout, then refund the taker.
		if rbErr := e.assets.Debit(ctx, order.TokenOut, order.Maker, order.AmountOut); rbErr != nil {
			e.quarantine(id)
			e.countError("fill", "inconsistency")
			return fmt.Errorf("%w: taker payout failed (%v) and maker leg could not be unwound: %v",
				ErrInternalInconsistency, err, rbErr)
		}
		e.returnDeposit(ctx, order.TokenOut, taker, order.AmountOut, id)
		e.countTransferFailure("fill")
		return fmt.Errorf("%w: pay taker %d of %s: %v", ErrTransferFailed, order.AmountIn, order.TokenIn, err)
	}
	if err := e.escrow.Debit(order.TokenIn, order.AmountIn); err != nil {
		e.quarantine(id)
		e.countError("fill", "inconsistency")
		return fmt.Errorf("%w: escrow debit of maker deposit: %v", ErrInternalInconsistency, err)
	}

	// Both legs moved; commit the transition last.
	if err := e.orders.SetStatus(ctx, id, domain.StatusFilled); err != nil {
		e.quarantine(id)
		e.countError("fill", "inconsistency")
		return fmt.Errorf("%w: commit fill: %v", ErrInternalInconsistency, err)
	}

	if e.metrics != nil {
		e.metrics.OrdersFilled.Inc()
		e.metrics.OpenOrders.Dec()
		e.metrics.SettlementLatency.WithLabelValues("fill").Observe(time.Since(start).Seconds())
	}
	e.updateHoldingGauge(order.TokenIn)
	e.updateHoldingGauge(order.TokenOut)
	e.emit(domain.SettlementEvent{
		Type:       domain.EventOrderFilled,
		OrderID:    id,
		Maker:      order.Maker,
		Taker:      taker,
		TokenIn:    order.TokenIn,
		TokenOut:   order.TokenOut,
		AmountIn:   order.AmountIn,
		AmountOut:  order.AmountOut,
		Status:     domain.StatusFilled,
		OccurredAt: time.Now().UnixMilli(),
	})

	return nil
}

// CancelOrder returns the escrowed deposit to the maker and marks the
// order Cancelled. Only the maker may cancel, and only while the order
// is Open.
func (e *Engine) CancelOrder(ctx context.Context, id domain.OrderID, caller domain.Identity) error {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isQuarantined(id) {
		return fmt.Errorf("%w: order %d is quarantined", ErrInternalInconsistency, id)
	}

	order, err := e.getOrder(ctx, id)
	if err != nil {
		e.countError("cancel", "not_found")
		return err
	}
	if err := access.RequireMaker(order, caller); err != nil {
		e.countError("cancel", "unauthorized")
		return err
	}
	if order.Status != domain.StatusOpen {
		e.countError("cancel", "not_open")
		return &NotOpenError{ID: id, Status: order.Status}
	}

	// Pay the deposit back first; escrow bookkeeping and the status
	// transition follow only once the transfer is confirmed.
	if err := e.assets.Credit(ctx, order.TokenIn, order.Maker, order.AmountIn); err != nil {
		e.countTransferFailure("cancel")
		return fmt.Errorf("%w: refund %d of %s to maker: %v", ErrTransferFailed, order.AmountIn, order.TokenIn, err)
	}
	if err := e.escrow.Debit(order.TokenIn, order.AmountIn); err != nil {
		e.quarantine(id)
		e.countError("cancel", "inconsistency")
		return fmt.Errorf("%w: escrow debit on cancel: %v", ErrInternalInconsistency, err)
	}
	if err := e.orders.SetStatus(ctx, id, domain.StatusCancelled); err != nil {
		e.quarantine(id)
		e.countError("cancel", "inconsistency")
		return fmt.Errorf("%w: commit cancel: %v", ErrInternalInconsistency, err)
	}

	if e.metrics != nil {
		e.metrics.OrdersCancelled.Inc()
		e.metrics.OpenOrders.Dec()
		e.metrics.SettlementLatency.WithLabelValues("cancel").Observe(time.Since(start).Seconds())
	}
	e.updateHoldingGauge(order.TokenIn)
	e.emit(domain.SettlementEvent{
		Type:       domain.EventOrderCancelled,
		OrderID:    id,
		Maker:      order.Maker,
		TokenIn:    order.TokenIn,
		TokenOut:   order.TokenOut,
		AmountIn:   order.AmountIn,
		AmountOut:  order.AmountOut,
		Status:     domain.StatusCancelled,
		OccurredAt: time.Now().UnixMilli(),
	})

	return nil
}

// validateOrderParams rejects degenerate orders before any value moves.
func validateOrderParams(maker domain.Identity, tokenIn, tokenOut domain.AssetID, amountIn, amountOut uint64) error {
	switch {
	case maker == "":
		return fmt.Errorf("%w: empty maker", ErrInvalidOrder)
	case tokenIn == "" || tokenOut == "":
		return fmt.Errorf("%w: empty asset id", ErrInvalidOrder)
	case tokenIn == tokenOut:
		return fmt.Errorf("%w: tokenIn equals tokenOut (%s)", ErrInvalidOrder, tokenIn)
	case amountIn == 0:
		return fmt.Errorf("%w: amountIn must be positive", ErrInvalidOrder)
	case amountOut == 0:
		return fmt.Errorf("%w: amountOut must be positive", ErrInvalidOrder)
	}
	return nil
}

// getOrder maps storage.ErrNotFound to the engine's sentinel.
func (e *Engine) getOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	order, err := e.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

// returnDeposit hands a transient deposit back to its account. A
// refund the adapter refuses cannot be reconciled, so the order is
// quarantined.
func (e *Engine) returnDeposit(ctx context.Context, asset domain.AssetID, to domain.Identity, amount uint64, id domain.OrderID) {
	if err := e.assets.Credit(ctx, asset, to, amount); err != nil {
		e.logger.Printf("refund %d of %s to %s failed: %v", amount, asset, to, err)
		if id != 0 {
			e.quarantine(id)
		}
	}
}

// quarantine freezes an order after an invariant breach. Caller must
// hold e.mu.
func (e *Engine) quarantine(id domain.OrderID) {
	if _, ok := e.quarantined[id]; ok {
		return
	}
	e.quarantined[id] = struct{}{}
	e.logger.Printf("order %d quarantined: refusing further mutation", id)
	if e.metrics != nil {
		e.metrics.QuarantinedOrders.Set(float64(len(e.quarantined)))
	}
}

// isQuarantined reports whether an order is frozen. Caller must hold e.mu.
func (e *Engine) isQuarantined(id domain.OrderID) bool {
	_, ok := e.quarantined[id]
	return ok
}

// updateHoldingGauge mirrors the tracked holding of an asset into the
// escrow gauge.
func (e *Engine) updateHoldingGauge(asset domain.AssetID) {
	if e.metrics == nil {
		return
	}
	e.metrics.EscrowHoldings.WithLabelValues(string(asset)).Set(float64(e.escrow.Balance(asset)))
}

// emit publishes a committed settlement event to all sinks.
func (e *Engine) emit(event domain.SettlementEvent) {
	if e.metrics != nil && len(e.sinks) > 0 {
		e.metrics.EventsPublished.Inc()
	}
	for _, sink := range e.sinks {
		sink.Publish(event)
	}
}

// countError increments the settlement error counter.
func (e *Engine) countError(operation, kind string) {
	if e.metrics != nil {
		e.metrics.SettlementErrors.WithLabelValues(operation, kind).Inc()
	}
}

// countTransferFailure increments the transfer failure counter.
func (e *Engine) countTransferFailure(operation string) {
	if e.metrics != nil {
		e.metrics.TransferFailures.WithLabelValues(operation).Inc()
	}
}
