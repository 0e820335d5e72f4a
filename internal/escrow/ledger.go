// Package escrow tracks, per asset, how much value the engine currently
// holds in custody on behalf of open orders. It is the conservation
// ledger the settlement design protects: at all times the tracked
// holding of an asset must equal the sum of AmountIn over Open orders
// escrowed in that asset.
package escrow

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"swapchain/internal/domain"
)

// Escrow errors. Both indicate an internal-consistency violation when
// surfaced by a correctly operating settlement engine and must be
// treated as fatal by the caller, not as recoverable user errors.
var (
	// ErrInsufficientEscrow is returned when a debit exceeds the tracked
	// holding for an asset.
	ErrInsufficientEscrow = errors.New("insufficient escrow")

	// ErrArithmeticOverflow is returned when a credit would overflow the
	// tracked holding. Arithmetic fails closed rather than wrapping.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

// Ledger tracks custodial holdings per asset. All amounts are
// non-negative fixed-precision integers.
type Ledger struct {
	mu       sync.RWMutex
	holdings map[domain.AssetID]uint64
}

// NewLedger creates an empty escrow ledger.
func NewLedger() *Ledger {
	return &Ledger{
		holdings: make(map[domain.AssetID]uint64),
	}
}

// Credit increases the custodial holding of an asset. Returns
// ErrArithmeticOverflow if the holding would exceed the representable
// range; the ledger is unchanged on failure.
func (l *Ledger) Credit(asset domain.AssetID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.holdings[asset]
	if amount > math.MaxUint64-held {
		return fmt.Errorf("%w: credit %d to holding %d of %s", ErrArithmeticOverflow, amount, held, asset)
	}
	l.holdings[asset] = held + amount
	return nil
}

// Debit decreases the custodial holding of an asset. Returns
// ErrInsufficientEscrow if amount exceeds the tracked holding; the
// ledger is unchanged on failure.
func (l *Ledger) Debit(asset domain.AssetID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.holdings[asset]
	if amount > held {
		return fmt.Errorf("%w: debit %d from holding %d of %s", ErrInsufficientEscrow, amount, held, asset)
	}
	l.holdings[asset] = held - amount
	return nil
}

// Balance returns the tracked custodial holding of an asset.
func (l *Ledger) Balance(asset domain.AssetID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.holdings[asset]
}

// Holdings returns a copy of all non-zero holdings.
func (l *Ledger) Holdings() map[domain.AssetID]uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[domain.AssetID]uint64, len(l.holdings))
	for asset, held := range l.holdings {
		if held > 0 {
			out[asset] = held
		}
	}
	return out
}

// Rebuild resets the ledger to the holdings implied by the given
// orders: the sum of AmountIn per TokenIn over orders that are Open.
// Used at startup to recompute custody from the durable order store.
func (l *Ledger) Rebuild(orders []*domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	holdings := make(map[domain.AssetID]uint64)
	for _, o := range orders {
		if o.Status != domain.StatusOpen {
			continue
		}
		held := holdings[o.TokenIn]
		if o.AmountIn > math.MaxUint64-held {
			return fmt.Errorf("%w: rebuilding holding of %s at order %d", ErrArithmeticOverflow, o.TokenIn, o.ID)
		}
		holdings[o.TokenIn] = held + o.AmountIn
	}

	l.holdings = holdings
	return nil
}
