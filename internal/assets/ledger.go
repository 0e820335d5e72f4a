// Package assets defines the asset ledger adapter: the boundary
// capability through which the settlement engine moves value between
// external accounts and its own custody. The adapter is injected into
// the engine, never implemented by it.
package assets

import (
	"context"

	"swapchain/internal/domain"
)

// Ledger moves value between external accounts and engine custody.
//
// Both operations must be atomic with respect to the adapter's own
// ledger: either the whole transfer happens or none of it does. Any
// returned error means no value moved.
//
// Implementations must not synchronously reinvoke the settlement
// engine from within Debit or Credit; the engine serializes its
// operations and a reentrant call would deadlock against the
// in-flight one.
type Ledger interface {
	// Debit removes amount of asset from the given account into engine
	// custody.
	Debit(ctx context.Context, asset domain.AssetID, from domain.Identity, amount uint64) error

	// Credit releases amount of asset from engine custody to the given
	// account.
	Credit(ctx context.Context, asset domain.AssetID, to domain.Identity, amount uint64) error
}
