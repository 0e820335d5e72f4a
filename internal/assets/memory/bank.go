// Package memory provides an in-memory asset ledger used by tests,
// the simulate command, and the server's in-memory mode.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"swapchain/internal/assets"
	"swapchain/internal/domain"
)

// Bank errors.
var (
	// ErrInsufficientFunds is returned when a debit exceeds the
	// account's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBalanceOverflow is returned when a credit or mint would
	// overflow the account's balance.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Bank is an in-memory implementation of assets.Ledger. Each transfer
// is atomic under the bank's mutex.
type Bank struct {
	mu       sync.RWMutex
	balances map[domain.AssetID]map[domain.Identity]uint64
}

// NewBank creates an empty in-memory bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[domain.AssetID]map[domain.Identity]uint64),
	}
}

// Debit removes amount of asset from the given account.
// Returns ErrInsufficientFunds if the balance does not cover it.
func (b *Bank) Debit(_ context.Context, asset domain.AssetID, from domain.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	held := b.balances[asset][from]
	if amount > held {
		return fmt.Errorf("%w: account %s holds %d of %s, need %d", ErrInsufficientFunds, from, held, asset, amount)
	}
	if amount == 0 {
		return nil
	}
	b.balances[asset][from] = held - amount
	return nil
}

// Credit adds amount of asset to the given account.
func (b *Bank) Credit(_ context.Context, asset domain.AssetID, to domain.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.credit(asset, to, amount)
}

// Mint creates amount of asset in the given account. Test and demo
// convenience; not part of the assets.Ledger contract.
func (b *Bank) Mint(asset domain.AssetID, to domain.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.credit(asset, to, amount)
}

// Balance returns the account's balance of an asset.
func (b *Bank) Balance(asset domain.AssetID, account domain.Identity) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[asset][account]
}

// TotalSupply returns the sum of all account balances of an asset.
func (b *Bank) TotalSupply(asset domain.AssetID) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total uint64
	for _, held := range b.balances[asset] {
		total += held
	}
	return total
}

// credit adds to an account balance. Caller must hold b.mu.
func (b *Bank) credit(asset domain.AssetID, to domain.Identity, amount uint64) error {
	accounts := b.balances[asset]
	if accounts == nil {
		accounts = make(map[domain.Identity]uint64)
		b.balances[asset] = accounts
	}

	held := accounts[to]
	if amount > math.MaxUint64-held {
		return fmt.Errorf("%w: account %s of %s", ErrBalanceOverflow, to, asset)
	}
	accounts[to] = held + amount
	return nil
}

// Verify interface compliance at compile time.
var _ assets.Ledger = (*Bank)(nil)
