// Package main runs a deterministic settlement simulation against the
// in-memory stores: a population of actors creates, fills and cancels
// orders concurrently, then every conservation invariant is checked
// against the final state.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	bankmem "swapchain/internal/assets/memory"
	"swapchain/internal/domain"
	"swapchain/internal/escrow"
	"swapchain/internal/settlement"
	"swapchain/internal/storage/memory"
)

const initialBalance = 1_000_000

func main() {
	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)

	seed := flag.Int64("seed", 42, "Random seed")
	actors := flag.Int("actors", 8, "Number of actors")
	assets := flag.Int("assets", 4, "Number of assets")
	ops := flag.Int("ops", 2000, "Operations per actor")
	workers := flag.Int("workers", 8, "Concurrent workers")
	flag.Parse()

	if err := run(logger, *seed, *actors, *assets, *ops, *workers); err != nil {
		logger.Fatalf("Simulation failed: %v", err)
	}
}

type counters struct {
	created   atomic.Uint64
	filled    atomic.Uint64
	cancelled atomic.Uint64
	rejected  atomic.Uint64
}

func run(logger *log.Logger, seed int64, actorCount, assetCount, opsPerActor, workers int) error {
	ctx := context.Background()

	identities := make([]domain.Identity, actorCount)
	for i := range identities {
		identities[i] = domain.Identity(fmt.Sprintf("actor-%02d", i))
	}
	assetIDs := make([]domain.AssetID, assetCount)
	for i := range assetIDs {
		assetIDs[i] = domain.AssetID(fmt.Sprintf("asset-%02d", i))
	}

	bank := bankmem.NewBank()
	for _, id := range identities {
		for _, asset := range assetIDs {
			if err := bank.Mint(asset, id, initialBalance); err != nil {
				return fmt.Errorf("mint: %w", err)
			}
		}
	}

	orders := memory.NewOrderStore()
	ledger := escrow.NewLedger()
	engine, err := settlement.NewEngine(settlement.Options{
		Orders: orders,
		Escrow: ledger,
		Assets: bank,
		Owner:  identities[0],
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	logger.Printf("Running: seed=%d actors=%d assets=%d ops=%d workers=%d",
		seed, actorCount, assetCount, opsPerActor, workers)
	start := time.Now()

	// Each worker gets its own deterministic stream derived from the seed.
	var stats counters
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerSeed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(workerSeed))
			for i := 0; i < opsPerActor; i++ {
				step(ctx, engine, rng, identities, assetIDs, &stats)
			}
		}(seed + int64(w))
	}
	wg.Wait()
	elapsed := time.Since(start)

	logger.Printf("Done in %s: created=%d filled=%d cancelled=%d rejected=%d",
		elapsed.Round(time.Millisecond),
		stats.created.Load(), stats.filled.Load(), stats.cancelled.Load(), stats.rejected.Load())

	return verify(ctx, logger, engine, orders, ledger, bank, identities, assetIDs)
}

// step performs one random operation: create a new order, or pick an
// open order and fill or cancel it.
func step(ctx context.Context, engine *settlement.Engine, rng *rand.Rand,
	identities []domain.Identity, assetIDs []domain.AssetID, stats *counters) {

	switch rng.Intn(3) {
	case 0:
		maker := identities[rng.Intn(len(identities))]
		tokenIn := assetIDs[rng.Intn(len(assetIDs))]
		tokenOut := assetIDs[rng.Intn(len(assetIDs))]
		if tokenIn == tokenOut {
			return
		}
		amountIn := uint64(rng.Intn(1000) + 1)
		amountOut := uint64(rng.Intn(1000) + 1)
		if _, err := engine.DepositAndCreateOrder(ctx, maker, tokenIn, tokenOut, amountIn, amountOut); err != nil {
			stats.rejected.Add(1)
			return
		}
		stats.created.Add(1)

	case 1:
		order := pickOpen(ctx, engine, rng)
		if order == nil {
			return
		}
		taker := identities[rng.Intn(len(identities))]
		if err := engine.FillOrder(ctx, order.ID, taker); err != nil {
			stats.rejected.Add(1)
			return
		}
		stats.filled.Add(1)

	case 2:
		order := pickOpen(ctx, engine, rng)
		if order == nil {
			return
		}
		if err := engine.CancelOrder(ctx, order.ID, order.Maker); err != nil {
			stats.rejected.Add(1)
			return
		}
		stats.cancelled.Add(1)
	}
}

func pickOpen(ctx context.Context, engine *settlement.Engine, rng *rand.Rand) *domain.Order {
	open, err := engine.ListOrders(ctx, domain.StatusOpen)
	if err != nil || len(open) == 0 {
		return nil
	}
	return open[rng.Intn(len(open))]
}

// verify checks the conservation invariants of the final state.
func verify(ctx context.Context, logger *log.Logger, engine *settlement.Engine,
	orders *memory.OrderStore, ledger *escrow.Ledger, bank *bankmem.Bank,
	identities []domain.Identity, assetIDs []domain.AssetID) error {

	var failures []error

	// Supply conservation: settlement moves balances, never creates or
	// destroys them. Escrowed funds live outside actor accounts.
	for _, asset := range assetIDs {
		want := uint64(len(identities)) * initialBalance
		got := bank.TotalSupply(asset) + ledger.Balance(asset)
		if got != want {
			failures = append(failures, fmt.Errorf("asset %s: supply %d, want %d", asset, got, want))
		}
	}

	// Escrow matches the deposits of the orders still open.
	open, err := engine.ListOrders(ctx, domain.StatusOpen)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}
	expected := make(map[domain.AssetID]uint64)
	for _, o := range open {
		expected[o.TokenIn] += o.AmountIn
	}
	for _, asset := range assetIDs {
		if got, want := ledger.Balance(asset), expected[asset]; got != want {
			failures = append(failures, fmt.Errorf("asset %s: escrow %d, open deposits %d", asset, got, want))
		}
	}

	// Every terminal order is exactly FILLED or CANCELLED.
	for _, status := range []domain.OrderStatus{domain.StatusOpen, domain.StatusFilled, domain.StatusCancelled} {
		batch, err := orders.GetByStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("list %s orders: %w", status, err)
		}
		for _, o := range batch {
			if o.Status != status {
				failures = append(failures, fmt.Errorf("order %d: status %s in %s listing", o.ID, o.Status, status))
			}
		}
	}

	if len(failures) > 0 {
		return errors.Join(failures...)
	}
	logger.Printf("All invariants hold: %d orders still open", len(open))
	return nil
}
