package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"swapchain/internal/assets"
	bankmem "swapchain/internal/assets/memory"
	"swapchain/internal/domain"
	"swapchain/internal/escrow"
	"swapchain/internal/storage/memory"
)

const (
	alice = domain.Identity("alice")
	bob   = domain.Identity("bob")

	tokenA = domain.AssetID("tokenA")
	tokenB = domain.AssetID("tokenB")
)

// faultyLedger wraps a bank and injects failures per call site.
type faultyLedger struct {
	inner    assets.Ledger
	onDebit  func(asset domain.AssetID, from domain.Identity) error
	onCredit func(asset domain.AssetID, to domain.Identity) error
}

func (f *faultyLedger) Debit(ctx context.Context, asset domain.AssetID, from domain.Identity, amount uint64) error {
	if f.onDebit != nil {
		if err := f.onDebit(asset, from); err != nil {
			return err
		}
	}
	return f.inner.Debit(ctx, asset, from, amount)
}

func (f *faultyLedger) Credit(ctx context.Context, asset domain.AssetID, to domain.Identity, amount uint64) error {
	if f.onCredit != nil {
		if err := f.onCredit(asset, to); err != nil {
			return err
		}
	}
	return f.inner.Credit(ctx, asset, to, amount)
}

// collectSink records published events.
type collectSink struct {
	mu     sync.Mutex
	events []domain.SettlementEvent
}

func (c *collectSink) Publish(e domain.SettlementEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collectSink) all() []domain.SettlementEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.SettlementEvent(nil), c.events...)
}

type testEnv struct {
	engine *Engine
	orders *memory.OrderStore
	ledger *escrow.Ledger
	bank   *bankmem.Bank
	sink   *collectSink
}

// newTestEnv builds an engine on in-memory stores. Alice holds tokenA,
// Bob holds tokenB, 1000 each. wrap may interpose a fault-injecting
// ledger around the bank; nil uses the bank directly.
func newTestEnv(t *testing.T, wrap func(*bankmem.Bank) assets.Ledger) *testEnv {
	t.Helper()

	bank := bankmem.NewBank()
	if err := bank.Mint(tokenA, alice, 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := bank.Mint(tokenB, bob, 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	var assetLedger assets.Ledger = bank
	if wrap != nil {
		assetLedger = wrap(bank)
	}

	orders := memory.NewOrderStore()
	ledger := escrow.NewLedger()
	sink := &collectSink{}

	engine, err := NewEngine(Options{
		Orders: orders,
		Escrow: ledger,
		Assets: assetLedger,
		Owner:  alice,
		Sinks:  []EventSink{SinkFunc(sink.Publish)},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	return &testEnv{engine: engine, orders: orders, ledger: ledger, bank: bank, sink: sink}
}

func (env *testEnv) mustCreate(t *testing.T, maker domain.Identity, amountIn, amountOut uint64) domain.OrderID {
	t.Helper()
	id, err := env.engine.DepositAndCreateOrder(context.Background(), maker, tokenA, tokenB, amountIn, amountOut)
	if err != nil {
		t.Fatalf("DepositAndCreateOrder failed: %v", err)
	}
	return id
}

func (env *testEnv) status(t *testing.T, id domain.OrderID) domain.OrderStatus {
	t.Helper()
	o, err := env.orders.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	return o.Status
}

func TestEngine_CreateOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)

	// The deposit left the maker and entered escrow.
	if got := env.bank.Balance(tokenA, alice); got != 900 {
		t.Errorf("Maker balance: got %d, want 900", got)
	}
	if got := env.ledger.Balance(tokenA); got != 100 {
		t.Errorf("Escrow: got %d, want 100", got)
	}

	o, err := env.engine.GetOrder(ctx, id)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if o.Status != domain.StatusOpen {
		t.Errorf("Status: got %s, want OPEN", o.Status)
	}
	if o.AmountIn != 100 || o.AmountOut != 90 {
		t.Errorf("Amounts: got %d/%d, want 100/90", o.AmountIn, o.AmountOut)
	}
}

func TestEngine_RejectsDegenerateOrders(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cases := []struct {
		name      string
		maker     domain.Identity
		tokenIn   domain.AssetID
		tokenOut  domain.AssetID
		amountIn  uint64
		amountOut uint64
	}{
		{"empty maker", "", tokenA, tokenB, 100, 90},
		{"empty token in", alice, "", tokenB, 100, 90},
		{"empty token out", alice, tokenA, "", 100, 90},
		{"same asset", alice, tokenA, tokenA, 100, 90},
		{"zero amount in", alice, tokenA, tokenB, 0, 90},
		{"zero amount out", alice, tokenA, tokenB, 100, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.DepositAndCreateOrder(ctx, tc.maker, tc.tokenIn, tc.tokenOut, tc.amountIn, tc.amountOut)
			if !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("Expected ErrInvalidOrder, got %v", err)
			}
		})
	}

	// Rejection happens before any value moves.
	if got := env.bank.Balance(tokenA, alice); got != 1000 {
		t.Errorf("Maker balance changed: got %d, want 1000", got)
	}
	if got := env.ledger.Balance(tokenA); got != 0 {
		t.Errorf("Escrow changed: got %d, want 0", got)
	}
}

func TestEngine_CreateDepositFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// More than the maker holds.
	_, err := env.engine.DepositAndCreateOrder(ctx, alice, tokenA, tokenB, 1001, 90)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	// No order exists and nothing is escrowed.
	open, err := env.orders.GetByStatus(ctx, domain.StatusOpen)
	if err != nil {
		t.Fatalf("GetByStatus failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("Expected no orders, got %d", len(open))
	}
	if got := env.ledger.Balance(tokenA); got != 0 {
		t.Errorf("Escrow changed: got %d", got)
	}
	if got := env.bank.Balance(tokenA, alice); got != 1000 {
		t.Errorf("Maker balance changed: got %d", got)
	}
}

func TestEngine_FillRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)

	if err := env.engine.FillOrder(ctx, id, bob); err != nil {
		t.Fatalf("FillOrder failed: %v", err)
	}

	// Alice swapped 100 tokenA for 90 tokenB; Bob the reverse.
	if got := env.bank.Balance(tokenA, alice); got != 900 {
		t.Errorf("Alice tokenA: got %d, want 900", got)
	}
	if got := env.bank.Balance(tokenB, alice); got != 90 {
		t.Errorf("Alice tokenB: got %d, want 90", got)
	}
	if got := env.bank.Balance(tokenA, bob); got != 100 {
		t.Errorf("Bob tokenA: got %d, want 100", got)
	}
	if got := env.bank.Balance(tokenB, bob); got != 910 {
		t.Errorf("Bob tokenB: got %d, want 910", got)
	}

	// Escrow holds nothing and the order is terminal.
	if got := env.ledger.Balance(tokenA); got != 0 {
		t.Errorf("Escrow tokenA: got %d, want 0", got)
	}
	if got := env.ledger.Balance(tokenB); got != 0 {
		t.Errorf("Escrow tokenB: got %d, want 0", got)
	}
	if got := env.status(t, id); got != domain.StatusFilled {
		t.Errorf("Status: got %s, want FILLED", got)
	}

	// Supply is conserved.
	if got := env.bank.TotalSupply(tokenA); got != 1000 {
		t.Errorf("tokenA supply: got %d, want 1000", got)
	}
	if got := env.bank.TotalSupply(tokenB); got != 1000 {
		t.Errorf("tokenB supply: got %d, want 1000", got)
	}
}

func TestEngine_CancelRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)

	if err := env.engine.CancelOrder(ctx, id, alice); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	// The deposit came back and nothing else moved.
	if got := env.bank.Balance(tokenA, alice); got != 1000 {
		t.Errorf("Alice tokenA: got %d, want 1000", got)
	}
	if got := env.bank.Balance(tokenB, bob); got != 1000 {
		t.Errorf("Bob tokenB: got %d, want 1000", got)
	}
	if got := env.ledger.Balance(tokenA); got != 0 {
		t.Errorf("Escrow: got %d, want 0", got)
	}
	if got := env.status(t, id); got != domain.StatusCancelled {
		t.Errorf("Status: got %s, want CANCELLED", got)
	}
}

func TestEngine_NoSelfFill(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)

	err := env.engine.FillOrder(ctx, id, alice)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	// The order survives unchanged.
	if got := env.status(t, id); got != domain.StatusOpen {
		t.Errorf("Status: got %s, want OPEN", got)
	}
	if got := env.ledger.Balance(tokenA); got != 100 {
		t.Errorf("Escrow: got %d, want 100", got)
	}
}

func TestEngine_CancelRequiresMaker(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)

	err := env.engine.CancelOrder(ctx, id, bob)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if got := env.status(t, id); got != domain.StatusOpen {
		t.Errorf("Status: got %s, want OPEN", got)
	}
}

func TestEngine_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	if err := env.engine.FillOrder(ctx, 42, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fill: expected ErrNotFound, got %v", err)
	}
	if err := env.engine.CancelOrder(ctx, 42, alice); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel: expected ErrNotFound, got %v", err)
	}
	if _, err := env.engine.GetOrder(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
}

func TestEngine_SingleTransition(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)
	if err := env.engine.FillOrder(ctx, id, bob); err != nil {
		t.Fatalf("FillOrder failed: %v", err)
	}

	// Every further mutation reports the terminal status.
	err := env.engine.FillOrder(ctx, id, bob)
	var notOpen *NotOpenError
	if !errors.As(err, &notOpen) {
		t.Fatalf("Expected NotOpenError, got %v", err)
	}
	if notOpen.Status != domain.StatusFilled {
		t.Errorf("NotOpenError status: got %s, want FILLED", notOpen.Status)
	}
	if !errors.Is(err, ErrOrderNotOpen) {
		t.Error("NotOpenError must match ErrOrderNotOpen")
	}

	err = env.engine.CancelOrder(ctx, id, alice)
	if !errors.As(err, &notOpen) {
		t.Fatalf("Expected NotOpenError, got %v", err)
	}
	if notOpen.Status != domain.StatusFilled {
		t.Errorf("NotOpenError status: got %s, want FILLED", notOpen.Status)
	}

	// A failed second fill left the taker's balance alone.
	if got := env.bank.Balance(tokenB, bob); got != 910 {
		t.Errorf("Bob tokenB: got %d, want 910", got)
	}
}

func TestEngine_FillDepositFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// Bob holds 1000 tokenB; demand more.
	id := env.mustCreate(t, alice, 100, 1001)

	err := env.engine.FillOrder(ctx, id, bob)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	// The order is untouched and fillable once the taker is funded.
	if got := env.status(t, id); got != domain.StatusOpen {
		t.Errorf("Status: got %s, want OPEN", got)
	}
	if got := env.ledger.Balance(tokenA); got != 100 {
		t.Errorf("Escrow: got %d, want 100", got)
	}
	if got := env.bank.Balance(tokenB, bob); got != 1000 {
		t.Errorf("Bob tokenB: got %d, want 1000", got)
	}

	if err := env.bank.Mint(tokenB, bob, 1); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := env.engine.FillOrder(ctx, id, bob); err != nil {
		t.Fatalf("Retry after funding failed: %v", err)
	}
}

func TestEngine_MakerPayoutFailureUnwinds(t *testing.T) {
	fail := false
	env := newTestEnv(t, func(bank *bankmem.Bank) assets.Ledger {
		return &faultyLedger{
			inner: bank,
			onCredit: func(asset domain.AssetID, to domain.Identity) error {
				if fail && asset == tokenB && to == alice {
					return fmt.Errorf("adapter rejected")
				}
				return nil
			},
		}
	})
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)
	fail = true

	err := env.engine.FillOrder(ctx, id, bob)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	// Bob's deposit came back, escrow still holds the maker deposit only,
	// the order stays fillable.
	if got := env.bank.Balance(tokenB, bob); got != 1000 {
		t.Errorf("Bob tokenB: got %d, want 1000", got)
	}
	if got := env.ledger.Balance(tokenB); got != 0 {
		t.Errorf("Escrow tokenB: got %d, want 0", got)
	}
	if got := env.ledger.Balance(tokenA); got != 100 {
		t.Errorf("Escrow tokenA: got %d, want 100", got)
	}
	if got := env.status(t, id); got != domain.StatusOpen {
		t.Errorf("Status: got %s, want OPEN", got)
	}

	fail = false
	if err := env.engine.FillOrder(ctx, id, bob); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
}

func TestEngine_TakerPayoutFailureUnwinds(t *testing.T) {
	fail := false
	env := newTestEnv(t, func(bank *bankmem.Bank) assets.Ledger {
		return &faultyLedger{
			inner: bank,
			onCredit: func(asset domain.AssetID, to domain.Identity) error {
				if fail && asset == tokenA && to == bob {
					return fmt.Errorf("adapter rejected")
				}
				return nil
			},
		}
	})
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)
	fail = true

	err := env.engine.FillOrder(ctx, id, bob)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	// The maker leg was clawed back and the taker refunded: every balance
	// is exactly as before the attempt.
	if got := env.bank.Balance(tokenA, alice); got != 900 {
		t.Errorf("Alice tokenA: got %d, want 900", got)
	}
	if got := env.bank.Balance(tokenB, alice); got != 0 {
		t.Errorf("Alice tokenB: got %d, want 0", got)
	}
	if got := env.bank.Balance(tokenB, bob); got != 1000 {
		t.Errorf("Bob tokenB: got %d, want 1000", got)
	}
	if got := env.ledger.Balance(tokenA); got != 100 {
		t.Errorf("Escrow tokenA: got %d, want 100", got)
	}
	if got := env.status(t, id); got != domain.StatusOpen {
		t.Errorf("Status: got %s, want OPEN", got)
	}
}

func TestEngine_QuarantineAfterFailedClawback(t *testing.T) {
	fail := false
	env := newTestEnv(t, func(bank *bankmem.Bank) assets.Ledger {
		return &faultyLedger{
			inner: bank,
			onCredit: func(asset domain.AssetID, to domain.Identity) error {
				if fail && asset == tokenA && to == bob {
					return fmt.Errorf("adapter rejected credit")
				}
				return nil
			},
			onDebit: func(asset domain.AssetID, from domain.Identity) error {
				if fail && asset == tokenB && from == alice {
					return fmt.Errorf("adapter rejected clawback")
				}
				return nil
			},
		}
	})
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)
	fail = true

	// Taker payout fails and the compensating maker debit fails too:
	// the order cannot be reconciled.
	err := env.engine.FillOrder(ctx, id, bob)
	if !errors.Is(err, ErrInternalInconsistency) {
		t.Fatalf("Expected ErrInternalInconsistency, got %v", err)
	}

	// Quarantined orders refuse further mutation, even from the maker.
	fail = false
	if err := env.engine.CancelOrder(ctx, id, alice); !errors.Is(err, ErrInternalInconsistency) {
		t.Errorf("Cancel on quarantined order: expected ErrInternalInconsistency, got %v", err)
	}
	if err := env.engine.FillOrder(ctx, id, bob); !errors.Is(err, ErrInternalInconsistency) {
		t.Errorf("Fill on quarantined order: expected ErrInternalInconsistency, got %v", err)
	}
}

func TestEngine_RacingFillAndCancel(t *testing.T) {
	// The first committed mutation wins; the loser observes a terminal
	// status and no value is lost either way.
	for i := 0; i < 50; i++ {
		env := newTestEnv(t, nil)
		ctx := context.Background()
		id := env.mustCreate(t, alice, 100, 90)

		var wg sync.WaitGroup
		var fillErr, cancelErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			fillErr = env.engine.FillOrder(ctx, id, bob)
		}()
		go func() {
			defer wg.Done()
			cancelErr = env.engine.CancelOrder(ctx, id, alice)
		}()
		wg.Wait()

		if (fillErr == nil) == (cancelErr == nil) {
			t.Fatalf("Exactly one of fill/cancel must win: fill=%v cancel=%v", fillErr, cancelErr)
		}

		status := env.status(t, id)
		switch {
		case fillErr == nil:
			if status != domain.StatusFilled {
				t.Fatalf("Fill won but status is %s", status)
			}
			if !errors.Is(cancelErr, ErrOrderNotOpen) {
				t.Fatalf("Cancel loser: expected ErrOrderNotOpen, got %v", cancelErr)
			}
		default:
			if status != domain.StatusCancelled {
				t.Fatalf("Cancel won but status is %s", status)
			}
			if !errors.Is(fillErr, ErrOrderNotOpen) {
				t.Fatalf("Fill loser: expected ErrOrderNotOpen, got %v", fillErr)
			}
		}

		// Conservation: nothing minted, nothing burned, escrow empty.
		if got := env.bank.TotalSupply(tokenA) + env.ledger.Balance(tokenA); got != 1000 {
			t.Fatalf("tokenA conservation violated: %d", got)
		}
		if got := env.bank.TotalSupply(tokenB) + env.ledger.Balance(tokenB); got != 1000 {
			t.Fatalf("tokenB conservation violated: %d", got)
		}
		if got := env.ledger.Balance(tokenA); got != 0 {
			t.Fatalf("Escrow not empty after terminal transition: %d", got)
		}
	}
}

func TestEngine_ConservationUnderRandomOps(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// Give both parties both assets so makers and takers alternate.
	env.bank.Mint(tokenB, alice, 1000)
	env.bank.Mint(tokenA, bob, 1000)

	rng := rand.New(rand.NewSource(7))
	parties := []domain.Identity{alice, bob}

	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			maker := parties[rng.Intn(2)]
			in, out := tokenA, tokenB
			if rng.Intn(2) == 0 {
				in, out = out, in
			}
			env.engine.DepositAndCreateOrder(ctx, maker, in, out, uint64(rng.Intn(50)+1), uint64(rng.Intn(50)+1))
		case 1:
			open, _ := env.engine.ListOrders(ctx, domain.StatusOpen)
			if len(open) > 0 {
				o := open[rng.Intn(len(open))]
				env.engine.FillOrder(ctx, o.ID, other(o.Maker))
			}
		case 2:
			open, _ := env.engine.ListOrders(ctx, domain.StatusOpen)
			if len(open) > 0 {
				o := open[rng.Intn(len(open))]
				env.engine.CancelOrder(ctx, o.ID, o.Maker)
			}
		}
	}

	// Supply conservation across accounts and escrow.
	for _, asset := range []domain.AssetID{tokenA, tokenB} {
		if got := env.bank.TotalSupply(asset) + env.ledger.Balance(asset); got != 2000 {
			t.Errorf("%s conservation violated: %d, want 2000", asset, got)
		}
	}

	// Escrow equals the open orders' deposits exactly.
	open, err := env.engine.ListOrders(ctx, domain.StatusOpen)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	expected := map[domain.AssetID]uint64{}
	for _, o := range open {
		expected[o.TokenIn] += o.AmountIn
	}
	for _, asset := range []domain.AssetID{tokenA, tokenB} {
		if got := env.ledger.Balance(asset); got != expected[asset] {
			t.Errorf("%s escrow: got %d, open deposits %d", asset, got, expected[asset])
		}
	}
}

func other(id domain.Identity) domain.Identity {
	if id == alice {
		return bob
	}
	return alice
}

func TestEngine_EmitsEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := env.mustCreate(t, alice, 100, 90)
	if err := env.engine.FillOrder(ctx, id, bob); err != nil {
		t.Fatalf("FillOrder failed: %v", err)
	}

	events := env.sink.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	if events[0].Type != domain.EventOrderCreated || events[0].OrderID != id {
		t.Errorf("First event: got %s for order %d", events[0].Type, events[0].OrderID)
	}
	if events[1].Type != domain.EventOrderFilled {
		t.Errorf("Second event: got %s, want ORDER_FILLED", events[1].Type)
	}
	if events[1].Taker != bob {
		t.Errorf("Fill event taker: got %s, want bob", events[1].Taker)
	}
	if events[1].Status != domain.StatusFilled {
		t.Errorf("Fill event status: got %s", events[1].Status)
	}
}

func TestEngine_NoEventOnFailedOperation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	env.engine.DepositAndCreateOrder(ctx, alice, tokenA, tokenA, 100, 90)
	env.engine.FillOrder(ctx, 42, bob)

	if got := len(env.sink.all()); got != 0 {
		t.Errorf("Expected no events for failed operations, got %d", got)
	}
}

func TestEngine_Owner(t *testing.T) {
	env := newTestEnv(t, nil)

	if got := env.engine.Owner(); got != alice {
		t.Errorf("Owner: got %s, want alice", got)
	}
}

func TestNewEngine_RequiresDependencies(t *testing.T) {
	_, err := NewEngine(Options{})
	if err == nil {
		t.Fatal("Expected error for missing dependencies")
	}
}
