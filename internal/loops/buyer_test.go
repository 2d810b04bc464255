package loops

import (
	"context"
	"testing"
	"time"

	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/pixil98/go-testutil"
)

func TestBuyer_BuysTargetedStock(t *testing.T) {
	state := newFakeState()
	state.shops["seed"] = mirror.ShopSnapshot{
		SecondsUntilRestock: 120,
		Inventory: []mirror.ShopItem{
			{ID: "carrot", CurrentStock: 2, InitialStock: 5},
			{ID: "corn", CurrentStock: 3, InitialStock: 5},
		},
	}

	actions := &fakeActions{}
	b := NewBuyer(state, actions, BuyerConfig{})

	b.buy(context.Background(), "seed", map[string]bool{"carrot": true}, nil)

	calls := actions.callList()
	testutil.AssertEqual(t, "call count", len(calls), 2)
	testutil.AssertEqual(t, "first buy", calls[0], "buy seed carrot")
	testutil.AssertEqual(t, "second buy", calls[1], "buy seed carrot")
}

func TestBuyer_SkipsOutOfStock(t *testing.T) {
	state := newFakeState()
	state.shops["tool"] = mirror.ShopSnapshot{
		Inventory: []mirror.ShopItem{{ID: "wateringcan", CurrentStock: 0, InitialStock: 1}},
	}

	actions := &fakeActions{}
	b := NewBuyer(state, actions, BuyerConfig{})

	b.buy(context.Background(), "tool", map[string]bool{"wateringcan": true}, nil)

	testutil.AssertEqual(t, "nothing bought", len(actions.callList()), 0)
}

func TestBuyer_EggPriorityOrderAndPlanting(t *testing.T) {
	state := newFakeState()
	state.shops["egg"] = mirror.ShopSnapshot{
		Inventory: []mirror.ShopItem{
			{ID: "commonegg", CurrentStock: 1, InitialStock: 1},
			{ID: "rareegg", CurrentStock: 1, InitialStock: 1},
		},
	}

	actions := &fakeActions{}
	b := NewBuyer(state, actions, BuyerConfig{})

	targets := map[string]bool{"commonegg": true, "rareegg": true}
	b.buy(context.Background(), "egg", targets, []string{"rareegg"})

	calls := actions.callList()
	testutil.AssertEqual(t, "call count", len(calls), 4)
	testutil.AssertEqual(t, "priority egg first", calls[0], "buy egg rareegg")
	testutil.AssertEqual(t, "planted after buy", calls[1], "plantegg 0 rareegg")
	testutil.AssertEqual(t, "then common egg", calls[2], "buy egg commonegg")
	testutil.AssertEqual(t, "planted too", calls[3], "plantegg 0 commonegg")
}

func TestBuyer_NextBoundary(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	state := newFakeState()
	state.shops["seed"] = mirror.ShopSnapshot{SecondsUntilRestock: 90}

	b := NewBuyer(state, &fakeActions{}, BuyerConfig{})
	b.now = func() time.Time { return now }

	testutil.AssertEqual(t, "from countdown", b.nextBoundary("seed", 5*time.Minute), now.Add(90*time.Second))
	testutil.AssertEqual(t, "fallback to period", b.nextBoundary("decor", time.Hour), now.Add(time.Hour))
}

func TestBuyer_RestockNudgeTriggersBuy(t *testing.T) {
	state := newFakeState()
	state.shops["seed"] = mirror.ShopSnapshot{
		SecondsUntilRestock: 300,
		Inventory:           []mirror.ShopItem{{ID: "carrot", CurrentStock: 1, InitialStock: 1}},
	}

	actions := &fakeActions{}
	b := NewBuyer(state, actions, BuyerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx, map[string]any{"items": []any{"carrot"}})
	}()

	// Wait for the restock listener to be registered, then fire the edge.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state.mu.Lock()
		n := len(state.restockFns)
		state.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	state.mu.Lock()
	var fns []func(string)
	fns = append(fns, state.restockFns...)
	state.mu.Unlock()
	for _, fn := range fns {
		fn("seed")
	}

	// Initial sweep buys once; the nudge buys again.
	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(actions.callList()) >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	calls := actions.callList()
	if len(calls) < 2 {
		t.Fatalf("expected initial buy plus nudge buy, got %v", calls)
	}
	testutil.AssertEqual(t, "initial buy", calls[0], "buy seed carrot")
	testutil.AssertEqual(t, "nudge buy", calls[1], "buy seed carrot")
}

func TestBuyer_IdlesWithoutTargets(t *testing.T) {
	state := newFakeState()
	state.shops["seed"] = mirror.ShopSnapshot{
		Inventory: []mirror.ShopItem{{ID: "carrot", CurrentStock: 5, InitialStock: 5}},
	}

	actions := &fakeActions{}
	b := NewBuyer(state, actions, BuyerConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	b.Run(ctx, map[string]any{})

	testutil.AssertEqual(t, "no purchases", len(actions.callList()), 0)
}
