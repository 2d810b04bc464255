package loops

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/patchgarden/gardener/internal/protocol"
	"github.com/pixil98/go-log"
)

// Fixed restock periods per shop kind.
var restockPeriods = map[string]time.Duration{
	protocol.ShopSeed:  5 * time.Minute,
	protocol.ShopEgg:   10 * time.Minute,
	protocol.ShopTool:  15 * time.Minute,
	protocol.ShopDecor: 60 * time.Minute,
}

type BuyerConfig struct {
	AwaitTimeout time.Duration
	Periods      map[string]time.Duration
}

func (c *BuyerConfig) fillDefaults() {
	if c.AwaitTimeout <= 0 {
		c.AwaitTimeout = 2 * time.Second
	}
	if c.Periods == nil {
		c.Periods = restockPeriods
	}
}

// Buyer clears targeted shop stock on every restock. Each shop kind gets
// its own schedule: the first boundary comes from the mirrored countdown,
// later ones advance by the kind's fixed period with drift correction
// against the wall clock. A mirrored restock edge nudges the schedule so a
// server-side reset is not missed.
type Buyer struct {
	state   GameState
	actions Actions
	cfg     BuyerConfig
	now     func() time.Time
}

func NewBuyer(state GameState, actions Actions, cfg BuyerConfig) *Buyer {
	cfg.fillDefaults()
	return &Buyer{
		state:   state,
		actions: actions,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (b *Buyer) Run(ctx context.Context, opts map[string]any) {
	targets := optSet(opts, "items")
	eggPriority := optStrings(opts, "eggPriority")

	if len(targets) == 0 {
		log.GetLogger(ctx).Warn("buyer started with no target items, idling")
		<-ctx.Done()
		return
	}

	nudges := map[string]chan struct{}{}
	for _, kind := range protocol.ShopKinds() {
		nudges[kind] = make(chan struct{}, 1)
	}
	b.state.OnRestock(func(kind string) {
		if ctx.Err() != nil {
			return
		}
		if ch, ok := nudges[kind]; ok {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	})

	// Initial sweep in canonical order before the per-kind schedules
	// take over.
	for _, kind := range protocol.ShopKinds() {
		if ctx.Err() != nil {
			return
		}
		b.buy(ctx, kind, targets, eggPriority)
	}

	var wg sync.WaitGroup
	for _, kind := range protocol.ShopKinds() {
		kind := kind
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.runSchedule(ctx, kind, targets, eggPriority, nudges[kind])
		}()
	}
	wg.Wait()
}

func (b *Buyer) runSchedule(ctx context.Context, kind string, targets map[string]bool, eggPriority []string, nudge <-chan struct{}) {
	period := b.cfg.Periods[kind]
	next := b.nextBoundary(kind, period)

	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-nudge:
			timer.Stop()
			b.buy(ctx, kind, targets, eggPriority)
			next = b.nextBoundary(kind, period)
			continue
		case <-timer.C:
		}

		b.buy(ctx, kind, targets, eggPriority)

		// Fixed-period advance; catch up if the process slept past
		// one or more boundaries.
		next = next.Add(period)
		for !next.After(b.now()) {
			next = next.Add(period)
		}
	}
}

// nextBoundary derives the first restock boundary from the mirrored
// countdown, falling back to one full period when the shop is unknown.
func (b *Buyer) nextBoundary(kind string, period time.Duration) time.Time {
	if shop, ok := b.state.Shop(kind); ok && shop.SecondsUntilRestock > 0 {
		return b.now().Add(time.Duration(shop.SecondsUntilRestock * float64(time.Second)))
	}
	return b.now().Add(period)
}

func (b *Buyer) buy(ctx context.Context, kind string, targets map[string]bool, eggPriority []string) {
	logger := log.GetLogger(ctx)

	shop, ok := b.state.Shop(kind)
	if !ok {
		return
	}

	entries := shop.Inventory
	if kind == protocol.ShopEgg {
		entries = orderByPriority(entries, eggPriority)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if !targets[strings.ToLower(entry.ID)] || entry.CurrentStock <= 0 {
			continue
		}
		for i := 0; i < entry.CurrentStock; i++ {
			if err := b.actions.Purchase(ctx, kind, entry.ID); err != nil {
				logger.WithError(err).Warnf("buying %s from %s shop", entry.ID, kind)
				break
			}
			if kind == protocol.ShopEgg {
				b.plantPurchasedEgg(ctx, entry.ID)
			}
		}
		logger.Infof("bought %d %s from %s shop", entry.CurrentStock, entry.ID, kind)
	}
}

// plantPurchasedEgg drops a just-bought egg into the first free tile, if
// any.
func (b *Buyer) plantPurchasedEgg(ctx context.Context, eggID string) {
	logger := log.GetLogger(ctx)

	slot, ok := b.state.FreeSlot()
	if !ok {
		return
	}
	if err := b.actions.PlantEgg(ctx, slot, eggID); err != nil {
		logger.WithError(err).Warnf("planting purchased egg %s", eggID)
		return
	}
	b.state.AwaitUpdate(ctx, b.cfg.AwaitTimeout)
}

// orderByPriority puts priority ids first, in list order, leaving the rest
// in shop order.
func orderByPriority(entries []mirror.ShopItem, priority []string) []mirror.ShopItem {
	if len(priority) == 0 {
		return entries
	}
	out := make([]mirror.ShopItem, 0, len(entries))
	used := make([]bool, len(entries))
	for _, want := range priority {
		for i, entry := range entries {
			if !used[i] && strings.EqualFold(entry.ID, want) {
				out = append(out, entry)
				used[i] = true
			}
		}
	}
	for i, entry := range entries {
		if !used[i] {
			out = append(out, entry)
		}
	}
	return out
}
