package loops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/patchgarden/gardener/internal/rules"
	"github.com/pixil98/go-log"
)

type HatcherConfig struct {
	Interval     time.Duration
	AwaitTimeout time.Duration
}

func (c *HatcherConfig) fillDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.AwaitTimeout <= 0 {
		c.AwaitTimeout = 2 * time.Second
	}
}

// Hatcher hatches matured eggs, replants the freed tiles from the egg
// inventory by priority, and optionally culls hatched pets that fail the
// keep expression.
type Hatcher struct {
	state   GameState
	actions Actions
	config  ConfigStore
	cfg     HatcherConfig
	now     func() time.Time
}

func NewHatcher(state GameState, actions Actions, config ConfigStore, cfg HatcherConfig) *Hatcher {
	cfg.fillDefaults()
	return &Hatcher{
		state:   state,
		actions: actions,
		config:  config,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (h *Hatcher) Run(ctx context.Context, opts map[string]any) {
	cfg := h.cfg
	cfg.Interval = optDuration(opts, "intervalMs", cfg.Interval)
	eggPriority := optStrings(opts, "eggPriority")
	keepExpr := optString(opts, "keepExpr", "")
	sell := optBool(opts, "sell", false)

	keep := rules.Compile(keepExpr)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		h.tick(ctx, cfg, eggPriority, keepExpr, keep, sell)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Hatcher) tick(ctx context.Context, cfg HatcherConfig, eggPriority []string, keepExpr string, keep rules.Predicate, sell bool) {
	logger := log.GetLogger(ctx)

	if !h.state.Ready() {
		return
	}

	hatched := h.hatchMatured(ctx, cfg)
	for i := 0; i < hatched; i++ {
		if !h.replantEgg(ctx, cfg, eggPriority) {
			break
		}
	}
	if hatched > 0 {
		if err := h.config.Log(ctx, fmt.Sprintf("hatcher: hatched %d eggs", hatched)); err != nil {
			logger.WithError(err).Debug("writing action log")
		}
	}

	if sell && keepExpr != "" {
		h.cullPets(ctx, keep)
	}
}

func (h *Hatcher) hatchMatured(ctx context.Context, cfg HatcherConfig) int {
	logger := log.GetLogger(ctx)
	now := h.now()
	tiles := h.state.Garden()

	hatched := 0
	for _, slot := range sortedSlots(tiles) {
		if ctx.Err() != nil {
			return hatched
		}
		tile := tiles[slot]
		if tile.ObjectType != garden.ObjectEgg || !tile.Matured(now) {
			continue
		}
		if err := h.actions.HatchEgg(ctx, slot); err != nil {
			logger.WithError(err).Warnf("hatching slot %d", slot)
			continue
		}
		h.state.AwaitUpdate(ctx, cfg.AwaitTimeout)
		hatched++
	}
	return hatched
}

// replantEgg plants one egg from inventory into a free tile. Priority ids
// first, then any egg.
func (h *Hatcher) replantEgg(ctx context.Context, cfg HatcherConfig, priority []string) bool {
	logger := log.GetLogger(ctx)

	egg, ok := h.pickEgg(priority)
	if !ok {
		return false
	}
	slot, ok := h.state.FreeSlot()
	if !ok {
		return false
	}
	if err := h.actions.PlantEgg(ctx, slot, eggID(egg)); err != nil {
		logger.WithError(err).Warnf("planting egg into slot %d", slot)
		return false
	}
	h.state.AwaitUpdate(ctx, cfg.AwaitTimeout)
	return true
}

func (h *Hatcher) pickEgg(priority []string) (mirror.Item, bool) {
	items := h.state.Inventory()
	for _, want := range priority {
		for _, item := range items {
			if item.Kind == mirror.ItemEgg && strings.EqualFold(eggID(item), want) {
				return item, true
			}
		}
	}
	for _, item := range items {
		if item.Kind == mirror.ItemEgg {
			return item, true
		}
	}
	return mirror.Item{}, false
}

// cullPets sells every pet in the inventory whose mutation set fails the
// keep expression.
func (h *Hatcher) cullPets(ctx context.Context, keep rules.Predicate) {
	logger := log.GetLogger(ctx)

	for _, item := range h.state.Inventory() {
		if ctx.Err() != nil {
			return
		}
		if item.Kind != mirror.ItemPet {
			continue
		}
		if keep(rules.NormalizeTags(item.Mutations)) {
			continue
		}
		if err := h.actions.SellPet(ctx, item.ID); err != nil {
			logger.WithError(err).Warnf("selling pet %s", item.ID)
			continue
		}
		logger.Infof("sold pet %s (%s, mutations %v)", item.ID, item.Species, item.Mutations)
	}
}

func eggID(item mirror.Item) string {
	if item.EggID != "" {
		return item.EggID
	}
	return item.ID
}
