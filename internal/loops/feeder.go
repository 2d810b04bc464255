package loops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/patchgarden/gardener/internal/store"
	"github.com/pixil98/go-log"
)

// Terminal reasons for one pet's feeding session.
const (
	feedMaxed   = "maxed"
	feedNoFood  = "no-food"
	feedStalled = "stalled"
	feedDropped = "send-failed"
)

type FeederConfig struct {
	Interval         time.Duration
	HungerThreshold  float64
	Padding          float64
	DefaultMaxHunger float64
	StallLimit       int
	StaleLimit       int
	AwaitTimeout     time.Duration
	MaxSteps         int
}

func (c *FeederConfig) fillDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.HungerThreshold <= 0 {
		c.HungerThreshold = 400
	}
	if c.Padding <= 0 {
		c.Padding = 10
	}
	if c.DefaultMaxHunger <= 0 {
		c.DefaultMaxHunger = 500
	}
	if c.StallLimit <= 0 {
		c.StallLimit = 2
	}
	if c.StaleLimit <= 0 {
		c.StaleLimit = 3
	}
	if c.AwaitTimeout <= 0 {
		c.AwaitTimeout = 2 * time.Second
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = 50
	}
}

// Feeder keeps every pet's hunger topped up. Each tick it fetches the diet
// config, and for each hungry pet feeds diet-ordered inventory produce,
// harvesting a matching crop when the pantry is empty. A session ends when
// the pet is full, no food is obtainable, or feeding stops moving the
// hunger number.
type Feeder struct {
	state   GameState
	actions Actions
	config  ConfigStore
	cfg     FeederConfig
}

func NewFeeder(state GameState, actions Actions, config ConfigStore, cfg FeederConfig) *Feeder {
	cfg.fillDefaults()
	return &Feeder{
		state:   state,
		actions: actions,
		config:  config,
		cfg:     cfg,
	}
}

func (f *Feeder) Run(ctx context.Context, opts map[string]any) {
	cfg := f.cfg
	cfg.Interval = optDuration(opts, "intervalMs", cfg.Interval)
	cfg.HungerThreshold = optFloat(opts, "hungerThreshold", cfg.HungerThreshold)
	cfg.StallLimit = optInt(opts, "stallLimit", cfg.StallLimit)
	cfg.StaleLimit = optInt(opts, "staleLimit", cfg.StaleLimit)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		f.tick(ctx, cfg)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (f *Feeder) tick(ctx context.Context, cfg FeederConfig) {
	logger := log.GetLogger(ctx)

	if !f.state.Ready() {
		return
	}

	diets, err := f.config.PetDiets(ctx)
	if err != nil {
		logger.WithError(err).Warn("fetching pet diets")
		return
	}

	for _, pet := range f.state.PetSlots() {
		if ctx.Err() != nil {
			return
		}
		diet, ok := diets[pet.ID]
		if !ok || len(diet.Diets) == 0 {
			continue
		}
		if pet.Hunger >= cfg.HungerThreshold {
			continue
		}
		out := f.feedPet(ctx, pet.ID, diet, cfg)
		logger.Infof("fed pet %s: %s after %d feeds, hunger %.0f", pet.ID, out.reason, out.steps, out.hunger)
		if err := f.config.Log(ctx, fmt.Sprintf("feeder: pet %s %s (%d feeds, hunger %.0f)", pet.ID, out.reason, out.steps, out.hunger)); err != nil {
			logger.WithError(err).Debug("writing action log")
		}
	}
}

type feedOutcome struct {
	reason string
	steps  int
	hunger float64
}

func (f *Feeder) feedPet(ctx context.Context, petID string, diet store.PetDiet, cfg FeederConfig) feedOutcome {
	logger := log.GetLogger(ctx)

	maxHunger := float64(diet.MaxHunger)
	if maxHunger <= 0 {
		maxHunger = cfg.DefaultMaxHunger
	}
	target := maxHunger - cfg.Padding

	skip := map[string]bool{}
	failCount := map[string]int{}
	stalls := 0
	steps := 0

	for steps < cfg.MaxSteps && ctx.Err() == nil {
		pet, ok := f.pet(petID)
		if !ok {
			return feedOutcome{reason: feedNoFood, steps: steps}
		}
		if pet.Hunger >= target {
			return feedOutcome{reason: feedMaxed, steps: steps, hunger: pet.Hunger}
		}

		item, ok := f.pickFood(diet.Diets, skip)
		if !ok {
			steps++
			if !f.harvestDietCrop(ctx, diet.Diets, cfg) {
				return feedOutcome{reason: feedNoFood, steps: steps, hunger: pet.Hunger}
			}
			continue
		}

		steps++
		if err := f.actions.FeedPet(ctx, petID, item.ID); err != nil {
			logger.WithError(err).Warnf("feeding pet %s", petID)
			return feedOutcome{reason: feedDropped, steps: steps, hunger: pet.Hunger}
		}
		f.state.AwaitUpdate(ctx, cfg.AwaitTimeout)

		// An item id that survives the feed means the server rejected
		// or never saw it. After StaleLimit consecutive misses the id
		// is flagged for removal once and skipped from then on.
		if _, still := f.state.InventoryItem(item.ID); still {
			failCount[item.ID]++
			if failCount[item.ID] >= cfg.StaleLimit && !skip[item.ID] {
				skip[item.ID] = true
				logger.Warnf("inventory item %s is stale, flagging for removal", item.ID)
				if err := f.config.RemoveInventoryID(ctx, item.ID); err != nil {
					logger.WithError(err).Warn("flagging stale item")
				}
			}
			continue
		}

		after, ok := f.pet(petID)
		if !ok {
			return feedOutcome{reason: feedNoFood, steps: steps}
		}
		if after.Hunger > pet.Hunger {
			stalls = 0
			continue
		}
		stalls++
		if stalls >= cfg.StallLimit {
			return feedOutcome{reason: feedStalled, steps: steps, hunger: after.Hunger}
		}
	}

	hunger := 0.0
	if pet, ok := f.pet(petID); ok {
		hunger = pet.Hunger
	}
	return feedOutcome{reason: feedStalled, steps: steps, hunger: hunger}
}

func (f *Feeder) pet(id string) (mirror.PetSlot, bool) {
	for _, pet := range f.state.PetSlots() {
		if pet.ID == id {
			return pet, true
		}
	}
	return mirror.PetSlot{}, false
}

// pickFood returns the first produce item whose species appears in the
// diet, honoring diet order.
func (f *Feeder) pickFood(diet []string, skip map[string]bool) (mirror.Item, bool) {
	items := f.state.Inventory()
	for _, species := range diet {
		for _, item := range items {
			if skip[item.ID] || item.Kind != mirror.ItemProduce {
				continue
			}
			if strings.EqualFold(item.Species, species) {
				return item, true
			}
		}
	}
	return mirror.Item{}, false
}

// harvestDietCrop harvests one ready crop of the first diet species that
// has one, so the next pick finds food. Returns false when no diet species
// has a ready crop.
func (f *Feeder) harvestDietCrop(ctx context.Context, diet []string, cfg FeederConfig) bool {
	logger := log.GetLogger(ctx)
	now := time.Now()
	tiles := f.state.Garden()

	for _, species := range diet {
		for _, slot := range sortedSlots(tiles) {
			tile := tiles[slot]
			if tile.ObjectType != garden.ObjectPlant || !strings.EqualFold(tile.Species, species) {
				continue
			}
			for idx := len(tile.Slots) - 1; idx >= 0; idx-- {
				if !tile.Slots[idx].Ready(now) {
					continue
				}
				if err := f.actions.HarvestCrop(ctx, slot, idx); err != nil {
					logger.WithError(err).Warnf("harvesting slot %d", slot)
					return false
				}
				f.state.AwaitUpdate(ctx, cfg.AwaitTimeout)
				return true
			}
		}
	}
	return false
}
