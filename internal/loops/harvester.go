package loops

import (
	"context"
	"strings"
	"time"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/rules"
	"github.com/pixil98/go-log"
)

type HarvesterConfig struct {
	Interval     time.Duration
	AwaitTimeout time.Duration
}

func (c *HarvesterConfig) fillDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.AwaitTimeout <= 0 {
		c.AwaitTimeout = 2 * time.Second
	}
}

// Harvester collects every ready crop whose species passes the allow-list
// and whose mutations pass the harvest expression, replants species on the
// replant list, and optionally sells the haul afterwards.
type Harvester struct {
	state   GameState
	actions Actions
	cfg     HarvesterConfig
	now     func() time.Time
}

func NewHarvester(state GameState, actions Actions, cfg HarvesterConfig) *Harvester {
	cfg.fillDefaults()
	return &Harvester{
		state:   state,
		actions: actions,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (h *Harvester) Run(ctx context.Context, opts map[string]any) {
	cfg := h.cfg
	cfg.Interval = optDuration(opts, "intervalMs", cfg.Interval)
	speciesFilter := optSet(opts, "speciesFilter")
	replant := optSet(opts, "replantSpecies")
	sell := optBool(opts, "sell", false)

	// No expression means no mutation constraint: readiness alone decides.
	exprText := optString(opts, "mutationExpr", "")
	pred := rules.Compile(exprText)
	if exprText == "" {
		pred = func(rules.TagSet) bool { return true }
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		h.tick(ctx, cfg, speciesFilter, replant, sell, pred)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Harvester) tick(ctx context.Context, cfg HarvesterConfig, speciesFilter, replant map[string]bool, sell bool, pred rules.Predicate) {
	logger := log.GetLogger(ctx)

	if !h.state.Ready() {
		return
	}

	now := h.now()
	tiles := h.state.Garden()
	harvested := 0

	for _, slot := range sortedSlots(tiles) {
		if ctx.Err() != nil {
			return
		}
		tile := tiles[slot]
		if tile.ObjectType != garden.ObjectPlant {
			continue
		}
		species := strings.ToLower(tile.Species)
		if speciesFilter != nil && !speciesFilter[species] {
			continue
		}

		// Reverse index order so earlier splices do not shift the
		// indices still to be harvested.
		for idx := len(tile.Slots) - 1; idx >= 0; idx-- {
			crop := tile.Slots[idx]
			if !crop.Ready(now) {
				continue
			}
			if !pred(rules.NormalizeTags(crop.Mutations)) {
				continue
			}
			if err := h.actions.HarvestCrop(ctx, slot, idx); err != nil {
				logger.WithError(err).Warnf("harvesting slot %d index %d", slot, idx)
				continue
			}
			harvested++
			h.state.AwaitUpdate(ctx, cfg.AwaitTimeout)
		}

		if replant[species] {
			h.replant(ctx, cfg, slot, tile.Species)
		}
	}

	if harvested > 0 {
		logger.Infof("harvested %d crops", harvested)
	}
	if sell && harvested > 0 {
		if err := h.actions.SellAllCrops(ctx); err != nil {
			logger.WithError(err).Warn("selling crops")
		}
	}
}

// replant re-seeds a tile once harvesting has emptied it.
func (h *Harvester) replant(ctx context.Context, cfg HarvesterConfig, slot int, species string) {
	logger := log.GetLogger(ctx)

	tile, ok := h.state.Tile(slot)
	if ok && tile.ObjectType == garden.ObjectPlant && len(tile.Slots) > 0 {
		return
	}
	if err := h.actions.PlantSeed(ctx, slot, species); err != nil {
		logger.WithError(err).Warnf("replanting %s into slot %d", species, slot)
		return
	}
	h.state.AwaitUpdate(ctx, cfg.AwaitTimeout)
}
