// Package loops holds the four autonomous controllers: feeder, hatcher,
// harvester and buyer. Each loop reads the state mirror, decides actions
// from its declarative options (diet lists, priority lists, mutation
// expressions) and hands them to the dispatcher. Loops never write state
// directly; the only writes flow back through the game server as patches.
package loops

import (
	"context"
	"sort"
	"time"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/patchgarden/gardener/internal/store"
)

// GameState is the read surface of the state mirror.
type GameState interface {
	Ready() bool
	Garden() map[int]garden.Tile
	Tile(slot int) (garden.Tile, bool)
	FreeSlot() (int, bool)
	Inventory() []mirror.Item
	InventoryItem(id string) (mirror.Item, bool)
	PetSlots() []mirror.PetSlot
	Shop(kind string) (mirror.ShopSnapshot, bool)
	AwaitUpdate(ctx context.Context, timeout time.Duration) bool
	OnRestock(fn func(kind string))
}

// Actions is the dispatcher surface the loops act through.
type Actions interface {
	FeedPet(ctx context.Context, petID, cropItemID string) error
	HarvestCrop(ctx context.Context, slot, slotIndex int) error
	PlantSeed(ctx context.Context, slot int, species string) error
	PlantEgg(ctx context.Context, slot int, eggID string) error
	HatchEgg(ctx context.Context, slot int) error
	SellPet(ctx context.Context, itemID string) error
	SellAllCrops(ctx context.Context) error
	Purchase(ctx context.Context, kind, id string) error
}

// ConfigStore is the slice of the persistence server the loops consume.
type ConfigStore interface {
	PetDiets(ctx context.Context) (map[string]store.PetDiet, error)
	RemoveInventoryID(ctx context.Context, id string) error
	Log(ctx context.Context, line string) error
}

// sortedSlots returns the tile ids of a garden view in ascending order so
// scans are deterministic.
func sortedSlots(tiles map[int]garden.Tile) []int {
	slots := make([]int, 0, len(tiles))
	for slot := range tiles {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}
