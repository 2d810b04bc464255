package loops

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/patchgarden/gardener/internal/store"
)

type fakeState struct {
	mu         sync.Mutex
	ready      bool
	tiles      map[int]garden.Tile
	items      []mirror.Item
	pets       []mirror.PetSlot
	shops      map[string]mirror.ShopSnapshot
	restockFns []func(string)
}

func newFakeState() *fakeState {
	return &fakeState{
		ready: true,
		tiles: map[int]garden.Tile{},
		shops: map[string]mirror.ShopSnapshot{},
	}
}

func (f *fakeState) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeState) Garden() map[int]garden.Tile {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]garden.Tile, len(f.tiles))
	for slot, tile := range f.tiles {
		out[slot] = tile
	}
	return out
}

func (f *fakeState) Tile(slot int) (garden.Tile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tile, ok := f.tiles[slot]
	return tile, ok
}

func (f *fakeState) FreeSlot() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for slot := 0; slot < garden.TileCount; slot++ {
		if _, ok := f.tiles[slot]; !ok {
			return slot, true
		}
	}
	return 0, false
}

func (f *fakeState) Inventory() []mirror.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mirror.Item(nil), f.items...)
}

func (f *fakeState) InventoryItem(id string) (mirror.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == id {
			return item, true
		}
	}
	return mirror.Item{}, false
}

func (f *fakeState) PetSlots() []mirror.PetSlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mirror.PetSlot(nil), f.pets...)
}

func (f *fakeState) Shop(kind string) (mirror.ShopSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	shop, ok := f.shops[kind]
	return shop, ok
}

func (f *fakeState) AwaitUpdate(context.Context, time.Duration) bool {
	return true
}

func (f *fakeState) OnRestock(fn func(kind string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restockFns = append(f.restockFns, fn)
}

func (f *fakeState) setHunger(petID string, hunger float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.pets {
		if f.pets[i].ID == petID {
			f.pets[i].Hunger = hunger
		}
	}
}

func (f *fakeState) hunger(petID string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pet := range f.pets {
		if pet.ID == petID {
			return pet.Hunger
		}
	}
	return 0
}

func (f *fakeState) removeItem(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}

func (f *fakeState) addItem(item mirror.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
}

func (f *fakeState) deleteTile(slot int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tiles, slot)
}

type fakeActions struct {
	mu    sync.Mutex
	calls []string

	onFeed      func(petID, itemID string) error
	onHarvest   func(slot, idx int) error
	onPlantSeed func(slot int, species string) error
	onPlantEgg  func(slot int, eggID string) error
	onHatch     func(slot int) error
	onSellPet   func(id string) error
	onPurchase  func(kind, id string) error
}

func (f *fakeActions) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeActions) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeActions) FeedPet(_ context.Context, petID, cropItemID string) error {
	f.record(fmt.Sprintf("feed %s %s", petID, cropItemID))
	if f.onFeed != nil {
		return f.onFeed(petID, cropItemID)
	}
	return nil
}

func (f *fakeActions) HarvestCrop(_ context.Context, slot, slotIndex int) error {
	f.record(fmt.Sprintf("harvest %d %d", slot, slotIndex))
	if f.onHarvest != nil {
		return f.onHarvest(slot, slotIndex)
	}
	return nil
}

func (f *fakeActions) PlantSeed(_ context.Context, slot int, species string) error {
	f.record(fmt.Sprintf("plantseed %d %s", slot, species))
	if f.onPlantSeed != nil {
		return f.onPlantSeed(slot, species)
	}
	return nil
}

func (f *fakeActions) PlantEgg(_ context.Context, slot int, eggID string) error {
	f.record(fmt.Sprintf("plantegg %d %s", slot, eggID))
	if f.onPlantEgg != nil {
		return f.onPlantEgg(slot, eggID)
	}
	return nil
}

func (f *fakeActions) HatchEgg(_ context.Context, slot int) error {
	f.record(fmt.Sprintf("hatch %d", slot))
	if f.onHatch != nil {
		return f.onHatch(slot)
	}
	return nil
}

func (f *fakeActions) SellPet(_ context.Context, itemID string) error {
	f.record(fmt.Sprintf("sellpet %s", itemID))
	if f.onSellPet != nil {
		return f.onSellPet(itemID)
	}
	return nil
}

func (f *fakeActions) SellAllCrops(context.Context) error {
	f.record("sellall")
	return nil
}

func (f *fakeActions) Purchase(_ context.Context, kind, id string) error {
	f.record(fmt.Sprintf("buy %s %s", kind, id))
	if f.onPurchase != nil {
		return f.onPurchase(kind, id)
	}
	return nil
}

type fakeStore struct {
	mu       sync.Mutex
	diets    map[string]store.PetDiet
	dietsErr error
	removed  []string
	logs     []string
}

func (f *fakeStore) PetDiets(context.Context) (map[string]store.PetDiet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dietsErr != nil {
		return nil, f.dietsErr
	}
	return f.diets, nil
}

func (f *fakeStore) RemoveInventoryID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeStore) Log(_ context.Context, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, line)
	return nil
}

func (f *fakeStore) removedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}
