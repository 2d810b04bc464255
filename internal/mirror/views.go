package mirror

import (
	"strconv"

	"github.com/patchgarden/gardener/internal/garden"
	"github.com/patchgarden/gardener/internal/statedoc"
)

// Inventory item kinds.
const (
	ItemProduce = "Produce"
	ItemPet     = "Pet"
	ItemEgg     = "Egg"
	ItemSeed    = "Seed"
	ItemTool    = "Tool"
	ItemDecor   = "Decor"
)

// Item is the decoded view of one inventory entry.
type Item struct {
	ID        string
	Kind      string
	Species   string
	ToolID    string
	EggID     string
	DecorID   string
	Mutations []string
	Quantity  int
}

// PetSlot is the decoded view of one active pet. MaxHunger is not part of
// the live document; it comes from the diet config on the persistence
// server.
type PetSlot struct {
	ID     string
	Hunger float64
	XP     float64
}

// ShopItem is one purchasable entry in a shop snapshot.
type ShopItem struct {
	ID           string
	CurrentStock int
	InitialStock int
}

// ShopSnapshot is the decoded view of one shop kind.
type ShopSnapshot struct {
	SecondsUntilRestock float64
	Inventory           []ShopItem
}

// Garden returns a deep copy of the tile cache keyed by slot id, or nil
// before Welcome.
func (m *Mirror) Garden() map[int]garden.Tile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tiles == nil {
		return nil
	}
	out := make(map[int]garden.Tile, len(m.tiles))
	for slot, tile := range m.tiles {
		out[slot] = copyTile(tile)
	}
	return out
}

// Tile returns one garden tile by slot id.
func (m *Mirror) Tile(slot int) (garden.Tile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tile, ok := m.tiles[slot]
	if !ok {
		return garden.Tile{}, false
	}
	return copyTile(tile), true
}

// FreeSlot scans tile ids in order and returns the first with nothing
// planted. The second return is false when the garden is full or unknown.
func (m *Mirror) FreeSlot() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return 0, false
	}
	for slot := 0; slot < garden.TileCount; slot++ {
		tile, ok := m.tiles[slot]
		if !ok || tile.ObjectType == garden.ObjectDirt {
			return slot, true
		}
	}
	return 0, false
}

// Inventory returns a deep copy of the inventory cache, or nil before
// Welcome.
func (m *Mirror) Inventory() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.items == nil {
		return nil
	}
	out := make([]Item, len(m.items))
	for i, it := range m.items {
		out[i] = copyItem(it)
	}
	return out
}

// InventoryItem finds an item by id.
func (m *Mirror) InventoryItem(id string) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items {
		if it.ID == id {
			return copyItem(it), true
		}
	}
	return Item{}, false
}

// PetSlots returns all active pets.
func (m *Mirror) PetSlots() []PetSlot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PetSlot, len(m.pets))
	copy(out, m.pets)
	return out
}

// PetSlot returns the pet at slot index i.
func (m *Mirror) PetSlot(i int) (PetSlot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.pets) {
		return PetSlot{}, false
	}
	return m.pets[i], true
}

// Shops returns a deep copy of the shop snapshots keyed by kind, or nil
// before Welcome.
func (m *Mirror) Shops() map[string]ShopSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.shops == nil {
		return nil
	}
	out := make(map[string]ShopSnapshot, len(m.shops))
	for kind, shop := range m.shops {
		out[kind] = copyShop(shop)
	}
	return out
}

// Shop returns the snapshot for one kind.
func (m *Mirror) Shop(kind string) (ShopSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shop, ok := m.shops[kind]
	if !ok {
		return ShopSnapshot{}, false
	}
	return copyShop(shop), true
}

func copyTile(t garden.Tile) garden.Tile {
	out := t
	if t.Slots != nil {
		out.Slots = make([]garden.CropSlot, len(t.Slots))
		for i, cs := range t.Slots {
			out.Slots[i] = cs
			if cs.Mutations != nil {
				out.Slots[i].Mutations = append([]string(nil), cs.Mutations...)
			}
		}
	}
	return out
}

func copyItem(it Item) Item {
	out := it
	if it.Mutations != nil {
		out.Mutations = append([]string(nil), it.Mutations...)
	}
	return out
}

func copyShop(s ShopSnapshot) ShopSnapshot {
	out := s
	if s.Inventory != nil {
		out.Inventory = append([]ShopItem(nil), s.Inventory...)
	}
	return out
}

// Cache rebuilds. Callers hold the write lock; each rebuild re-derives its
// view straight from the patched document subtree so reads never traverse
// the document itself.

func (m *Mirror) rebuildGarden() {
	m.tiles = map[int]garden.Tile{}
	raw, ok := statedoc.Get(m.doc, statedoc.Pointer{keyGarden, keyTileObjects})
	if !ok {
		return
	}
	objects, ok := raw.(map[string]any)
	if !ok {
		return
	}
	for key, v := range objects {
		slot, err := strconv.Atoi(key)
		if err != nil || slot < 0 || slot >= garden.TileCount {
			continue
		}
		if tile, ok := garden.ParseTile(slot, v); ok {
			m.tiles[slot] = tile
		}
	}
}

func (m *Mirror) rebuildInventory() {
	m.items = []Item{}
	raw, ok := statedoc.Get(m.doc, statedoc.Pointer{keyInventory, keyItems})
	if !ok {
		return
	}
	list, ok := raw.([]any)
	if !ok {
		return
	}
	for _, v := range list {
		if it, ok := parseItem(v); ok {
			m.items = append(m.items, it)
		}
	}
}

func (m *Mirror) rebuildPets() {
	m.pets = nil
	raw, ok := statedoc.Get(m.doc, statedoc.Pointer{keyPetSlots})
	if !ok {
		return
	}
	list, ok := raw.([]any)
	if !ok {
		return
	}
	for _, v := range list {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		if id == "" {
			continue
		}
		m.pets = append(m.pets, PetSlot{
			ID:     id,
			Hunger: asNumber(obj["hunger"]),
			XP:     asNumber(obj["xp"]),
		})
	}
}

func (m *Mirror) rebuildShops() {
	m.shops = map[string]ShopSnapshot{}
	raw, ok := statedoc.Get(m.doc, statedoc.Pointer{keyShops})
	if !ok {
		return
	}
	shops, ok := raw.(map[string]any)
	if !ok {
		return
	}
	for kind, v := range shops {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		snap := ShopSnapshot{
			SecondsUntilRestock: asNumber(obj["secondsUntilRestock"]),
		}
		if inv, ok := obj["inventory"].([]any); ok {
			for _, e := range inv {
				entry, ok := e.(map[string]any)
				if !ok {
					continue
				}
				id := itemName(entry)
				if id == "" {
					continue
				}
				snap.Inventory = append(snap.Inventory, ShopItem{
					ID:           id,
					CurrentStock: int(asNumber(entry["currentStock"])),
					InitialStock: int(asNumber(entry["initialStock"])),
				})
			}
		}
		m.shops[kind] = snap
	}
}

func parseItem(v any) (Item, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Item{}, false
	}
	id, _ := obj["id"].(string)
	if id == "" {
		return Item{}, false
	}
	it := Item{
		ID:       id,
		Kind:     str(obj["itemType"]),
		Species:  str(obj["species"]),
		ToolID:   str(obj["toolId"]),
		EggID:    str(obj["eggId"]),
		DecorID:  str(obj["decorId"]),
		Quantity: int(asNumber(obj["quantity"])),
	}
	if raw, ok := obj["mutations"].([]any); ok {
		for _, mu := range raw {
			if s, ok := mu.(string); ok && s != "" {
				it.Mutations = append(it.Mutations, s)
			}
		}
	}
	return it, true
}

// itemName mirrors the name-key preference the shop scanner uses.
func itemName(obj map[string]any) string {
	for _, key := range []string{"id", "species", "toolId", "eggId", "decorId", "displayName", "name"} {
		if s := str(obj[key]); s != "" {
			return s
		}
	}
	return ""
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) float64 {
	f, _ := v.(float64)
	return f
}
