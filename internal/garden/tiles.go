package garden

import (
	"time"
)

// Object types a tile can hold.
const (
	ObjectPlant = "plant"
	ObjectEgg   = "egg"
	ObjectDirt  = "dirt"
)

// CropSlot is one growing crop on a plant tile.
type CropSlot struct {
	Species   string
	StartTime time.Time
	EndTime   time.Time
	Mutations []string
}

// Ready reports whether the crop can be harvested at probe time now.
// Readiness is monotonic: once now reaches EndTime it never flips back.
func (c CropSlot) Ready(now time.Time) bool {
	if c.EndTime.IsZero() {
		return false
	}
	return !now.Before(c.EndTime)
}

// Tile is the decoded view of one garden cell.
type Tile struct {
	Slot       int
	ObjectType string
	Species    string
	EggID      string
	Slots      []CropSlot
	MaturedAt  time.Time
}

// Matured reports whether an egg tile is past its hatch timestamp.
func (t Tile) Matured(now time.Time) bool {
	if t.ObjectType != ObjectEgg || t.MaturedAt.IsZero() {
		return false
	}
	return !now.Before(t.MaturedAt)
}

// ParseTile decodes a tile object from its JSON document shape. Returns
// false when the value is not tile-shaped.
func ParseTile(slot int, v any) (Tile, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Tile{}, false
	}
	tile := Tile{
		Slot:       slot,
		ObjectType: asString(obj["objectType"]),
		Species:    asString(obj["species"]),
		EggID:      asString(obj["eggId"]),
		MaturedAt:  msTime(obj["maturedAt"]),
	}
	if tile.ObjectType == "" {
		return Tile{}, false
	}
	if raw, ok := obj["slots"].([]any); ok {
		tile.Slots = make([]CropSlot, 0, len(raw))
		for _, e := range raw {
			if cs, ok := parseCropSlot(e); ok {
				tile.Slots = append(tile.Slots, cs)
			}
		}
	}
	return tile, true
}

func parseCropSlot(v any) (CropSlot, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return CropSlot{}, false
	}
	cs := CropSlot{
		Species:   asString(obj["species"]),
		StartTime: msTime(obj["startTime"]),
		EndTime:   msTime(obj["endTime"]),
	}
	if raw, ok := obj["mutations"].([]any); ok {
		for _, m := range raw {
			if s := asString(m); s != "" {
				cs.Mutations = append(cs.Mutations, s)
			}
		}
	}
	return cs, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// msTime converts a JSON millisecond epoch timestamp. Zero or missing
// values yield the zero time.
func msTime(v any) time.Time {
	f, ok := v.(float64)
	if !ok || f == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(f))
}
