package garden

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestTileSlot_Bijection(t *testing.T) {
	seen := make(map[int]bool, TileCount)

	for y := 0; y < GridHeight; y++ {
		for x := 0; x < GridWidth; x++ {
			if x == WalkwayColumn {
				if _, err := TileSlot(x, y); err == nil {
					t.Errorf("walkway (%d,%d) should have no slot", x, y)
				}
				continue
			}
			slot, err := TileSlot(x, y)
			if err != nil {
				t.Fatalf("TileSlot(%d,%d): %v", x, y, err)
			}
			if slot < 0 || slot >= TileCount {
				t.Fatalf("slot %d out of range for (%d,%d)", slot, x, y)
			}
			if seen[slot] {
				t.Fatalf("slot %d assigned twice", slot)
			}
			seen[slot] = true

			gx, gy, err := TileCoord(slot)
			if err != nil {
				t.Fatalf("TileCoord(%d): %v", slot, err)
			}
			testutil.AssertEqual(t, "x round trip", gx, x)
			testutil.AssertEqual(t, "y round trip", gy, y)
		}
	}

	testutil.AssertEqual(t, "all slots covered", len(seen), TileCount)

	for slot := 0; slot < TileCount; slot++ {
		x, y, err := TileCoord(slot)
		if err != nil {
			t.Fatalf("TileCoord(%d): %v", slot, err)
		}
		back, err := TileSlot(x, y)
		if err != nil {
			t.Fatalf("TileSlot(%d,%d): %v", x, y, err)
		}
		testutil.AssertEqual(t, "slot round trip", back, slot)
	}
}

func TestTileSlot_Invalid(t *testing.T) {
	tests := map[string]struct{ x, y int }{
		"negative x":  {x: -1, y: 0},
		"negative y":  {x: 0, y: -1},
		"x too large": {x: GridWidth, y: 0},
		"y too large": {x: 0, y: GridHeight},
		"walkway":     {x: WalkwayColumn, y: 5},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := TileSlot(tt.x, tt.y); err == nil {
				t.Errorf("expected error for (%d,%d)", tt.x, tt.y)
			}
		})
	}

	if _, _, err := TileCoord(-1); err == nil {
		t.Error("expected error for slot -1")
	}
	if _, _, err := TileCoord(TileCount); err == nil {
		t.Error("expected error for slot past range")
	}
}
