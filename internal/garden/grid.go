package garden

import "fmt"

// The garden is two 10x10 plots separated by a walkway column the game
// reserves for player movement. Coordinates span x 0..20 (skipping the
// walkway at x=10) and y 0..9; tile slot ids are 0..199, row-major with the
// right-hand plot shifted left across the gap.
const (
	GridWidth      = 21
	GridHeight     = 10
	WalkwayColumn  = 10
	TileCount      = 200
	plotRowWidth   = GridWidth - 1
)

// TileSlot maps a garden coordinate to its slot id. The mapping is a
// bijection over valid coordinates; the walkway column has no slot.
func TileSlot(x, y int) (int, error) {
	if x < 0 || x >= GridWidth || y < 0 || y >= GridHeight {
		return 0, fmt.Errorf("coordinate (%d,%d) outside garden", x, y)
	}
	if x == WalkwayColumn {
		return 0, fmt.Errorf("column %d is the walkway", x)
	}
	col := x
	if x > WalkwayColumn {
		col--
	}
	return y*plotRowWidth + col, nil
}

// TileCoord inverts TileSlot.
func TileCoord(slot int) (x, y int, err error) {
	if slot < 0 || slot >= TileCount {
		return 0, 0, fmt.Errorf("slot %d outside garden", slot)
	}
	y = slot / plotRowWidth
	x = slot % plotRowWidth
	if x >= WalkwayColumn {
		x++
	}
	return x, y, nil
}
