package garden

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestCropSlot_ReadyMonotonic(t *testing.T) {
	end := time.UnixMilli(1_700_000_000_000)
	crop := CropSlot{Species: "carrot", EndTime: end}

	probes := []struct {
		at  time.Time
		exp bool
	}{
		{end.Add(-time.Hour), false},
		{end.Add(-time.Millisecond), false},
		{end, true},
		{end.Add(time.Millisecond), true},
		{end.Add(24 * time.Hour), true},
	}
	for _, p := range probes {
		testutil.AssertEqual(t, "ready", crop.Ready(p.at), p.exp)
	}

	// Once ready, later probes never flip back.
	last := false
	for probe := end.Add(-time.Second); probe.Before(end.Add(time.Second)); probe = probe.Add(100 * time.Millisecond) {
		r := crop.Ready(probe)
		if last && !r {
			t.Fatalf("readiness flipped back to false at %v", probe)
		}
		last = r
	}
}

func TestCropSlot_ZeroEndTimeNeverReady(t *testing.T) {
	crop := CropSlot{Species: "carrot"}
	testutil.AssertEqual(t, "ready", crop.Ready(time.Now().Add(1000*time.Hour)), false)
}

func TestParseTile(t *testing.T) {
	tests := map[string]struct {
		value  any
		expOk  bool
		expObj string
		crops  int
	}{
		"plant with crops": {
			value: map[string]any{
				"objectType": "plant",
				"species":    "carrot",
				"slots": []any{
					map[string]any{
						"species":   "carrot",
						"startTime": float64(1000),
						"endTime":   float64(2000),
						"mutations": []any{"Frozen", "Gold"},
					},
				},
			},
			expOk:  true,
			expObj: ObjectPlant,
			crops:  1,
		},
		"egg": {
			value: map[string]any{
				"objectType": "egg",
				"eggId":      "rareegg",
				"maturedAt":  float64(5_000),
			},
			expOk:  true,
			expObj: ObjectEgg,
		},
		"dirt": {
			value:  map[string]any{"objectType": "dirt"},
			expOk:  true,
			expObj: ObjectDirt,
		},
		"not a map": {
			value: "nope",
		},
		"missing object type": {
			value: map[string]any{"species": "carrot"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tile, ok := ParseTile(7, tt.value)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
			if !tt.expOk {
				return
			}
			testutil.AssertEqual(t, "slot", tile.Slot, 7)
			testutil.AssertEqual(t, "object type", tile.ObjectType, tt.expObj)
			testutil.AssertEqual(t, "crop count", len(tile.Slots), tt.crops)
		})
	}
}

func TestTile_Matured(t *testing.T) {
	matured := time.UnixMilli(10_000)
	egg := Tile{ObjectType: ObjectEgg, MaturedAt: matured}

	testutil.AssertEqual(t, "before", egg.Matured(matured.Add(-time.Second)), false)
	testutil.AssertEqual(t, "at", egg.Matured(matured), true)
	testutil.AssertEqual(t, "after", egg.Matured(matured.Add(time.Hour)), true)

	plant := Tile{ObjectType: ObjectPlant, MaturedAt: matured}
	testutil.AssertEqual(t, "plants never mature", plant.Matured(matured.Add(time.Hour)), false)

	pending := Tile{ObjectType: ObjectEgg}
	testutil.AssertEqual(t, "no timestamp", pending.Matured(matured), false)
}
