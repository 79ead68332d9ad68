package domain

import "testing"

func TestNormalize_InRangeBoxUntouched(t *testing.T) {
	b := Bounds{MinLat: 10, MinLon: 20, MaxLat: 11, MaxLon: 21}
	boxes := b.Normalize()
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if boxes[0] != b {
		t.Errorf("box changed: %+v", boxes[0])
	}
}

func TestNormalize_SplitsEastOverflow(t *testing.T) {
	// Query box around lon 179.9995 spilling past +180
	b := Bounds{MinLat: -1, MinLon: 179.99, MaxLat: 1, MaxLon: 180.01}
	boxes := b.Normalize()
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}

	west, east := boxes[0], boxes[1]
	if west.MinLon != 179.99 || west.MaxLon != 180 {
		t.Errorf("unexpected west range: [%f, %f]", west.MinLon, west.MaxLon)
	}
	if east.MinLon != -180 || east.MaxLon >= -179.98 {
		t.Errorf("unexpected east range: [%f, %f]", east.MinLon, east.MaxLon)
	}
	for _, b := range boxes {
		if b.MinLat != -1 || b.MaxLat != 1 {
			t.Errorf("latitude range must be preserved: %+v", b)
		}
	}
}

func TestNormalize_SplitsWestOverflow(t *testing.T) {
	b := Bounds{MinLat: -1, MinLon: -180.01, MaxLat: 1, MaxLon: -179.99}
	boxes := b.Normalize()
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if boxes[0].MaxLon != 180 {
		t.Errorf("wrapped range must end at 180, got %f", boxes[0].MaxLon)
	}
	if boxes[1].MinLon != -180 || boxes[1].MaxLon != -179.99 {
		t.Errorf("unexpected east range: [%f, %f]", boxes[1].MinLon, boxes[1].MaxLon)
	}
}

func TestNormalize_FullCircleAndPoles(t *testing.T) {
	// Near-pole boxes can exceed the full longitude circle
	b := Bounds{MinLat: 89, MinLon: -400, MaxLat: 95, MaxLon: 400}
	boxes := b.Normalize()
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	got := boxes[0]
	if got.MinLon != -180 || got.MaxLon != 180 {
		t.Errorf("expected full longitude range, got [%f, %f]", got.MinLon, got.MaxLon)
	}
	if got.MaxLat != 90 {
		t.Errorf("latitude must be clamped to 90, got %f", got.MaxLat)
	}
}
