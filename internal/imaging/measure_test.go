package imaging

import (
	"image"
	"testing"
)

func TestMeasure(t *testing.T) {
	m, _ := MaskFromRows(
		"......",
		"..##..",
		"..#...",
		"......",
	)
	stats := Measure(m)

	if stats.Ink != 3 {
		t.Errorf("ink: got %d, want 3", stats.Ink)
	}
	if stats.Bounds != image.Rect(2, 1, 4, 3) {
		t.Errorf("bounds: got %v, want (2,1)-(4,3)", stats.Bounds)
	}
	if stats.Coverage != 3.0/24.0 {
		t.Errorf("coverage: got %v, want %v", stats.Coverage, 3.0/24.0)
	}
}

func TestMeasure_Empty(t *testing.T) {
	stats := Measure(NewMask(5, 5))
	if stats.Ink != 0 || !stats.Bounds.Empty() || stats.Coverage != 0 {
		t.Errorf("unexpected stats for empty mask: %+v", stats)
	}

	zero := Measure(NewMask(0, 0))
	if zero.Coverage != 0 {
		t.Errorf("zero-size mask coverage: got %v", zero.Coverage)
	}
}
