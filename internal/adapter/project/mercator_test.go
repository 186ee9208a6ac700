package project

import (
	"math"
	"testing"

	"go.climdata.io/sunshine-api/internal/domain"
)

func testField() *domain.Field {
	lon := make([]float64, 11)
	lat := make([]float64, 11)
	for i := range lon {
		lon[i] = float64(i)      // 0..10°E
		lat[i] = 40 + float64(i) // 40..50°N
	}
	values := make([][]float64, len(lat))
	for i := range values {
		values[i] = make([]float64, len(lon))
		for j := range values[i] {
			values[i][j] = lat[i] // Value equals latitude; easy to check.
		}
	}
	return &domain.Field{Name: "SDU", Units: "hours", Lon: lon, Lat: lat, Values: values}
}

func TestToWebMercator(t *testing.T) {
	p, err := ToWebMercator(testField(), 32, 32)
	if err != nil {
		t.Fatalf("ToWebMercator: %v", err)
	}

	if len(p.Lon) != 32 || len(p.Lat) != 32 {
		t.Fatalf("expected 32x32 target grid, got %dx%d", len(p.Lon), len(p.Lat))
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("projected field invalid: %v", err)
	}

	// 10°E at the equator is ~1113 km in web mercator; the x extent of a
	// 0–10° grid must be close to that regardless of latitude.
	xSpan := p.Lon[len(p.Lon)-1] - p.Lon[0]
	if xSpan < 1.0e6 || xSpan > 1.2e6 {
		t.Errorf("x span out of range: %v m", xSpan)
	}

	// Values come from nearest-neighbor lookup of the source, so every
	// non-missing cell must hold one of the source latitudes.
	for i := range p.Values {
		for j, v := range p.Values[i] {
			if math.IsNaN(v) {
				continue
			}
			if v < 40 || v > 50 || v != math.Round(v) {
				t.Fatalf("cell (%d,%d) = %v is not a source value", i, j, v)
			}
		}
	}

	// Mercator stretches high latitudes: the northern half of the target
	// grid must span fewer source rows per meter, so row values grow
	// monotonically from south to north.
	prev := -math.MaxFloat64
	for i := range p.Values {
		v := p.Values[i][0]
		if math.IsNaN(v) {
			continue
		}
		if v < prev {
			t.Fatalf("row values not south-to-north: %v after %v", v, prev)
		}
		prev = v
	}
}

func TestToWebMercatorRejectsBadInput(t *testing.T) {
	if _, err := ToWebMercator(testField(), 1, 32); err == nil {
		t.Error("expected error for degenerate target grid")
	}

	f := testField()
	f.Lat = f.Lat[:1]
	if _, err := ToWebMercator(f, 32, 32); err == nil {
		t.Error("expected error for invalid source field")
	}
}

func TestNearestIndex(t *testing.T) {
	coords := []float64{0, 1, 2, 3}

	tests := []struct {
		v    float64
		want int
		ok   bool
	}{
		{0, 0, true},
		{0.4, 0, true},
		{0.6, 1, true},
		{3, 3, true},
		{3.4, 3, true}, // Within half-cell slack.
		{4.0, 0, false},
		{-1.0, 0, false},
	}
	for _, tt := range tests {
		got, ok := nearestIndex(coords, tt.v)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("nearestIndex(%v): expected (%d,%v), got (%d,%v)", tt.v, tt.want, tt.ok, got, ok)
		}
	}
}
