package usecase

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"go.climdata.io/sunshine-api/internal/domain"
)

// fakeSource is an in-memory GridSource.
type fakeSource struct {
	field *domain.Field
	info  *domain.DatasetInfo
}

func (s *fakeSource) Load() (*domain.Field, error)           { return s.field, nil }
func (s *fakeSource) Describe() (*domain.DatasetInfo, error) { return s.info, nil }

func newFakeSource() *fakeSource {
	return &fakeSource{
		field: &domain.Field{
			Name:  "SDU",
			Units: "hours",
			Time:  time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC),
			Lon:   []float64{5.0, 5.5, 6.0},
			Lat:   []float64{47.0, 47.5},
			Values: [][]float64{
				{62, 62, 62},
				{62, math.NaN(), 62},
			},
		},
		info: &domain.DatasetInfo{DataVariable: "SDU", DataUnits: "hours", TimeSteps: 1},
	}
}

func TestStats(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())

	resp, err := uc.Stats("")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if resp.Variable != "SDU" || resp.Units != "hours" {
		t.Errorf("unexpected identity: %s [%s]", resp.Variable, resp.Units)
	}
	if resp.Shape != [2]int{2, 3} {
		t.Errorf("shape: expected [2 3], got %v", resp.Shape)
	}
	if resp.Stats.Mean != 62 || resp.Stats.Count != 5 || resp.Stats.Missing != 1 {
		t.Errorf("unexpected stats: %+v", resp.Stats)
	}
	if resp.Time != "1983-01-01T00:00:00Z" {
		t.Errorf("unexpected time: %s", resp.Time)
	}
}

func TestStatsWithConversion(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())

	// January has 31 days: 62 hours -> 2 hours/day.
	resp, err := uc.Stats("hours/day")
	if err != nil {
		t.Fatalf("Stats with conversion: %v", err)
	}
	if resp.Units != "hours/day" {
		t.Errorf("units: expected hours/day, got %s", resp.Units)
	}
	if math.Abs(resp.Stats.Mean-2.0) > 1e-12 {
		t.Errorf("mean: expected 2.0 h/day, got %v", resp.Stats.Mean)
	}

	if _, err := uc.Stats("parsecs"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestSample(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())

	resp, err := uc.Sample(47.0, 5.25)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if resp.Value == nil || *resp.Value != 62 {
		t.Errorf("expected 62, got %v", resp.Value)
	}

	// A sample next to the missing cell comes back with no value.
	resp, err = uc.Sample(47.25, 5.5)
	if err != nil {
		t.Fatalf("Sample near missing cell: %v", err)
	}
	if resp.Value != nil {
		t.Errorf("expected nil value near missing data, got %v", *resp.Value)
	}

	if _, err := uc.Sample(95, 5.0); err == nil {
		t.Error("expected error for latitude out of range")
	}
	if _, err := uc.Sample(47.0, 400); err == nil {
		t.Error("expected error for longitude out of range")
	}
}

func TestTidyCSV(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())

	var buf bytes.Buffer
	if err := uc.TidyCSV(&buf, true, ""); err != nil {
		t.Fatalf("TidyCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 7 { // header + 6 cells
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}

	buf.Reset()
	if err := uc.TidyCSV(&buf, false, ""); err != nil {
		t.Fatalf("TidyCSV drop missing: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 { // header + 5 cells
		t.Fatalf("expected 6 lines with missing dropped, got %d", len(lines))
	}
}

func TestRenderValidation(t *testing.T) {
	tests := []struct {
		name string
		req  RenderRequest
		ok   bool
	}{
		{"defaults", RenderRequest{}, true},
		{"raw latlon", RenderRequest{Style: StyleRaw, Projection: ProjectionLatLon}, true},
		{"bad style", RenderRequest{Style: "contour"}, false},
		{"bad projection", RenderRequest{Projection: "polar"}, false},
		{"too small", RenderRequest{Width: 1, Height: 100}, false},
		{"too large", RenderRequest{Width: 8192, Height: 100}, false},
	}
	for _, tt := range tests {
		req := tt.req
		err := req.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: expected ok=%v, got err=%v", tt.name, tt.ok, err)
		}
	}
}

func TestRenderStyles(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())

	for _, req := range []RenderRequest{
		{Style: StyleRaw},
		{Style: StyleHeatmap, Width: 200, Height: 150},
		{Style: StyleHeatmap, Projection: ProjectionMercator, Width: 64, Height: 64},
		{Style: StyleRaw, Projection: ProjectionMercator, Width: 32, Height: 32},
	} {
		var buf bytes.Buffer
		if err := uc.Render(req, &buf); err != nil {
			t.Fatalf("Render %+v: %v", req, err)
		}
		if _, err := png.Decode(&buf); err != nil {
			t.Fatalf("Render %+v produced invalid PNG: %v", req, err)
		}
	}
}

// The raw style honors the requested pixel size in both projections.
func TestRenderRawHonorsSize(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())

	for _, proj := range []string{ProjectionLatLon, ProjectionMercator} {
		var buf bytes.Buffer
		req := RenderRequest{Style: StyleRaw, Projection: proj, Width: 48, Height: 24}
		if err := uc.Render(req, &buf); err != nil {
			t.Fatalf("Render %+v: %v", req, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("Render %+v produced invalid PNG: %v", req, err)
		}
		b := img.Bounds()
		if b.Dx() != 48 || b.Dy() != 24 {
			t.Errorf("%s: expected 48x24 image, got %dx%d", proj, b.Dx(), b.Dy())
		}
	}
}

func TestDescribe(t *testing.T) {
	uc := NewInspectUseCase(newFakeSource())
	info, err := uc.Describe()
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if info.DataVariable != "SDU" {
		t.Errorf("expected SDU, got %s", info.DataVariable)
	}
}
