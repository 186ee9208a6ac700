package domain

import (
	"math"
	"testing"
	"time"
)

func testField() *Field {
	return &Field{
		Name:  "SDU",
		Units: "hours",
		Time:  time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC),
		Lon:   []float64{5.0, 5.5, 6.0},
		Lat:   []float64{47.0, 47.5},
		Values: [][]float64{
			{60, 62, 64},
			{70, math.NaN(), 74},
		},
	}
}

func TestFieldValidate(t *testing.T) {
	f := testField()
	if err := f.Validate(); err != nil {
		t.Fatalf("valid field rejected: %v", err)
	}

	bad := testField()
	bad.Lon = []float64{5.0, 5.0, 6.0}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-increasing longitudes")
	}

	bad = testField()
	bad.Values = bad.Values[:1]
	if err := bad.Validate(); err == nil {
		t.Error("expected error for row/latitude mismatch")
	}

	bad = testField()
	bad.Values[0] = bad.Values[0][:2]
	if err := bad.Validate(); err == nil {
		t.Error("expected error for short row")
	}
}

func TestFieldLonWraps360(t *testing.T) {
	f := testField()
	if f.LonWraps360() {
		t.Error("5–6°E grid should not be treated as 0–360")
	}
	f.Lon = []float64{0, 120, 240, 359}
	if !f.LonWraps360() {
		t.Error("0–359 grid should be treated as 0–360")
	}
}

func TestSummarizeSkipsMissing(t *testing.T) {
	s := Summarize(testField())
	if s.Count != 5 || s.Missing != 1 {
		t.Fatalf("expected 5 valid / 1 missing, got %d / %d", s.Count, s.Missing)
	}
	wantMean := (60.0 + 62 + 64 + 70 + 74) / 5
	if math.Abs(s.Mean-wantMean) > 1e-12 {
		t.Errorf("mean: expected %v, got %v", wantMean, s.Mean)
	}
	if s.Min != 60 || s.Max != 74 {
		t.Errorf("min/max: expected 60/74, got %v/%v", s.Min, s.Max)
	}
	if s.StdDev <= 0 {
		t.Errorf("stddev should be positive, got %v", s.StdDev)
	}
}

func TestSummarizeAllMissing(t *testing.T) {
	f := testField()
	for i := range f.Values {
		for j := range f.Values[i] {
			f.Values[i][j] = math.NaN()
		}
	}
	s := Summarize(f)
	if s.Count != 0 || s.Missing != 6 {
		t.Fatalf("expected 0 valid / 6 missing, got %d / %d", s.Count, s.Missing)
	}
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Min) {
		t.Error("aggregates of an empty field should be NaN")
	}
}

func TestConvertLeavesOriginalIntact(t *testing.T) {
	f := testField()
	m := HoursToMinutes(f)
	if m.Units != "minutes" {
		t.Errorf("expected units minutes, got %s", m.Units)
	}
	if m.Values[0][0] != 3600 {
		t.Errorf("expected 60h -> 3600min, got %v", m.Values[0][0])
	}
	if f.Values[0][0] != 60 || f.Units != "hours" {
		t.Error("conversion must not mutate the source field")
	}
	if !math.IsNaN(m.Values[1][1]) {
		t.Error("missing cells must stay missing after conversion")
	}
}

func TestMonthlyHoursToDailyHours(t *testing.T) {
	f := testField() // January: 31 days.
	d, err := MonthlyHoursToDailyHours(f)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := 62.0 / 31
	if math.Abs(d.Values[0][1]-want) > 1e-12 {
		t.Errorf("expected %v h/day, got %v", want, d.Values[0][1])
	}
	if d.Units != "hours/day" {
		t.Errorf("expected units hours/day, got %s", d.Units)
	}

	f.Time = time.Time{}
	if _, err := MonthlyHoursToDailyHours(f); err == nil {
		t.Error("expected error for field without a valid time")
	}
}

func TestConvertTo(t *testing.T) {
	f := testField()
	if got, err := ConvertTo(f, ""); err != nil || got != f {
		t.Errorf("empty unit should be a no-op, got %v err %v", got, err)
	}
	if _, err := ConvertTo(f, "fortnights"); err == nil {
		t.Error("expected error for unknown unit")
	}
	m, err := ConvertTo(f, "minutes")
	if err != nil || m.Units != "minutes" {
		t.Errorf("minutes conversion failed: %v", err)
	}
}

func TestTidy(t *testing.T) {
	f := testField()

	kept := Tidy(f, true)
	if len(kept) != 6 {
		t.Fatalf("expected 6 rows with missing kept, got %d", len(kept))
	}
	// Row-major: first row is (Lat[0], Lon[0]).
	if kept[0].Lat != 47.0 || kept[0].Lon != 5.0 || kept[0].Value != 60 {
		t.Errorf("unexpected first row: %+v", kept[0])
	}
	if !math.IsNaN(kept[4].Value) {
		t.Errorf("expected missing cell at row 4, got %+v", kept[4])
	}

	dropped := Tidy(f, false)
	if len(dropped) != 5 {
		t.Fatalf("expected 5 rows with missing dropped, got %d", len(dropped))
	}
	for _, o := range dropped {
		if math.IsNaN(o.Value) {
			t.Fatalf("NaN row leaked into drop-missing output: %+v", o)
		}
	}
}
