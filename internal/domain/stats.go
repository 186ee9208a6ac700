package domain

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SummaryStats are NaN-aware aggregates over a field.
type SummaryStats struct {
	Mean    float64 `json:"mean"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"stddev"`
	Count   int     `json:"count"`   // Cells with data.
	Missing int     `json:"missing"` // Cells without data.
}

// MarshalJSON emits NaN aggregates (all-missing fields) as nulls, since
// JSON has no NaN literal.
func (s SummaryStats) MarshalJSON() ([]byte, error) {
	null := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		Mean    *float64 `json:"mean"`
		Min     *float64 `json:"min"`
		Max     *float64 `json:"max"`
		StdDev  *float64 `json:"stddev"`
		Count   int      `json:"count"`
		Missing int      `json:"missing"`
	}{null(s.Mean), null(s.Min), null(s.Max), null(s.StdDev), s.Count, s.Missing})
}

// Summarize computes summary statistics over all non-missing cells.
// An all-missing field yields Count 0 and NaN aggregates.
func Summarize(f *Field) SummaryStats {
	valid := make([]float64, 0, len(f.Lat)*len(f.Lon))
	missing := 0
	for _, row := range f.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				missing++
				continue
			}
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return SummaryStats{
			Mean:    math.NaN(),
			Min:     math.NaN(),
			Max:     math.NaN(),
			StdDev:  math.NaN(),
			Missing: missing,
		}
	}

	return SummaryStats{
		Mean:    stat.Mean(valid, nil),
		Min:     floats.Min(valid),
		Max:     floats.Max(valid),
		StdDev:  stat.StdDev(valid, nil),
		Count:   len(valid),
		Missing: missing,
	}
}
