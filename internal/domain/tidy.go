package domain

import (
	"math"
	"time"
)

// Observation is one row of the long-format representation of a field.
type Observation struct {
	Lon   float64
	Lat   float64
	Time  time.Time
	Value float64 // NaN when the cell is missing.
}

// Tidy flattens a field into long format, one row per grid cell, row-major
// (latitude outer, longitude inner). When keepMissing is false, NaN cells
// are dropped.
func Tidy(f *Field, keepMissing bool) []Observation {
	obs := make([]Observation, 0, len(f.Lat)*len(f.Lon))
	for i, lat := range f.Lat {
		for j, lon := range f.Lon {
			v := f.Values[i][j]
			if !keepMissing && math.IsNaN(v) {
				continue
			}
			obs = append(obs, Observation{
				Lon:   lon,
				Lat:   lat,
				Time:  f.Time,
				Value: v,
			})
		}
	}
	return obs
}
