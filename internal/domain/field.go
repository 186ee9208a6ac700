// Package domain holds the core data types for gridded climate fields.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Field is a single-time-slice scalar grid on a regular lon/lat raster.
// Values[i][j] corresponds to (Lat[i], Lon[j]). Missing cells are NaN.
type Field struct {
	Name  string    // Variable name (e.g., "SDU").
	Units string    // Units as recorded in the source file (e.g., "hours").
	Time  time.Time // Valid time of the slice (zero if the source has none).

	Lon    []float64   // Longitudes, strictly increasing.
	Lat    []float64   // Latitudes, strictly increasing (south to north).
	Values [][]float64 // Values[i][j] at (Lat[i], Lon[j]).
}

// Validate checks coordinate monotonicity and grid shape.
func (f *Field) Validate() error {
	if len(f.Lon) < 2 {
		return fmt.Errorf("field must have at least 2 longitudes")
	}
	if len(f.Lat) < 2 {
		return fmt.Errorf("field must have at least 2 latitudes")
	}
	if len(f.Values) != len(f.Lat) {
		return fmt.Errorf("number of value rows (%d) must match latitudes (%d)", len(f.Values), len(f.Lat))
	}
	for i, row := range f.Values {
		if len(row) != len(f.Lon) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(f.Lon))
		}
	}
	for i := 1; i < len(f.Lon); i++ {
		if f.Lon[i] <= f.Lon[i-1] {
			return fmt.Errorf("longitudes must be strictly increasing")
		}
	}
	for i := 1; i < len(f.Lat); i++ {
		if f.Lat[i] <= f.Lat[i-1] {
			return fmt.Errorf("latitudes must be strictly increasing")
		}
	}
	return nil
}

// Bounds returns the coordinate extent of the field.
func (f *Field) Bounds() (lonMin, lonMax, latMin, latMax float64) {
	return f.Lon[0], f.Lon[len(f.Lon)-1], f.Lat[0], f.Lat[len(f.Lat)-1]
}

// LonWraps360 reports whether the longitude axis uses the 0–360 convention.
func (f *Field) LonWraps360() bool {
	if len(f.Lon) == 0 {
		return false
	}
	return f.Lon[0] >= 0 && f.Lon[len(f.Lon)-1] > 180
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	out := &Field{
		Name:  f.Name,
		Units: f.Units,
		Time:  f.Time,
		Lon:   append([]float64(nil), f.Lon...),
		Lat:   append([]float64(nil), f.Lat...),
	}
	out.Values = make([][]float64, len(f.Values))
	for i, row := range f.Values {
		out.Values[i] = append([]float64(nil), row...)
	}
	return out
}

// IsMissing reports whether the cell at (latIdx, lonIdx) has no data.
func (f *Field) IsMissing(latIdx, lonIdx int) bool {
	return math.IsNaN(f.Values[latIdx][lonIdx])
}

// DimInfo describes a NetCDF dimension.
type DimInfo struct {
	Name   string `json:"name"`
	Length uint64 `json:"length"`
}

// VarInfo describes a NetCDF variable.
type VarInfo struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Dimensions []string          `json:"dimensions"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DatasetInfo is the inspectable metadata of a NetCDF dataset.
type DatasetInfo struct {
	Path             string            `json:"path"`
	Title            string            `json:"title,omitempty"`
	Dimensions       []DimInfo         `json:"dimensions"`
	Variables        []VarInfo         `json:"variables"`
	GlobalAttributes map[string]string `json:"global_attributes,omitempty"`
	DataVariable     string            `json:"data_variable"`
	DataUnits        string            `json:"data_units,omitempty"`
	TimeSteps        int               `json:"time_steps"`
}
