// Package store defines the interface for gridded-field data sources.
package store

import "go.climdata.io/sunshine-api/internal/domain"

// GridSource is the interface for loading a single-slice gridded field.
type GridSource interface {
	// Load reads the field (coordinates plus values, missing cells as NaN).
	Load() (*domain.Field, error)

	// Describe reports dataset metadata without extracting the grid.
	Describe() (*domain.DatasetInfo, error)
}
