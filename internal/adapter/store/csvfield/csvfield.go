// Package csvfield reads and writes the tidy (long-format) CSV
// representation of a gridded field.
package csvfield

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"go.climdata.io/sunshine-api/internal/domain"
)

var header = []string{"lon", "lat", "time", "value"}

// Write streams observations as CSV, one row per grid cell. Missing values
// are written as empty strings so the file round-trips through Load.
func Write(w io.Writer, obs []domain.Observation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, o := range obs {
		value := ""
		if !math.IsNaN(o.Value) {
			value = strconv.FormatFloat(o.Value, 'g', -1, 64)
		}
		ts := ""
		if !o.Time.IsZero() {
			ts = o.Time.UTC().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatFloat(o.Lon, 'g', -1, 64),
			strconv.FormatFloat(o.Lat, 'g', -1, 64),
			ts,
			value,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// Store loads a field back from a tidy CSV file.
type Store struct {
	path string
}

// NewStore creates a tidy-CSV-backed grid source.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Describe reports minimal metadata for a CSV source.
func (s *Store) Describe() (*domain.DatasetInfo, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	return &domain.DatasetInfo{
		Path: s.path,
		Dimensions: []domain.DimInfo{
			{Name: "lat", Length: uint64(len(f.Lat))},
			{Name: "lon", Length: uint64(len(f.Lon))},
		},
		DataVariable: f.Name,
		DataUnits:    f.Units,
		TimeSteps:    1,
	}, nil
}

// Load reads the tidy CSV and reconstructs the regular grid. Every
// (lon, lat) combination must be present exactly once; cells with an
// empty value column are missing.
func (s *Store) Load() (*domain.Field, error) {
	//nolint:gosec // Path comes from operator configuration.
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tidy CSV: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(head) != len(header) {
		return nil, fmt.Errorf("invalid CSV header: expected %v, got %v", header, head)
	}
	for i, h := range head {
		if h != header[i] {
			return nil, fmt.Errorf("invalid CSV header: expected column %d to be %s, got %s", i, header[i], h)
		}
	}

	type cell struct {
		lon, lat, value float64
	}
	var cells []cell
	lonSet := map[float64]bool{}
	latSet := map[float64]bool{}
	var fieldTime time.Time

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		lon, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lon on line %d: %w", line, err)
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lat on line %d: %w", line, err)
		}
		if row[2] != "" && fieldTime.IsZero() {
			if fieldTime, err = time.Parse(time.RFC3339, row[2]); err != nil {
				return nil, fmt.Errorf("invalid time on line %d: %w", line, err)
			}
		}

		value := math.NaN()
		if row[3] != "" {
			if value, err = strconv.ParseFloat(row[3], 64); err != nil {
				return nil, fmt.Errorf("invalid value on line %d: %w", line, err)
			}
		}

		cells = append(cells, cell{lon: lon, lat: lat, value: value})
		lonSet[lon] = true
		latSet[lat] = true
	}

	lons := sortedKeys(lonSet)
	lats := sortedKeys(latSet)
	if len(cells) != len(lons)*len(lats) {
		return nil, fmt.Errorf("tidy CSV is not a complete grid: %d rows for %d×%d cells",
			len(cells), len(lats), len(lons))
	}

	lonIdx := indexOf(lons)
	latIdx := indexOf(lats)

	values := make([][]float64, len(lats))
	for i := range values {
		values[i] = make([]float64, len(lons))
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}
	seen := make(map[[2]int]bool, len(cells))
	for _, c := range cells {
		key := [2]int{latIdx[c.lat], lonIdx[c.lon]}
		if seen[key] {
			return nil, fmt.Errorf("duplicate cell at (lon=%g, lat=%g)", c.lon, c.lat)
		}
		seen[key] = true
		values[key[0]][key[1]] = c.value
	}

	f := &domain.Field{
		Name:   "value",
		Time:   fieldTime,
		Lon:    lons,
		Lat:    lats,
		Values: values,
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid in %s: %w", s.path, err)
	}
	return f, nil
}

func sortedKeys(set map[float64]bool) []float64 {
	out := make([]float64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}

func indexOf(coords []float64) map[float64]int {
	idx := make(map[float64]int, len(coords))
	for i, c := range coords {
		idx[c] = i
	}
	return idx
}
