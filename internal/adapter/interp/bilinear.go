// Package interp samples gridded fields at arbitrary coordinates.
package interp

import (
	"fmt"
	"math"
	"sort"

	"go.climdata.io/sunshine-api/internal/domain"
)

// Cell is one rectangle of a regular grid with its four corner values.
type Cell struct {
	X0, X1 float64 // Longitude boundaries.
	Y0, Y1 float64 // Latitude boundaries.

	// Corner values: Vab is the value at (Xa, Yb).
	V00, V10, V01, V11 float64
}

// Bilinear interpolates within a cell:
//
//	f(x,y) ≈ (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u·V01 + tu·V11
//
// with t, u the normalized offsets inside the cell. A NaN corner with
// nonzero weight makes the result NaN, so missing data never bleeds into
// a numeric answer. Zero-weight corners are skipped: a query on a cell
// edge depends only on the two nodes bounding that edge.
func Bilinear(c Cell, x, y float64) (float64, error) {
	if c.X1 <= c.X0 {
		return 0, fmt.Errorf("invalid cell: X1 must be > X0")
	}
	if c.Y1 <= c.Y0 {
		return 0, fmt.Errorf("invalid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < c.X0-epsilon || x > c.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside cell [%.6f, %.6f]", x, c.X0, c.X1)
	}
	if y < c.Y0-epsilon || y > c.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside cell [%.6f, %.6f]", y, c.Y0, c.Y1)
	}

	t := (x - c.X0) / (c.X1 - c.X0)
	u := (y - c.Y0) / (c.Y1 - c.Y0)
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))

	sum := 0.0
	for _, term := range []struct {
		w, v float64
	}{
		{(1 - t) * (1 - u), c.V00},
		{t * (1 - u), c.V10},
		{(1 - t) * u, c.V01},
		{t * u, c.V11},
	} {
		if term.w == 0 {
			continue
		}
		sum += term.w * term.v
	}
	return sum, nil
}

// Sample bilinearly interpolates a field at (lon, lat) in degrees.
// Requests using the -180..180 longitude convention are wrapped onto
// 0–360 grids automatically. A sample touching a missing cell is NaN.
func Sample(f *domain.Field, lon, lat float64) (float64, error) {
	if err := f.Validate(); err != nil {
		return 0, fmt.Errorf("invalid field: %w", err)
	}

	if f.LonWraps360() {
		lon = normalizeLon360(lon)
	}

	xi, err := cellIndex(f.Lon, lon, "longitude")
	if err != nil {
		return 0, err
	}
	yi, err := cellIndex(f.Lat, lat, "latitude")
	if err != nil {
		return 0, err
	}

	return Bilinear(Cell{
		X0:  f.Lon[xi],
		X1:  f.Lon[xi+1],
		Y0:  f.Lat[yi],
		Y1:  f.Lat[yi+1],
		V00: f.Values[yi][xi],
		V10: f.Values[yi][xi+1],
		V01: f.Values[yi+1][xi],
		V11: f.Values[yi+1][xi+1],
	}, lon, lat)
}

// cellIndex finds i such that coords[i] <= v <= coords[i+1].
func cellIndex(coords []float64, v float64, axis string) (int, error) {
	n := len(coords)
	if v < coords[0] || v > coords[n-1] {
		return 0, fmt.Errorf("%s %.6f is outside grid range [%.6f, %.6f]", axis, v, coords[0], coords[n-1])
	}
	i := sort.SearchFloat64s(coords, v)
	if i > 0 {
		i--
	}
	if i == n-1 {
		i = n - 2
	}
	return i, nil
}

func normalizeLon360(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}
