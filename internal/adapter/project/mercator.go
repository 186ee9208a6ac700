// Package project resamples lon/lat fields onto projected grids.
package project

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"

	"go.climdata.io/sunshine-api/internal/domain"
)

// webMapProj is the spatial reference definition for web mapping.
const webMapProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

// Web mercator is undefined at the poles; clamp latitudes to its
// customary extent.
const maxMercatorLat = 85.05113

// ToWebMercator resamples a lon/lat field onto a regular nx×ny
// web-mercator grid by nearest-neighbor lookup. The returned field holds
// easting/northing in meters in its coordinate vectors; cells outside the
// source extent are missing.
func ToWebMercator(f *domain.Field, nx, ny int) (*domain.Field, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid field: %w", err)
	}
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("target grid must be at least 2x2, got %dx%d", nx, ny)
	}

	lonlatSR, err := proj.Parse("+proj=longlat")
	if err != nil {
		return nil, fmt.Errorf("failed to parse longlat projection: %w", err)
	}
	webSR, err := proj.Parse(webMapProj)
	if err != nil {
		return nil, fmt.Errorf("failed to parse web mercator projection: %w", err)
	}
	forward, err := lonlatSR.NewTransform(webSR)
	if err != nil {
		return nil, fmt.Errorf("failed to create forward transform: %w", err)
	}
	inverse, err := webSR.NewTransform(lonlatSR)
	if err != nil {
		return nil, fmt.Errorf("failed to create inverse transform: %w", err)
	}

	lonMin, lonMax, latMin, latMax := f.Bounds()
	latMin = math.Max(latMin, -maxMercatorLat)
	latMax = math.Min(latMax, maxMercatorLat)
	if latMin >= latMax {
		return nil, fmt.Errorf("field extent [%g, %g] lies outside the web mercator domain", f.Lat[0], f.Lat[len(f.Lat)-1])
	}

	min, err := transformPoint(forward, lonMin, latMin)
	if err != nil {
		return nil, fmt.Errorf("failed to project extent: %w", err)
	}
	max, err := transformPoint(forward, lonMax, latMax)
	if err != nil {
		return nil, fmt.Errorf("failed to project extent: %w", err)
	}

	xs := linspaceCenters(min.X, max.X, nx)
	ys := linspaceCenters(min.Y, max.Y, ny)

	values := make([][]float64, ny)
	for i, y := range ys {
		values[i] = make([]float64, nx)
		for j, x := range xs {
			pt, err := transformPoint(inverse, x, y)
			if err != nil {
				values[i][j] = math.NaN()
				continue
			}
			values[i][j] = nearest(f, pt.X, pt.Y)
		}
	}

	out := &domain.Field{
		Name:   f.Name,
		Units:  f.Units,
		Time:   f.Time,
		Lon:    xs,
		Lat:    ys,
		Values: values,
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("projection produced an invalid grid: %w", err)
	}
	return out, nil
}

func transformPoint(t proj.Transformer, x, y float64) (geom.Point, error) {
	g, err := geom.Point{X: x, Y: y}.Transform(t)
	if err != nil {
		return geom.Point{}, err
	}
	p, ok := g.(geom.Point)
	if !ok {
		return geom.Point{}, fmt.Errorf("transform returned %T, expected point", g)
	}
	return p, nil
}

// linspaceCenters returns n cell-center coordinates spanning [min, max].
func linspaceCenters(min, max float64, n int) []float64 {
	step := (max - min) / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = min + (float64(i)+0.5)*step
	}
	return out
}

// nearest returns the source value at the grid node closest to
// (lon, lat), or NaN when the point falls outside the source extent.
func nearest(f *domain.Field, lon, lat float64) float64 {
	if f.LonWraps360() && lon < 0 {
		lon += 360
	}
	j, ok := nearestIndex(f.Lon, lon)
	if !ok {
		return math.NaN()
	}
	i, ok := nearestIndex(f.Lat, lat)
	if !ok {
		return math.NaN()
	}
	return f.Values[i][j]
}

func nearestIndex(coords []float64, v float64) (int, bool) {
	n := len(coords)
	// Half a cell of slack at the edges so boundary centers still match.
	lo := coords[0] - (coords[1]-coords[0])/2
	hi := coords[n-1] + (coords[n-1]-coords[n-2])/2
	if v < lo || v > hi {
		return 0, false
	}
	i := sort.SearchFloat64s(coords, v)
	if i == 0 {
		return 0, true
	}
	if i == n {
		return n - 1, true
	}
	if v-coords[i-1] <= coords[i]-v {
		return i - 1, true
	}
	return i, true
}
