// Package ncfield loads a single-slice climate field from a NetCDF file.
package ncfield

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.climdata.io/sunshine-api/internal/domain"
)

// Store reads a gridded data variable from one NetCDF file.
type Store struct {
	path      string
	varName   string // Preferred data variable name ("" = auto-detect).
	timeIndex int    // Slice to extract from a 3D [time,lat,lon] variable.

	mu     sync.RWMutex
	cached *domain.Field
}

// Option configures a Store.
type Option func(*Store)

// WithVariable sets the preferred data variable name.
func WithVariable(name string) Option {
	return func(s *Store) { s.varName = name }
}

// WithTimeIndex selects the time slice to extract (default 0).
func WithTimeIndex(idx int) Option {
	return func(s *Store) { s.timeIndex = idx }
}

// NewStore creates a NetCDF-backed grid source for the given file.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Candidate variable names tried in order, after any configured name.
var (
	latNames  = []string{"lat", "latitude", "y"}
	lonNames  = []string{"lon", "longitude", "x"}
	timeNames = []string{"time", "t"}
	dataNames = []string{"SDU", "sdu", "sunshine_duration", "sunshine", "data", "z"}
)

// Load reads the field, using a cached copy after the first call.
func (s *Store) Load() (*domain.Field, error) {
	s.mu.RLock()
	if s.cached != nil {
		f := s.cached
		s.mu.RUnlock()
		return f, nil
	}
	s.mu.RUnlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = f
	s.mu.Unlock()
	return f, nil
}

//nolint:gocyclo // NetCDF extraction has many variable-name and shape cases.
func (s *Store) load() (*domain.Field, error) {
	nc, err := netcdf.OpenFile(s.path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	lonData, err := readCoord(nc, lonNames, "longitude")
	if err != nil {
		return nil, err
	}
	latData, err := readCoord(nc, latNames, "latitude")
	if err != nil {
		return nil, err
	}

	dataVar, name, err := findDataVar(nc, s.varName)
	if err != nil {
		return nil, err
	}

	values, err := s.readGrid(dataVar, len(latData), len(lonData))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	// CF convention: compare against the packed fill value, then unpack.
	fill, hasFill := attrFloat(dataVar, "_FillValue", "missing_value")
	scale, hasScale := attrFloat(dataVar, "scale_factor")
	offset, hasOffset := attrFloat(dataVar, "add_offset")
	if !hasScale {
		scale = 1
	}
	if !hasOffset {
		offset = 0
	}
	for i := range values {
		for j, v := range values[i] {
			if hasFill && v == fill {
				values[i][j] = math.NaN()
				continue
			}
			values[i][j] = v*scale + offset
		}
	}

	f := &domain.Field{
		Name:   name,
		Units:  attrString(dataVar, "units"),
		Time:   s.sliceTime(nc),
		Lon:    lonData,
		Lat:    latData,
		Values: values,
	}
	normalizeAxes(f)

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid in %s: %w", s.path, err)
	}
	return f, nil
}

// Describe reports the dataset structure without extracting the grid.
func (s *Store) Describe() (*domain.DatasetInfo, error) {
	nc, err := netcdf.OpenFile(s.path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	info := &domain.DatasetInfo{
		Path:             s.path,
		GlobalAttributes: globalAttrs(nc),
	}
	info.Title = info.GlobalAttributes["title"]

	nVars, err := nc.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables: %w", err)
	}

	seenDims := map[string]bool{}
	for i := 0; i < nVars; i++ {
		v := nc.VarN(i)
		vName, err := v.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to read variable %d name: %w", i, err)
		}

		vi := domain.VarInfo{Name: vName, Attributes: varAttrs(v)}
		if t, err := v.Type(); err == nil {
			vi.Type = typeName(t)
		}

		dims, err := v.Dims()
		if err != nil {
			return nil, fmt.Errorf("failed to read dimensions of %s: %w", vName, err)
		}
		for _, d := range dims {
			dName, err := d.Name()
			if err != nil {
				continue
			}
			vi.Dimensions = append(vi.Dimensions, dName)
			if !seenDims[dName] {
				seenDims[dName] = true
				dLen, _ := d.Len()
				info.Dimensions = append(info.Dimensions, domain.DimInfo{Name: dName, Length: dLen})
				if isTimeName(dName) {
					info.TimeSteps = int(dLen)
				}
			}
		}
		info.Variables = append(info.Variables, vi)
	}

	if dataVar, name, err := findDataVar(nc, s.varName); err == nil {
		info.DataVariable = name
		info.DataUnits = attrString(dataVar, "units")
	}
	return info, nil
}

// readGrid reads a 2D or 3D variable and returns the requested time slice
// as [lat][lon], transposing when the file stores [lon, lat].
func (s *Store) readGrid(v netcdf.Var, nLat, nLon int) ([][]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}

	lens := make([]uint64, len(dims))
	for i, d := range dims {
		if lens[i], err = d.Len(); err != nil {
			return nil, fmt.Errorf("failed to get dim %d length: %w", i, err)
		}
	}

	var nTime uint64 = 1
	spatial := lens
	switch len(dims) {
	case 2:
		// Single slice on disk; only index 0 exists.
		if s.timeIndex != 0 {
			return nil, fmt.Errorf("time index %d requested but variable is 2D", s.timeIndex)
		}
	case 3:
		nTime = lens[0]
		spatial = lens[1:]
	default:
		return nil, fmt.Errorf("expected 2D or 3D data, got %dD", len(dims))
	}

	if s.timeIndex < 0 || uint64(s.timeIndex) >= nTime {
		return nil, fmt.Errorf("time index %d out of range [0, %d)", s.timeIndex, nTime)
	}

	transposed := false
	switch {
	case spatial[0] == uint64(nLat) && spatial[1] == uint64(nLon):
	case spatial[0] == uint64(nLon) && spatial[1] == uint64(nLat):
		transposed = true
	default:
		return nil, fmt.Errorf("dimension mismatch: data is [%d, %d], expected [%d, %d] or [%d, %d]",
			spatial[0], spatial[1], nLat, nLon, nLon, nLat)
	}

	flat, err := readFloats(v, int(nTime)*int(spatial[0])*int(spatial[1]))
	if err != nil {
		return nil, err
	}
	sliceLen := int(spatial[0]) * int(spatial[1])
	slice := flat[s.timeIndex*sliceLen : (s.timeIndex+1)*sliceLen]

	nRows, nCols := int(spatial[0]), int(spatial[1])
	values := make([][]float64, nRows)
	for i := 0; i < nRows; i++ {
		values[i] = slice[i*nCols : (i+1)*nCols]
	}
	if transposed {
		values = transpose2D(values)
	}
	return values, nil
}

// sliceTime decodes the valid time of the extracted slice from the CF time
// axis, returning the zero time when the file has none or the units are
// not understood.
func (s *Store) sliceTime(nc netcdf.Dataset) time.Time {
	for _, name := range timeNames {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil || len(dims) != 1 {
			continue
		}
		n, err := dims[0].Len()
		if err != nil || uint64(s.timeIndex) >= n {
			continue
		}
		vals, err := readFloats(v, int(n))
		if err != nil {
			continue
		}
		if t, ok := decodeCFTime(attrString(v, "units"), vals[s.timeIndex]); ok {
			return t
		}
	}
	return time.Time{}
}

// decodeCFTime parses "<unit> since <epoch>" time encodings.
func decodeCFTime(units string, value float64) (time.Time, bool) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}

	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return time.Time{}, false
	}

	epochStr := strings.TrimSpace(parts[1])
	var epoch time.Time
	var err error
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		"2006-01-02",
	} {
		if epoch, err = time.Parse(layout, epochStr); err == nil {
			return epoch.UTC().Add(time.Duration(value * float64(step))), true
		}
	}
	return time.Time{}, false
}

// normalizeAxes flips descending coordinate axes so the in-memory grid is
// always south-to-north and west-to-east.
func normalizeAxes(f *domain.Field) {
	if len(f.Lat) > 1 && f.Lat[0] > f.Lat[len(f.Lat)-1] {
		reverse(f.Lat)
		for i, j := 0, len(f.Values)-1; i < j; i, j = i+1, j-1 {
			f.Values[i], f.Values[j] = f.Values[j], f.Values[i]
		}
	}
	if len(f.Lon) > 1 && f.Lon[0] > f.Lon[len(f.Lon)-1] {
		reverse(f.Lon)
		for _, row := range f.Values {
			reverse(row)
		}
	}
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// readCoord reads a 1D coordinate vector, trying candidate names in order.
func readCoord(nc netcdf.Dataset, names []string, axis string) ([]float64, error) {
	for _, name := range names {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil || len(dims) != 1 {
			continue
		}
		n, err := dims[0].Len()
		if err != nil {
			continue
		}
		data, err := readFloats(v, int(n))
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%s variable not found (tried: %v)", axis, names)
}

// findDataVar locates the data variable: the configured name first, then
// the well-known candidates, then the first non-coordinate 2D/3D variable.
func findDataVar(nc netcdf.Dataset, preferred string) (netcdf.Var, string, error) {
	tried := dataNames
	if preferred != "" {
		tried = append([]string{preferred}, dataNames...)
	}
	for _, name := range tried {
		if v, err := nc.Var(name); err == nil {
			return v, name, nil
		}
	}

	nVars, err := nc.NVars()
	if err != nil {
		return netcdf.Var{}, "", fmt.Errorf("failed to count variables: %w", err)
	}
	for i := 0; i < nVars; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			continue
		}
		if isCoordName(name) || isTimeName(name) {
			continue
		}
		if dims, err := v.Dims(); err == nil && (len(dims) == 2 || len(dims) == 3) {
			return v, name, nil
		}
	}
	return netcdf.Var{}, "", fmt.Errorf("data variable not found (tried: %v)", tried)
}

func isCoordName(name string) bool {
	n := strings.ToLower(name)
	for _, c := range append(append([]string{}, latNames...), lonNames...) {
		if n == c {
			return true
		}
	}
	return false
}

func isTimeName(name string) bool {
	n := strings.ToLower(name)
	for _, c := range timeNames {
		if n == c {
			return true
		}
	}
	return false
}

// readFloats reads a variable of any supported numeric type as float64.
func readFloats(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, n)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.INT64:
		tmp := make([]int64, n)
		if err := v.ReadInt64s(tmp); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

func widen[T float32 | int16 | int32 | int64](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// attrFloat returns the first of the named attributes readable as float64.
func attrFloat(v netcdf.Var, names ...string) (float64, bool) {
	for _, name := range names {
		a := v.Attr(name)
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
		bufi := make([]int32, 1)
		if err := a.ReadInt32s(bufi); err == nil {
			return float64(bufi[0]), true
		}
	}
	return 0, false
}

// attrString returns a text attribute, or "" when absent.
func attrString(v netcdf.Var, name string) string {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

// varAttrs collects a variable's attributes as display strings.
func varAttrs(v netcdf.Var) map[string]string {
	n, err := v.NAttrs()
	if err != nil || n == 0 {
		return nil
	}
	attrs := make(map[string]string, n)
	for i := 0; i < n; i++ {
		a, err := v.AttrN(i)
		if err != nil {
			continue
		}
		attrs[a.Name()] = attrDisplay(a)
	}
	return attrs
}

// globalAttrs collects the dataset's global attributes as display strings.
func globalAttrs(nc netcdf.Dataset) map[string]string {
	n, err := nc.NAttrs()
	if err != nil || n == 0 {
		return nil
	}
	attrs := make(map[string]string, n)
	for i := 0; i < n; i++ {
		a, err := nc.AttrN(i)
		if err != nil {
			continue
		}
		attrs[a.Name()] = attrDisplay(a)
	}
	return attrs
}

// attrDisplay renders an attribute value as a string, trying text first.
func attrDisplay(a netcdf.Attr) string {
	n, err := a.Len()
	if err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err == nil {
		return strings.TrimRight(string(buf), "\x00")
	}
	vals := make([]float64, n)
	if err := a.ReadFloat64s(vals); err == nil {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%g", v)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func typeName(t netcdf.Type) string {
	switch t {
	case netcdf.BYTE:
		return "byte"
	case netcdf.CHAR:
		return "char"
	case netcdf.SHORT:
		return "short"
	case netcdf.INT:
		return "int"
	case netcdf.FLOAT:
		return "float"
	case netcdf.DOUBLE:
		return "double"
	case netcdf.INT64:
		return "int64"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

func transpose2D(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	nRows := len(data)
	nCols := len(data[0])
	out := make([][]float64, nCols)
	for i := 0; i < nCols; i++ {
		out[i] = make([]float64, nRows)
		for j := 0; j < nRows; j++ {
			out[i][j] = data[j][i]
		}
	}
	return out
}
