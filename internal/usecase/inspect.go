// Package usecase orchestrates dataset inspection, extraction and export.
package usecase

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot/vg"

	"go.climdata.io/sunshine-api/internal/adapter/interp"
	"go.climdata.io/sunshine-api/internal/adapter/project"
	"go.climdata.io/sunshine-api/internal/adapter/render"
	"go.climdata.io/sunshine-api/internal/adapter/store"
	"go.climdata.io/sunshine-api/internal/adapter/store/csvfield"
	"go.climdata.io/sunshine-api/internal/domain"
)

// Render styles and projections.
const (
	StyleRaw     = "raw"
	StyleHeatmap = "heatmap"

	ProjectionLatLon   = "latlon"
	ProjectionMercator = "mercator"
)

// StatsResponse reports aggregates of the (possibly converted) field.
type StatsResponse struct {
	Variable string              `json:"variable"`
	Units    string              `json:"units"`
	Time     string              `json:"time,omitempty"`
	Shape    [2]int              `json:"shape"` // [lat, lon]
	Stats    domain.SummaryStats `json:"stats"`
}

// PointResponse reports a bilinearly interpolated sample.
type PointResponse struct {
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Variable string   `json:"variable"`
	Units    string   `json:"units"`
	Value    *float64 `json:"value"` // nil when the sample touches missing data.
}

// RenderRequest selects a rendering of the field.
type RenderRequest struct {
	Style      string // raw | heatmap
	Projection string // latlon | mercator
	Width      int    // Target pixels (mercator resample / heatmap canvas).
	Height     int
	Unit       string // Optional unit conversion before rendering.
}

// Validate checks a render request, filling in defaults.
func (r *RenderRequest) Validate() error {
	switch r.Style {
	case "":
		r.Style = StyleHeatmap
	case StyleRaw, StyleHeatmap:
	default:
		return fmt.Errorf("style must be %q or %q, got %q", StyleRaw, StyleHeatmap, r.Style)
	}

	switch r.Projection {
	case "":
		r.Projection = ProjectionLatLon
	case ProjectionLatLon, ProjectionMercator:
	default:
		return fmt.Errorf("projection must be %q or %q, got %q", ProjectionLatLon, ProjectionMercator, r.Projection)
	}

	if r.Width == 0 {
		r.Width = 512
	}
	if r.Height == 0 {
		r.Height = 512
	}
	if r.Width < 2 || r.Width > 4096 || r.Height < 2 || r.Height > 4096 {
		return fmt.Errorf("width and height must be between 2 and 4096 pixels")
	}
	return nil
}

// InspectUseCase exposes the inspection operations over one grid source.
type InspectUseCase struct {
	source store.GridSource
}

// NewInspectUseCase creates an inspection use case for a grid source.
func NewInspectUseCase(source store.GridSource) *InspectUseCase {
	return &InspectUseCase{source: source}
}

// Describe reports dataset metadata.
func (uc *InspectUseCase) Describe() (*domain.DatasetInfo, error) {
	return uc.source.Describe()
}

// Stats loads the field, applies the optional unit conversion, and
// returns its summary statistics.
func (uc *InspectUseCase) Stats(unit string) (*StatsResponse, error) {
	f, err := uc.loadConverted(unit)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{
		Variable: f.Name,
		Units:    f.Units,
		Shape:    [2]int{len(f.Lat), len(f.Lon)},
		Stats:    domain.Summarize(f),
	}
	if !f.Time.IsZero() {
		resp.Time = f.Time.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp, nil
}

// Sample interpolates the field at (lat, lon).
func (uc *InspectUseCase) Sample(lat, lon float64) (*PointResponse, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 360 {
		return nil, fmt.Errorf("longitude must be between -180 and 360")
	}

	f, err := uc.source.Load()
	if err != nil {
		return nil, err
	}
	v, err := interp.Sample(f, lon, lat)
	if err != nil {
		return nil, err
	}

	resp := &PointResponse{Lat: lat, Lon: lon, Variable: f.Name, Units: f.Units}
	if !math.IsNaN(v) {
		resp.Value = &v
	}
	return resp, nil
}

// TidyCSV streams the long-format representation of the field.
func (uc *InspectUseCase) TidyCSV(w io.Writer, keepMissing bool, unit string) error {
	f, err := uc.loadConverted(unit)
	if err != nil {
		return err
	}
	return csvfield.Write(w, domain.Tidy(f, keepMissing))
}

// Render draws the field per the request and writes PNG bytes.
func (uc *InspectUseCase) Render(req RenderRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}

	f, err := uc.loadConverted(req.Unit)
	if err != nil {
		return err
	}

	opts := render.HeatmapOptions{
		Width:  vg.Length(req.Width) * vg.Inch / 96,
		Height: vg.Length(req.Height) * vg.Inch / 96,
	}

	// The mercator resample already carries the target pixel size; the
	// raw raster would otherwise only do it on the latlon path.
	rawW, rawH := req.Width, req.Height
	if req.Projection == ProjectionMercator {
		if f, err = project.ToWebMercator(f, req.Width, req.Height); err != nil {
			return fmt.Errorf("failed to reproject field: %w", err)
		}
		rawW, rawH = 0, 0
		opts.XLabel = "easting [m]"
		opts.YLabel = "northing [m]"
		opts.Title = heatTitleProjected(f)
	}

	switch req.Style {
	case StyleRaw:
		return render.RawPNG(f, rawW, rawH, w)
	default:
		return render.HeatmapPNG(f, opts, w)
	}
}

func heatTitleProjected(f *domain.Field) string {
	title := f.Name + " (web mercator)"
	if f.Units != "" {
		title = fmt.Sprintf("%s [%s]", title, f.Units)
	}
	return title
}

func (uc *InspectUseCase) loadConverted(unit string) (*domain.Field, error) {
	f, err := uc.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load field: %w", err)
	}
	if strings.TrimSpace(unit) == "" {
		return f, nil
	}
	converted, err := domain.ConvertTo(f, unit)
	if err != nil {
		return nil, err
	}
	return converted, nil
}
