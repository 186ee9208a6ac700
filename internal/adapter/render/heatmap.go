package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.climdata.io/sunshine-api/internal/domain"
)

// HeatmapOptions configure HeatmapPNG.
type HeatmapOptions struct {
	Title  string
	XLabel string // Defaults to "longitude [°E]".
	YLabel string // Defaults to "latitude [°N]".
	Width  vg.Length
	Height vg.Length
}

// fieldGrid adapts a Field to gonum/plot's GridXYZ.
type fieldGrid struct {
	f *domain.Field
}

func (g fieldGrid) Dims() (c, r int)   { return len(g.f.Lon), len(g.f.Lat) }
func (g fieldGrid) X(c int) float64    { return g.f.Lon[c] }
func (g fieldGrid) Y(r int) float64    { return g.f.Lat[r] }
func (g fieldGrid) Z(c, r int) float64 { return g.f.Values[r][c] }

// HeatmapPNG draws the field as an annotated heatmap with axes and a
// title, encoded as PNG.
func HeatmapPNG(f *domain.Field, opts HeatmapOptions, w io.Writer) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid field: %w", err)
	}

	if opts.Width == 0 {
		opts.Width = 8 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 6 * vg.Inch
	}
	if opts.XLabel == "" {
		opts.XLabel = "longitude [°E]"
	}
	if opts.YLabel == "" {
		opts.YLabel = "latitude [°N]"
	}

	stats := domain.Summarize(f)

	hm := plotter.NewHeatMap(fieldGrid{f}, moreland.SmoothBlueRed().Palette(255))
	hm.NaN = color.Gray{Y: 210}
	if stats.Count > 0 {
		hm.Min = stats.Min
		hm.Max = stats.Max
		if hm.Min == hm.Max {
			// Degenerate range; widen so the palette lookup stays finite.
			hm.Max = hm.Min + 1
		}
	} else {
		hm.Min, hm.Max = 0, 1
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if opts.Title == "" {
		p.Title.Text = heatmapTitle(f, stats)
	}
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(hm)

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	p.Draw(dc)

	pngc := vgimg.PngCanvas{Canvas: img}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode heatmap PNG: %w", err)
	}
	return nil
}

func heatmapTitle(f *domain.Field, stats domain.SummaryStats) string {
	title := f.Name
	if f.Units != "" {
		title = fmt.Sprintf("%s [%s]", title, f.Units)
	}
	if !f.Time.IsZero() {
		title = fmt.Sprintf("%s, %s", title, f.Time.Format("2006-01"))
	}
	if !math.IsNaN(stats.Mean) {
		title = fmt.Sprintf("%s (mean %.1f)", title, stats.Mean)
	}
	return title
}
