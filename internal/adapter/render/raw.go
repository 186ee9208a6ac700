// Package render draws gridded fields as PNG rasters.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"go.climdata.io/sunshine-api/internal/domain"
)

// RawPNG writes the field as a plain raster image, north up. The image
// is width x height pixels, each pixel taking the value of the nearest
// grid cell; width or height <= 0 keeps the native one-pixel-per-cell
// size. Values are mapped onto a dark-to-bright ramp between the field
// minimum and maximum; missing cells are transparent.
func RawPNG(f *domain.Field, width, height int, w io.Writer) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid field: %w", err)
	}

	stats := domain.Summarize(f)
	span := stats.Max - stats.Min
	if stats.Count == 0 || span == 0 {
		span = 1
	}

	nLat, nLon := len(f.Lat), len(f.Lon)
	if width <= 0 {
		width = nLon
	}
	if height <= 0 {
		height = nLat
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		// Latitudes ascend south to north; image rows go top down.
		i := (height - 1 - y) * nLat / height
		for x := 0; x < width; x++ {
			v := f.Values[i][x*nLon/width]
			if math.IsNaN(v) {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			img.SetNRGBA(x, y, rampColor((v-stats.Min)/span))
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// rampColor maps t in [0,1] from deep blue through orange to bright
// yellow, a conventional ramp for sunshine-duration maps.
func rampColor(t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	switch {
	case t < 0.5:
		// Deep blue (8, 29, 88) to orange (253, 141, 60).
		u := t / 0.5
		return color.NRGBA{
			R: lerpByte(8, 253, u),
			G: lerpByte(29, 141, u),
			B: lerpByte(88, 60, u),
			A: 255,
		}
	default:
		// Orange to bright yellow (255, 255, 191).
		u := (t - 0.5) / 0.5
		return color.NRGBA{
			R: lerpByte(253, 255, u),
			G: lerpByte(141, 255, u),
			B: lerpByte(60, 191, u),
			A: 255,
		}
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
