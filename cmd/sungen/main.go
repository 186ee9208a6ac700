// Command sungen generates a synthetic monthly sunshine-duration NetCDF
// file for demos and integration testing. The field is a smooth,
// latitude-dependent surface with a configurable missing-data hole, so
// every downstream code path (fill values, statistics, rendering,
// tidy export) has something to chew on.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

// cfTimeEpoch is the reference date written into the time axis units.
var cfTimeEpoch = time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC)

const fillValue = float32(-999.0)

func main() {
	out := flag.String("out", "./data/sunshine.nc", "Output NetCDF path")
	latMin := flag.Float64("lat-min", 35.0, "Minimum latitude")
	latMax := flag.Float64("lat-max", 60.0, "Maximum latitude")
	lonMin := flag.Float64("lon-min", -10.0, "Minimum longitude")
	lonMax := flag.Float64("lon-max", 30.0, "Maximum longitude")
	resolution := flag.Float64("resolution", 0.25, "Grid resolution in degrees")
	month := flag.String("month", "1983-01", "Month of the slice (YYYY-MM)")
	hole := flag.Bool("hole", true, "Punch a missing-data hole into the grid")
	flag.Parse()

	t, err := time.Parse("2006-01", *month)
	if err != nil {
		log.Fatalf("invalid -month %q: %v", *month, err)
	}

	if err := generate(*out, *latMin, *latMax, *lonMin, *lonMax, *resolution, t, *hole); err != nil {
		log.Fatalf("sungen: %v", err)
	}
	log.Printf("Wrote %s", *out)
}

func generate(path string, latMin, latMax, lonMin, lonMax, resolution float64, month time.Time, hole bool) error {
	if resolution <= 0 {
		return fmt.Errorf("resolution must be positive")
	}
	if latMin >= latMax || lonMin >= lonMax {
		return fmt.Errorf("empty extent")
	}

	nLat := int((latMax-latMin)/resolution) + 1
	nLon := int((lonMax-lonMin)/resolution) + 1

	lat := make([]float64, nLat)
	for i := range lat {
		lat[i] = latMin + float64(i)*resolution
	}
	lon := make([]float64, nLon)
	for j := range lon {
		lon[j] = lonMin + float64(j)*resolution
	}

	data := make([]float32, nLat*nLon)
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			data[i*nLon+j] = sunshineHours(lat[i], lon[j], month)
		}
	}
	if hole {
		punchHole(data, lat, lon, nLat, nLon)
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	timeDim, err := ds.AddDim("time", 1)
	if err != nil {
		return err
	}
	latDim, err := ds.AddDim("lat", uint64(nLat))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(nLon))
	if err != nil {
		return err
	}

	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return err
	}
	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	dataVar, err := ds.AddVar("SDU", netcdf.FLOAT, []netcdf.Dim{timeDim, latDim, lonDim})
	if err != nil {
		return err
	}

	attrs := []struct {
		write func() error
		what  string
	}{
		{func() error {
			return timeVar.Attr("units").WriteBytes([]byte(fmt.Sprintf("days since %s", cfTimeEpoch.Format("2006-01-02 15:04:05"))))
		}, "time units"},
		{func() error { return latVar.Attr("units").WriteBytes([]byte("degrees_north")) }, "lat units"},
		{func() error { return lonVar.Attr("units").WriteBytes([]byte("degrees_east")) }, "lon units"},
		{func() error { return dataVar.Attr("units").WriteBytes([]byte("hours")) }, "SDU units"},
		{func() error { return dataVar.Attr("long_name").WriteBytes([]byte("sunshine duration")) }, "SDU long_name"},
		{func() error { return dataVar.Attr("_FillValue").WriteFloat32s([]float32{fillValue}) }, "SDU fill value"},
	}
	for _, a := range attrs {
		if err := a.write(); err != nil {
			return fmt.Errorf("failed to write %s: %w", a.what, err)
		}
	}

	if err := timeVar.WriteFloat64s([]float64{month.Sub(cfTimeEpoch).Hours() / 24}); err != nil {
		return fmt.Errorf("failed to write time: %w", err)
	}
	if err := latVar.WriteFloat64s(lat); err != nil {
		return fmt.Errorf("failed to write lat: %w", err)
	}
	if err := lonVar.WriteFloat64s(lon); err != nil {
		return fmt.Errorf("failed to write lon: %w", err)
	}
	if err := dataVar.WriteFloat32s(data); err != nil {
		return fmt.Errorf("failed to write SDU: %w", err)
	}

	return nil
}

// sunshineHours models monthly sunshine: more towards the south and a
// smooth longitudinal wave, scaled roughly like a European January.
func sunshineHours(lat, lon float64, month time.Time) float32 {
	seasonal := 1.0 + 0.6*math.Cos(float64(month.Month()-7)*math.Pi/6)
	base := 220.0 - 2.4*(lat-35.0)
	wave := 12.0*math.Sin(lon*math.Pi/25.0) + 6.0*math.Cos((lat+lon)*math.Pi/40.0)
	v := (base + wave) * seasonal / 1.6
	if v < 0 {
		v = 0
	}
	return float32(v)
}

// punchHole marks a round patch in the grid center as missing.
func punchHole(data []float32, lat, lon []float64, nLat, nLon int) {
	cLat := lat[nLat/2]
	cLon := lon[nLon/2]
	radius := (lat[nLat-1] - lat[0]) / 8
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			dLat := lat[i] - cLat
			dLon := lon[j] - cLon
			if math.Sqrt(dLat*dLat+dLon*dLon) < radius {
				data[i*nLon+j] = fillValue
			}
		}
	}
}
