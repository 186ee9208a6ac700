// Command suninspect walks through a NetCDF sunshine-duration file: it
// prints the dataset metadata and summary statistics, then writes a raw
// raster, an annotated heatmap, a web-mercator rendering and a tidy CSV
// export to an output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"go.climdata.io/sunshine-api/internal/adapter/store/ncfield"
	"go.climdata.io/sunshine-api/internal/domain"
	"go.climdata.io/sunshine-api/internal/usecase"
)

func main() {
	file := flag.String("file", "", "Path to NetCDF file (required)")
	varName := flag.String("var", "", "Data variable name (default: auto-detect)")
	timeIndex := flag.Int("time-index", 0, "Time slice to extract")
	outDir := flag.String("out", "./out", "Output directory for plots and CSV")
	unit := flag.String("unit", "", "Unit conversion: minutes or hours/day (default: source units)")
	keepMissing := flag.Bool("keep-missing", true, "Keep missing cells in the tidy CSV")
	size := flag.Int("size", 512, "Rendering size in pixels")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*file, *varName, *timeIndex, *outDir, *unit, *keepMissing, *size); err != nil {
		log.Fatalf("suninspect: %v", err)
	}
}

func run(file, varName string, timeIndex int, outDir, unit string, keepMissing bool, size int) error {
	source := ncfield.NewStore(file,
		ncfield.WithVariable(varName),
		ncfield.WithTimeIndex(timeIndex))
	uc := usecase.NewInspectUseCase(source)

	// Metadata.
	info, err := uc.Describe()
	if err != nil {
		return err
	}
	printInfo(info)

	// Summary statistics.
	stats, err := uc.Stats(unit)
	if err != nil {
		return err
	}
	printStats(stats)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Renderings.
	renders := []struct {
		name string
		req  usecase.RenderRequest
	}{
		{"raw.png", usecase.RenderRequest{Style: usecase.StyleRaw, Unit: unit, Width: size, Height: size}},
		{"heatmap.png", usecase.RenderRequest{Style: usecase.StyleHeatmap, Unit: unit, Width: size, Height: size}},
		{"mercator.png", usecase.RenderRequest{
			Style:      usecase.StyleHeatmap,
			Projection: usecase.ProjectionMercator,
			Unit:       unit,
			Width:      size,
			Height:     size,
		}},
	}
	for _, r := range renders {
		if err := writeFile(filepath.Join(outDir, r.name), func(f *os.File) error {
			return uc.Render(r.req, f)
		}); err != nil {
			return fmt.Errorf("failed to render %s: %w", r.name, err)
		}
		log.Printf("Wrote %s", filepath.Join(outDir, r.name))
	}

	// Tidy export.
	tidyPath := filepath.Join(outDir, "tidy.csv")
	if err := writeFile(tidyPath, func(f *os.File) error {
		return uc.TidyCSV(f, keepMissing, unit)
	}); err != nil {
		return fmt.Errorf("failed to export tidy CSV: %w", err)
	}
	log.Printf("Wrote %s", tidyPath)

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	//nolint:gosec // Output path comes from the -out flag.
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printInfo(info *domain.DatasetInfo) {
	fmt.Printf("Dataset: %s\n", info.Path)
	if info.Title != "" {
		fmt.Printf("Title: %s\n", info.Title)
	}

	fmt.Println("Dimensions:")
	for _, d := range info.Dimensions {
		fmt.Printf("  %-12s %d\n", d.Name, d.Length)
	}

	fmt.Println("Variables:")
	for _, v := range info.Variables {
		fmt.Printf("  %-12s %-8s dims=%v\n", v.Name, v.Type, v.Dimensions)
		names := make([]string, 0, len(v.Attributes))
		for name := range v.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("    %s = %q\n", name, v.Attributes[name])
		}
	}

	if len(info.GlobalAttributes) > 0 {
		fmt.Println("Global attributes:")
		names := make([]string, 0, len(info.GlobalAttributes))
		for name := range info.GlobalAttributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s = %q\n", name, info.GlobalAttributes[name])
		}
	}

	fmt.Printf("Data variable: %s", info.DataVariable)
	if info.DataUnits != "" {
		fmt.Printf(" [%s]", info.DataUnits)
	}
	fmt.Printf(", %d time step(s)\n", info.TimeSteps)
}

func printStats(s *usecase.StatsResponse) {
	fmt.Printf("\nSummary of %s [%s]", s.Variable, s.Units)
	if s.Time != "" {
		fmt.Printf(" at %s", s.Time)
	}
	fmt.Println(":")
	fmt.Printf("  grid:    %d lat × %d lon\n", s.Shape[0], s.Shape[1])
	fmt.Printf("  mean:    %.3f\n", s.Stats.Mean)
	fmt.Printf("  min:     %.3f\n", s.Stats.Min)
	fmt.Printf("  max:     %.3f\n", s.Stats.Max)
	fmt.Printf("  stddev:  %.3f\n", s.Stats.StdDev)
	fmt.Printf("  cells:   %d valid, %d missing\n", s.Stats.Count, s.Stats.Missing)
}
