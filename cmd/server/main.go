// Package main provides the sunshine dataset HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.climdata.io/sunshine-api/internal/adapter/store"
	"go.climdata.io/sunshine-api/internal/adapter/store/csvfield"
	"go.climdata.io/sunshine-api/internal/adapter/store/ncfield"
	httpHandler "go.climdata.io/sunshine-api/internal/http"
	"go.climdata.io/sunshine-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("sunshine-api version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	ncPath := getEnv("SUNSHINE_NC_PATH", "./data/sunshine.nc")
	csvPath := getEnv("SUNSHINE_CSV_PATH", "")
	varName := getEnv("SUNSHINE_VAR", "")
	timeIndexStr := getEnv("SUNSHINE_TIME_INDEX", "0")

	timeIndex, err := strconv.Atoi(timeIndexStr)
	if err != nil {
		log.Fatalf("Invalid SUNSHINE_TIME_INDEX %q: %v", timeIndexStr, err)
	}

	log.Printf("Starting sunshine API server...")
	log.Printf("Port: %s", port)

	// Initialize the grid source. A tidy CSV path takes precedence over
	// the NetCDF path so pre-extracted exports can be served directly.
	var source store.GridSource
	if csvPath != "" {
		log.Printf("Tidy CSV source: %s", csvPath)
		source = csvfield.NewStore(csvPath)
	} else {
		log.Printf("NetCDF source: %s", ncPath)
		if varName != "" {
			log.Printf("  Data variable: %s", varName)
		}
		if timeIndex != 0 {
			log.Printf("  Time index: %d", timeIndex)
		}
		source = ncfield.NewStore(ncPath,
			ncfield.WithVariable(varName),
			ncfield.WithTimeIndex(timeIndex))
	}

	// Fail fast if the dataset cannot be opened.
	info, err := source.Describe()
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	log.Printf("Dataset ready: variable=%s units=%q time_steps=%d",
		info.DataVariable, info.DataUnits, info.TimeSteps)

	// Initialize use case.
	inspectUC := usecase.NewInspectUseCase(source)

	// Setup router.
	router := httpHandler.SetupRouter(inspectUC)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/dataset")
	log.Printf("  - GET /v1/stats")
	log.Printf("  - GET /v1/point")
	log.Printf("  - GET /v1/render")
	log.Printf("  - GET /v1/tidy")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Sunshine API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  SUNSHINE_NC_PATH        Path to NetCDF file (default: ./data/sunshine.nc)")
	fmt.Println("  SUNSHINE_CSV_PATH       Path to tidy CSV file (optional, overrides NetCDF)")
	fmt.Println("  SUNSHINE_VAR            Data variable name (default: auto-detect)")
	fmt.Println("  SUNSHINE_TIME_INDEX     Time slice to serve (default: 0)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health        Health check")
	fmt.Println("  GET /v1/dataset    Dataset metadata (dimensions, variables, attributes)")
	fmt.Println("  GET /v1/stats      Summary statistics (?unit=minutes|hours/day)")
	fmt.Println("  GET /v1/point      Interpolated value (?lat=&lon=)")
	fmt.Println("  GET /v1/render     PNG raster (?style=raw|heatmap&projection=latlon|mercator)")
	fmt.Println("  GET /v1/tidy       Long-format CSV export (?missing=keep|drop)")
	fmt.Println()
}
