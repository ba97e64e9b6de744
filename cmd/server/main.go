// Package main provides the geo-skeletons dataset inspection server.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	httpHandler "go.ngs.io/geo-skeletons/internal/http"
	"go.ngs.io/geo-skeletons/internal/usecase"
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
		fmt.Printf("geo-skeletons version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	dataDir := getEnv("DATA_DIR", "./data")
	mode := array.ParseMode(getEnv("LAZY_ARRAYS", "false"))
	defaultCRS := getEnv("DEFAULT_CRS", "")
	native, err := strconv.ParseBool(getEnv("NETCDF_NATIVE", "false"))
	if err != nil {
		log.Fatalf("Invalid NETCDF_NATIVE: %v", err)
	}

	log.Printf("Starting geo-skeletons server...")
	log.Printf("Port: %s", port)
	log.Printf("Data directory: %s", dataDir)
	log.Printf("Array mode: %s", mode)
	if defaultCRS != "" {
		log.Printf("Default CRS for cartesian data: %s", defaultCRS)
	}
	if native {
		log.Printf("Reading NetCDF with the pure-Go reader")
	}

	catalog := usecase.NewCatalog(usecase.Config{
		DataDir:    dataDir,
		Mode:       mode,
		DefaultCRS: defaultCRS,
		Native:     native,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
	n, err := catalog.LoadDir()
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}
	log.Printf("Loaded %d datasets", n)

	// Setup router.
	router := httpHandler.SetupRouter(catalog)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/datasets")
	log.Printf("  - GET /v1/datasets/:name")
	log.Printf("  - GET /v1/datasets/:name/fields/:field")
	log.Printf("  - GET /v1/datasets/:name/nearest")
	log.Printf("  - GET /v1/datasets/:name/sample")
	log.Printf("  - GET /v1/datasets/:name/xy")

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
	fmt.Printf("geo-skeletons server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  geo-skeletons [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                Directory of NetCDF (.nc) and CSV station files (default: ./data)")
	fmt.Println("  LAZY_ARRAYS             Keep field arrays lazy until read (default: false)")
	fmt.Println("  DEFAULT_CRS             Projection for cartesian files without one, e.g. 33W or EPSG:32633")
	fmt.Println("  NETCDF_NATIVE           Read NetCDF without the C library (default: false)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Serve the files in ./data")
	fmt.Println("  geo-skeletons")
	fmt.Println()
	fmt.Println("  # Serve a model run lazily on a custom port")
	fmt.Println("  PORT=3000 DATA_DIR=/data/run LAZY_ARRAYS=true geo-skeletons")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                               Health check")
	fmt.Println("  GET /v1/datasets                          List datasets")
	fmt.Println("  GET /v1/datasets/:name                    Describe a dataset")
	fmt.Println("  GET /v1/datasets/:name/fields/:field      Field values (?convention=from|to|math)")
	fmt.Println("  GET /v1/datasets/:name/nearest            Nearest point (?lon=&lat=&fast=)")
	fmt.Println("  GET /v1/datasets/:name/sample             Bilinear sample of a grid field (?lon=&lat=&field=)")
	fmt.Println("  GET /v1/datasets/:name/xy                 Projected coordinates (?zone=33W)")
	fmt.Println()
}
