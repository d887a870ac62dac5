package sampledata

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/recap/pkg/logger"
)

// SetupLogging logs to both console and a rotated file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sample_data_" + timestamp + ".log"
	}

	if err := logger.Init(logger.WithFile(logFile, 0, 0)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return fmt.Errorf("failed to set log level: %w", err)
		}
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the sample data tool.
func ShowHelp() {
	os.Stdout.WriteString(`Recap Sample Data Tool
======================

Writes a year of synthetic community datasets and optionally checks that a
running recap service reports them correctly.

Usage:
  go run cmd/sample-data/main.go [options]

Options:
  -dir string
        Directory to write the CSV files to (default "data")
  -url string
        Base URL of the service to verify; empty skips verification
  -seed uint
        Random seed; equal seeds write equal files (default 1)
  -year int
        Report year (default: current year)
  -observations int
        Member-count samples spread over the year (default 24)
  -users int
        Distinct activity users (default 40)
  -staff int
        Staff roster size (default 12)
  -matches int
        Scrimmage records (default 120)
  -events int
        Community events (default 12)
  -korean
        Write Korean headers and decomposed (NFD) Korean file names
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for run output (default: sample_data_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Write the default datasets into ./data
  go run cmd/sample-data/main.go

  # Write datasets and verify a local service reading the same directory
  go run cmd/sample-data/main.go -dir data -url http://localhost:9080

  # Korean file names, as exported from the community spreadsheets
  go run cmd/sample-data/main.go -korean -seed 7
`)
}
