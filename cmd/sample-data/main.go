package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/recap/internal/sampledata"
)

// Default configuration constants.
const (
	defaultSeed         = 1
	defaultObservations = 24
	defaultUsers        = 40
	defaultStaff        = 12
	defaultMatches      = 120
	defaultEvents       = 12
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 2 * time.Minute
)

func main() {
	var (
		dataDir      = flag.String("dir", "data", "Directory to write the CSV files to")
		baseURL      = flag.String("url", "", "Base URL of the service to verify; empty skips verification")
		seed         = flag.Uint64("seed", defaultSeed, "Random seed; equal seeds write equal files")
		year         = flag.Int("year", time.Now().Year(), "Report year")
		observations = flag.Int("observations", defaultObservations, "Member-count samples spread over the year")
		users        = flag.Int("users", defaultUsers, "Distinct activity users")
		staff        = flag.Int("staff", defaultStaff, "Staff roster size")
		matches      = flag.Int("matches", defaultMatches, "Scrimmage records")
		events       = flag.Int("events", defaultEvents, "Community events")
		korean       = flag.Bool("korean", false, "Write Korean headers and decomposed (NFD) Korean file names")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile      = flag.String("log", "", "Log file for run output (default: sample_data_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampledata.ShowHelp()
		return
	}

	// Setup logging
	if err := sampledata.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &sampledata.Config{
		DataDir:      *dataDir,
		BaseURL:      *baseURL,
		Seed:         *seed,
		Year:         *year,
		Observations: *observations,
		Users:        *users,
		Staff:        *staff,
		Matches:      *matches,
		Events:       *events,
		Korean:       *korean,
		Timeout:      *timeout,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	result, err := sampledata.Run(ctx, config)
	if err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Korean names need matching service configuration.
	if *korean {
		for _, ds := range result.Datasets {
			os.Stdout.WriteString("RECAP_" + strings.ToUpper(ds.Kind) + "_DATASET=" + ds.Name + "\n")
		}
	}
}
