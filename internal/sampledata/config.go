package sampledata

import (
	"time"

	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/model"
)

// Config holds configuration for a sample data run
type Config struct {
	DataDir      string        // Directory the CSV files are written to
	BaseURL      string        // Service to verify against; empty skips verification
	Seed         uint64        // Random seed; equal seeds write equal files
	Year         int           // Report year
	Observations int           // Member-count samples spread over the year
	Users        int           // Distinct activity users
	Staff        int           // Staff roster size
	Matches      int           // Scrimmage records
	Events       int           // Community events
	Korean       bool          // Korean headers and decomposed (NFD) Korean file names
	Timeout      time.Duration // HTTP request timeout
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
}

// Dataset describes one written file
type Dataset struct {
	Kind string // Report section the file backs
	Name string // Name the service is configured with, NFC
	Path string // Path on disk; its base may be NFD
	Rows int
}

// Expected holds the values the service should report for the written data
type Expected struct {
	Observations []model.Observation
	Leaders      map[string]aggregate.Leader
	Matches      int
	Rates        map[string]float64
	Staff        int
	Events       int
	Participants int
}

// Result is the outcome of Generate
type Result struct {
	Datasets []Dataset
	Expected Expected
}

// Names returns the configured dataset name of each section kind
func (r *Result) Names() map[string]string {
	out := make(map[string]string, len(r.Datasets))
	for _, d := range r.Datasets {
		out[d.Kind] = d.Name
	}
	return out
}

// Stats holds run statistics
type Stats struct {
	FilesWritten     int
	RowsWritten      int
	SectionsVerified int
	SectionsFailed   int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
