package sampledata

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/recap/pkg/logger"
)

// Run writes the sample datasets and, when BaseURL is set, verifies a
// running service reports them correctly.
func Run(ctx context.Context, config *Config) (*Result, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting recap sample data run",
		logger.String("dataDir", config.DataDir),
		logger.String("baseURL", config.BaseURL),
		logger.Int("observations", config.Observations),
		logger.Int("users", config.Users),
		logger.Int("staff", config.Staff),
		logger.Int("matches", config.Matches),
		logger.Int("events", config.Events),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Generate datasets
	result, err := Generate(ctx, config, stats)
	if err != nil {
		return nil, fmt.Errorf("dataset generation failed: %w", err)
	}

	if config.BaseURL == "" {
		finish(stats)
		return result, nil
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := newHTTPClient(config.BaseURL, timeout)

	// Step 2: Check service health
	logger.Get().Info(ctx, "checking service health")
	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 3: Drop anything the service cached before the files changed
	session, err := client.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("session reset failed: %w", err)
	}
	logger.Get().Info(ctx, "service session reset", logger.String("session", session))

	// Step 4: Fetch and verify the report
	report, err := client.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("report retrieval failed: %w", err)
	}
	if report.Session != session {
		logger.Get().Warn(ctx, "report served by another session", logger.String("want", session), logger.String("got", report.Session))
	}
	if err := verifyReport(ctx, config, report, &result.Expected, stats); err != nil {
		finish(stats)
		return result, fmt.Errorf("result verification failed: %w", err)
	}

	finish(stats)
	logger.Get().Info(ctx, "run completed successfully")
	return result, nil
}

// finish closes out and logs the run statistics.
func finish(stats *Stats) {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	var verifiedRate float64
	if total := stats.SectionsVerified + stats.SectionsFailed; total > 0 {
		verifiedRate = float64(stats.SectionsVerified) / float64(total) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("filesWritten", stats.FilesWritten),
		logger.Int("rowsWritten", stats.RowsWritten),
		logger.Int("sectionsVerified", stats.SectionsVerified),
		logger.Int("sectionsFailed", stats.SectionsFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("verifiedRate", verifiedRate))
}
