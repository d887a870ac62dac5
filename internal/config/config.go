// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Dates are plain YYYY-MM-DD strings; accessors parse them.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/recap/internal/domain/series"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile mirrors logs into a rotated file when set.
	LogFile string `koanf:"log_file"`

	// LogMaxSizeMB and LogMaxBackups bound the rotated log file.
	LogMaxSizeMB  int `koanf:"log_max_size_mb"`
	LogMaxBackups int `koanf:"log_max_backups"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the directory holding the CSV datasets.
	DataDir string `koanf:"data_dir"`

	// Dataset file names, without extension.
	MembersDataset  string `koanf:"members_dataset"`
	ActivityDataset string `koanf:"activity_dataset"`
	EventsDataset   string `koanf:"events_dataset"`
	StaffDataset    string `koanf:"staff_dataset"`
	MatchesDataset  string `koanf:"matches_dataset"`

	// FillPolicy is the default member-series fill policy.
	FillPolicy string `koanf:"fill_policy"`

	// SeriesStart and SeriesEnd fix the member-series range (YYYY-MM-DD).
	SeriesStart string `koanf:"series_start"`
	SeriesEnd   string `koanf:"series_end"`

	// SmoothingWindow is the trailing window for linear+smoothed.
	SmoothingWindow int `koanf:"smoothing_window"`

	// DailyIncrement is the per-day growth for fixed-increment.
	DailyIncrement float64 `koanf:"daily_increment"`

	// MeanCutoff is the cutoff date for mean-fill-before-cutoff.
	MeanCutoff string `koanf:"mean_cutoff"`

	// RoundValues rounds reconstructed counts for every policy.
	RoundValues bool `koanf:"round_values"`

	// DepartmentOrder orders the staff roster; others go to "other".
	DepartmentOrder []string `koanf:"department_order"`

	// ActivityCategories limits the activity section; empty means all.
	ActivityCategories []string `koanf:"activity_categories"`

	// WinLabels always appear in win rates, at 0% when they never won.
	WinLabels []string `koanf:"win_labels"`

	// ReportConcurrency bounds concurrent section builds.
	ReportConcurrency int `koanf:"report_concurrency"`
}

// listKeys are comma-separated when read from the environment.
var listKeys = map[string]bool{
	"department_order":    true,
	"activity_categories": true,
	"win_labels":          true,
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		LogMaxSizeMB:      50,
		LogMaxBackups:     3,
		Addr:              ":9080",
		DataDir:           "data",
		MembersDataset:    "members",
		ActivityDataset:   "activity",
		EventsDataset:     "events",
		StaffDataset:      "staff",
		MatchesDataset:    "matches",
		FillPolicy:        series.Linear.String(),
		SmoothingWindow:   series.DefaultWindow,
		DailyIncrement:    series.DefaultDailyIncrement,
		ReportConcurrency: 5,
	}
}

// Policy parses FillPolicy.
func (c *Config) Policy() (series.FillPolicy, error) {
	p, err := series.ParsePolicy(c.FillPolicy)
	if err != nil {
		return p, fmt.Errorf("%w: fill_policy: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

// SeriesRange parses SeriesStart and SeriesEnd. Unset bounds are zero.
func (c *Config) SeriesRange() (start, end time.Time, err error) {
	if start, err = parseDate("series_start", c.SeriesStart); err != nil {
		return
	}
	if end, err = parseDate("series_end", c.SeriesEnd); err != nil {
		return
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		err = fmt.Errorf("%w: series_start is after series_end", ErrInvalidConfig)
	}
	return
}

// Cutoff parses MeanCutoff. An unset cutoff is zero.
func (c *Config) Cutoff() (time.Time, error) {
	return parseDate("mean_cutoff", c.MeanCutoff)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	p, err := c.Policy()
	if err != nil {
		return err
	}
	if _, _, err := c.SeriesRange(); err != nil {
		return err
	}
	cutoff, err := c.Cutoff()
	if err != nil {
		return err
	}
	if p == series.MeanBeforeCutoff && cutoff.IsZero() {
		return fmt.Errorf("%w: mean_cutoff is required for %s", ErrInvalidConfig, p)
	}
	if c.SmoothingWindow < 1 {
		return fmt.Errorf("%w: smoothing_window must be positive", ErrInvalidConfig)
	}
	if c.ReportConcurrency < 1 {
		return fmt.Errorf("%w: report_concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}

func parseDate(key, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return t, nil
}
