package service

import (
	"time"

	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/pkg/logger"
)

// Datasets names the file (without extension) backing each report section.
type Datasets struct {
	Members  string
	Activity string
	Events   string
	Staff    string
	Matches  string
}

// DefaultDatasets matches the file names exported by the community sheets.
var DefaultDatasets = Datasets{
	Members:  "members",
	Activity: "activity",
	Events:   "events",
	Staff:    "staff",
	Matches:  "matches",
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDataDir sets the directory datasets are read from.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithDatasets overrides dataset names; empty fields keep their default.
func WithDatasets(d Datasets) Option {
	return func(s *Service) {
		if d.Members != "" {
			s.datasets.Members = d.Members
		}
		if d.Activity != "" {
			s.datasets.Activity = d.Activity
		}
		if d.Events != "" {
			s.datasets.Events = d.Events
		}
		if d.Staff != "" {
			s.datasets.Staff = d.Staff
		}
		if d.Matches != "" {
			s.datasets.Matches = d.Matches
		}
	}
}

// WithFillPolicy sets the default member-series fill policy.
func WithFillPolicy(p series.FillPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithSeriesRange fixes the member-series date range.
func WithSeriesRange(start, end time.Time) Option {
	return func(s *Service) {
		s.rangeStart = start
		s.rangeEnd = end
	}
}

// WithSmoothingWindow sets the moving-average window for smoothed series.
func WithSmoothingWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.window = days
		}
	}
}

// WithDailyIncrement sets the growth per day for the fixed-increment policy.
func WithDailyIncrement(inc float64) Option {
	return func(s *Service) {
		s.increment = inc
	}
}

// WithMeanCutoff sets the cutoff for the mean-fill policy.
func WithMeanCutoff(cutoff time.Time) Option {
	return func(s *Service) {
		s.cutoff = cutoff
	}
}

// WithRounding rounds reconstructed member counts.
func WithRounding(round bool) Option {
	return func(s *Service) {
		s.round = round
	}
}

// WithDepartmentOrder sets the roster department order.
func WithDepartmentOrder(order []string) Option {
	return func(s *Service) {
		s.departments = append([]string(nil), order...)
	}
}

// WithActivityCategories limits the activity section to the given categories.
func WithActivityCategories(categories []string) Option {
	return func(s *Service) {
		s.categories = append([]string(nil), categories...)
	}
}

// WithWinLabels lists labels that always appear in win rates, at 0 if absent.
func WithWinLabels(labels []string) Option {
	return func(s *Service) {
		s.winLabels = append([]string(nil), labels...)
	}
}

// WithReportConcurrency bounds how many sections Report builds at once.
func WithReportConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}
