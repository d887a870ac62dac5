package series

import "time"

// Reconstruction defaults.
const (
	DefaultWindow         = 7
	DefaultDailyIncrement = 6.51
)

type config struct {
	policy    FillPolicy
	start     time.Time
	end       time.Time
	round     bool
	window    int
	increment float64
	cutoff    time.Time
}

func defaultConfig() config {
	return config{
		policy:    Linear,
		window:    DefaultWindow,
		increment: DefaultDailyIncrement,
	}
}

// Option applies a configuration option to Reconstruct.
type Option func(*config)

// WithPolicy selects the fill policy. Linear is the default.
func WithPolicy(p FillPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithRange fixes the output domain. A zero start or end falls back to the
// earliest or latest observation respectively.
func WithRange(start, end time.Time) Option {
	return func(c *config) {
		c.start = start
		c.end = end
	}
}

// WithRounding rounds filled values to integers. LinearSmoothed always rounds.
func WithRounding(round bool) Option {
	return func(c *config) {
		c.round = round
	}
}

// WithWindow sets the trailing moving-average window for LinearSmoothed.
func WithWindow(days int) Option {
	return func(c *config) {
		if days > 0 {
			c.window = days
		}
	}
}

// WithDailyIncrement sets the per-day growth used by FixedIncrement.
func WithDailyIncrement(inc float64) Option {
	return func(c *config) {
		c.increment = inc
	}
}

// WithCutoff sets the date before which MeanBeforeCutoff uses the mean fill.
func WithCutoff(cutoff time.Time) Option {
	return func(c *config) {
		c.cutoff = cutoff
	}
}
