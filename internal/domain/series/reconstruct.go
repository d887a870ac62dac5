package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/recap/internal/domain/model"
)

// Point is one day of a reconstructed series.
type Point struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Observed bool      `json:"observed"`
}

// Series is a complete daily series over [Start, End], one point per day in
// ascending order.
type Series struct {
	Policy FillPolicy `json:"policy"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Points []Point    `json:"points"`
}

// Len returns the number of days in the series.
func (s Series) Len() int { return len(s.Points) }

// Filled returns how many days had no observation.
func (s Series) Filled() int {
	n := 0
	for _, p := range s.Points {
		if !p.Observed {
			n++
		}
	}
	return n
}

// At returns the point for the calendar date of t.
func (s Series) At(t time.Time) (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	idx := model.DaysBetween(s.Start, model.Day(t))
	if idx < 0 || idx >= len(s.Points) {
		return Point{}, false
	}
	return s.Points[idx], true
}

// Deltas returns the day-over-day change of each point; the first day is 0.
func (s Series) Deltas() []float64 {
	out := make([]float64, len(s.Points))
	for i := 1; i < len(s.Points); i++ {
		out[i] = s.Points[i].Value - s.Points[i-1].Value
	}
	return out
}

// Reconstruct fills a sparse, unordered set of observations into a complete
// daily series. The input slice is not modified.
func Reconstruct(observations []model.Observation, opts ...Option) (Series, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(observations) == 0 {
		return Series{}, ErrEmptyObservations
	}
	if _, ok := policyNames[cfg.policy]; !ok {
		return Series{}, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(cfg.policy))
	}
	if cfg.policy == MeanBeforeCutoff && cfg.cutoff.IsZero() {
		return Series{}, ErrMissingCutoff
	}

	obs, err := sortedObservations(observations)
	if err != nil {
		return Series{}, err
	}

	start, end := obs[0].Date, obs[len(obs)-1].Date
	if !cfg.start.IsZero() {
		start = model.Day(cfg.start)
	}
	if !cfg.end.IsZero() {
		end = model.Day(cfg.end)
	}
	if start.After(end) {
		return Series{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	points := make([]Point, model.DaysBetween(start, end)+1)
	for i := range points {
		points[i].Date = start.AddDate(0, 0, i)
	}

	switch cfg.policy {
	case Linear, LinearSmoothed:
		fillLinear(points, obs)
	case FixedIncrement:
		fillFixed(points, obs, cfg.increment)
	case MeanBeforeCutoff:
		fillMean(points, obs, model.Day(cfg.cutoff))
	}

	switch {
	case cfg.policy == LinearSmoothed:
		smooth(points, cfg.window)
		roundValues(points)
	case cfg.round:
		roundValues(points)
	}

	return Series{Policy: cfg.policy, Start: start, End: end, Points: points}, nil
}

// sortedObservations copies, day-truncates and sorts the input, rejecting
// repeated dates.
func sortedObservations(in []model.Observation) ([]model.Observation, error) {
	obs := make([]model.Observation, len(in))
	for i, o := range in {
		obs[i] = model.Observation{Date: model.Day(o.Date), Count: o.Count}
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	for i := 1; i < len(obs); i++ {
		if obs[i].Date.Equal(obs[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, obs[i].Date.Format(time.DateOnly))
		}
	}
	return obs, nil
}

// lookup finds the first observation on or after d.
func lookup(obs []model.Observation, d time.Time) int {
	return sort.Search(len(obs), func(i int) bool { return !obs[i].Date.Before(d) })
}

// interpolate returns the linear estimate for d. Dates outside the observed
// span take the nearest observation.
func interpolate(obs []model.Observation, d time.Time) (float64, bool) {
	i := lookup(obs, d)
	switch {
	case i < len(obs) && obs[i].Date.Equal(d):
		return obs[i].Count, true
	case i == 0:
		return obs[0].Count, false
	case i == len(obs):
		return obs[len(obs)-1].Count, false
	}
	prev, next := obs[i-1], obs[i]
	span := float64(model.DaysBetween(prev.Date, next.Date))
	elapsed := float64(model.DaysBetween(prev.Date, d))
	return prev.Count + (next.Count-prev.Count)*elapsed/span, false
}

func fillLinear(points []Point, obs []model.Observation) {
	for i := range points {
		points[i].Value, points[i].Observed = interpolate(obs, points[i].Date)
	}
}

func fillFixed(points []Point, obs []model.Observation, inc float64) {
	base := obs[0]
	for i := range points {
		d := points[i].Date
		if j := lookup(obs, d); j < len(obs) && obs[j].Date.Equal(d) {
			points[i].Value, points[i].Observed = obs[j].Count, true
			continue
		}
		elapsed := model.DaysBetween(base.Date, d)
		if elapsed < 0 {
			elapsed = 0
		}
		points[i].Value = base.Count + float64(elapsed)*inc
	}
}

func fillMean(points []Point, obs []model.Observation, cutoff time.Time) {
	var sum float64
	var n int
	for _, o := range obs {
		if o.Date.Before(cutoff) {
			sum += o.Count
			n++
		}
	}
	for i := range points {
		v, observed := interpolate(obs, points[i].Date)
		if !observed && n > 0 && points[i].Date.Before(cutoff) {
			v = sum / float64(n)
		}
		points[i].Value, points[i].Observed = v, observed
	}
}

// smooth replaces each value with the mean of up to window trailing values,
// including itself.
func smooth(points []Point, window int) {
	raw := make([]float64, len(points))
	for i, p := range points {
		raw[i] = p.Value
	}
	for i := range points {
		lo := max(0, i-window+1)
		var sum float64
		for _, v := range raw[lo : i+1] {
			sum += v
		}
		points[i].Value = sum / float64(i+1-lo)
	}
}

// roundValues rounds half to even, matching numpy's round.
func roundValues(points []Point) {
	for i := range points {
		points[i].Value = math.RoundToEven(points[i].Value)
	}
}
