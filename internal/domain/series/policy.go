// Package series reconstructs complete daily series from sparse dated observations.
package series

import (
	"fmt"
	"strings"
)

// FillPolicy selects how days without an observation are estimated.
type FillPolicy int

const (
	// Linear interpolates between neighbouring observations.
	Linear FillPolicy = iota
	// LinearSmoothed interpolates, then applies a trailing moving average and rounds.
	LinearSmoothed
	// FixedIncrement grows from the first observation by a constant per day.
	FixedIncrement
	// MeanBeforeCutoff fills days before a cutoff with the mean of earlier observations.
	MeanBeforeCutoff
)

var policyNames = map[FillPolicy]string{
	Linear:           "linear",
	LinearSmoothed:   "linear+smoothed",
	FixedIncrement:   "fixed-increment",
	MeanBeforeCutoff: "mean-fill-before-cutoff",
}

var policyAliases = map[string]FillPolicy{
	"linear":                  Linear,
	"linear+smoothed":         LinearSmoothed,
	"smoothed":                LinearSmoothed,
	"fixed-increment":         FixedIncrement,
	"fixed":                   FixedIncrement,
	"mean-fill-before-cutoff": MeanBeforeCutoff,
	"mean":                    MeanBeforeCutoff,
}

// String returns the canonical policy name.
func (p FillPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("FillPolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p FillPolicy) MarshalText() ([]byte, error) {
	if _, ok := policyNames[p]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FillPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePolicy resolves a policy name. Matching is case-insensitive and
// accepts the short aliases smoothed, fixed and mean.
func ParsePolicy(name string) (FillPolicy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if p, ok := policyAliases[key]; ok {
		return p, nil
	}
	return Linear, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}
