package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/recap/internal/domain/model"
)

const percent = 100

// WinRates returns, for every label that won at least once, the share of all
// matches it won as a percentage. Matches without a winner count toward the
// total but produce no label.
func WinRates(matches []model.Match) map[string]float64 {
	counts := make(map[string]int)
	for _, m := range matches {
		if w := strings.TrimSpace(m.Winner); w != "" {
			counts[w]++
		}
	}

	out := make(map[string]float64, len(counts))
	if len(matches) == 0 {
		return out
	}
	total := float64(len(matches))
	for label, n := range counts {
		out[label] = float64(n) / total * percent
	}
	return out
}

// WinRatesByGame computes WinRates separately for each game title.
func WinRatesByGame(matches []model.Match) map[string]map[string]float64 {
	byGame := make(map[string][]model.Match)
	for _, m := range matches {
		byGame[m.Game] = append(byGame[m.Game], m)
	}
	out := make(map[string]map[string]float64, len(byGame))
	for game, ms := range byGame {
		out[game] = WinRates(ms)
	}
	return out
}

// FillLabels returns a copy of rates where every listed label is present,
// defaulting to 0.
func FillLabels(rates map[string]float64, labels ...string) map[string]float64 {
	out := make(map[string]float64, len(rates)+len(labels))
	for k, v := range rates {
		out[k] = v
	}
	for _, l := range labels {
		if _, ok := out[l]; !ok {
			out[l] = 0
		}
	}
	return out
}

// Labels returns the keys of rates ordered by rate descending, then label.
func Labels(rates map[string]float64) []string {
	out := make([]string, 0, len(rates))
	for k := range rates {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if rates[out[i]] != rates[out[j]] {
			return rates[out[i]] > rates[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
