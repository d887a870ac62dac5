// Package aggregate holds the stateless reducers behind the leaderboard,
// win-rate and roster report sections.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/recap/internal/domain/model"
)

// Leader is the top scorer of one activity category.
type Leader struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// Total is the summed score of one (name, category) pair.
type Total struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

type totalKey struct {
	name     string
	category string
}

// Totals sums scores per (name, category), ordered by category then score
// descending then name.
func Totals(records []model.Activity) []Total {
	sums := make(map[totalKey]float64)
	for _, r := range records {
		sums[totalKey{name: r.Name, category: r.Category}] += r.Score
	}

	out := make([]Total, 0, len(sums))
	for k, v := range sums {
		out = append(out, Total{Name: k.name, Category: k.category, Score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Name < b.Name
	})
	return out
}

// Leaders returns the top scorer for every category present in records.
// Ties go to the lexicographically smallest name.
func Leaders(records []model.Activity) map[string]Leader {
	out := make(map[string]Leader)
	for _, t := range Totals(records) {
		if _, ok := out[t.Category]; ok {
			continue
		}
		out[t.Category] = Leader{Category: t.Category, Name: t.Name, Score: t.Score}
	}
	return out
}

// LeaderFor returns the top scorer of a single category.
func LeaderFor(records []model.Activity, category string) (Leader, error) {
	var filtered []model.Activity
	for _, r := range records {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return Leader{}, fmt.Errorf("%w: %q", ErrNoRecords, category)
	}
	return Leaders(filtered)[category], nil
}
