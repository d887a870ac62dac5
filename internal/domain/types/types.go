// Package types contains the report shapes served by the API
package types

import (
	"sort"
	"time"

	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/model"
	"github.com/okian/recap/internal/domain/series"
)

// Report section names
const (
	SectionMembers  = "members"
	SectionActivity = "activity"
	SectionMatches  = "matches"
	SectionStaff    = "staff"
	SectionEvents   = "events"
)

// Sections lists every report section in display order
var Sections = []string{SectionMembers, SectionActivity, SectionMatches, SectionStaff, SectionEvents}

// SeriesPoint is one day of the member-count series
type SeriesPoint struct {
	Date     string  `json:"date"`
	Count    float64 `json:"count"`
	Delta    float64 `json:"daily_delta"`
	Observed bool    `json:"observed"`
}

// MemberSection is the reconstructed member-count series
type MemberSection struct {
	Policy string        `json:"policy"`
	Start  string        `json:"start"`
	End    string        `json:"end"`
	Days   int           `json:"days"`
	Filled int           `json:"filled"`
	Points []SeriesPoint `json:"points"`
}

// ActivitySection holds per-category leaders and the totals behind them
type ActivitySection struct {
	Leaders []aggregate.Leader `json:"leaders"`
	Totals  []aggregate.Total  `json:"totals"`
}

// WinRate is one label's share of wins, in percent
type WinRate struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// MatchSection holds win rates, optionally for a single game
type MatchSection struct {
	Game    string    `json:"game,omitempty"`
	Matches int       `json:"matches"`
	Rates   []WinRate `json:"rates"`
}

// RosterSection is the staff roster grouped by department
type RosterSection struct {
	Groups []aggregate.DepartmentGroup `json:"groups"`
}

// EventsSection lists community events
type EventsSection struct {
	Events       []model.Event `json:"events"`
	Participants int           `json:"participants"`
}

// SectionError describes why a section could not be built
type SectionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Report is the full year-end report. A failed section is nil and has an
// entry in Errors.
type Report struct {
	Session     string                  `json:"session"`
	GeneratedAt time.Time               `json:"generated_at"`
	Members     *MemberSection          `json:"members,omitempty"`
	Activity    *ActivitySection        `json:"activity,omitempty"`
	Matches     *MatchSection           `json:"matches,omitempty"`
	Staff       *RosterSection          `json:"staff,omitempty"`
	Events      *EventsSection          `json:"events,omitempty"`
	Errors      map[string]SectionError `json:"errors,omitempty"`
}

// NewMemberSection flattens a series into its API shape
func NewMemberSection(s series.Series) *MemberSection {
	deltas := s.Deltas()
	points := make([]SeriesPoint, len(s.Points))
	for i, p := range s.Points {
		points[i] = SeriesPoint{
			Date:     p.Date.Format(time.DateOnly),
			Count:    p.Value,
			Delta:    deltas[i],
			Observed: p.Observed,
		}
	}
	return &MemberSection{
		Policy: s.Policy.String(),
		Start:  s.Start.Format(time.DateOnly),
		End:    s.End.Format(time.DateOnly),
		Days:   s.Len(),
		Filled: s.Filled(),
		Points: points,
	}
}

// NewActivitySection orders leaders by category
func NewActivitySection(leaders map[string]aggregate.Leader, totals []aggregate.Total) *ActivitySection {
	out := make([]aggregate.Leader, 0, len(leaders))
	for _, l := range leaders {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return &ActivitySection{Leaders: out, Totals: totals}
}

// NewMatchSection orders rates descending and rounds them to one decimal
func NewMatchSection(game string, matches int, rates map[string]float64) *MatchSection {
	out := make([]WinRate, 0, len(rates))
	for _, label := range aggregate.Labels(rates) {
		out = append(out, WinRate{Label: label, Percent: aggregate.Round1(rates[label])})
	}
	return &MatchSection{Game: game, Matches: matches, Rates: out}
}

// NewEventsSection totals participant counts
func NewEventsSection(events []model.Event) *EventsSection {
	total := 0
	for _, e := range events {
		total += e.Participants
	}
	return &EventsSection{Events: events, Participants: total}
}
