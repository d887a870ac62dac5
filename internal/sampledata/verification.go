package sampledata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/model"
	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/internal/domain/types"
	"github.com/okian/recap/pkg/logger"
)

// verifyReport compares every report section against the generated data.
// All mismatches are collected before returning.
func verifyReport(ctx context.Context, config *Config, report *types.Report, exp *Expected, stats *Stats) error {
	logger.Get().Info(ctx, "verifying report", logger.String("session", report.Session))

	checks := map[string]func() error{
		types.SectionMembers:  func() error { return verifyMembers(report.Members, exp) },
		types.SectionActivity: func() error { return verifyActivity(report.Activity, exp) },
		types.SectionMatches:  func() error { return verifyMatches(report.Matches, exp) },
		types.SectionStaff:    func() error { return verifyStaff(report.Staff, exp) },
		types.SectionEvents:   func() error { return verifyEvents(report.Events, exp) },
	}

	var errs []error
	for _, section := range types.Sections {
		err := checks[section]()
		if se, ok := report.Errors[section]; ok {
			err = fmt.Errorf("section failed: %s: %s", se.Code, se.Message)
		}
		if err != nil {
			stats.SectionsFailed++
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
			logger.Get().Warn(ctx, "section mismatch", logger.String("section", section), logger.Error(err))
			continue
		}
		stats.SectionsVerified++
		if config.Verbose {
			logger.Get().Info(ctx, "section verified", logger.String("section", section))
		}
	}

	if config.Verbose && report.Activity != nil {
		displayLeaders(ctx, report.Activity.Leaders)
	}
	return errors.Join(errs...)
}

// verifyMembers checks the series is one point per day from the first to the
// last sample and that sampled days are flagged observed. Sampled counts are
// compared except under linear+smoothed, which averages them away.
func verifyMembers(section *types.MemberSection, exp *Expected) error {
	if section == nil {
		return errors.New("missing section")
	}
	obs := exp.Observations
	if len(obs) == 0 {
		return errors.New("no observations generated")
	}
	first, last := obs[0].Date, obs[len(obs)-1].Date
	wantDays := model.DaysBetween(first, last) + 1
	exact := section.Policy != series.LinearSmoothed.String()
	if section.Days != wantDays || len(section.Points) != wantDays {
		return fmt.Errorf("expected %d days, got %d with %d points", wantDays, section.Days, len(section.Points))
	}
	if section.Filled != wantDays-len(obs) {
		return fmt.Errorf("expected %d filled days, got %d", wantDays-len(obs), section.Filled)
	}

	byDate := make(map[string]float64, len(obs))
	for _, o := range obs {
		byDate[o.Date.Format(time.DateOnly)] = o.Count
	}
	for i, p := range section.Points {
		if want := first.AddDate(0, 0, i).Format(time.DateOnly); p.Date != want {
			return fmt.Errorf("point %d: expected date %s, got %s", i, want, p.Date)
		}
		count, observed := byDate[p.Date]
		if observed != p.Observed {
			return fmt.Errorf("%s: expected observed=%t", p.Date, observed)
		}
		if exact && observed && p.Count != count {
			return fmt.Errorf("%s: expected count %.0f, got %.2f", p.Date, count, p.Count)
		}
	}
	return nil
}

func verifyActivity(section *types.ActivitySection, exp *Expected) error {
	if section == nil {
		return errors.New("missing section")
	}
	if len(section.Leaders) != len(exp.Leaders) {
		return fmt.Errorf("expected %d leaders, got %d", len(exp.Leaders), len(section.Leaders))
	}
	for _, got := range section.Leaders {
		want, ok := exp.Leaders[got.Category]
		if !ok {
			return fmt.Errorf("unexpected category %q", got.Category)
		}
		if got != want {
			return fmt.Errorf("%s: expected leader %s (%.0f), got %s (%.0f)", got.Category, want.Name, want.Score, got.Name, got.Score)
		}
	}
	return nil
}

// verifyMatches checks rates match the generated winners and never sum to
// more than 100 percent.
func verifyMatches(section *types.MatchSection, exp *Expected) error {
	if section == nil {
		return errors.New("missing section")
	}
	if section.Matches != exp.Matches {
		return fmt.Errorf("expected %d matches, got %d", exp.Matches, section.Matches)
	}

	var sum float64
	for _, r := range section.Rates {
		want, ok := exp.Rates[r.Label]
		if !ok {
			return fmt.Errorf("unexpected label %q", r.Label)
		}
		if math.Abs(aggregate.Round1(want)-r.Percent) > rateTolerance {
			return fmt.Errorf("%s: expected %.1f%%, got %.1f%%", r.Label, want, r.Percent)
		}
		sum += r.Percent
	}
	if limit := PercentageMultiplier + rateTolerance*float64(len(section.Rates)); sum > limit {
		return fmt.Errorf("rates sum to %.1f%%", sum)
	}
	if !sort.SliceIsSorted(section.Rates, func(i, j int) bool { return section.Rates[i].Percent > section.Rates[j].Percent }) {
		return errors.New("rates are not ordered by percent")
	}
	return nil
}

func verifyStaff(section *types.RosterSection, exp *Expected) error {
	if section == nil {
		return errors.New("missing section")
	}
	total := 0
	for _, g := range section.Groups {
		if len(g.Members) == 0 {
			return fmt.Errorf("empty department %q", g.Department)
		}
		total += len(g.Members)
	}
	if total != exp.Staff {
		return fmt.Errorf("expected %d staff, got %d", exp.Staff, total)
	}
	return nil
}

func verifyEvents(section *types.EventsSection, exp *Expected) error {
	if section == nil {
		return errors.New("missing section")
	}
	if len(section.Events) != exp.Events {
		return fmt.Errorf("expected %d events, got %d", exp.Events, len(section.Events))
	}
	if section.Participants != exp.Participants {
		return fmt.Errorf("expected %d participants, got %d", exp.Participants, section.Participants)
	}
	return nil
}

// displayLeaders logs the leader of every activity category.
func displayLeaders(ctx context.Context, leaders []aggregate.Leader) {
	for _, l := range leaders {
		logger.Get().Info(ctx, "activity leader",
			logger.String("category", l.Category),
			logger.String("name", l.Name),
			logger.Float64("score", l.Score))
	}
}
