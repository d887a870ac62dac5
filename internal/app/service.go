// Package service provides the report service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/recap/internal/adapters/dataset"
	"github.com/okian/recap/internal/adapters/export"
	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/model"
	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/internal/domain/types"
	"github.com/okian/recap/pkg/logger"
	"github.com/okian/recap/pkg/metrics"
)

// Service builds report sections from one data directory. Loaded tables are
// cached for the lifetime of a session; Reset starts a new one.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader *dataset.Loader
	cache  *dataset.Cache

	// Configuration
	dataDir     string
	datasets    Datasets
	policy      series.FillPolicy
	rangeStart  time.Time
	rangeEnd    time.Time
	window      int
	increment   float64
	cutoff      time.Time
	round       bool
	departments []string
	categories  []string
	winLabels   []string
	concurrency int

	// State
	started   bool
	session   string
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:     "data",
		datasets:    DefaultDatasets,
		policy:      series.Linear,
		window:      series.DefaultWindow,
		increment:   series.DefaultDailyIncrement,
		concurrency: len(types.Sections),
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the data directory and begins a session. A missing directory
// is logged, not fatal: every section reports it until the directory exists.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting report service...", logger.String("dataDir", s.dataDir))

	s.loader = dataset.NewLoader(s.dataDir, dataset.WithLogger(s.logger.Named("dataset")))
	if err := s.loader.CheckDir(); err != nil {
		s.logger.Warn(ctx, "data directory unavailable", logger.Error(err))
	}
	s.cache = dataset.NewCache(s.loader)
	s.session = uuid.NewString()
	s.startedAt = time.Now()
	s.started = true

	s.logger.Info(ctx, "report service started",
		logger.String("session", s.session),
		logger.String("policy", s.policy.String()),
		logger.Int("concurrency", s.concurrency),
	)
	return nil
}

// Stop ends the session and drops cached tables.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping report service...")
	s.cache.Reset()
	s.started = false
	s.logger.Info(context.Background(), "report service stopped")
}

// Reset invalidates cached tables and starts a new session. It returns the
// new session id.
func (s *Service) Reset(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return "", ErrNotStarted
	}
	s.cache.Reset()
	previous := s.session
	s.session = uuid.NewString()
	s.logger.Info(ctx, "report session reset",
		logger.String("previous", previous),
		logger.String("session", s.session),
	)
	return s.session, nil
}

// Session returns the current session id.
func (s *Service) Session() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Service) table(ctx context.Context, name string) (*dataset.Table, error) {
	s.mu.RLock()
	cache, started := s.cache, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	return cache.Get(ctx, name)
}

func (s *Service) seriesOptions() []series.Option {
	opts := []series.Option{
		series.WithPolicy(s.policy),
		series.WithRange(s.rangeStart, s.rangeEnd),
		series.WithWindow(s.window),
		series.WithDailyIncrement(s.increment),
		series.WithRounding(s.round),
	}
	if !s.cutoff.IsZero() {
		opts = append(opts, series.WithCutoff(s.cutoff))
	}
	return opts
}

// MemberSeries reconstructs the member-count series. Overrides are applied
// after the configured defaults.
func (s *Service) MemberSeries(ctx context.Context, overrides ...series.Option) (series.Series, error) {
	tbl, err := s.table(ctx, s.datasets.Members)
	if err != nil {
		return series.Series{}, err
	}
	obs, err := dataset.Observations(tbl)
	if err != nil {
		return series.Series{}, err
	}

	start := time.Now()
	result, err := series.Reconstruct(obs, append(s.seriesOptions(), overrides...)...)
	if err != nil {
		return series.Series{}, err
	}
	metrics.RecordReconstructLatency(result.Policy.String(), float64(time.Since(start).Nanoseconds())/1e6)
	metrics.UpdateSeriesShape(result.Len(), result.Filled())

	s.logger.Debug(ctx, "member series reconstructed",
		logger.String("policy", result.Policy.String()),
		logger.Int("observations", len(obs)),
		logger.Int("days", result.Len()),
	)
	return result, nil
}

func (s *Service) activities(ctx context.Context) ([]model.Activity, error) {
	tbl, err := s.table(ctx, s.datasets.Activity)
	if err != nil {
		return nil, err
	}
	records, err := dataset.Activities(tbl)
	if err != nil {
		return nil, err
	}
	if len(s.categories) == 0 {
		return records, nil
	}
	allowed := make(map[string]struct{}, len(s.categories))
	for _, c := range s.categories {
		allowed[strings.ToLower(c)] = struct{}{}
	}
	filtered := records[:0:0]
	for _, r := range records {
		if _, ok := allowed[r.Category]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// ActivityLeaders returns the top scorer of every activity category.
func (s *Service) ActivityLeaders(ctx context.Context) (*types.ActivitySection, error) {
	records, err := s.activities(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewActivitySection(aggregate.Leaders(records), aggregate.Totals(records)), nil
}

// ActivityLeader returns the top scorer of one category.
func (s *Service) ActivityLeader(ctx context.Context, category string) (aggregate.Leader, error) {
	records, err := s.activities(ctx)
	if err != nil {
		return aggregate.Leader{}, err
	}
	return aggregate.LeaderFor(records, strings.ToLower(strings.TrimSpace(category)))
}

func (s *Service) matches(ctx context.Context) ([]model.Match, error) {
	tbl, err := s.table(ctx, s.datasets.Matches)
	if err != nil {
		return nil, err
	}
	return dataset.Matches(tbl)
}

// WinRates returns win percentages across all matches, or for one game when
// game is not empty.
func (s *Service) WinRates(ctx context.Context, game string) (*types.MatchSection, error) {
	all, err := s.matches(ctx)
	if err != nil {
		return nil, err
	}

	selected := all
	if game != "" {
		selected = nil
		for _, m := range all {
			if strings.EqualFold(m.Game, game) {
				selected = append(selected, m)
			}
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("%w: game %q", aggregate.ErrNoRecords, game)
		}
	}

	rates := aggregate.FillLabels(aggregate.WinRates(selected), s.winLabels...)
	return types.NewMatchSection(game, len(selected), rates), nil
}

// WinRatesByGame returns one win-rate section per game, ordered by game.
func (s *Service) WinRatesByGame(ctx context.Context) ([]*types.MatchSection, error) {
	all, err := s.matches(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, m := range all {
		counts[m.Game]++
	}
	byGame := aggregate.WinRatesByGame(all)
	games := make([]string, 0, len(byGame))
	for g := range byGame {
		games = append(games, g)
	}
	sort.Strings(games)

	out := make([]*types.MatchSection, 0, len(games))
	for _, g := range games {
		rates := aggregate.FillLabels(byGame[g], s.winLabels...)
		out = append(out, types.NewMatchSection(g, counts[g], rates))
	}
	return out, nil
}

// StaffRoster groups staff by the configured department order.
func (s *Service) StaffRoster(ctx context.Context) (*types.RosterSection, error) {
	tbl, err := s.table(ctx, s.datasets.Staff)
	if err != nil {
		return nil, err
	}
	staff, err := dataset.Staff(tbl)
	if err != nil {
		return nil, err
	}
	return &types.RosterSection{Groups: aggregate.GroupByDepartment(staff, s.departments)}, nil
}

// Events lists community events.
func (s *Service) Events(ctx context.Context) (*types.EventsSection, error) {
	tbl, err := s.table(ctx, s.datasets.Events)
	if err != nil {
		return nil, err
	}
	events, err := dataset.Events(tbl)
	if err != nil {
		return nil, err
	}
	return types.NewEventsSection(events), nil
}

// Report builds every section concurrently. A failing section is recorded
// in the report's Errors and never stops the others.
func (s *Service) Report(ctx context.Context) (*types.Report, error) {
	s.mu.RLock()
	started, session := s.started, s.session
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	report := &types.Report{Session: session, GeneratedAt: time.Now().UTC()}
	var mu sync.Mutex
	record := func(section string, err error) {
		metrics.RecordSectionBuild(section)
		if err == nil {
			return
		}
		code := Code(err)
		metrics.RecordSectionError(section, code)
		s.logger.Warn(ctx, "report section failed",
			logger.String("section", section),
			logger.String("code", code),
			logger.Error(err),
		)
		mu.Lock()
		defer mu.Unlock()
		if report.Errors == nil {
			report.Errors = make(map[string]types.SectionError)
		}
		report.Errors[section] = types.SectionError{Code: code, Message: err.Error()}
	}

	builders := map[string]func() error{
		types.SectionMembers: func() error {
			ms, err := s.MemberSeries(ctx)
			if err == nil {
				report.Members = types.NewMemberSection(ms)
			}
			return err
		},
		types.SectionActivity: func() (err error) {
			report.Activity, err = s.ActivityLeaders(ctx)
			return err
		},
		types.SectionMatches: func() (err error) {
			report.Matches, err = s.WinRates(ctx, "")
			return err
		},
		types.SectionStaff: func() (err error) {
			report.Staff, err = s.StaffRoster(ctx)
			return err
		},
		types.SectionEvents: func() (err error) {
			report.Events, err = s.Events(ctx)
			return err
		},
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, section := range types.Sections {
		build := builders[section]
		g.Go(func() error {
			record(section, build())
			return nil
		})
	}
	_ = g.Wait()

	return report, nil
}

// ExportMembers writes the member series as an xlsx workbook.
func (s *Service) ExportMembers(ctx context.Context, w io.Writer, overrides ...series.Option) error {
	ms, err := s.MemberSeries(ctx, overrides...)
	if err != nil {
		return err
	}
	if err := export.WriteSeries(w, ms); err != nil {
		return err
	}
	s.logger.Info(ctx, "member series exported", logger.Int("rows", ms.Len()))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"dataDir":     s.dataDir,
		"policy":      s.policy.String(),
		"concurrency": s.concurrency,
	}

	if s.started {
		cached := s.cache.Len()
		stats["session"] = s.session
		stats["startedAt"] = s.startedAt.UTC().Format(time.RFC3339)
		stats["cachedDatasets"] = cached
		stats["dataDirPresent"] = s.loader.CheckDir() == nil

		metrics.UpdateCacheEntries(cached)
	}

	return stats
}
