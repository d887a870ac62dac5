package sampledata

import (
	"context"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/model"
	"github.com/okian/recap/internal/domain/types"
	"github.com/okian/recap/pkg/logger"
)

// utf8BOM prefixes Korean files the way spreadsheet exports do.
const utf8BOM = "\ufeff"

type generator struct {
	cfg  *Config
	rng  *rand.Rand
	ns   uuid.UUID
	lang int
}

func newGenerator(cfg *Config) *generator {
	seed := make([]byte, 8)
	binary.BigEndian.PutUint64(seed, cfg.Seed)

	g := &generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, defaultSeedStream)),
		ns:  uuid.NewSHA1(uuid.NameSpaceOID, seed),
	}
	if cfg.Korean {
		g.lang = 1
	}
	return g
}

// Generate writes one CSV file per report section into cfg.DataDir and
// returns what the service should report for them.
func Generate(ctx context.Context, cfg *Config, stats *Stats) (*Result, error) {
	logger.Get().Info(ctx, "generating sample datasets",
		logger.String("dataDir", cfg.DataDir),
		logger.Any("seed", cfg.Seed),
		logger.Int("year", cfg.Year),
		logger.Bool("korean", cfg.Korean))

	if err := os.MkdirAll(cfg.DataDir, directoryPermission); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	g := newGenerator(cfg)
	result := &Result{}
	builders := map[string]func(*Expected) [][]string{
		types.SectionMembers:  g.members,
		types.SectionActivity: g.activity,
		types.SectionMatches:  g.matches,
		types.SectionStaff:    g.staff,
		types.SectionEvents:   g.events,
	}

	for _, kind := range types.Sections {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}

		rows := builders[kind](&result.Expected)
		ds, err := g.write(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", kind, err)
		}
		result.Datasets = append(result.Datasets, ds)

		stats.FilesWritten++
		stats.RowsWritten += ds.Rows
		logger.Get().Debug(ctx, "dataset written", logger.String("kind", kind), logger.String("path", ds.Path), logger.Int("rows", ds.Rows))
	}

	logger.Get().Info(ctx, "generated sample datasets", logger.Int("files", stats.FilesWritten), logger.Int("rows", stats.RowsWritten))
	return result, nil
}

func (g *generator) yearStart() time.Time {
	return time.Date(g.cfg.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (g *generator) daysInYear() int {
	start := g.yearStart()
	return model.DaysBetween(start, start.AddDate(1, 0, 0))
}

func (g *generator) randomDay() time.Time {
	return g.yearStart().AddDate(0, 0, g.rng.IntN(g.daysInYear()))
}

func (g *generator) formatDate(t time.Time) string {
	if g.cfg.Korean {
		return t.Format("2006.01.02")
	}
	return t.Format(time.DateOnly)
}

// name derives a stable unique name from the seed, kind and index.
func (g *generator) name(prefix string, i int) string {
	id := uuid.NewSHA1(g.ns, []byte(prefix+"/"+strconv.Itoa(i)))
	return prefix + "-" + id.String()[:8]
}

// members writes sparse, increasing headcount samples at distinct days.
func (g *generator) members(exp *Expected) [][]string {
	days := g.daysInYear()
	n := max(1, min(g.cfg.Observations, days))

	offsets := g.rng.Perm(days)[:n]
	sort.Ints(offsets)

	count := baseMembersMin + g.rng.IntN(baseMembersRange)
	rows := make([][]string, 0, n)
	for i, off := range offsets {
		if i > 0 {
			count += g.rng.IntN(dailyGrowthMax+1) * (off - offsets[i-1])
		}
		date := g.yearStart().AddDate(0, 0, off)
		exp.Observations = append(exp.Observations, model.Observation{Date: date, Count: float64(count)})
		rows = append(rows, []string{g.formatDate(date), strconv.Itoa(count)})
	}

	// Files exported by hand are rarely sorted.
	g.rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

func (g *generator) activity(exp *Expected) [][]string {
	var records []model.Activity
	var rows [][]string
	for i := range g.cfg.Users {
		user := g.name("user", i)
		for _, category := range categories {
			for range 1 + g.rng.IntN(entriesPerUserMax) {
				score := 1 + g.rng.IntN(activityScoreMax)
				records = append(records, model.Activity{Name: user, Category: category, Score: float64(score)})
				rows = append(rows, []string{user, category, strconv.Itoa(score)})
			}
		}
	}
	exp.Leaders = aggregate.Leaders(records)
	return rows
}

func (g *generator) matches(exp *Expected) [][]string {
	records := make([]model.Match, 0, g.cfg.Matches)
	rows := make([][]string, 0, g.cfg.Matches)
	for range g.cfg.Matches {
		m := model.Match{
			Date:         g.randomDay(),
			Game:         games[g.rng.IntN(len(games))],
			Participants: matchPlayersMin + g.rng.IntN(matchPlayersRange),
		}
		if g.rng.IntN(unfinishedMatchOdds) != 0 {
			m.Winner = teams[g.rng.IntN(len(teams))]
		}
		records = append(records, m)
		rows = append(rows, []string{g.formatDate(m.Date), m.Game, strconv.Itoa(m.Participants), m.Winner})
	}
	exp.Matches = len(records)
	if len(records) > 0 {
		exp.Rates = aggregate.WinRates(records)
	}
	return rows
}

func (g *generator) staff(exp *Expected) [][]string {
	rows := make([][]string, 0, g.cfg.Staff)
	for i := range g.cfg.Staff {
		rows = append(rows, []string{
			g.name("staff", i),
			departments[g.rng.IntN(len(departments))],
			ranks[g.rng.IntN(len(ranks))],
		})
	}
	exp.Staff = len(rows)
	return rows
}

func (g *generator) events(exp *Expected) [][]string {
	rows := make([][]string, 0, g.cfg.Events)
	for i := range g.cfg.Events {
		participants := g.rng.IntN(eventPlayersMax + 1)
		cell := strconv.Itoa(participants)
		if participants == 0 {
			cell = ""
		}
		rows = append(rows, []string{
			fmt.Sprintf("event-%02d", i+1),
			fmt.Sprintf("%d-%02d", g.cfg.Year, i%12+1),
			cell,
		})
		exp.Participants += participants
	}
	exp.Events = len(rows)
	return rows
}

// write stores rows under the kind's header. Korean file names are written
// decomposed, as macOS archives deliver them.
func (g *generator) write(kind string, rows [][]string) (Dataset, error) {
	name := fileNames[kind][g.lang]
	base := name
	if g.cfg.Korean {
		base = norm.NFD.String(name)
	}
	path := filepath.Join(g.cfg.DataDir, base+fileExtension)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if g.cfg.Korean {
		if _, err := file.WriteString(utf8BOM); err != nil {
			return Dataset{}, fmt.Errorf("failed to write byte order mark: %w", err)
		}
	}

	w := csv.NewWriter(file)
	if err := w.Write(headers[kind][g.lang]); err != nil {
		return Dataset{}, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return Dataset{}, fmt.Errorf("failed to write rows: %w", err)
	}

	return Dataset{Kind: kind, Name: name, Path: path, Rows: len(rows)}, nil
}
