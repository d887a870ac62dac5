package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/recap/internal/domain/model"
)

// Column keys shared by the schemas.
const (
	ColDate         = "date"
	ColCount        = "count"
	ColName         = "name"
	ColType         = "type"
	ColScore        = "score"
	ColPeriod       = "period"
	ColParticipants = "participants"
	ColDepartment   = "department"
	ColRank         = "rank"
	ColGame         = "game"
	ColWinner       = "winner"
)

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	time.RFC3339,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Column is one schema column and the header spellings accepted for it.
type Column struct {
	Key      string
	Aliases  []string
	Optional bool
}

// Schema lists the columns a dataset kind must provide.
type Schema struct {
	Kind    string
	Columns []Column
}

// Dataset schemas. Aliases cover the English headers and the Korean headers
// exported by the community's spreadsheets.
var (
	MembersSchema = Schema{Kind: "members", Columns: []Column{
		{Key: ColDate, Aliases: []string{"date", "날짜"}},
		{Key: ColCount, Aliases: []string{"count", "인원수", "members"}},
	}}
	ActivitySchema = Schema{Kind: "activity", Columns: []Column{
		{Key: ColName, Aliases: []string{"name", "이름", "유저"}},
		{Key: ColType, Aliases: []string{"type", "category", "유형"}},
		{Key: ColScore, Aliases: []string{"score", "활동량", "count"}},
	}}
	EventsSchema = Schema{Kind: "events", Columns: []Column{
		{Key: ColName, Aliases: []string{"name", "event", "이벤트"}},
		{Key: ColPeriod, Aliases: []string{"period", "date", "기간"}},
		{Key: ColParticipants, Aliases: []string{"participants", "참여자 수"}, Optional: true},
	}}
	StaffSchema = Schema{Kind: "staff", Columns: []Column{
		{Key: ColName, Aliases: []string{"name", "이름"}},
		{Key: ColDepartment, Aliases: []string{"department", "부서", "역할"}},
		{Key: ColRank, Aliases: []string{"rank", "직급", "role"}},
	}}
	MatchesSchema = Schema{Kind: "matches", Columns: []Column{
		{Key: ColDate, Aliases: []string{"date", "날짜"}},
		{Key: ColGame, Aliases: []string{"game", "게임"}},
		{Key: ColParticipants, Aliases: []string{"participants", "참가자 수"}},
		{Key: ColWinner, Aliases: []string{"winner", "승리팀", "winning_team"}},
	}}
)

// Bind resolves schema columns to header positions. Optional columns that are
// absent are left out of the result.
func (s Schema) Bind(t *Table) (map[string]int, error) {
	pos := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		key := strings.ToLower(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	out := make(map[string]int, len(s.Columns))
	for _, c := range s.Columns {
		idx, ok := -1, false
		for _, a := range c.Aliases {
			if idx, ok = pos[strings.ToLower(norm.NFC.String(a))]; ok {
				break
			}
		}
		switch {
		case ok:
			out[c.Key] = idx
		case !c.Optional:
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrMalformedDataset, t.Name, c.Key)
		}
	}
	return out, nil
}

type row struct {
	table string
	cols  map[string]int
	cells []string
	line  int
}

func (r row) fail(col string, err error) error {
	return fmt.Errorf("%w: %s: row %d column %q: %w", ErrMalformedDataset, r.table, r.line, col, err)
}

func (r row) has(col string) bool {
	_, ok := r.cols[col]
	return ok
}

func (r row) str(col string) string {
	idx, ok := r.cols[col]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return norm.NFC.String(strings.TrimSpace(r.cells[idx]))
}

func (r row) float(col string) (float64, error) {
	v, err := parseNumber(r.str(col))
	if err != nil {
		return 0, r.fail(col, err)
	}
	return v, nil
}

func (r row) integer(col string) (int, error) {
	s := r.str(col)
	if s == "" {
		return 0, nil
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, r.fail(col, err)
	}
	if v != math.Trunc(v) {
		return 0, r.fail(col, fmt.Errorf("not a whole number: %s", s))
	}
	return int(v), nil
}

func (r row) date(col string) (time.Time, error) {
	v, err := ParseDate(r.str(col))
	if err != nil {
		return time.Time{}, r.fail(col, err)
	}
	return v, nil
}

func (r row) check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return r.fail(strings.ToLower(fe.Field()), fmt.Errorf("failed %s validation", fe.Tag()))
	}
	return r.fail("", err)
}

// ParseDate accepts the date layouts seen in exported spreadsheets and
// returns midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseNumber(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, errors.New("empty number")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func decode[T any](t *Table, s Schema, fn func(row) (T, error)) ([]T, error) {
	cols, err := s.Bind(t)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(t.Rows))
	for i, cells := range t.Rows {
		r := row{table: t.Name, cols: cols, cells: cells, line: i + 1}
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		if err := r.check(v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Observations decodes a members table.
func Observations(t *Table) ([]model.Observation, error) {
	return decode(t, MembersSchema, func(r row) (model.Observation, error) {
		d, err := r.date(ColDate)
		if err != nil {
			return model.Observation{}, err
		}
		n, err := r.float(ColCount)
		if err != nil {
			return model.Observation{}, err
		}
		return model.Observation{Date: d, Count: n}, nil
	})
}

// Activities decodes an activity table.
func Activities(t *Table) ([]model.Activity, error) {
	return decode(t, ActivitySchema, func(r row) (model.Activity, error) {
		score, err := r.float(ColScore)
		if err != nil {
			return model.Activity{}, err
		}
		return model.Activity{
			Name:     r.str(ColName),
			Category: strings.ToLower(r.str(ColType)),
			Score:    score,
		}, nil
	})
}

// Events decodes an events table. Participants is zero when the column is
// absent or blank.
func Events(t *Table) ([]model.Event, error) {
	return decode(t, EventsSchema, func(r row) (model.Event, error) {
		e := model.Event{Name: r.str(ColName), Period: r.str(ColPeriod)}
		if r.has(ColParticipants) {
			n, err := r.integer(ColParticipants)
			if err != nil {
				return model.Event{}, err
			}
			e.Participants = n
		}
		return e, nil
	})
}

// Staff decodes a staff roster table.
func Staff(t *Table) ([]model.Staff, error) {
	return decode(t, StaffSchema, func(r row) (model.Staff, error) {
		return model.Staff{
			Name:       r.str(ColName),
			Department: r.str(ColDepartment),
			Rank:       r.str(ColRank),
		}, nil
	})
}

// Matches decodes a scrimmage match table.
func Matches(t *Table) ([]model.Match, error) {
	return decode(t, MatchesSchema, func(r row) (model.Match, error) {
		d, err := r.date(ColDate)
		if err != nil {
			return model.Match{}, err
		}
		n, err := r.integer(ColParticipants)
		if err != nil {
			return model.Match{}, err
		}
		return model.Match{
			Date:         d,
			Game:         r.str(ColGame),
			Participants: n,
			Winner:       r.str(ColWinner),
		}, nil
	})
}
