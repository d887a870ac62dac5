package sampledata

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/recap/internal/adapters/http/api"
	app "github.com/okian/recap/internal/app"
	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/model"
	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/internal/domain/types"
)

// serve starts the report API over the generated datasets.
func serve(t *testing.T, dir string, names map[string]string) *httptest.Server {
	t.Helper()
	svc := app.New(
		app.WithDataDir(dir),
		app.WithDatasets(app.Datasets{
			Members:  names[types.SectionMembers],
			Activity: names[types.SectionActivity],
			Events:   names[types.SectionEvents],
			Staff:    names[types.SectionStaff],
			Matches:  names[types.SectionMatches],
		}),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)

	router := api.NewRouter()
	api.NewServer(svc, svc).Register(context.Background(), router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	for _, korean := range []bool{false, true} {
		Convey("Given generated datasets and a service reading them", t, func() {
			cfg := testConfig(t.TempDir())
			cfg.Korean = korean

			// Names are fixed per language, so a dry run tells the service what to read.
			dry, err := Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			srv := serve(t, cfg.DataDir, dry.Names())

			Convey("When the run verifies against the service", func() {
				cfg.BaseURL = srv.URL
				cfg.Seed++
				_, err := Run(context.Background(), cfg)

				Convey("Then every section should match", func() {
					So(err, ShouldBeNil)
				})
			})
		})
	}

	Convey("Given an unreachable service", t, func() {
		cfg := testConfig(t.TempDir())
		cfg.BaseURL = "http://127.0.0.1:1"

		Convey("Then the health check should fail", func() {
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestVerifyReport(t *testing.T) {
	Convey("Given a report built from the expectations", t, func() {
		cfg := testConfig(t.TempDir())
		result, err := Generate(context.Background(), cfg, &Stats{})
		So(err, ShouldBeNil)
		exp := result.Expected

		Convey("When a section reports an error", func() {
			report := &types.Report{Errors: map[string]types.SectionError{
				types.SectionStaff: {Code: "dataset_not_found", Message: "staff"},
			}}
			stats := &Stats{}
			err := verifyReport(context.Background(), cfg, report, &exp, stats)

			Convey("Then every section should be counted as failed", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "dataset_not_found")
				So(stats.SectionsFailed, ShouldEqual, len(types.Sections))
			})
		})

		Convey("When the staff count differs", func() {
			section := &types.RosterSection{Groups: []aggregate.DepartmentGroup{
				{Department: aggregate.OtherDepartment},
			}}

			Convey("Then empty departments and totals should be flagged", func() {
				So(verifyStaff(section, &exp), ShouldNotBeNil)
				So(verifyStaff(&types.RosterSection{}, &Expected{}), ShouldBeNil)
			})
		})

		Convey("When win rates are off or exceed 100 percent", func() {
			exp := Expected{Matches: 3, Rates: map[string]float64{"red": 200.0 / 3, "blue": 100.0 / 3}}

			Convey("Then they should be rejected", func() {
				good := types.NewMatchSection("", 3, exp.Rates)
				So(verifyMatches(good, &exp), ShouldBeNil)

				bad := &types.MatchSection{Matches: 3, Rates: []types.WinRate{{Label: "red", Percent: 70}, {Label: "blue", Percent: 33.3}}}
				So(verifyMatches(bad, &exp), ShouldNotBeNil)

				So(verifyMatches(&types.MatchSection{Matches: 2}, &exp), ShouldNotBeNil)
			})
		})

		Convey("When the service smooths the member series", func() {
			section := &types.MemberSection{Policy: series.LinearSmoothed.String()}
			first := exp.Observations[0].Date
			days := model.DaysBetween(first, exp.Observations[len(exp.Observations)-1].Date) + 1
			observed := make(map[string]bool, len(exp.Observations))
			for _, o := range exp.Observations {
				observed[o.Date.Format(time.DateOnly)] = true
			}
			for i := range days {
				d := first.AddDate(0, 0, i).Format(time.DateOnly)
				// a value no sample carries
				section.Points = append(section.Points, types.SeriesPoint{Date: d, Count: -1, Observed: observed[d]})
			}
			section.Days = days
			section.Filled = days - len(exp.Observations)

			Convey("Then only the shape is checked", func() {
				So(verifyMembers(section, &exp), ShouldBeNil)

				section.Policy = series.Linear.String()
				So(verifyMembers(section, &exp), ShouldNotBeNil)
			})
		})

		Convey("When the member series skips a day", func() {
			section := &types.MemberSection{Days: 1, Points: []types.SeriesPoint{{Date: "2024-01-01", Count: 1, Observed: true}}}

			Convey("Then the series should be rejected", func() {
				err := verifyMembers(section, &exp)
				So(err, ShouldNotBeNil)
				So(strings.Contains(err.Error(), "days"), ShouldBeTrue)
			})
		})
	})
}
