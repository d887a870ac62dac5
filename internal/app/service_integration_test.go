package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/recap/internal/adapters/dataset"
	service "github.com/okian/recap/internal/app"
	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var fixtures = map[string]string{
	"members.csv":  "date,count\n2024-01-01,100\n2024-01-05,140\n",
	"activity.csv": "name,type,score\nmina,chat,40\njoon,chat,55\nmina,chat,30\nsora,voice,90\n",
	"events.csv":   "name,period,participants\nquiz night,2024-03,42\nmovie club,2024-05,18\n",
	"staff.csv":    "name,department,rank\na,events,lead\nb,moderation,lead\nc,design,member\n",
	"matches.csv":  "date,game,participants,winner\n2024-02-01,lol,10,red\n2024-02-08,lol,10,red\n2024-02-15,valorant,10,blue\n",
}

func writeFixtures(dir string, skip ...string) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	for name, content := range fixtures {
		if skipped[name] {
			continue
		}
		So(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600), ShouldBeNil)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service over a complete data directory", t, func() {
		dir := t.TempDir()
		writeFixtures(dir)

		svc := service.New(
			service.WithDataDir(dir),
			service.WithDepartmentOrder([]string{"moderation", "events"}),
			service.WithWinLabels([]string{"red", "blue"}),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When building the full report", func() {
			report, err := svc.Report(ctx)
			So(err, ShouldBeNil)

			Convey("Then every section is present without errors", func() {
				So(report.Errors, ShouldBeEmpty)
				So(report.Session, ShouldEqual, svc.Session())
				So(report.Members.Days, ShouldEqual, 5)
				So(report.Members.Points[1].Count, ShouldEqual, 110)
				So(report.Members.Points[2].Count, ShouldEqual, 120)
				So(report.Members.Points[3].Count, ShouldEqual, 130)
				So(report.Activity.Leaders, ShouldHaveLength, 2)
				So(report.Matches.Matches, ShouldEqual, 3)
				So(report.Staff.Groups, ShouldHaveLength, 3)
				So(report.Staff.Groups[2].Department, ShouldEqual, aggregate.OtherDepartment)
				So(report.Events.Participants, ShouldEqual, 60)
			})
		})

		Convey("When asking for a single category leader", func() {
			leader, err := svc.ActivityLeader(ctx, "Chat")
			So(err, ShouldBeNil)
			So(leader.Name, ShouldEqual, "mina")
			So(leader.Score, ShouldEqual, 70)

			_, err = svc.ActivityLeader(ctx, "stream")
			So(service.Code(err), ShouldEqual, service.CodeNoRecords)
		})

		Convey("When asking for win rates", func() {
			lol, err := svc.WinRates(ctx, "LoL")
			So(err, ShouldBeNil)
			So(lol.Rates, ShouldResemble, []types.WinRate{
				{Label: "red", Percent: 100},
				{Label: "blue", Percent: 0},
			})

			byGame, err := svc.WinRatesByGame(ctx)
			So(err, ShouldBeNil)
			So(byGame, ShouldHaveLength, 2)
			So(byGame[0].Game, ShouldEqual, "lol")
			So(byGame[1].Game, ShouldEqual, "valorant")

			_, err = svc.WinRates(ctx, "chess")
			So(errors.Is(err, aggregate.ErrNoRecords), ShouldBeTrue)
		})

		Convey("When overriding the fill policy", func() {
			ms, err := svc.MemberSeries(ctx, series.WithPolicy(series.FixedIncrement), series.WithDailyIncrement(5))
			So(err, ShouldBeNil)
			p, _ := ms.At(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
			So(p.Value, ShouldEqual, 110)
		})

		Convey("When exporting the member series", func() {
			var buf bytes.Buffer
			So(svc.ExportMembers(ctx, &buf), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := f.GetRows("members")
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 6)
		})

		Convey("When a file changes and the session is reset", func() {
			_, err := svc.MemberSeries(ctx)
			So(err, ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "members.csv"), []byte("date,count\n2024-01-01,7\n"), 0o600), ShouldBeNil)

			stale, err := svc.MemberSeries(ctx)
			So(err, ShouldBeNil)
			So(stale.Len(), ShouldEqual, 5)

			_, err = svc.Reset(ctx)
			So(err, ShouldBeNil)
			fresh, err := svc.MemberSeries(ctx)
			So(err, ShouldBeNil)
			So(fresh.Len(), ShouldEqual, 1)
			So(fresh.Points[0].Value, ShouldEqual, 7)
		})
	})

	Convey("Given a data directory missing some files", t, func() {
		dir := t.TempDir()
		writeFixtures(dir, "staff.csv", "members.csv")
		So(os.WriteFile(filepath.Join(dir, "members.csv"), []byte("date,count\n"), 0o600), ShouldBeNil)

		svc := service.New(service.WithDataDir(dir))
		defer svc.Stop()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When building the full report", func() {
			report, err := svc.Report(ctx)
			So(err, ShouldBeNil)

			Convey("Then failed sections carry codes and the rest are built", func() {
				So(report.Errors, ShouldHaveLength, 2)
				So(report.Errors[types.SectionStaff].Code, ShouldEqual, service.CodeDatasetNotFound)
				So(report.Errors[types.SectionMembers].Code, ShouldEqual, service.CodeEmptyObservations)
				So(report.Staff, ShouldBeNil)
				So(report.Members, ShouldBeNil)
				So(report.Activity, ShouldNotBeNil)
				So(report.Matches, ShouldNotBeNil)
				So(report.Events, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a members file with a decomposed Korean name", t, func() {
		dir := t.TempDir()
		name := norm.NFC.String("인원수")
		So(os.WriteFile(filepath.Join(dir, norm.NFD.String(name)+".csv"), []byte("날짜,인원수\n2024-01-01,10\n2024-01-03,30\n"), 0o600), ShouldBeNil)

		svc := service.New(service.WithDataDir(dir), service.WithDatasets(service.Datasets{Members: name}))
		defer svc.Stop()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then the series is found and reconstructed", func() {
			ms, err := svc.MemberSeries(ctx)
			So(err, ShouldBeNil)
			So(ms.Points[1].Value, ShouldEqual, 20)

			_, err = svc.StaffRoster(ctx)
			So(errors.Is(err, dataset.ErrDatasetNotFound), ShouldBeTrue)
		})
	})
}
