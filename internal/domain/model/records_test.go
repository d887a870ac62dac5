package model_test

import (
	"testing"
	"time"

	"github.com/okian/recap/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDay(t *testing.T) {
	Convey("Given timestamps within one calendar date", t, func() {
		morning := time.Date(2025, 3, 9, 1, 30, 0, 0, time.UTC)
		evening := time.Date(2025, 3, 9, 23, 59, 59, 999, time.UTC)

		Convey("Then Day should map both to midnight UTC", func() {
			want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
			So(model.Day(morning).Equal(want), ShouldBeTrue)
			So(model.Day(evening).Equal(want), ShouldBeTrue)
		})
	})

	Convey("Given a timestamp in another zone", t, func() {
		seoul := time.FixedZone("KST", 9*60*60)
		ts := time.Date(2025, 12, 31, 8, 0, 0, 0, seoul)

		Convey("Then the local calendar date should be kept", func() {
			So(model.Day(ts).Equal(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(model.Day(ts).Location(), ShouldEqual, time.UTC)
		})
	})
}

func TestDaysBetween(t *testing.T) {
	Convey("Given dates in order", t, func() {
		Convey("Then adjacent days are one apart and the count is signed", func() {
			So(model.DaysBetween(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)), ShouldEqual, 1)
			So(model.DaysBetween(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, -1)
		})

		Convey("Then time of day is ignored", func() {
			a := time.Date(2024, 2, 28, 23, 0, 0, 0, time.UTC)
			b := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
			So(model.DaysBetween(a, b), ShouldEqual, 2)
		})
	})

	Convey("Given spans longer than a time.Duration can hold", t, func() {
		Convey("Then the day count is exact", func() {
			So(model.DaysBetween(time.Date(1025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 365243)
			So(model.DaysBetween(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 739251)
		})
	})
}
