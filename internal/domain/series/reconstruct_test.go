package series_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/recap/internal/domain/model"
	"github.com/okian/recap/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func obs(t time.Time, v float64) model.Observation {
	return model.Observation{Date: t, Count: v}
}

func values(s series.Series) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

func TestReconstructLinear(t *testing.T) {
	Convey("Given two observations four days apart", t, func() {
		in := []model.Observation{
			obs(date(2025, 1, 5), 140),
			obs(date(2025, 1, 1), 100),
		}

		Convey("When reconstructing with the linear policy", func() {
			s, err := series.Reconstruct(in)
			So(err, ShouldBeNil)

			Convey("Then the gap is filled 110, 120, 130", func() {
				So(values(s), ShouldResemble, []float64{100, 110, 120, 130, 140})
				So(s.Policy, ShouldEqual, series.Linear)
			})

			Convey("And only the anchor days are marked observed", func() {
				So(s.Points[0].Observed, ShouldBeTrue)
				So(s.Points[4].Observed, ShouldBeTrue)
				So(s.Filled(), ShouldEqual, 3)
			})

			Convey("And the input slice is left unsorted", func() {
				So(in[0].Date.Equal(date(2025, 1, 5)), ShouldBeTrue)
			})
		})
	})

	Convey("Given uneven anchors", t, func() {
		in := []model.Observation{
			obs(date(2025, 2, 1), 10),
			obs(date(2025, 2, 4), 11),
			obs(date(2025, 2, 10), 29),
		}

		Convey("When reconstructing", func() {
			s, err := series.Reconstruct(in)
			So(err, ShouldBeNil)

			Convey("Then every filled day satisfies the interpolation formula", func() {
				for _, p := range s.Points {
					var d0, d1 model.Observation
					switch {
					case p.Date.Before(date(2025, 2, 4)):
						d0, d1 = in[0], in[1]
					default:
						d0, d1 = in[1], in[2]
					}
					want := d0.Count + (d1.Count-d0.Count)*p.Date.Sub(d0.Date).Hours()/d1.Date.Sub(d0.Date).Hours()
					So(p.Value, ShouldAlmostEqual, want, 1e-9)
				}
			})
		})

		Convey("When rounding is requested", func() {
			s, err := series.Reconstruct(in, series.WithRounding(true))
			So(err, ShouldBeNil)

			Convey("Then filled values are integers and anchors unchanged", func() {
				for _, v := range values(s) {
					So(v, ShouldEqual, math.Trunc(v))
				}
				p, ok := s.At(date(2025, 2, 4))
				So(ok, ShouldBeTrue)
				So(p.Value, ShouldEqual, 11)
			})
		})
	})

	Convey("Given an explicit range wider than the observations", t, func() {
		in := []model.Observation{
			obs(date(2025, 3, 3), 50),
			obs(date(2025, 3, 5), 60),
		}

		Convey("When reconstructing", func() {
			s, err := series.Reconstruct(in, series.WithRange(date(2025, 3, 1), date(2025, 3, 7)))
			So(err, ShouldBeNil)

			Convey("Then edge days take the nearest observation", func() {
				So(values(s), ShouldResemble, []float64{50, 50, 50, 55, 60, 60, 60})
				So(s.Start.Equal(date(2025, 3, 1)), ShouldBeTrue)
				So(s.End.Equal(date(2025, 3, 7)), ShouldBeTrue)
			})
		})

		Convey("When only the end is fixed", func() {
			s, err := series.Reconstruct(in, series.WithRange(time.Time{}, date(2025, 3, 6)))
			So(err, ShouldBeNil)

			Convey("Then the start comes from the data", func() {
				So(s.Start.Equal(date(2025, 3, 3)), ShouldBeTrue)
				So(s.Len(), ShouldEqual, 4)
			})
		})
	})

	Convey("Given a range narrower than the observations", t, func() {
		in := []model.Observation{
			obs(date(2025, 1, 1), 0),
			obs(date(2025, 1, 11), 100),
		}

		Convey("Then out-of-range observations still anchor the interpolation", func() {
			s, err := series.Reconstruct(in, series.WithRange(date(2025, 1, 3), date(2025, 1, 4)))
			So(err, ShouldBeNil)
			So(values(s), ShouldResemble, []float64{20, 30})
		})
	})

	Convey("Given a single observation", t, func() {
		in := []model.Observation{obs(date(2025, 6, 1), 42)}

		Convey("Then the whole range takes that value", func() {
			s, err := series.Reconstruct(in, series.WithRange(date(2025, 5, 30), date(2025, 6, 3)))
			So(err, ShouldBeNil)
			So(values(s), ShouldResemble, []float64{42, 42, 42, 42, 42})
		})

		Convey("And with no explicit range the series is one day long", func() {
			s, err := series.Reconstruct(in)
			So(err, ShouldBeNil)
			So(s.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given observations a thousand years apart", t, func() {
		in := []model.Observation{
			obs(date(1025, 1, 1), 100),
			obs(date(2025, 1, 1), 200),
		}

		Convey("Then the series still covers every day up to the last one", func() {
			s, err := series.Reconstruct(in)
			So(err, ShouldBeNil)
			So(s.Len(), ShouldEqual, 365243+1)

			last := s.Points[s.Len()-1]
			So(last.Date.Equal(date(2025, 1, 1)), ShouldBeTrue)
			So(last.Value, ShouldEqual, 200)
			So(last.Observed, ShouldBeTrue)

			p, ok := s.At(date(2025, 1, 1))
			So(ok, ShouldBeTrue)
			So(p.Value, ShouldEqual, 200)
		})
	})

	Convey("Given timestamps with a time-of-day component", t, func() {
		in := []model.Observation{
			obs(time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC), 1),
			obs(time.Date(2025, 1, 3, 6, 0, 0, 0, time.UTC), 3),
		}

		Convey("Then they are treated as calendar dates", func() {
			s, err := series.Reconstruct(in)
			So(err, ShouldBeNil)
			So(values(s), ShouldResemble, []float64{1, 2, 3})
		})
	})
}

func TestReconstructSmoothed(t *testing.T) {
	Convey("Given a jagged series", t, func() {
		in := []model.Observation{
			obs(date(2025, 1, 1), 100),
			obs(date(2025, 1, 2), 130),
			obs(date(2025, 1, 3), 90),
			obs(date(2025, 1, 4), 160),
			obs(date(2025, 1, 6), 120),
			obs(date(2025, 1, 10), 200),
			obs(date(2025, 1, 12), 180),
		}

		Convey("When reconstructing with the smoothed policy", func() {
			s, err := series.Reconstruct(in, series.WithPolicy(series.LinearSmoothed))
			So(err, ShouldBeNil)
			raw, err := series.Reconstruct(in)
			So(err, ShouldBeNil)

			Convey("Then each value is the rounded mean of up to seven trailing raw values", func() {
				rv := values(raw)
				for i, p := range s.Points {
					lo := i - 6
					if lo < 0 {
						lo = 0
					}
					var sum float64
					for _, v := range rv[lo : i+1] {
						sum += v
					}
					So(p.Value, ShouldEqual, math.RoundToEven(sum/float64(i+1-lo)))
				}
			})

			Convey("And the first day equals the first observation", func() {
				So(s.Points[0].Value, ShouldEqual, 100)
			})
		})

		Convey("When a smaller window is configured", func() {
			s, err := series.Reconstruct(in, series.WithPolicy(series.LinearSmoothed), series.WithWindow(2))
			So(err, ShouldBeNil)

			Convey("Then the average spans two days", func() {
				So(s.Points[1].Value, ShouldEqual, 115)
				So(s.Points[2].Value, ShouldEqual, 110)
			})
		})
	})
}

func TestReconstructFixedIncrement(t *testing.T) {
	Convey("Given a single observation and a later range end", t, func() {
		in := []model.Observation{obs(date(2025, 1, 1), 100)}

		Convey("When reconstructing with the fixed increment policy", func() {
			s, err := series.Reconstruct(in,
				series.WithPolicy(series.FixedIncrement),
				series.WithRange(time.Time{}, date(2025, 1, 4)),
			)
			So(err, ShouldBeNil)

			Convey("Then values grow by the default 6.51 per day", func() {
				v := values(s)
				So(v[0], ShouldEqual, 100)
				So(v[1], ShouldAlmostEqual, 106.51, 1e-9)
				So(v[3], ShouldAlmostEqual, 119.53, 1e-9)
			})
		})
	})

	Convey("Given observations after the base", t, func() {
		in := []model.Observation{
			obs(date(2025, 1, 1), 100),
			obs(date(2025, 1, 3), 500),
		}

		Convey("When reconstructing with a custom increment", func() {
			s, err := series.Reconstruct(in,
				series.WithPolicy(series.FixedIncrement),
				series.WithDailyIncrement(10),
				series.WithRange(date(2024, 12, 31), date(2025, 1, 5)),
			)
			So(err, ShouldBeNil)

			Convey("Then observed days are kept and gaps follow the base line", func() {
				So(values(s), ShouldResemble, []float64{100, 100, 110, 500, 130, 140})
			})
		})
	})
}

func TestReconstructMeanBeforeCutoff(t *testing.T) {
	Convey("Given observations on both sides of a cutoff", t, func() {
		in := []model.Observation{
			obs(date(2025, 1, 1), 10),
			obs(date(2025, 1, 4), 40),
			obs(date(2025, 1, 8), 80),
		}

		Convey("When reconstructing with the mean fill policy", func() {
			s, err := series.Reconstruct(in,
				series.WithPolicy(series.MeanBeforeCutoff),
				series.WithCutoff(date(2025, 1, 5)),
			)
			So(err, ShouldBeNil)

			Convey("Then gaps before the cutoff take the mean of earlier observations", func() {
				v := values(s)
				So(v[0], ShouldEqual, 10)
				So(v[1], ShouldEqual, 25)
				So(v[2], ShouldEqual, 25)
				So(v[3], ShouldEqual, 40)
			})

			Convey("And gaps from the cutoff on are interpolated", func() {
				v := values(s)
				So(v[4], ShouldEqual, 50)
				So(v[5], ShouldEqual, 60)
				So(v[6], ShouldEqual, 70)
				So(v[7], ShouldEqual, 80)
			})
		})

		Convey("When no cutoff is configured", func() {
			_, err := series.Reconstruct(in, series.WithPolicy(series.MeanBeforeCutoff))

			Convey("Then it should fail", func() {
				So(errors.Is(err, series.ErrMissingCutoff), ShouldBeTrue)
			})
		})

		Convey("When the cutoff precedes every observation", func() {
			s, err := series.Reconstruct(in,
				series.WithPolicy(series.MeanBeforeCutoff),
				series.WithCutoff(date(2024, 1, 1)),
			)
			So(err, ShouldBeNil)

			Convey("Then it behaves like the linear policy", func() {
				lin, err := series.Reconstruct(in)
				So(err, ShouldBeNil)
				So(values(s), ShouldResemble, values(lin))
			})
		})
	})
}

func TestReconstructErrors(t *testing.T) {
	Convey("Given invalid inputs", t, func() {
		Convey("When there are no observations", func() {
			_, err := series.Reconstruct(nil)
			So(errors.Is(err, series.ErrEmptyObservations), ShouldBeTrue)
		})

		Convey("When two observations share a date", func() {
			_, err := series.Reconstruct([]model.Observation{
				obs(date(2025, 1, 1), 1),
				obs(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), 2),
			})
			So(errors.Is(err, series.ErrDuplicateDate), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "2025-01-01")
		})

		Convey("When the range is inverted", func() {
			_, err := series.Reconstruct([]model.Observation{obs(date(2025, 1, 1), 1)},
				series.WithRange(date(2025, 2, 1), date(2025, 1, 1)))
			So(errors.Is(err, series.ErrInvalidRange), ShouldBeTrue)
		})

		Convey("When the policy is out of range", func() {
			_, err := series.Reconstruct([]model.Observation{obs(date(2025, 1, 1), 1)},
				series.WithPolicy(series.FillPolicy(42)))
			So(errors.Is(err, series.ErrUnknownPolicy), ShouldBeTrue)
		})
	})
}

func TestReconstructProperties(t *testing.T) {
	Convey("Given random sparse observations", t, func() {
		rng := rand.New(rand.NewSource(7))

		for trial := 0; trial < 25; trial++ {
			seen := map[int]bool{}
			var in []model.Observation
			n := 2 + rng.Intn(8)
			for len(in) < n {
				offset := rng.Intn(120)
				if seen[offset] {
					continue
				}
				seen[offset] = true
				in = append(in, obs(date(2025, 1, 1).AddDate(0, 0, offset), float64(rng.Intn(1000))))
			}

			s, err := series.Reconstruct(in)
			So(err, ShouldBeNil)

			minDay, maxDay := in[0].Date, in[0].Date
			for _, o := range in {
				if o.Date.Before(minDay) {
					minDay = o.Date
				}
				if o.Date.After(maxDay) {
					maxDay = o.Date
				}
			}

			// one point per day, ascending, no gaps
			So(s.Len(), ShouldEqual, int(maxDay.Sub(minDay).Hours()/24)+1)
			for i, p := range s.Points {
				So(p.Date.Equal(minDay.AddDate(0, 0, i)), ShouldBeTrue)
			}

			// observed days reproduce their observation exactly
			for _, o := range in {
				p, ok := s.At(o.Date)
				So(ok, ShouldBeTrue)
				So(p.Observed, ShouldBeTrue)
				So(p.Value, ShouldEqual, o.Count)
			}
		}
	})
}

func TestSeriesHelpers(t *testing.T) {
	Convey("Given a reconstructed series", t, func() {
		s, err := series.Reconstruct([]model.Observation{
			obs(date(2025, 1, 1), 100),
			obs(date(2025, 1, 3), 120),
		})
		So(err, ShouldBeNil)

		Convey("Then deltas start at zero", func() {
			So(s.Deltas(), ShouldResemble, []float64{0, 10, 10})
		})

		Convey("Then At misses outside the domain", func() {
			_, ok := s.At(date(2025, 1, 4))
			So(ok, ShouldBeFalse)
			_, ok = s.At(date(2024, 12, 31))
			So(ok, ShouldBeFalse)
		})

		Convey("Then the policy marshals by name", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"policy":"linear"`)
		})
	})

	Convey("Given an empty series", t, func() {
		var s series.Series
		_, ok := s.At(date(2025, 1, 1))
		So(ok, ShouldBeFalse)
		So(s.Deltas(), ShouldBeEmpty)
	})
}
