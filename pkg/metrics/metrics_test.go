package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the recap namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "recap")
				So(manager.subsystem, ShouldEqual, "report")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})

			Convey("And metrics should be registered with the const label", func() {
				manager.cacheHits.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_cache_hits_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are passed to options", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "recap")
				So(manager.subsystem, ShouldEqual, "report")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording cache activity", func() {
			hits := testutil.ToFloat64(globalManager.cacheHits)
			misses := testutil.ToFloat64(globalManager.cacheMisses)
			resets := testutil.ToFloat64(globalManager.cacheResets)

			RecordCacheHit()
			RecordCacheHit()
			RecordCacheMiss()
			RecordCacheReset()
			UpdateCacheEntries(4)

			Convey("Then counters and gauges should move", func() {
				So(testutil.ToFloat64(globalManager.cacheHits), ShouldEqual, hits+2)
				So(testutil.ToFloat64(globalManager.cacheMisses), ShouldEqual, misses+1)
				So(testutil.ToFloat64(globalManager.cacheResets), ShouldEqual, resets+1)
				So(testutil.ToFloat64(globalManager.cacheEntries), ShouldEqual, 4)
			})
		})

		Convey("When recording dataset loads", func() {
			before := testutil.ToFloat64(globalManager.datasetLoads.WithLabelValues("members", "ok"))
			RecordDatasetLoad("members", "ok")
			RecordDatasetLoadLatency("members", 1.5)
			UpdateDatasetRows("members", 31)

			Convey("Then the labelled series should be updated", func() {
				So(testutil.ToFloat64(globalManager.datasetLoads.WithLabelValues("members", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.datasetRows.WithLabelValues("members")), ShouldEqual, 31)
			})
		})

		Convey("When recording series and sections", func() {
			UpdateSeriesShape(365, 300)
			RecordReconstructLatency("linear", 0.2)
			before := testutil.ToFloat64(globalManager.sectionErrors.WithLabelValues("members", "dataset_not_found"))
			RecordSectionBuild("members")
			RecordSectionError("members", "dataset_not_found")
			RecordExport(365)

			Convey("Then the gauges should reflect the last values", func() {
				So(testutil.ToFloat64(globalManager.seriesDays), ShouldEqual, 365)
				So(testutil.ToFloat64(globalManager.seriesFilledDays), ShouldEqual, 300)
				So(testutil.ToFloat64(globalManager.exportRowCount), ShouldEqual, 365)
				So(testutil.ToFloat64(globalManager.sectionErrors.WithLabelValues("members", "dataset_not_found")), ShouldEqual, before+1)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("report", "GET", "200")
				RecordHTTPRequestDuration("report", "GET", "200", 12)
				RecordErrorByType("not_found", "medium")
				RecordErrorByEndpoint("report", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
