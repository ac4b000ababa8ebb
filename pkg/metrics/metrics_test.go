package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.cacheHits.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_sub_cache_hits_total"], ShouldBeTrue)
			})
		})

		Convey("When creating two managers on the same registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording coordinator events", func() {
			before := testutil.ToFloat64(globalManager.fetchStale)
			RecordFetchStale()
			RecordFetchSubmitted()
			RecordFetchCoalesced()
			RecordFetchIssued("rank")
			RecordFetchShared()
			RecordFetchSkipped()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.fetchStale), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.fetchIssued.WithLabelValues("rank")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When sessions open and close", func() {
			active := testutil.ToFloat64(globalManager.sessionsActive)
			SessionOpened()
			SessionOpened()
			SessionClosed()

			Convey("Then the gauge reflects the balance", func() {
				So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, active+1)
			})
			SessionClosed()
		})

		Convey("When recording API and HTTP requests", func() {
			RecordAPIRequest("rank", OutcomeOK, 12)
			RecordHTTPRequest("view", "GET", "200", 3)
			RecordCacheHit()
			RecordCacheMiss()
			RecordMailboxRejected()
			RecordEventApplied("seek")

			Convey("Then the registry gathers without error", func() {
				_, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(testutil.ToFloat64(globalManager.apiRequests.WithLabelValues("rank", OutcomeOK)), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.systemGoroutines), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.systemMemory), ShouldEqual, 1<<20)
			})
		})
	})
}
