package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager is created against it", func() {
			m := NewManager(
				WithPrometheusRegistry(reg),
				WithNamespace("testns"),
				WithSubsystem("testsub"),
			)

			Convey("Then all metrics register without collisions", func() {
				So(m, ShouldNotBeNil)
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When every helper is exercised", func() {
			RecordMutationStarted()
			RecordMutationCommitted()
			RecordMutationRolledBack()
			RecordMutationBusy()
			RecordRemoteLatency(12.5)
			RecordRemoteFailure("conflict")
			UpdateBoardSize(5)
			UpdateCandidateCount(9)
			RecordHistoryAppend("note")
			UpdateJournalQueueSize(3)
			RecordJournalWrite()
			RecordJournalWriteError()
			RecordJournalDropped()
			RecordHTTPRequest("board", "GET", "200")
			RecordHTTPRequestDuration("board", "GET", "200", 4.2)
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(42)

			Convey("Then the custom registry gathers them all", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 10)
			})
		})
	})
}
