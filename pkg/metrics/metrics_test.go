package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skgamebot/flappyrank/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a dedicated registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager against it", func() {
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(registry),
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("unit"),
			)

			Convey("Then the metrics register without collision", func() {
				So(m, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through the package helpers", func() {
			So(func() {
				metrics.RecordSubmissionAccepted()
				metrics.RecordSubmissionDuplicate()
				metrics.RecordSubmissionInvalid()
				metrics.RecordStoreAppend()
				metrics.RecordStoreAppendError()
				metrics.RecordStoreAppendLatency(1.5)
				metrics.RecordStoreQueryLatency(2.5)
				metrics.RecordRankingLatency(0.5)
				metrics.RecordRankingError()
				metrics.UpdateQueueSize(10)
				metrics.UpdateQueueCapacity(100)
				metrics.UpdateQueueUtilization(0.1)
				metrics.RecordQueueEnqueue()
				metrics.RecordQueueDequeue()
				metrics.RecordQueueEnqueueError()
				metrics.UpdateWorkerCount(4)
				metrics.RecordWorkerError()
				metrics.RecordWorkerProcessingLatency(3.0)
				metrics.UpdateTotalUsers(50)
				metrics.RecordHTTPRequest("scores", "POST", "202")
				metrics.RecordHTTPRequestDuration("scores", "POST", "202", 12.0)
				metrics.RecordBotCommand("leaderboard")
				metrics.RecordBotError()
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(8)
				metrics.RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("When gathering the registry", func() {
			families, err := metrics.GetRegistry().Gather()

			Convey("Then the recorded samples are present", func() {
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
			})
		})
	})
}
