package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsRegistered(t *testing.T) {
	Convey("Every lifecycle metric is usable", t, func() {
		So(InstancesRegistered, ShouldNotBeNil)
		So(StateTransitions, ShouldNotBeNil)
		So(ReadyBatches, ShouldNotBeNil)
		So(MetadataWaits, ShouldNotBeNil)
		So(BackendLoads, ShouldNotBeNil)
		So(BackendSwaps, ShouldNotBeNil)
		So(MonitorTicks, ShouldNotBeNil)
		So(AccessorFailures, ShouldNotBeNil)
		So(ClipsDone, ShouldNotBeNil)
		So(Seeks, ShouldNotBeNil)
		So(Lookups, ShouldNotBeNil)
	})

	Convey("Counters increment", t, func() {
		before := testutil.ToFloat64(ClipsDone)
		ClipsDone.Inc()
		So(testutil.ToFloat64(ClipsDone), ShouldEqual, before+1)

		before = testutil.ToFloat64(BackendLoads.WithLabelValues("native", "ok"))
		BackendLoads.WithLabelValues("native", "ok").Inc()
		So(testutil.ToFloat64(BackendLoads.WithLabelValues("native", "ok")), ShouldEqual, before+1)
	})
}

func TestExport(t *testing.T) {
	Convey("Given a metrics server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		addr, err := Serve(ctx, "127.0.0.1:0")
		So(err, ShouldBeNil)
		Seeks.WithLabelValues("client").Inc()

		Convey("Counters are scraped from /metrics", func() {
			resp, err := http.Get("http://" + addr + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "mwembed_seeks_total")
		})

		Convey("Totals sum over labels", func() {
			before := testutil.ToFloat64(Seeks.WithLabelValues("server"))
			Seeks.WithLabelValues("server").Inc()

			totals, err := Totals()
			So(err, ShouldBeNil)
			So(totals["seeks_total"], ShouldBeGreaterThanOrEqualTo, before+2)
			So(totals, ShouldNotContainKey, "go_goroutines")
		})
	})
}
