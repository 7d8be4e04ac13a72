package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	RoundLatency          = metric.NewHistogram("1m1s")
	ForwardedPerSecond    = metric.NewCounter("10s1s")
	DeliveredPerSecond    = metric.NewCounter("10s1s")
	DroppedPerSecond      = metric.NewCounter("10s1s")
	MalformedPerSecond    = metric.NewCounter("10s1s")
	ControlSentPerSecond  = metric.NewCounter("10s1s")
	ControlRecvPerSecond  = metric.NewCounter("10s1s")
	TableChangesPerSecond = metric.NewCounter("10s1s")
	LinkLostPerSecond     = metric.NewCounter("10s1s")
	LinkCarriedPerSecond  = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("dvroute:RoundLatency (µs)", RoundLatency)
	expvar.Publish("dvroute:Forwarded/s", ForwardedPerSecond)
	expvar.Publish("dvroute:Delivered/s", DeliveredPerSecond)
	expvar.Publish("dvroute:Dropped/s", DroppedPerSecond)
	expvar.Publish("dvroute:Malformed/s", MalformedPerSecond)
	expvar.Publish("dvroute:ControlSent/s", ControlSentPerSecond)
	expvar.Publish("dvroute:ControlRecv/s", ControlRecvPerSecond)
	expvar.Publish("dvroute:TableChanges/s", TableChangesPerSecond)
	expvar.Publish("dvroute:LinkLost/s", LinkLostPerSecond)
	expvar.Publish("dvroute:LinkCarried/s", LinkCarriedPerSecond)
}
