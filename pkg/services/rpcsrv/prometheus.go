package rpcsrv

import (
	"strconv"
	"time"

	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	rpcTimes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "RPC call handling time",
			Name:      "rpc_call_time",
			Namespace: "zkreg",
		},
		[]string{"method"},
	)
	rpcErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of failed RPC calls by error code",
			Name:      "rpc_errors_total",
			Namespace: "zkreg",
		},
		[]string{"method", "code"},
	)
)

// addReqMetrics accounts for a handled call, unknown methods are not
// tracked to keep label cardinality bounded.
func addReqMetrics(method string, t time.Duration, err *neorpc.Error) {
	_, known := rpcHandlers[method]
	if !known {
		_, known = rpcWsHandlers[method]
	}
	if !known {
		return
	}
	rpcTimes.WithLabelValues(method).Observe(t.Seconds())
	if err != nil {
		rpcErrors.WithLabelValues(method, strconv.FormatInt(err.Code, 10)).Inc()
	}
}

func init() {
	prometheus.MustRegister(rpcTimes, rpcErrors)
}
