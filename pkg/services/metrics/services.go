package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewPrometheusService creates a service exposing registry metrics on
// "/metrics" at every configured address.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return NewService("Prometheus", newServers(cfg.Addresses, mux), cfg, log)
}

// NewPprofService creates a service exposing runtime profiles under
// "/debug/pprof/".
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return NewService("Pprof", newServers(cfg.Addresses, mux), cfg, log)
}

// newServers shares one handler between servers bound to addrs.
func newServers(addrs []string, h http.Handler) []*http.Server {
	srvs := make([]*http.Server, 0, len(addrs))
	for _, addr := range addrs {
		srvs = append(srvs, &http.Server{Addr: addr, Handler: h})
	}
	return srvs
}
