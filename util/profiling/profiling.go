package profiling

import (
	"net"
	"net/http"

	// Registers the pprof handlers on http.DefaultServeMux
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ringnet/ringd/infrastructure/logger"
	"github.com/ringnet/ringd/util/panics"
)

// Handler returns the handler of the diagnostics server. It serves the pprof
// endpoints under /debug/pprof and the metrics gathered from gatherer under
// /metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", http.RedirectHandler("/debug/pprof/", http.StatusSeeOther))
	return mux
}

// Start starts the diagnostics server on the given port
func Start(port string, gatherer prometheus.Gatherer, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Diagnostics server listening on %s", listenAddr)
		log.Error(http.ListenAndServe(listenAddr, Handler(gatherer)))
	})
}
