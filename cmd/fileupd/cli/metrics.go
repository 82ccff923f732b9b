package cli

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fileup/fileupd/pkg/handler"
	"github.com/fileup/fileupd/pkg/prometheuscollector"
)

var MetricsOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "fileupd_connections_open",
	Help: "Current number of open connections.",
})

func SetupMetrics(mux *http.ServeMux, h *handler.Handler) {
	prometheus.MustRegister(MetricsOpenConnections)
	prometheus.MustRegister(prometheuscollector.New(h.Metrics))

	stdout.Printf("Using %s as the metrics path.\n", Flags.MetricsPath)
	mux.Handle(Flags.MetricsPath, promhttp.Handler())
}
