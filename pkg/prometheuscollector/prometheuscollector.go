// Package prometheuscollector exposes a handler's metrics in the
// Prometheus exposition format
// (https://prometheus.io/docs/instrumenting/exposition_formats/):
//
//	handler, err := handler.NewHandler(…)
//	collector := prometheuscollector.New(handler.Metrics)
//	prometheus.MustRegister(collector)
package prometheuscollector

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fileup/fileupd/pkg/handler"
)

var (
	requestsTotalDesc = prometheus.NewDesc(
		"fileupd_requests_total",
		"Total number of requests served by fileupd per method.",
		[]string{"method"}, nil)
	errorsTotalDesc = prometheus.NewDesc(
		"fileupd_errors_total",
		"Total number of errors per HTTP status code.",
		[]string{"status"}, nil)
	bytesReceivedDesc = prometheus.NewDesc(
		"fileupd_bytes_received",
		"Number of bytes received for uploads.",
		nil, nil)
	uploadsCreatedDesc = prometheus.NewDesc(
		"fileupd_uploads_created",
		"Number of created uploads.",
		nil, nil)
	uploadsCompleteDesc = prometheus.NewDesc(
		"fileupd_uploads_complete",
		"Number of completed uploads.",
		nil, nil)
)

type Collector struct {
	metrics handler.Metrics
}

// New creates a new collector which reads from the provided Metrics struct.
func New(metrics handler.Metrics) Collector {
	return Collector{
		metrics: metrics,
	}
}

func (Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- requestsTotalDesc
	descs <- errorsTotalDesc
	descs <- bytesReceivedDesc
	descs <- uploadsCreatedDesc
	descs <- uploadsCompleteDesc
}

func (c Collector) Collect(metrics chan<- prometheus.Metric) {
	for method, value := range c.metrics.RequestsTotal() {
		metrics <- prometheus.MustNewConstMetric(
			requestsTotalDesc,
			prometheus.CounterValue,
			float64(value),
			method,
		)
	}

	for status, value := range c.metrics.ErrorsTotal() {
		metrics <- prometheus.MustNewConstMetric(
			errorsTotalDesc,
			prometheus.CounterValue,
			float64(value),
			strconv.Itoa(status),
		)
	}

	metrics <- prometheus.MustNewConstMetric(
		bytesReceivedDesc,
		prometheus.CounterValue,
		float64(c.metrics.BytesReceived()),
	)

	metrics <- prometheus.MustNewConstMetric(
		uploadsCreatedDesc,
		prometheus.CounterValue,
		float64(c.metrics.UploadsCreated()),
	)

	metrics <- prometheus.MustNewConstMetric(
		uploadsCompleteDesc,
		prometheus.CounterValue,
		float64(c.metrics.UploadsComplete()),
	)
}
