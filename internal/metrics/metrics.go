// Package metrics exposes Prometheus counters for the chat pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter owns the registry and the pipeline metrics.
type Exporter struct {
	registry *prometheus.Registry

	messages      *prometheus.CounterVec
	llmFailures   prometheus.Counter
	socketClients prometheus.Gauge
}

// NewExporter creates an Exporter over its own registry.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{registry: registry}

	e.messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "citycompass",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total number of chat messages processed, by intent",
		},
		[]string{"intent"},
	)

	e.llmFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "citycompass",
			Subsystem: "chat",
			Name:      "llm_failures_total",
			Help:      "Total number of language model calls that failed",
		},
	)

	e.socketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "citycompass",
			Subsystem: "socket",
			Name:      "clients",
			Help:      "Number of connected socket clients",
		},
	)

	registry.MustRegister(
		e.messages,
		e.llmFailures,
		e.socketClients,
	)

	return e
}

// Handler serves the registry in Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// CountMessage increments the per-intent message counter.
func (e *Exporter) CountMessage(intent string) {
	e.messages.WithLabelValues(intent).Inc()
}

// CountLLMFailure increments the model failure counter.
func (e *Exporter) CountLLMFailure() {
	e.llmFailures.Inc()
}

// SocketConnected adjusts the connected-client gauge.
func (e *Exporter) SocketConnected(delta int) {
	e.socketClients.Add(float64(delta))
}

// defaultExporter backs the package-level helpers so call sites do not have
// to thread the exporter through every constructor.
var defaultExporter = NewExporter()

// Default returns the process-wide exporter.
func Default() *Exporter { return defaultExporter }

// CountMessage increments the per-intent message counter on the default
// exporter.
func CountMessage(intent string) { defaultExporter.CountMessage(intent) }

// CountLLMFailure increments the model failure counter on the default
// exporter.
func CountLLMFailure() { defaultExporter.CountLLMFailure() }

// SocketConnected adjusts the connected-client gauge on the default exporter.
func SocketConnected(delta int) { defaultExporter.SocketConnected(delta) }
