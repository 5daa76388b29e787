package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Tool dispatch metrics
	ToolCallsTotal      *prometheus.CounterVec
	ToolCallDuration    *prometheus.HistogramVec
	ToolCallErrorsTotal *prometheus.CounterVec

	// Gateway metrics
	ConnectionsActive     prometheus.Gauge
	ConnectionsTotal      prometheus.Counter
	MessagesReceivedTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_calls_total",
				Help: "Total number of tool calls dispatched",
			},
			[]string{"server", "tool", "status"},
		),
		ToolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_call_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"server", "tool"},
		),
		ToolCallErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_call_errors_total",
				Help: "Total number of tool call errors by kind",
			},
			[]string{"server", "tool", "error_kind"},
		),

		ConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_connections_active",
				Help: "Number of active gateway connections",
			},
		),
		ConnectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_connections_total",
				Help: "Total number of gateway connections accepted",
			},
		),
		MessagesReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_messages_received_total",
				Help: "Total number of gateway messages received by type",
			},
			[]string{"message_type"},
		),
	}

	registry.MustRegister(
		m.ToolCallsTotal,
		m.ToolCallDuration,
		m.ToolCallErrorsTotal,
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.MessagesReceivedTotal,
	)

	return m
}

// ObserveToolCall records one dispatched tool call.
func (m *Metrics) ObserveToolCall(server, tool, status string, duration time.Duration) {
	m.ToolCallsTotal.WithLabelValues(server, tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(server, tool).Observe(duration.Seconds())
}

// CountToolError records one tool call error by kind.
func (m *Metrics) CountToolError(server, tool, kind string) {
	m.ToolCallErrorsTotal.WithLabelValues(server, tool, kind).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
