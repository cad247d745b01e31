// Package metrics provides Prometheus metrics for the SOP tool server
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the server. Each instance owns
// its registry so tests can build servers without collisions.
type Metrics struct {
	Registry *prometheus.Registry

	// JSON-RPC request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Tool call metrics
	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec

	// Retrieval metrics
	SearchQueriesTotal  prometheus.Counter
	SearchResultsTotal  prometheus.Counter
	SectionReadsTotal   prometheus.Counter
	WebSearchesTotal    *prometheus.CounterVec
	CiteValidationsTotal prometheus.Counter

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics on a fresh
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		Registry:        registry,
		ServerStartTime: time.Now(),
	}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sopmcp_rpc_requests_total",
			Help: "Total number of JSON-RPC requests",
		},
		[]string{"method", "status"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sopmcp_rpc_request_duration_seconds",
			Help:    "Duration of JSON-RPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.ToolCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sopmcp_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	m.ToolCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sopmcp_tool_call_duration_seconds",
			Help:    "Duration of tool invocations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"tool"},
	)

	m.SearchQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "sopmcp_search_queries_total",
			Help: "Total number of hybrid search queries",
		},
	)

	m.SearchResultsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "sopmcp_search_results_total",
			Help: "Total number of search results returned",
		},
	)

	m.SectionReadsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "sopmcp_section_reads_total",
			Help: "Total number of section reads",
		},
	)

	m.WebSearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sopmcp_web_searches_total",
			Help: "Total number of web search calls by outcome",
		},
		[]string{"outcome"},
	)

	m.CiteValidationsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "sopmcp_cite_validations_total",
			Help: "Total number of citation validations",
		},
	)

	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "sopmcp_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// RecordRequest records a JSON-RPC request with its status
func (m *Metrics) RecordRequest(method string, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordToolCall records a tool invocation
func (m *Metrics) RecordToolCall(tool string, status string, duration time.Duration) {
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge
func (m *Metrics) UpdateUptime() {
	m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
}
