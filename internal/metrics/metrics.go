package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Chatbot metrics - using explicit registration
var (
	// Chat request counter by outcome
	ChatRequestsTotal *prometheus.CounterVec

	// End-to-end chat turn latency
	ChatLatency prometheus.Histogram

	// Tool invocation counter
	ToolCallsTotal *prometheus.CounterVec

	// Model invocation counter
	ModelCallsTotal *prometheus.CounterVec
)

// init creates and registers all metrics with the default registry
func init() {
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphchat",
			Subsystem: "http",
			Name:      "chat_requests_total",
			Help:      "Total number of chat API requests",
		},
		[]string{"status"},
	)

	ChatLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "graphchat",
			Subsystem: "http",
			Name:      "chat_latency_seconds",
			Help:      "End-to-end chat turn latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphchat",
			Subsystem: "graph",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations by the graph",
		},
		[]string{"tool_name", "status"},
	)

	ModelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphchat",
			Subsystem: "graph",
			Name:      "model_calls_total",
			Help:      "Total chat model invocations by the graph",
		},
		[]string{"model", "status"},
	)

	prometheus.MustRegister(
		ChatRequestsTotal,
		ChatLatency,
		ToolCallsTotal,
		ModelCallsTotal,
	)
}
