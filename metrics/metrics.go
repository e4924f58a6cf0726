// Package metrics defines the Prometheus collectors shared across tools.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolInvocations counts tool calls by tool name.
	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcequery_tool_invocations_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool"},
	)

	// ToolFailures counts tool calls that returned an error payload.
	ToolFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcequery_tool_failures_total",
			Help: "Total number of tool invocations that returned an error",
		},
		[]string{"tool"},
	)

	// ToolDuration observes tool execution time in seconds.
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sourcequery_tool_duration_seconds",
			Help: "Duration of tool execution in seconds",
		},
		[]string{"tool"},
	)

	// SourceDegradations counts per-source failures that were reported
	// inline instead of failing the aggregate call.
	SourceDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcequery_source_degradations_total",
			Help: "Total number of source lookups degraded to an inline message",
		},
		[]string{"source"},
	)
)
