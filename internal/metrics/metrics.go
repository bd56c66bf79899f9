package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TurnsTotal counts processed conversation turns by outcome
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpulse",
		Name:      "turns_total",
		Help:      "Processed conversation turns by outcome",
	}, []string{"outcome"})

	// TurnDuration observes end-to-end turn latency in seconds
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stockpulse",
		Name:      "turn_duration_seconds",
		Help:      "End-to-end turn processing latency",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 45, 60},
	})

	// ToolExecutions counts tool invocations by tool name and status
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpulse",
		Name:      "tool_executions_total",
		Help:      "Tool invocations by tool name and status",
	}, []string{"tool", "status"})

	// GatewayRequests counts upstream quote gateway requests by status
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpulse",
		Name:      "quote_gateway_requests_total",
		Help:      "Quote gateway batch requests by status",
	}, []string{"status"})

	// DailyUpdatesSent counts daily summary deliveries by status
	DailyUpdatesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpulse",
		Name:      "daily_updates_total",
		Help:      "Daily summary deliveries by status",
	}, []string{"status"})
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
