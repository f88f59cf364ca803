package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authz",
		Name:      "decisions_total",
		Help:      "Total number of access policy decisions broken down by operation, mode and result.",
	}, []string{"operation", "mode", "result"})

	debugLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "authz",
		Subsystem: "debug",
		Name:      "latency_seconds",
		Help:      "Latency distribution for authz inspections.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
		},
	}, []string{"result"})
)

func resultLabel(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func recordDecision(op Operation, mode Mode, allowed bool) {
	decisions.With(prometheus.Labels{
		"operation": string(op),
		"mode":      string(mode),
		"result":    resultLabel(allowed),
	}).Inc()
}

func recordDebugMetrics(allowed bool, latency time.Duration) {
	debugLatency.With(prometheus.Labels{"result": resultLabel(allowed)}).Observe(latency.Seconds())
}
