package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/pkg/authz"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "softreq",
		Name:      "operations_total",
		Help:      "Request lifecycle operations broken down by operation and outcome.",
	}, []string{"operation", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "softreq",
		Name:      "operation_duration_seconds",
		Help:      "Latency of request lifecycle operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, authz.ErrForbidden):
		return "forbidden"
	case errors.Is(err, request.ErrNotFound):
		return "not_found"
	case errors.Is(err, request.ErrInvalidStatus), errors.Is(err, request.ErrInvalidTransition):
		return "invalid"
	default:
		return "error"
	}
}

// observe records one lifecycle call. Use as: defer observe(op, time.Now(), &err).
func observe(op authz.Operation, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	operationsTotal.WithLabelValues(string(op), outcome(err)).Inc()
	operationDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}
