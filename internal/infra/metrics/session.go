package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		dispatchEventsTotal,
		dispatchDuration,
		sessionStoreOpsTotal,
		sessionLockContentionTotal,
	)
}

var (
	dispatchEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_events_total",
			Help: "Inbound chat events by registry, handler and outcome.",
		},
		// outcome: ok|token_error|user_error|error|busy|unmatched
		[]string{"registry", "handler", "outcome"},
	)

	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Time spent handling one inbound chat event.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"registry"},
	)

	sessionStoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_ops_total",
			Help: "Session store operations by op and result (ok|miss|corrupt|error).",
		},
		[]string{"op", "result"},
	)

	sessionLockContentionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_lock_contention_total",
			Help: "Events rejected because the user's session lock was held.",
		},
	)
)

func ObserveDispatch(registry, handler, outcome string, elapsed time.Duration) {
	dispatchEventsTotal.WithLabelValues(norm(registry), norm(handler), norm(outcome)).Inc()
	dispatchDuration.WithLabelValues(norm(registry)).Observe(elapsed.Seconds())
}

func IncSessionStoreOp(op, result string) {
	sessionStoreOpsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}

func IncLockContention() {
	sessionLockContentionTotal.Inc()
}
