package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsRolledOverTotal,
		subscriptionChangesTotal,
		remindersSentTotal,
	)
}

var (
	subscriptionsRolledOverTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_rolled_over_total",
			Help: "Total number of records whose payment date was advanced by the rollover worker.",
		},
	)

	subscriptionChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_changes_total",
			Help: "Records written through the chat, by operation.",
		},
		[]string{"op"}, // 'created', 'updated', 'deleted'
	)

	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Payment reminders handed to the transport, by result.",
		},
		[]string{"result"}, // 'sent', 'failed' or 'dropped'
	)
)

func IncSubscriptionsRolledOver(count int) {
	subscriptionsRolledOverTotal.Add(float64(count))
}

func IncSubscriptionChange(op string) {
	subscriptionChangesTotal.WithLabelValues(norm(op)).Inc()
}

func IncReminder(result string) {
	remindersSentTotal.WithLabelValues(norm(result)).Inc()
}
