package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "showcase"

const (
	VoteCreated  = "created"
	VoteConflict = "conflict"

	NotificationCreated        = "created"
	NotificationSelfSuppressed = "self_suppressed"
	NotificationDeduplicated   = "deduplicated"
	NotificationUnresolved     = "unresolved"
)

var (
	Votes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote attempts by result",
		},
		[]string{"result"},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification rule evaluations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	VisibilityChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visibility_changes_total",
			Help:      "Moderation visibility updates by target state",
		},
		[]string{"to"},
	)

	PrunedNotifications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_notifications_total",
			Help:      "Read notifications removed by the retention job",
		},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(Votes, Notifications, VisibilityChanges, PrunedNotifications, RequestDuration)
}
