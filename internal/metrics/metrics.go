package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coworking"

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Count of reservations accepted and stored.",
		},
	)

	reservationsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_rejected_total",
			Help:      "Count of reservation requests rejected, by reason.",
		},
		[]string{"reason"},
	)

	reservationsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_cancelled_total",
			Help:      "Count of reservations cancelled.",
		},
	)

	notificationsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Count of confirmations that were not delivered, by reason or sink.",
		},
		[]string{"reason"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationsCreated,
			reservationsRejected,
			reservationsCancelled,
			notificationsDropped,
			HTTPRequestsTotal,
			HTTPRequestDuration,
		)
	})
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

func IncReservationRejected(reason string) {
	reservationsRejected.WithLabelValues(reason).Inc()
}

func IncReservationCancelled() {
	reservationsCancelled.Inc()
}

func IncNotificationDropped(reason string) {
	notificationsDropped.WithLabelValues(reason).Inc()
}
