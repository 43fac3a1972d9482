package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taberna",
			Name:      "reservation_attempts_total",
			Help:      "Reservation admission attempts by outcome.",
		},
		[]string{"outcome"},
	)

	reservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taberna",
			Name:      "reservation_transitions_total",
			Help:      "Reservation status changes by target status.",
		},
		[]string{"status"},
	)

	availabilityQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "taberna",
			Name:      "availability_queries_total",
			Help:      "Availability lookups served.",
		},
	)

	contactsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "taberna",
			Name:      "contacts_received_total",
			Help:      "Project contact leads stored.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taberna",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taberna",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)

	slotCapacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "taberna",
			Name:      "slot_capacity",
			Help:      "Configured reservations per slot.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationAttempts,
			reservationTransitions,
			availabilityQueries,
			contactsReceived,
			cacheLookups,
			httpRequests,
			slotCapacity,
		)
	})
}

// Outcome labels for IncReservationAttempt.
const (
	OutcomeCreated         = "created"
	OutcomeDateUnavailable = "date_unavailable"
	OutcomeOutsideHours    = "outside_hours"
	OutcomeFull            = "full"
	OutcomeError           = "error"
)

func IncReservationAttempt(outcome string) {
	reservationAttempts.WithLabelValues(outcome).Inc()
}

func IncReservationTransition(status string) {
	reservationTransitions.WithLabelValues(status).Inc()
}

func IncAvailabilityQuery() {
	availabilityQueries.Inc()
}

func IncContactReceived() {
	contactsReceived.Inc()
}

func IncCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func ObserveHTTPRequest(route, code string, seconds float64) {
	httpRequests.WithLabelValues(route, code).Observe(seconds)
}

func SetSlotCapacity(n int) {
	slotCapacity.Set(float64(n))
}
