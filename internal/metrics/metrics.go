package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stayhub"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		},
		[]string{"route", "status"},
	)

	bookingValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_validations_total",
			Help:      "Booking input validations by result.",
		},
		[]string{"result"},
	)

	gatewayFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_gateway_failures_total",
			Help:      "Payment provider failures by operation and category.",
		},
		[]string{"operation", "category"},
	)

	webhookOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhooks_total",
			Help:      "Payment webhook deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	reservationsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_committed_total",
			Help:      "Reservations durably created from completed payments.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingValidations,
			gatewayFailures,
			webhookOutcomes,
			reservationsCommitted,
		)
	})
}

// IncHTTP counts one request for a route pattern and status class ("2xx", "4xx", ...).
func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

func IncBookingValidation(result string) {
	bookingValidations.WithLabelValues(result).Inc()
}

func IncGatewayFailure(operation, category string) {
	gatewayFailures.WithLabelValues(operation, category).Inc()
}

func IncWebhook(outcome string) {
	webhookOutcomes.WithLabelValues(outcome).Inc()
}

func IncReservationCommitted() {
	reservationsCommitted.Inc()
}
