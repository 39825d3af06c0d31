// Package metrics exposes Prometheus instrumentation for the checkout path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	checkouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_checkouts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	checkoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boxoffice_checkout_duration_seconds",
			Help:    "Wall time of checkout attempts including lock waits",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_tickets_sold_total",
			Help: "Tickets sold per ticket type",
		},
		[]string{"ticket_type_id"},
	)
)

// RecordCheckout counts one finished checkout attempt. Outcome is a short
// stable label: "success", "empty_cart", "sold_out", "not_found", "error".
func RecordCheckout(outcome string, elapsed time.Duration) {
	checkouts.WithLabelValues(outcome).Inc()
	checkoutDuration.Observe(elapsed.Seconds())
}

// RecordTicketsSold counts quantity sold for one ticket type.
func RecordTicketsSold(ticketTypeID string, quantity int) {
	ticketsSold.WithLabelValues(ticketTypeID).Add(float64(quantity))
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
