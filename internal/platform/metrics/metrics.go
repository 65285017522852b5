package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	PurchasesTotal    *prometheus.CounterVec
	TicketsSoldTotal  prometheus.Counter
	SpotsSoldTotal    prometheus.Counter
	UsersCreatedTotal prometheus.Counter
	HTTPDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics on a specific registerer. Tests pass a fresh
// registry to avoid duplicate-registration panics across cases.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PurchasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toursales_purchases_total",
			Help: "Purchase attempts by outcome (success, invalid, not_found, insufficient, error)",
		}, []string{"outcome"}),
		TicketsSoldTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "toursales_tickets_sold_total",
			Help: "Total number of tickets issued",
		}),
		SpotsSoldTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "toursales_spots_sold_total",
			Help: "Total number of tour spots sold across all tickets",
		}),
		UsersCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "toursales_users_created_total",
			Help: "Total number of buyers registered",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "toursales_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// RecordPurchase increments the purchase counter for the given outcome.
func (m *Metrics) RecordPurchase(outcome string) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(outcome).Inc()
}

// RecordSale tracks an issued ticket and the spots it consumed.
func (m *Metrics) RecordSale(quantity int) {
	if m == nil {
		return
	}
	m.TicketsSoldTotal.Inc()
	m.SpotsSoldTotal.Add(float64(quantity))
}

// IncrementUsersCreated increments the buyers registered counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreatedTotal.Inc()
}

// ObserveHTTPDuration records a request latency sample.
func (m *Metrics) ObserveHTTPDuration(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(route, status).Observe(seconds)
}
