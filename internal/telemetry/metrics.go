// Package telemetry holds Prometheus metrics for business-level
// observability.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the storefront's business and HTTP metrics.
type Metrics struct {
	// Catalog
	CatalogPagesServed prometheus.Counter
	CatalogSearches    prometheus.Counter

	// Cart
	CartUpdates *prometheus.CounterVec // action: add, update, remove, clear

	// Checkout funnel
	OrdersCreated    prometheus.Counter
	CheckoutFailed   *prometheus.CounterVec // reason: validation, conflict, internal
	PaymentAttempts  prometheus.Counter
	PaymentSucceeded prometheus.Counter
	PaymentFailed    prometheus.Counter
	OrderValue       prometheus.Histogram

	// HTTP
	RequestsTotal   *prometheus.CounterVec // method, path, status
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	namespace := "atelier"

	return &Metrics{
		CatalogPagesServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "pages_served_total",
			Help:      "Total catalog pages served",
		}),
		CatalogSearches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "searches_total",
			Help:      "Total catalog searches executed",
		}),
		CartUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "updates_total",
			Help:      "Total cart mutations by action",
		}, []string{"action"}),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_created_total",
			Help:      "Total orders created",
		}),
		CheckoutFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "failed_total",
			Help:      "Total failed checkouts by reason",
		}, []string{"reason"}),
		PaymentAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "attempts_total",
			Help:      "Total payment attempts",
		}),
		PaymentSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "succeeded_total",
			Help:      "Total successful payments",
		}),
		PaymentFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "failed_total",
			Help:      "Total declined payments",
		}),
		OrderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "order_value_cents",
			Help:      "Order totals in cents",
			Buckets:   prometheus.ExponentialBuckets(500, 2.5, 10),
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
