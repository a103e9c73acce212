package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultPrefix is used until Init is called with the configured prefix.
const DefaultPrefix = "cbc_bookstore"

var (
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DBOperationDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogQueriesTotal *prometheus.CounterVec

	// Checkout metrics
	OrdersPlacedTotal   *prometheus.CounterVec
	CheckoutFailures    *prometheus.CounterVec
	OrderAmountObserved prometheus.Histogram

	// Admin metrics
	AdminAuthFailures prometheus.Counter
	ProductUpserts    *prometheus.CounterVec
)

func init() {
	// Unregistered defaults so packages can record before main wires the real registry.
	Init(DefaultPrefix, prometheus.NewRegistry())
}

// Init (re)creates all metrics with the given name prefix and registers them
// with reg.
func Init(prefix string, reg prometheus.Registerer) {
	factory := promauto.With(reg)

	HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DBOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	CatalogQueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_queries_total",
			Help: "Total number of catalog listing queries by sort order",
		},
		[]string{"sort"},
	)

	OrdersPlacedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of orders placed",
		},
		[]string{"delivery_option"},
	)

	CheckoutFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_checkout_failures_total",
			Help: "Total number of rejected or failed checkouts",
		},
		[]string{"reason"},
	)

	OrderAmountObserved = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_order_amount_kes",
			Help:    "Distribution of order totals in KES",
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000},
		},
	)

	AdminAuthFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_admin_auth_failures_total",
			Help: "Total number of rejected admin secrets",
		},
	)

	ProductUpserts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_upserts_total",
			Help: "Total number of admin product upserts by outcome",
		},
		[]string{"outcome"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DBOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordCheckoutFailure increments the checkout failure counter for reason.
func RecordCheckoutFailure(reason string) {
	CheckoutFailures.WithLabelValues(reason).Inc()
}
