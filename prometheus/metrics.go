package prometheus

import (
	"net/http"
	"sync"
	"time"

	"catalog-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog operation metrics
	CatalogOperationsCounter *prometheus.CounterVec

	// Product status cascade metrics
	StatusTransitionsCounter *prometheus.CounterVec

	// Denormalized counter metrics
	CounterWritesCounter *prometheus.CounterVec

	// SKU collision metrics
	SKUConflictsCounter prometheus.Counter

	initOnce sync.Once
)

// InitMetrics registers the service metrics with the default registry.
// Until it is called every Record function is a no-op.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		prefix := config.Metrics.Prefix

		HttpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		DbOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		)

		CatalogOperationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_operations_total",
				Help: "Total number of catalog operations by outcome",
			},
			[]string{"operation", "outcome"},
		)

		StatusTransitionsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_status_transitions_total",
				Help: "Total number of product status changes made by the cascade",
			},
			[]string{"from", "to"},
		)

		CounterWritesCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_count_writes_total",
				Help: "Total number of product counters rewritten",
			},
			[]string{"kind"},
		)

		SKUConflictsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_sku_conflicts_total",
				Help: "Total number of rejected duplicate SKUs",
			},
		)
	})
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordCatalogOperation increments the counter for catalog operations
func RecordCatalogOperation(operation, outcome string) {
	if CatalogOperationsCounter == nil {
		return
	}
	CatalogOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordStatusTransition counts a product status change
func RecordStatusTransition(from, to string) {
	if StatusTransitionsCounter == nil {
		return
	}
	StatusTransitionsCounter.WithLabelValues(from, to).Inc()
}

// RecordCounterWrite counts a rewritten product counter
func RecordCounterWrite(kind string) {
	if CounterWritesCounter == nil {
		return
	}
	CounterWritesCounter.WithLabelValues(kind).Inc()
}

// RecordSKUConflict counts a rejected duplicate SKU
func RecordSKUConflict() {
	if SKUConflictsCounter == nil {
		return
	}
	SKUConflictsCounter.Inc()
}
