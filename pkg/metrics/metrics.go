package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Blob store metrics
	BlobOperations *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec

	// Worker metrics
	BlobsSwept prometheus.Counter
}

// NewMetrics creates and registers all application metrics on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		BlobOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_operations_total",
			Help:      "Total number of blob store operations",
		}, []string{"operation", "status"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		}, []string{"event_type", "status"}),

		BlobsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blobs_swept_total",
			Help:      "Total number of unreferenced blobs removed",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveDatabase records one store operation. Safe on a nil receiver.
func (m *Metrics) ObserveDatabase(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.DatabaseOperations.WithLabelValues(operation, status(err)).Inc()
	m.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveBlob records one blob store operation. Safe on a nil receiver.
func (m *Metrics) ObserveBlob(operation string, err error) {
	if m == nil {
		return
	}
	m.BlobOperations.WithLabelValues(operation, status(err)).Inc()
}

// ObserveEvent records one publish attempt. Safe on a nil receiver.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, status(err)).Inc()
}

// ObserveRequest records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method, path, code string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
	m.RequestTotal.WithLabelValues(method, path, code).Inc()
}

// AddSwept counts blobs removed by the janitor. Safe on a nil receiver.
func (m *Metrics) AddSwept(n int) {
	if m == nil {
		return
	}
	m.BlobsSwept.Add(float64(n))
}
