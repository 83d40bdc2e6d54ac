package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP-level Prometheus metrics for the API server.
type Metrics struct {
	registry        *prometheus.Registry
	RequestDuration *prometheus.HistogramVec
	SavedItemsAdded prometheus.Counter
}

// New creates a dedicated registry and registers all server metrics on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beatstore_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		SavedItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_saved_items_added_total",
			Help: "Total number of saved items inserted server side",
		}),
	}
}

// Registerer exposes the registry so domain packages can add their metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one request latency.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// IncrementSavedItemsAdded counts a saved item that was newly inserted.
func (m *Metrics) IncrementSavedItemsAdded() {
	m.SavedItemsAdded.Inc()
}
