package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ReconcilePasses         *prometheus.CounterVec
	ReconcilePassDuration   prometheus.Histogram
	ReconcileSyncedItems    prometheus.Counter
	ReconcileSyncFailures   prometheus.Counter
	ReconcileFallbacks      *prometheus.CounterVec
	SavedServerWriteFailure *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReconcilePasses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beatstore_reconcile_passes_total",
			Help: "Total number of saved-item reconciliation passes by outcome",
		}, []string{"outcome"}),
		ReconcilePassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "beatstore_reconcile_pass_duration_seconds",
			Help:    "Duration of saved-item reconciliation passes",
			Buckets: prometheus.DefBuckets,
		}),
		ReconcileSyncedItems: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_reconcile_synced_items_total",
			Help: "Total number of locally saved items pushed to the server",
		}),
		ReconcileSyncFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_reconcile_sync_failures_total",
			Help: "Total number of locally saved items that failed to sync",
		}),
		ReconcileFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beatstore_reconcile_product_fallbacks_total",
			Help: "Total number of products resolved outside the server list, by source",
		}, []string{"source"}),
		SavedServerWriteFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beatstore_saved_server_write_failures_total",
			Help: "Total number of failed saved-item writes to the server while authenticated",
		}, []string{"op"}),
	}
}

func (m *Metrics) ObservePass(outcome string, seconds float64) {
	m.ReconcilePasses.WithLabelValues(outcome).Inc()
	m.ReconcilePassDuration.Observe(seconds)
}

func (m *Metrics) AddSynced(n int) {
	m.ReconcileSyncedItems.Add(float64(n))
}

func (m *Metrics) AddSyncFailures(n int) {
	m.ReconcileSyncFailures.Add(float64(n))
}

func (m *Metrics) IncrementFallback(source string) {
	m.ReconcileFallbacks.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementServerWriteFailure(op string) {
	m.SavedServerWriteFailure.WithLabelValues(op).Inc()
}
