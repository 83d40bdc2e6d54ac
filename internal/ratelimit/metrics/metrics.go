package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitRejections  *prometheus.CounterVec
	RateLimitStoreErrors prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateLimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beatstore_ratelimit_rejections_total",
			Help: "Requests rejected by a rate limit policy",
		}, []string{"policy"}),
		RateLimitStoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed and let the request through",
		}),
	}
}

func (m *Metrics) IncrementRejections(policy string) {
	m.RateLimitRejections.WithLabelValues(policy).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	m.RateLimitStoreErrors.Inc()
}
