package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CartItemsAdded         prometheus.Counter
	CartDuplicateAdds      prometheus.Counter
	CartPersistFailures    prometheus.Counter
	CartItemsCurrentlyHeld prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CartItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_cart_items_added_total",
			Help: "Total number of items inserted into a cart",
		}),
		CartDuplicateAdds: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_cart_duplicate_adds_total",
			Help: "Total number of cart adds ignored because the item was already present",
		}),
		CartPersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatstore_cart_persist_failures_total",
			Help: "Total number of failed cart writes to local persistence",
		}),
		CartItemsCurrentlyHeld: factory.NewGauge(prometheus.GaugeOpts{
			Name: "beatstore_cart_items",
			Help: "Number of items in the most recently modified cart",
		}),
	}
}

func (m *Metrics) IncrementItemsAdded() {
	m.CartItemsAdded.Inc()
}

func (m *Metrics) IncrementDuplicateAdds() {
	m.CartDuplicateAdds.Inc()
}

func (m *Metrics) IncrementPersistFailures() {
	m.CartPersistFailures.Inc()
}

func (m *Metrics) SetItems(count int) {
	m.CartItemsCurrentlyHeld.Set(float64(count))
}
