package mutation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records list loads and mutations. A nil *Metrics records nothing.
type Metrics struct {
	loads       *prometheus.CounterVec
	loadSeconds *prometheus.HistogramVec
	mutations   *prometheus.CounterVec
}

// NewMetrics creates the console collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsconsole",
			Name:      "list_loads_total",
			Help:      "Collection loads by entity and result.",
		}, []string{"entity", "result"}),
		loadSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opsconsole",
			Name:      "list_load_seconds",
			Help:      "Time to load a full collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsconsole",
			Name:      "mutations_total",
			Help:      "Create, update and delete calls by entity, operation and result.",
		}, []string{"entity", "op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.loads, m.loadSeconds, m.mutations)
	}
	return m
}

// ObserveLoad implements listing.Observer.
func (m *Metrics) ObserveLoad(entity string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(entity, result(err)).Inc()
	m.loadSeconds.WithLabelValues(entity).Observe(d.Seconds())
}

// ObserveMutation counts one finished mutation.
func (m *Metrics) ObserveMutation(entity string, op Op, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, string(op), result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
