package numarena

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// poolMetrics are always updated; they are only exported when the pool is
// given a registerer.
type poolMetrics struct {
	acquires  prometheus.Counter
	contended prometheus.Counter
	releases  prometheus.Counter
	repairs   prometheus.Counter
	inUse     prometheus.Gauge
	slots     prometheus.Gauge
}

func newPoolMetrics(name string) *poolMetrics {
	var labels prometheus.Labels
	if name != "" {
		labels = prometheus.Labels{"pool": name}
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "numarena",
			Subsystem:   "pool",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "numarena",
			Subsystem:   "pool",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	return &poolMetrics{
		acquires:  counter("acquires_total", "Slots handed to tasks."),
		contended: counter("contended_acquires_total", "Acquisitions that had to wait for a free slot."),
		releases:  counter("releases_total", "Slots returned by tasks."),
		repairs:   counter("repairs_total", "Administrative repairs of the free-list."),
		inUse:     gauge("slots_in_use", "Slots currently lent to a task."),
		slots:     gauge("slots", "Slots owned by the pool."),
	}
}

func (m *poolMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.acquires, m.contended, m.releases, m.repairs, m.inUse, m.slots}
}

func (m *poolMetrics) register(reg prometheus.Registerer) error {
	for i, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			for _, done := range m.collectors()[:i] {
				reg.Unregister(done)
			}
			return multierr.Append(errors.Wrap(ErrConfig, "register pool metrics"), err)
		}
	}
	return nil
}

func (m *poolMetrics) unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}
