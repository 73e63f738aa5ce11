package numarena

// ArenaMetrics contains statistical information about a region.
type ArenaMetrics struct {
	Used        int     // Elements currently allocated; -1 in raw-view mode
	Capacity    int     // Backing size in elements
	HighWater   int     // Largest extent ever allocated or addressed
	Grows       int     // Number of times the backing storage moved
	Utilization float64 // Ratio of used to capacity (0.0-1.0)
	Extendable  bool
	Raw         bool
}

func (r *region[T]) metrics() ArenaMetrics {
	m := ArenaMetrics{
		Used:       r.usedCount(),
		Capacity:   len(r.buf),
		HighWater:  r.highWater,
		Grows:      r.grows,
		Extendable: r.extendable && !r.static,
		Raw:        r.raw,
	}
	if m.Capacity > 0 && m.Used > 0 {
		m.Utilization = float64(m.Used) / float64(m.Capacity)
	}
	return m
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena[T]) Metrics() ArenaMetrics { return a.r.metrics() }

// Metrics returns a snapshot of arena statistics.
func (s *StaticArena[T]) Metrics() ArenaMetrics { return s.r.metrics() }
