package numarena

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type poolOptions struct {
	slots      int
	slotsSet   bool
	logger     *zap.Logger
	registerer prometheus.Registerer
	name       string
}

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

// WithSlots sets the number of slots. The default is runtime.NumCPU().
func WithSlots(n int) PoolOption {
	return func(o *poolOptions) {
		o.slots = n
		o.slotsSet = true
	}
}

// WithLogger sets the logger for pool lifecycle events.
func WithLogger(l *zap.Logger) PoolOption {
	return func(o *poolOptions) { o.logger = l }
}

// WithRegisterer registers the pool's collectors with reg.
func WithRegisterer(reg prometheus.Registerer) PoolOption {
	return func(o *poolOptions) { o.registerer = reg }
}

// WithName labels the pool's metrics and log lines.
func WithName(name string) PoolOption {
	return func(o *poolOptions) { o.name = name }
}

func newPoolOptions(opts []PoolOption) (poolOptions, error) {
	o := poolOptions{slots: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.slotsSet && o.slots <= 0 {
		return o, errors.Wrapf(ErrConfig, "pool needs at least one slot, got %d", o.slots)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.name != "" {
		o.logger = o.logger.With(zap.String("pool", o.name))
	}
	return o, nil
}
