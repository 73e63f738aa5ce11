package numarena

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const tracerName = "github.com/pavanmanishd/numarena"

// Resource is what a Scope hands its body: either a single region or a
// pool of regions, depending on the Layout.
type Resource[T Numeric] struct {
	region Region[T]
	pool   *Pool[T]
}

// Region returns the scoped region, or nil for a pooled layout.
func (r *Resource[T]) Region() Region[T] { return r.region }

// Pool returns the scoped pool, or nil for an unpooled layout.
func (r *Resource[T]) Pool() *Pool[T] { return r.pool }

// Allocator returns the region itself, or the task's lease on the pool.
func (r *Resource[T]) Allocator(task TaskID) Allocator[T] {
	if r.pool != nil {
		return r.pool.Lease(task)
	}
	return r.region
}

func build[T Numeric](l Layout) (*Resource[T], error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	var factory Factory[T]
	switch {
	case l.Static:
		factory = StaticFactory[T](l.Capacity)
	case l.Fixed:
		factory = FixedFactory[T](l.Capacity)
	default:
		factory = GrowableFactory[T](l.Capacity)
	}
	if !l.Pooled {
		r, err := factory(0)
		if err != nil {
			return nil, err
		}
		return &Resource[T]{region: r}, nil
	}
	slots := l.Slots
	if slots == 0 {
		slots = runtime.NumCPU()
	}
	p, err := NewPool(factory, append([]PoolOption{WithSlots(slots)}, l.PoolOptions...)...)
	if err != nil {
		return nil, err
	}
	return &Resource[T]{pool: p}, nil
}

func (r *Resource[T]) teardown() error {
	if r.pool != nil {
		return r.pool.Close()
	}
	return destroy(r.region)
}

// Scope builds the resource described by l, runs body, and tears the
// resource down on every exit path, including a panic in body. The body's
// result is returned; teardown errors are appended to the body's error.
func Scope[T Numeric, R any](ctx context.Context, l Layout, body func(context.Context, *Resource[T]) (R, error)) (res R, err error) {
	ctx, span := startScope(ctx, l)
	defer func() { endScope(span, err) }()

	a, err := build[T](l)
	if err != nil {
		return res, err
	}
	defer func() { err = multierr.Append(err, errors.Wrap(a.teardown(), "numarena: teardown")) }()

	return body(ctx, a)
}

// Scope2 is Scope for two resources. They are built in order and torn
// down in reverse order.
func Scope2[T, U Numeric, R any](ctx context.Context, la, lb Layout, body func(context.Context, *Resource[T], *Resource[U]) (R, error)) (res R, err error) {
	ctx, span := startScope(ctx, la, lb)
	defer func() { endScope(span, err) }()

	a, err := build[T](la)
	if err != nil {
		return res, err
	}
	defer func() { err = multierr.Append(err, errors.Wrap(a.teardown(), "numarena: teardown first resource")) }()

	b, err := build[U](lb)
	if err != nil {
		return res, err
	}
	defer func() { err = multierr.Append(err, errors.Wrap(b.teardown(), "numarena: teardown second resource")) }()

	return body(ctx, a, b)
}

func startScope(ctx context.Context, layouts ...Layout) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, 4*len(layouts))
	for i, l := range layouts {
		p := "numarena." + string(rune('a'+i)) + "."
		attrs = append(attrs,
			attribute.Int(p+"capacity", l.Capacity),
			attribute.Bool(p+"static", l.Static),
			attribute.Bool(p+"pooled", l.Pooled),
			attribute.Int(p+"slots", l.Slots),
		)
	}
	return otel.Tracer(tracerName).Start(ctx, "numarena.Scope", trace.WithAttributes(attrs...))
}

func endScope(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
