package numarena

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScopeArena(t *testing.T) {
	var kept View[float64]
	sum, err := Scope(context.Background(), Layout{Capacity: 8}, func(_ context.Context, r *Resource[float64]) (float64, error) {
		require.Nil(t, r.Pool())
		v, err := AllocCopy[float64](r.Region(), []float64{1, 2, 3}, 3)
		if err != nil {
			return 0, err
		}
		kept = v
		return v.At(0) + v.At(1) + v.At(2), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum)
	assert.False(t, kept.Valid(), "region must be released after the scope")
}

func TestScopeStaticBodyError(t *testing.T) {
	boom := errors.New("boom")
	var kept View[int32]
	_, err := Scope(context.Background(), Layout{Capacity: 4, Static: true}, func(_ context.Context, r *Resource[int32]) (struct{}, error) {
		_, ok := r.Region().(*StaticArena[int32])
		require.True(t, ok)
		kept, _ = r.Region().Allocate(4)
		return struct{}{}, boom
	})
	assert.True(t, errors.Is(err, boom), "got %v", err)
	assert.False(t, kept.Valid(), "static arena must be freed on error")
}

func TestScopeFixedOverflow(t *testing.T) {
	_, err := Scope(context.Background(), Layout{Capacity: 4, Fixed: true}, func(_ context.Context, r *Resource[float32]) (int, error) {
		assert.False(t, r.Region().IsExtendable())
		_, err := r.Region().Allocate(5)
		return 0, err
	})
	assert.True(t, errors.Is(err, ErrOverflow), "got %v", err)
}

func TestScopePanicTearsDown(t *testing.T) {
	var kept View[float64]
	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = Scope(context.Background(), Layout{Capacity: 4, Static: true}, func(_ context.Context, r *Resource[float64]) (int, error) {
			kept, _ = r.Region().Allocate(2)
			panic("kaboom")
		})
	})
	assert.False(t, kept.Valid())
}

func TestScopeTeardownError(t *testing.T) {
	_, err := Scope(context.Background(), Layout{Capacity: 4, Static: true}, func(_ context.Context, r *Resource[float64]) (int, error) {
		// Freeing inside the body makes the guard's own Free fail.
		return 0, r.Region().(*StaticArena[float64]).Free()
	})
	assert.True(t, errors.Is(err, ErrUsage), "got %v", err)
}

func TestScopeInvalidLayout(t *testing.T) {
	for _, l := range []Layout{
		{Capacity: -1},
		{Capacity: 4, Slots: 2},
		{Capacity: 4, Static: true, Fixed: true},
		{Capacity: 4, Pooled: true, Slots: -1},
	} {
		ran := false
		_, err := Scope(context.Background(), l, func(context.Context, *Resource[float64]) (int, error) {
			ran = true
			return 0, nil
		})
		assert.True(t, errors.Is(err, ErrConfig), "layout %+v: %v", l, err)
		assert.False(t, ran)
	}
}

func TestScopePool(t *testing.T) {
	tasks, err := Scope(context.Background(), Layout{Capacity: 16, Pooled: true, Slots: 2}, func(_ context.Context, r *Resource[float64]) (int, error) {
		require.Nil(t, r.Region())
		p := r.Pool()
		assert.Equal(t, 2, p.Slots())

		task := NewTaskID()
		if err := blockedMatMul(r.Allocator(task), 4, 2); err != nil {
			return 0, err
		}
		return p.Slots() - p.Available(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tasks)
}

func TestScopePoolDefaultSlots(t *testing.T) {
	_, err := Scope(context.Background(), Layout{Capacity: 16, Pooled: true}, func(_ context.Context, r *Resource[float64]) (int, error) {
		assert.Equal(t, r.Pool().Slots(), r.Pool().Available())
		assert.Positive(t, r.Pool().Slots())
		return 0, nil
	})
	require.NoError(t, err)
}

func TestScope2TeardownOrder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	first := Layout{Capacity: 8, Pooled: true, Slots: 1, PoolOptions: []PoolOption{WithLogger(log), WithName("first")}}
	second := Layout{Capacity: 8, Static: true, Pooled: true, Slots: 1, PoolOptions: []PoolOption{WithLogger(log), WithName("second")}}

	n, err := Scope2(context.Background(), first, second, func(_ context.Context, a *Resource[float64], b *Resource[int64]) (int, error) {
		return a.Pool().Slots() + b.Pool().Slots(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	closed := logs.FilterMessage("pool closed").All()
	require.Len(t, closed, 2)
	assert.Equal(t, "second", closed[0].ContextMap()["pool"])
	assert.Equal(t, "first", closed[1].ContextMap()["pool"])
}

func TestScope2SecondBuildFails(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	first := Layout{Capacity: 8, Pooled: true, Slots: 1, PoolOptions: []PoolOption{WithLogger(zap.New(core))}}

	ran := false
	_, err := Scope2(context.Background(), first, Layout{Capacity: -5}, func(context.Context, *Resource[float64], *Resource[float64]) (int, error) {
		ran = true
		return 0, nil
	})
	assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
	assert.False(t, ran)
	assert.Equal(t, 1, logs.FilterMessage("pool closed").Len(), "first resource must be torn down")
}

func TestScopeTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, err := Scope(context.Background(), Layout{Capacity: 2, Fixed: true}, func(_ context.Context, r *Resource[float64]) (int, error) {
		_, err := r.Region().Allocate(3)
		return 0, err
	})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "numarena.Scope", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Contains(t, s.Attributes(), attribute.Int("numarena.a.capacity", 2))
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}
