package numarena

import "github.com/pkg/errors"

// Arena is a growable bump allocator on the Go heap. Not goroutine-safe;
// use a Pool to give concurrent tasks their own arenas.
//
// Growing moves the backing storage. A view taken before a growing
// Allocate keeps addressing the old storage, so writes through it are not
// visible to later views; View.Valid reports this. Growth stops at 1 TiB of
// backing storage; larger requests fail with ErrOverflow.
type Arena[T Numeric] struct {
	r *region[T]
}

// NewArena creates an Arena with room for capacity elements. A non-growable
// arena fails with ErrOverflow instead of growing; SetExtendable changes this
// at runtime.
func NewArena[T Numeric](capacity int, growable bool) (*Arena[T], error) {
	if capacity < 0 {
		return nil, errors.Wrapf(ErrConfig, "negative arena capacity %d", capacity)
	}
	return &Arena[T]{r: newRegion(make([]T, capacity), growable, false)}, nil
}

// Allocate returns a view of product(dims) elements shaped dims.
func (a *Arena[T]) Allocate(dims ...int) (View[T], error) { return a.r.allocate(dims) }

// Drop releases views in stack order. The batch is checked as a whole: on
// error nothing is released.
func (a *Arena[T]) Drop(views ...View[T]) error { return a.r.drop(views) }

// Reset discards all outstanding views in O(1) without checking them.
func (a *Arena[T]) Reset() { a.r.reset() }

// ReshapeView returns a raw view of [offset, offset+product(dims)).
func (a *Arena[T]) ReshapeView(offset int, dims ...int) (View[T], error) {
	return a.r.reshapeView(offset, dims)
}

// UsedCount returns the allocated element count, or -1 in raw-view mode.
func (a *Arena[T]) UsedCount() int { return a.r.usedCount() }

// Capacity returns the current backing size in elements.
func (a *Arena[T]) Capacity() int { return len(a.r.buf) }

// SetExtendable toggles growth on overflow.
func (a *Arena[T]) SetExtendable(on bool) { a.r.extendable = on }

// IsExtendable reports whether the arena grows on overflow.
func (a *Arena[T]) IsExtendable() bool { return a.r.extendable }

// Release drops the backing storage and makes the arena unusable.
// Any subsequent operation panics. Release is idempotent.
func (a *Arena[T]) Release() {
	if a.r.freed {
		return
	}
	a.r.invalidate()
}
