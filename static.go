package numarena

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/numarena/internal/mem"
)

// StaticArena is a fixed-capacity region whose storage is mapped outside
// the Go heap. It never grows, and it must be destroyed with exactly one
// call to Free. Views become invalid after Free; touching their data then
// faults.
type StaticArena[T Numeric] struct {
	r     *region[T]
	block []byte
}

// NewStaticArena maps storage for capacity elements.
func NewStaticArena[T Numeric](capacity int) (*StaticArena[T], error) {
	if capacity < 0 {
		return nil, errors.Wrapf(ErrConfig, "negative arena capacity %d", capacity)
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if capacity > math.MaxInt/size {
		return nil, errors.Wrapf(ErrConfig, "arena capacity %d overflows address space", capacity)
	}
	block, err := mem.Map(capacity * size)
	if err != nil {
		return nil, errors.Wrapf(err, "numarena: map static arena of %d elements", capacity)
	}
	var buf []T
	if capacity > 0 {
		buf = unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(block))), capacity)
	}
	return &StaticArena[T]{r: newRegion(buf, false, true), block: block}, nil
}

// Allocate returns a view of product(dims) elements shaped dims, or
// ErrOverflow if it does not fit.
func (s *StaticArena[T]) Allocate(dims ...int) (View[T], error) { return s.r.allocate(dims) }

// Drop releases views in stack order.
func (s *StaticArena[T]) Drop(views ...View[T]) error { return s.r.drop(views) }

// Reset discards all outstanding views.
func (s *StaticArena[T]) Reset() { s.r.reset() }

// ReshapeView returns a raw view of [offset, offset+product(dims)).
func (s *StaticArena[T]) ReshapeView(offset int, dims ...int) (View[T], error) {
	return s.r.reshapeView(offset, dims)
}

// UsedCount returns the allocated element count, or -1 in raw-view mode.
func (s *StaticArena[T]) UsedCount() int { return s.r.usedCount() }

// Capacity returns the fixed element capacity.
func (s *StaticArena[T]) Capacity() int { return len(s.r.buf) }

// SetExtendable is accepted for interface compatibility and has no effect.
func (s *StaticArena[T]) SetExtendable(bool) {}

// IsExtendable always reports false.
func (s *StaticArena[T]) IsExtendable() bool { return false }

// Free unmaps the storage. A second call returns ErrUsage; every other
// operation after Free panics.
func (s *StaticArena[T]) Free() error {
	if s.r.freed {
		return errors.Wrap(ErrUsage, "static arena freed twice")
	}
	s.r.invalidate()
	block := s.block
	s.block = nil
	return mem.Unmap(block)
}
