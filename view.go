package numarena

import (
	"fmt"
	"slices"
	"unsafe"
	"weak"
)

// View is a shaped window over a subrange of a region's backing storage.
//
// A View does not keep its region alive: the link back to the source is a
// weak pointer used only for bookkeeping. Views are small values and are
// meant to be passed by value.
type View[T Numeric] struct {
	data  []T
	shape []int
	start int
	n     int
	gen   uint64
	src   weak.Pointer[region[T]]
}

// Data returns the view's elements in row-major order. The returned slice
// aliases region memory; its capacity equals its length.
func (v View[T]) Data() []T { return v.data }

// Shape returns a copy of the view's dimensions.
func (v View[T]) Shape() []int { return slices.Clone(v.shape) }

// Dims returns the number of dimensions.
func (v View[T]) Dims() int { return len(v.shape) }

// Len returns the element count.
func (v View[T]) Len() int { return v.n }

// Start returns the offset of the first element within the source region.
// Erased views always report 0.
func (v View[T]) Start() int { return v.start }

// Detached reports whether the view carries no provenance, either because
// it was erased or because it is a simulator placeholder.
func (v View[T]) Detached() bool {
	var zero weak.Pointer[region[T]]
	return v.src == zero
}

// Valid reports whether an attached view still addresses its region's
// current backing storage. It turns false once the region is released,
// freed, or grown past the view. Detached views cannot be checked and always
// report true.
func (v View[T]) Valid() bool {
	if v.Detached() {
		return true
	}
	r := v.src.Value()
	return r != nil && !r.freed && r.gen == v.gen
}

// Index returns the row-major position of idx within Data.
func (v View[T]) Index(idx ...int) int {
	if len(idx) != len(v.shape) {
		panic(fmt.Sprintf("numarena: %d indices for %d-dimensional view", len(idx), len(v.shape)))
	}
	pos := 0
	for i, x := range idx {
		if x < 0 || x >= v.shape[i] {
			panic(fmt.Sprintf("numarena: index %v out of range for shape %v", idx, v.shape))
		}
		pos = pos*v.shape[i] + x
	}
	return pos
}

// At returns the element at idx.
func (v View[T]) At(idx ...int) T { return v.data[v.Index(idx...)] }

// Set stores x at idx.
func (v View[T]) Set(x T, idx ...int) { v.data[v.Index(idx...)] = x }

// UnsafePointer returns the address of the first element, or nil for an
// empty or placeholder view. It is intended for handing memory across an
// FFI boundary, usually after Erase.
func (v View[T]) UnsafePointer() unsafe.Pointer {
	if len(v.data) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(v.data))
}

// Aliases reports whether a and b are attached views of the same live region
// whose element ranges overlap. Erased views never alias anything.
func Aliases[T Numeric](a, b View[T]) bool {
	if a.Detached() || b.Detached() || a.src != b.src {
		return false
	}
	if a.src.Value() == nil || a.n == 0 || b.n == 0 {
		return false
	}
	return a.start < b.start+b.n && b.start < a.start+a.n
}
