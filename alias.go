package numarena

import (
	"slices"
	"unsafe"
)

// Erase returns a view over the same memory and shape as v with all
// provenance removed. The result is unrelated to any region as far as this
// package can tell: Aliases never reports it, no region will Drop it, and
// Valid cannot detect when its memory goes away.
//
// Erase exists for interop, such as passing region memory across an FFI
// boundary or treating overlapping raw views as independent operands. The
// erased view is only safe while the source region is neither grown nor
// released. Do not erase views of a growable arena that may still grow.
func Erase[T Numeric](v View[T]) View[T] {
	var data []T
	if n := len(v.data); n > 0 {
		data = unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(v.data))), n)
	}
	return View[T]{
		data:  data,
		shape: slices.Clone(v.shape),
		n:     v.n,
	}
}
