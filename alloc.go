package numarena

import (
	"runtime"

	"github.com/pkg/errors"
)

// AllocZeroed allocates a view and clears its elements. Region memory is
// not cleared between uses, so plain Allocate may return stale data.
func AllocZeroed[T Numeric](a Allocator[T], dims ...int) (View[T], error) {
	v, err := a.Allocate(dims...)
	if err != nil {
		return View[T]{}, err
	}
	clear(v.data)
	return v, nil
}

// AllocFilled allocates a view with every element set to x.
func AllocFilled[T Numeric](a Allocator[T], x T, dims ...int) (View[T], error) {
	v, err := a.Allocate(dims...)
	if err != nil {
		return View[T]{}, err
	}
	for i := range v.data {
		v.data[i] = x
	}
	return v, nil
}

// AllocCopy allocates a view shaped dims holding a copy of src. The shape
// must have exactly len(src) elements. Against a Simulator only the
// allocation is recorded.
func AllocCopy[T Numeric](a Allocator[T], src []T, dims ...int) (View[T], error) {
	n, err := volume(dims)
	if err != nil {
		return View[T]{}, err
	}
	if n != len(src) {
		return View[T]{}, errors.Wrapf(ErrConfig, "shape %v holds %d elements, source has %d", dims, n, len(src))
	}
	v, err := a.Allocate(dims...)
	if err != nil {
		return View[T]{}, err
	}
	copy(v.data, src)
	return v, nil
}

// KeepAlive returns v and keeps r reachable until this call. Use it after
// handing an erased view's memory to code the garbage collector cannot see.
func KeepAlive[T Numeric](r Region[T], v View[T]) View[T] {
	runtime.KeepAlive(r)
	return v
}
