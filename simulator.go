package numarena

import (
	"slices"

	"github.com/pkg/errors"
)

// Simulator implements Allocator without memory. It tracks how many
// elements are outstanding and the peak of that count, so a workload can be
// dry-run to size a real arena.
//
// A run measures only the control-flow path actually taken for its inputs.
type Simulator[T Numeric] struct {
	current int
	peak    int
}

// NewSimulator returns a Simulator with both counters at zero.
func NewSimulator[T Numeric]() *Simulator[T] {
	return &Simulator[T]{}
}

// Allocate records product(dims) elements and returns a placeholder that is
// only good as a Drop argument. Its Data is nil.
func (s *Simulator[T]) Allocate(dims ...int) (View[T], error) {
	n, err := volume(dims)
	if err != nil {
		return View[T]{}, err
	}
	v := View[T]{shape: slices.Clone(dims), start: s.current, n: n}
	s.current += n
	s.peak = max(s.peak, s.current)
	return v, nil
}

// Drop subtracts the placeholders' lengths from the current count.
func (s *Simulator[T]) Drop(views ...View[T]) error {
	total := 0
	for _, v := range views {
		total += v.n
	}
	if total > s.current {
		return errors.Wrapf(ErrStackDiscipline, "drop of %d elements with %d outstanding", total, s.current)
	}
	s.current -= total
	return nil
}

// Reset sets the current count to zero. The peak is kept.
func (s *Simulator[T]) Reset() { s.current = 0 }

// Current returns the outstanding element count.
func (s *Simulator[T]) Current() int { return s.current }

// Peak returns the maximum outstanding element count seen so far.
func (s *Simulator[T]) Peak() int { return s.peak }

// UsedCount is Current, for symmetry with Region.
func (s *Simulator[T]) UsedCount() int { return s.current }

// Measure dry-runs workload against a fresh Simulator and returns the peak
// element count, which is the capacity a fixed arena needs for the same
// inputs.
func Measure[T Numeric](workload func(Allocator[T]) error) (int, error) {
	s := NewSimulator[T]()
	if err := workload(s); err != nil {
		return s.Peak(), err
	}
	return s.Peak(), nil
}
