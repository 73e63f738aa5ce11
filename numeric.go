package numarena

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Numeric is the set of element types a region can hold. None of them
// contain pointers, which is what allows StaticArena to keep its elements
// in memory the garbage collector never scans.
type Numeric interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// volume returns the element count of a shape. An empty shape is a scalar.
func volume(dims []int) (int, error) {
	n := 1
	for _, d := range dims {
		if d < 0 {
			return 0, errors.Wrapf(ErrConfig, "negative dimension %d in shape %v", d, dims)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, errors.Wrapf(ErrOverflow, "shape %v overflows int", dims)
		}
		n *= d
	}
	return n, nil
}
