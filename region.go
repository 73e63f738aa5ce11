package numarena

import (
	"cmp"
	"math"
	"slices"
	"unsafe"
	"weak"

	"github.com/pkg/errors"
)

// minGrow is the smallest backing size a growing region moves to.
const minGrow = 64

// maxGrowBytes bounds the backing buffer a region grows to. Requests past it
// fail with ErrOverflow rather than reaching the allocator.
const maxGrowBytes = min(math.MaxInt, 1<<40)

// region is the bump-offset core shared by Arena and StaticArena.
// Not goroutine-safe.
type region[T Numeric] struct {
	buf        []T
	offset     int
	extendable bool
	static     bool
	raw        bool // ReshapeView was used since the last Reset
	freed      bool
	gen        uint64 // bumped whenever buf moves or goes away
	grows      int
	highWater  int
	self       weak.Pointer[region[T]]
}

func newRegion[T Numeric](buf []T, extendable, static bool) *region[T] {
	r := &region[T]{buf: buf, extendable: extendable, static: static}
	r.self = weak.Make(r)
	return r
}

func (r *region[T]) allocate(dims []int) (View[T], error) {
	r.panicIfFreed()
	if r.raw {
		return View[T]{}, errors.Wrap(ErrStackDiscipline, "allocate while in raw-view mode; Reset first")
	}
	n, err := volume(dims)
	if err != nil {
		return View[T]{}, err
	}
	if err := r.ensure(r.offset, n); err != nil {
		return View[T]{}, err
	}
	start := r.offset
	r.offset += n
	r.highWater = max(r.highWater, r.offset)
	return r.view(start, n, dims), nil
}

func (r *region[T]) drop(views []View[T]) error {
	r.panicIfFreed()
	if r.raw {
		return errors.Wrap(ErrStackDiscipline, "drop while in raw-view mode; Reset first")
	}
	order := views
	if len(views) > 1 {
		// Most recent allocation first; an empty view ties with its
		// successor and must be handled after it.
		order = slices.Clone(views)
		slices.SortFunc(order, func(a, b View[T]) int {
			if c := cmp.Compare(b.start, a.start); c != 0 {
				return c
			}
			return cmp.Compare(b.n, a.n)
		})
	}

	off := r.offset
	for _, v := range order {
		if v.src != r.self {
			return errors.Wrapf(ErrStackDiscipline, "view at %d (len %d) does not belong to this region", v.start, v.n)
		}
		if v.start != off-v.n {
			return errors.Wrapf(ErrStackDiscipline, "view at %d (len %d) is not the most recent allocation (offset %d)", v.start, v.n, off)
		}
		off -= v.n
	}
	r.offset = off
	return nil
}

func (r *region[T]) reset() {
	r.panicIfFreed()
	r.offset = 0
	r.raw = false
}

func (r *region[T]) reshapeView(offset int, dims []int) (View[T], error) {
	r.panicIfFreed()
	if r.offset != 0 {
		return View[T]{}, errors.Wrapf(ErrStackDiscipline, "raw view requested with %d elements allocated; Reset first", r.offset)
	}
	if offset < 0 {
		return View[T]{}, errors.Wrapf(ErrConfig, "negative raw view offset %d", offset)
	}
	n, err := volume(dims)
	if err != nil {
		return View[T]{}, err
	}
	if err := r.ensure(offset, n); err != nil {
		return View[T]{}, err
	}
	r.raw = true
	r.highWater = max(r.highWater, offset+n)
	return r.view(offset, n, dims), nil
}

// ensure makes room for n elements starting at off, growing if allowed.
func (r *region[T]) ensure(off, n int) error {
	if n > math.MaxInt-off {
		return errors.Wrapf(ErrOverflow, "%d elements at offset %d overflow int", n, off)
	}
	if n <= len(r.buf)-off {
		return nil
	}
	if r.static || !r.extendable {
		return errors.Wrapf(ErrOverflow, "need %d elements at offset %d, capacity %d", n, off, len(r.buf))
	}
	if limit := maxElems[T](); off+n > limit {
		return errors.Wrapf(ErrOverflow, "need %d elements at offset %d, growth limit %d", n, off, limit)
	}
	r.grow(off + n)
	return nil
}

// maxElems is the largest element count a region grows to.
func maxElems[T Numeric]() int {
	var zero T
	return maxGrowBytes / int(unsafe.Sizeof(zero))
}

// grow moves the backing storage to a buffer of at least need elements,
// never beyond maxElems. Views taken before the move keep pointing at the
// old buffer.
func (r *region[T]) grow(need int) {
	size := need
	if limit := maxElems[T](); len(r.buf) <= limit/2 {
		size = min(max(need, 2*len(r.buf), minGrow), limit)
	}
	buf := make([]T, size)
	copy(buf, r.buf)
	r.buf = buf
	r.gen++
	r.grows++
}

func (r *region[T]) view(start, n int, dims []int) View[T] {
	return View[T]{
		data:  r.buf[start : start+n : start+n],
		shape: slices.Clone(dims),
		start: start,
		n:     n,
		gen:   r.gen,
		src:   r.self,
	}
}

func (r *region[T]) usedCount() int {
	if r.raw {
		return -1
	}
	return r.offset
}

// invalidate drops the backing storage and poisons outstanding views.
func (r *region[T]) invalidate() {
	r.buf = nil
	r.offset = 0
	r.raw = false
	r.freed = true
	r.gen++
}

func (r *region[T]) panicIfFreed() {
	if r.freed {
		if r.static {
			panic("numarena: use after Free()")
		}
		panic("numarena: use after Release()")
	}
}
