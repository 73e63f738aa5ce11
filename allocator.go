package numarena

// Allocator is the allocation surface shared by real regions, pool leases
// and the Simulator. Writing a workload against Allocator lets the same code
// run for real or as a dry run that only measures usage.
type Allocator[T Numeric] interface {
	// Allocate carves a view of the given shape from the top of the stack.
	Allocate(dims ...int) (View[T], error)
	// Drop pops views off the stack. They must be the most recent
	// allocations, in any order within one call.
	Drop(views ...View[T]) error
	// Reset discards every outstanding view at once.
	Reset()
}

// Region is implemented by Arena and StaticArena.
type Region[T Numeric] interface {
	Allocator[T]

	// ReshapeView returns an untracked view of [offset, offset+n). It is
	// only legal on an empty region and switches the region to raw-view
	// mode until the next Reset.
	ReshapeView(offset int, dims ...int) (View[T], error)
	// UsedCount returns the number of allocated elements, or -1 in
	// raw-view mode.
	UsedCount() int
	Capacity() int
	SetExtendable(bool)
	IsExtendable() bool
	Metrics() ArenaMetrics
}

var (
	_ Region[float64]    = (*Arena[float64])(nil)
	_ Region[float64]    = (*StaticArena[float64])(nil)
	_ Allocator[float64] = (*Simulator[float64])(nil)
	_ Allocator[float64] = (*Lease[float64])(nil)
)
