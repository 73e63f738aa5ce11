// Package numarena implements stack-disciplined memory arenas for numeric
// workloads.
//
// # Overview
//
// Hot numeric loops often need scratch tensors whose shapes repeat every
// iteration. Instead of allocating them from the heap each time, carve them
// out of a pre-sized region and give them back in reverse order:
//
//	a, _ := numarena.NewArena[float64](1<<16, true)
//	defer a.Release()
//
//	for step := range steps {
//		x, _ := a.Allocate(64, 64)
//		y, _ := a.Allocate(64)
//		compute(step, x.Data(), y.Data())
//		a.Drop(x, y) // any order within one call
//	}
//
// # Regions
//
// Arena lives on the Go heap and grows on demand unless made
// non-extendable. StaticArena has fixed capacity, is mapped outside the Go
// heap and must be released with exactly one call to Free. Both implement
// Region.
//
// Views must be dropped in exact reverse order of allocation; Drop reports
// ErrStackDiscipline otherwise. Reset discards everything at once.
// ReshapeView switches an empty region into raw-view mode for overlapping
// addressing; Allocate and Drop are refused in that mode until Reset.
//
// # Thread Safety
//
// A region is not goroutine-safe. Pool lends each concurrent task its own
// region:
//
//	p, _ := numarena.NewPool(numarena.StaticFactory[float32](4096))
//	defer p.Close()
//
//	task := numarena.NewTaskID()
//	v, _ := p.Allocate(task, 32, 32)
//	...
//	p.Reset(task) // empties the region and releases the slot
//
// # Scopes
//
// Scope and Scope2 build regions or pools from Layouts and tear them down on
// every exit path.
//
// # Sizing
//
// Simulator implements Allocator without memory. Running a workload written
// against Allocator through Measure yields the peak element count, which is
// the capacity a fixed arena needs for the same inputs.
//
// # Important Notes
//
//   - Views alias region memory and do not keep the region alive
//   - Growth moves an Arena's storage; views taken earlier go stale (see View.Valid)
//   - Erase removes provenance for interop and disables every check
//   - Memory is not cleared between uses; see AllocZeroed
package numarena
