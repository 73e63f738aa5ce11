//go:build !unix

package mem

import "os"

// OffHeap reports whether blocks come from the operating system rather than
// the Go heap.
const OffHeap = false

// Without mmap the block is an ordinary heap slice; munmap leaves it to the GC.
func mmap(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func munmap([]byte) error { return nil }

// PageSize returns the granularity the operating system maps memory in.
func PageSize() int {
	return os.Getpagesize()
}
