//go:build unix

package mem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// OffHeap reports whether blocks come from the operating system rather than
// the Go heap.
const OffHeap = true

func mmap(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mem: mmap %d bytes", size)
	}
	return b, nil
}

func munmap(b []byte) error {
	return errors.Wrapf(unix.Munmap(b), "mem: munmap %d bytes", len(b))
}

// PageSize returns the granularity the operating system maps memory in.
func PageSize() int {
	return unix.Getpagesize()
}
