// Package mem hands out raw memory blocks that live outside the Go heap.
//
// Blocks are anonymous, private and zero-filled. The caller owns a block
// until it passes it back to Unmap; the slice must not be used afterwards.
// Only pointer-free data may be stored in a block since the garbage
// collector does not scan it.
package mem

import "github.com/pkg/errors"

// ErrInvalidSize is returned for negative block sizes.
var ErrInvalidSize = errors.New("mem: invalid block size")

// Map returns a zero-filled block of exactly size bytes. A zero size yields
// a nil block and no error.
func Map(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "size %d", size)
	}
	if size == 0 {
		return nil, nil
	}
	return mmap(size)
}

// Unmap returns a block obtained from Map. Unmapping a nil block is a no-op.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return munmap(b)
}
