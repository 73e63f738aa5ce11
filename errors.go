package numarena

import "github.com/pkg/errors"

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers test with errors.Is. None of them is transient: they
// signal a broken call contract and are never worth retrying.
var (
	// ErrOverflow is returned when a fixed-capacity or non-extendable
	// region cannot hold a request.
	ErrOverflow = errors.New("numarena: capacity exceeded")

	// ErrStackDiscipline is returned when a drop target is not the most
	// recent allocation, or when allocate mode and raw-view mode are mixed
	// without an intervening Reset.
	ErrStackDiscipline = errors.New("numarena: stack discipline violated")

	// ErrUsage is returned for pool and lifecycle misuse, such as releasing
	// a slot that still holds views.
	ErrUsage = errors.New("numarena: invalid usage")

	// ErrConfig is returned for malformed construction parameters.
	ErrConfig = errors.New("numarena: invalid configuration")
)

// ErrClosed is returned when acquiring from a closed pool.
var ErrClosed = errors.Wrap(ErrUsage, "pool is closed")
