package block

import (
	"fmt"

	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
)

// MaxIndexValue returns the largest value representable by the index type I.
func MaxIndexValue[I format.Index]() uint64 {
	var zero I
	return uint64(^zero)
}

// Narrow converts a wider externally supplied value to the index type I.
//
// It is pure and has no side effects. Every index and field id crossing a
// container boundary passes through Narrow, including merges between
// containers of the same width, so producer bugs are caught uniformly.
//
// Returns:
//   - I: The value cast to I when it fits
//   - error: ErrIndexOverflow when v exceeds the capacity of I
func Narrow[I format.Index](v uint64) (I, error) {
	if v > MaxIndexValue[I]() {
		return 0, fmt.Errorf("%w: %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
	}

	return I(v), nil
}

// fitsIndex reports whether v is representable by the index type I.
// Append paths use it for their validation pass so that no mutation happens
// before every element is known to fit.
func fitsIndex[I format.Index](v uint64) bool {
	return v <= MaxIndexValue[I]()
}
