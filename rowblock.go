// Package rowblock provides growable, in-memory containers for batches of
// sparse numerical rows in compressed-row (CSR) layout, a stable binary
// encoding for a batch, and a framed, checksummed stream format for
// persisting sequences of batches.
//
// A producer accumulates rows (or merges whole foreign blocks) into a
// container, hands out a lightweight read-only view for numerical algorithms
// to consume, and serializes the batch to a stream for persistence or
// transport.
//
// # Core features
//
//   - CSR containers with labels, weights, session ids, field ids and
//     auxiliary extra channels
//   - Configurable index width with uniform overflow-checked narrowing
//   - Generation-checked borrowed views that fail fast on use-after-mutation
//   - Fixed-order, length-prefixed binary record codec
//   - Framed record streams with xxHash64 checksums and optional
//     compression (S2, LZ4, Zstd)
//
// # Basic usage
//
//	c, _ := rowblock.New32()
//	_ = c.PushRow(block.Row[float32]{
//	    Label:  []float32{1},
//	    Weight: 1,
//	    Index:  []uint64{1, 5},
//	    Value:  []float32{0.1, 0.2},
//	})
//
//	view, _ := c.View()
//	for i, row := range view.All() {
//	    _ = i
//	    _ = row
//	}
//
// # Package structure
//
// This package provides thin wrappers for the most common container
// instantiations. The block package holds the containers, views and record
// codec; blockfile frames sequences of records on a stream; compress,
// endian, format and errs support them.
package rowblock

import (
	"github.com/arloliu/rowblock/block"
)

// New32 creates a container with 32-bit indices and float32 values, the
// common configuration for feature spaces below four billion dimensions.
func New32(opts ...block.Option) (*block.Container[uint32, float32], error) {
	return block.NewContainer[uint32, float32](opts...)
}

// New64 creates a container with 64-bit indices and float64 values, for
// feature spaces or precision requirements that exceed the 32-bit
// configuration.
func New64(opts ...block.Option) (*block.Container[uint64, float64], error) {
	return block.NewContainer[uint64, float64](opts...)
}
