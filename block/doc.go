// Package block implements growable, in-memory containers for batches of
// sparse numerical rows in compressed-row (CSR) layout, together with a
// stable binary encoding for a batch.
//
// A Container accumulates rows one at a time via PushRow, or merges whole
// foreign batches via PushBlock, keeping its parallel arrays (offsets,
// labels, weights, session ids, field ids, indices, values and any extra
// channels) mutually consistent. Algorithms consume the contents through a
// validated read-only View, and the Save/Load pair serializes the primary
// arrays to a stream.
//
// # Index width
//
// A container is instantiated with an index type I that bounds the feature
// indices and field ids it can store. Every index crossing the container
// boundary is narrowed through an explicit overflow check, including merges
// between containers of the same width, so producer bugs surface uniformly
// as ErrIndexOverflow.
//
// # Views are borrows
//
// A View aliases the container's internal storage and is only valid until
// the container is next mutated. Each container carries a generation counter
// that is incremented by every successful PushRow, PushBlock, Clear, and
// Load; view accessors validate the generation they captured and panic when
// used after a mutation, turning a silent use-after-mutation bug into an
// immediate, attributable failure.
//
// # Concurrency
//
// Containers are single-writer and carry no internal locking. One goroutine
// mutates a container at a time; merge per-worker containers on a single
// collector via PushBlock, or hand off ownership exclusively.
//
// # Basic usage
//
//	c, _ := block.NewContainer[uint32, float32]()
//	_ = c.PushRow(block.Row[float32]{
//	    Label:  []float32{1},
//	    Weight: 1,
//	    Index:  []uint64{1, 5},
//	    Value:  []float32{0.1, 0.2},
//	})
//
//	view, err := c.View()
//	if err != nil {
//	    // a prior append left the arrays inconsistent
//	}
//	for i, row := range view.All() {
//	    process(i, row.Index, row.Value)
//	}
package block
