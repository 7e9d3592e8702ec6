package block

import (
	"fmt"

	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
)

// UnitContainer is a minimal growable CSR container: offsets, indices and
// optional values, without labels or per-row scalars. It backs the extra
// channels of a Container and can be used standalone for auxiliary sparse
// feature groups.
//
// All append operations are atomic: the input is fully validated (shape and
// index narrowing) before the first element is copied, so a failed append
// leaves the container unchanged.
//
// UnitContainer is not safe for concurrent mutation.
type UnitContainer[I format.Index, D format.Value] struct {
	offset   []uint64
	index    []I
	value    []D
	maxIndex I
	gen      uint64
}

// NewUnitContainer creates an empty unit container.
func NewUnitContainer[I format.Index, D format.Value]() *UnitContainer[I, D] {
	c := &UnitContainer[I, D]{}
	c.Clear()

	return c
}

// Clear resets the container to the empty state: a single zero offset, no
// entries, and a zero running maximum. Allocated capacity is retained.
// Any outstanding views become stale.
func (c *UnitContainer[I, D]) Clear() {
	c.offset = append(c.offset[:0], 0)
	c.index = c.index[:0]
	c.value = c.value[:0]
	c.maxIndex = 0
	c.gen++
}

// Rows returns the number of rows currently stored.
func (c *UnitContainer[I, D]) Rows() int {
	return len(c.offset) - 1
}

// MaxIndex returns the running maximum over all indices ever appended.
func (c *UnitContainer[I, D]) MaxIndex() I {
	return c.maxIndex
}

// MemoryCost returns an estimate in bytes of the container's storage: the
// element counts of the offset, index and value arrays times each array's
// element width.
func (c *UnitContainer[I, D]) MemoryCost() int {
	return len(c.offset)*8 +
		len(c.index)*format.IndexSize[I]() +
		len(c.value)*format.ValueSize[D]()
}

// PushRow narrows and appends each index of the row, appends its values when
// present, and appends a new cumulative offset.
//
// Mixing rows that carry values with rows that do not is rejected here, at
// push time, rather than surfacing later as a view validation failure.
//
// Returns:
//   - error: ErrIndexOverflow, ErrLengthMismatch, or ErrMixedValues; the
//     container is unchanged on error
func (c *UnitContainer[I, D]) PushRow(row UnitRow[D]) error {
	if err := c.validateRow(row); err != nil {
		return err
	}
	c.appendRow(row)

	return nil
}

// validateRow checks the row's shape and index bounds without mutating the
// container.
func (c *UnitContainer[I, D]) validateRow(row UnitRow[D]) error {
	if row.Value != nil && len(row.Value) != len(row.Index) {
		return fmt.Errorf("%w: %d indices, %d values", errs.ErrLengthMismatch, len(row.Index), len(row.Value))
	}

	if len(row.Index) > 0 {
		if row.Value != nil && len(c.index) > 0 && len(c.value) == 0 {
			return fmt.Errorf("%w: row carries values but prior rows do not", errs.ErrMixedValues)
		}
		if row.Value == nil && len(c.value) > 0 {
			return fmt.Errorf("%w: row carries no values but prior rows do", errs.ErrMixedValues)
		}
	}

	for _, v := range row.Index {
		if !fitsIndex[I](v) {
			return fmt.Errorf("%w: index %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
		}
	}

	return nil
}

// appendRow copies a pre-validated row into the container.
func (c *UnitContainer[I, D]) appendRow(row UnitRow[D]) {
	for _, v := range row.Index {
		iv := I(v)
		c.index = append(c.index, iv)
		if iv > c.maxIndex {
			c.maxIndex = iv
		}
	}
	if row.Value != nil {
		c.value = append(c.value, row.Value...)
	}
	c.offset = append(c.offset, uint64(len(c.index)))
	c.gen++
}

// PushBlock bulk-copies a foreign unit batch into the container: each index
// is individually narrowed, values are copied as-is, and the appended offsets
// are recomputed by shifting the batch's row-relative offsets by this
// container's current last offset.
//
// Parameters:
//   - batch: Source batch; its index width may differ from this container's
//   - expectedRows: Row count the batch must declare
//
// Returns:
//   - error: ErrRowCountMismatch when batch.Rows() != expectedRows,
//     ErrIndexOverflow, ErrLengthMismatch, ErrMixedValues, or
//     ErrInvalidLayout for non-monotonic batch offsets; the container is
//     unchanged on error
func (c *UnitContainer[I, D]) PushBlock(batch UnitBatch[D], expectedRows int) error {
	if err := c.validateBlock(batch, expectedRows); err != nil {
		return err
	}
	c.appendBlock(batch)

	return nil
}

func (c *UnitContainer[I, D]) validateBlock(batch UnitBatch[D], expectedRows int) error {
	rows := batch.Rows()
	if rows != expectedRows {
		return fmt.Errorf("%w: batch declares %d rows, expected %d", errs.ErrRowCountMismatch, rows, expectedRows)
	}

	offsets := batch.Offsets()
	if len(offsets) != rows+1 {
		return fmt.Errorf("%w: %d offsets for %d rows", errs.ErrLengthMismatch, len(offsets), rows)
	}
	for i := 0; i < rows; i++ {
		if offsets[i+1] < offsets[i] {
			return fmt.Errorf("%w: batch offsets decrease at row %d", errs.ErrInvalidLayout, i)
		}
	}

	ndata := int(offsets[rows] - offsets[0])
	values := batch.Values()
	if values != nil && len(values) != ndata {
		return fmt.Errorf("%w: %d entries, %d values", errs.ErrLengthMismatch, ndata, len(values))
	}

	if ndata > 0 {
		if values != nil && len(c.index) > 0 && len(c.value) == 0 {
			return fmt.Errorf("%w: batch carries values but prior rows do not", errs.ErrMixedValues)
		}
		if values == nil && len(c.value) > 0 {
			return fmt.Errorf("%w: batch carries no values but prior rows do", errs.ErrMixedValues)
		}
	}

	for i := 0; i < ndata; i++ {
		if v := batch.IndexAt(i); !fitsIndex[I](v) {
			return fmt.Errorf("%w: index %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
		}
	}

	return nil
}

// appendBlock copies a pre-validated batch into the container.
func (c *UnitContainer[I, D]) appendBlock(batch UnitBatch[D]) {
	rows := batch.Rows()
	offsets := batch.Offsets()
	ndata := int(offsets[rows] - offsets[0])

	for i := 0; i < ndata; i++ {
		iv := I(batch.IndexAt(i))
		c.index = append(c.index, iv)
		if iv > c.maxIndex {
			c.maxIndex = iv
		}
	}
	if values := batch.Values(); values != nil {
		c.value = append(c.value, values...)
	}

	shift := c.offset[len(c.offset)-1]
	for i := 1; i <= rows; i++ {
		c.offset = append(c.offset, shift+offsets[i]-offsets[0])
	}
	c.gen++
}

// validate checks the container's CSR invariants: one more offset than rows,
// non-decreasing offsets ending at the entry count, and a value array that is
// either empty or exactly entry-sized.
func (c *UnitContainer[I, D]) validate() error {
	if len(c.offset) == 0 {
		return fmt.Errorf("%w: empty offset array", errs.ErrInvalidLayout)
	}
	for i := 1; i < len(c.offset); i++ {
		if c.offset[i] < c.offset[i-1] {
			return fmt.Errorf("%w: offsets decrease at row %d", errs.ErrInvalidLayout, i-1)
		}
	}
	last := c.offset[len(c.offset)-1] - c.offset[0]
	if last != uint64(len(c.index)) {
		return fmt.Errorf("%w: last offset %d, %d indices", errs.ErrInvalidLayout, last, len(c.index))
	}
	if len(c.value) != 0 && len(c.value) != len(c.index) {
		return fmt.Errorf("%w: %d indices, %d values", errs.ErrInvalidLayout, len(c.index), len(c.value))
	}

	return nil
}

// View validates the container's invariants and returns a borrowed snapshot.
//
// The returned view aliases internal storage and is valid only until the
// container's next mutation; see UnitView.
//
// Returns:
//   - *UnitView[I, D]: Borrowed read-only snapshot
//   - error: ErrInvalidLayout when the parallel arrays are inconsistent
func (c *UnitContainer[I, D]) View() (*UnitView[I, D], error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &UnitView[I, D]{
		src:    c,
		gen:    c.gen,
		rows:   len(c.offset) - 1,
		offset: c.offset,
		index:  c.index,
		value:  c.value,
	}, nil
}
