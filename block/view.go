package block

import (
	"iter"

	"github.com/arloliu/rowblock/format"
)

// View is an immutable, non-owning snapshot of a Container.
//
// It borrows the container's arrays rather than copying them, so it is valid
// only until the source container is next mutated or destroyed. Every
// accessor validates the generation captured at creation and panics when the
// view has gone stale; treat such a panic like an out-of-range index, a bug
// in the caller's append sequencing, not a recoverable condition.
//
// A View implements RowBatch, so it can be pushed into another container,
// including one configured with a different index width.
type View[I format.Index, D format.Value] struct {
	src        *Container[I, D]
	gen        uint64
	size       int
	labelWidth int
	offset     []uint64
	label      []D
	weight     []float32
	qid        []uint64
	field      []I
	index      []I
	value      []D
	extra      []*UnitView[I, D]
}

var _ RowBatch[float32] = (*View[uint32, float32])(nil)

func (v *View[I, D]) check() {
	if v.gen != v.src.gen {
		panic("rowblock: view used after the source container was mutated")
	}
}

// Stale reports whether the source container has been mutated since this
// view was created. A stale view must be discarded; all other accessors
// panic once Stale returns true.
func (v *View[I, D]) Stale() bool {
	return v.gen != v.src.gen
}

// Rows returns the number of rows in the snapshot.
func (v *View[I, D]) Rows() int {
	v.check()
	return v.size
}

// LabelWidth returns the number of label values per row.
func (v *View[I, D]) LabelWidth() int {
	v.check()
	return v.labelWidth
}

// Offsets returns the borrowed CSR offset array of length Rows()+1.
func (v *View[I, D]) Offsets() []uint64 {
	v.check()
	return v.offset
}

// Labels returns the borrowed flat label array.
func (v *View[I, D]) Labels() []D {
	v.check()
	return v.label
}

// Weights returns the borrowed per-row weights, or nil when the container
// carries none.
func (v *View[I, D]) Weights() []float32 {
	v.check()
	if len(v.weight) == 0 {
		return nil
	}

	return v.weight
}

// QIDs returns the borrowed per-row session ids, or nil when the container
// carries none.
func (v *View[I, D]) QIDs() []uint64 {
	v.check()
	if len(v.qid) == 0 {
		return nil
	}

	return v.qid
}

// HasFields reports whether the snapshot carries field ids.
func (v *View[I, D]) HasFields() bool {
	v.check()
	return len(v.field) > 0
}

// Fields returns the borrowed field id array in the container's index width,
// or nil when the container carries none.
func (v *View[I, D]) Fields() []I {
	v.check()
	if len(v.field) == 0 {
		return nil
	}

	return v.field
}

// FieldAt returns field entry i widened to uint64.
func (v *View[I, D]) FieldAt(i int) uint64 {
	v.check()
	return uint64(v.field[i])
}

// Index returns the borrowed feature index array in the container's index
// width.
func (v *View[I, D]) Index() []I {
	v.check()
	return v.index
}

// IndexAt returns index entry i widened to uint64.
func (v *View[I, D]) IndexAt(i int) uint64 {
	v.check()
	return uint64(v.index[i])
}

// Values returns the borrowed value array, or nil when every entry has an
// implicit unit value.
func (v *View[I, D]) Values() []D {
	v.check()
	if len(v.value) == 0 {
		return nil
	}

	return v.value
}

// ExtraCount returns the number of extra channel views.
func (v *View[I, D]) ExtraCount() int {
	v.check()
	return len(v.extra)
}

// Extra returns extra channel i as a UnitBatch for merging.
func (v *View[I, D]) Extra(i int) UnitBatch[D] {
	v.check()
	return v.extra[i]
}

// ExtraView returns the typed view of extra channel i.
func (v *View[I, D]) ExtraView(i int) *UnitView[I, D] {
	v.check()
	return v.extra[i]
}

// RowView is the borrowed per-row slice of a View, produced by View.Row and
// View.All. Its slices alias the source container and share the lifetime of
// the view that produced them.
type RowView[I format.Index, D format.Value] struct {
	// Label holds the row's label values.
	Label []D
	// Weight is the row's weight, or DefaultWeight when the container
	// carries no weights.
	Weight float32
	// QID is the row's session id, or DefaultQID when the container carries
	// no session ids.
	QID uint64
	// Field holds the row's field ids, or nil when absent.
	Field []I
	// Index holds the row's feature indices.
	Index []I
	// Value holds the row's feature values, or nil for implicit unit values.
	Value []D
}

// Row returns row i of the snapshot.
func (v *View[I, D]) Row(i int) RowView[I, D] {
	v.check()

	start := v.offset[i] - v.offset[0]
	end := v.offset[i+1] - v.offset[0]

	row := RowView[I, D]{
		Label:  v.label[i*v.labelWidth : (i+1)*v.labelWidth],
		Weight: DefaultWeight,
		QID:    DefaultQID,
		Index:  v.index[start:end],
	}
	if len(v.weight) > 0 {
		row.Weight = v.weight[i]
	}
	if len(v.qid) > 0 {
		row.QID = v.qid[i]
	}
	if len(v.field) > 0 {
		row.Field = v.field[start:end]
	}
	if len(v.value) > 0 {
		row.Value = v.value[start:end]
	}

	return row
}

// All returns an iterator over (row index, RowView) pairs, intended for
// row-by-row consumption by numerical algorithms.
func (v *View[I, D]) All() iter.Seq2[int, RowView[I, D]] {
	return func(yield func(int, RowView[I, D]) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, v.Row(i)) {
				return
			}
		}
	}
}

// UnitView is an immutable, non-owning snapshot of a UnitContainer, with the
// same borrowing and staleness contract as View. It implements UnitBatch.
type UnitView[I format.Index, D format.Value] struct {
	src    *UnitContainer[I, D]
	gen    uint64
	rows   int
	offset []uint64
	index  []I
	value  []D
}

var _ UnitBatch[float32] = (*UnitView[uint32, float32])(nil)

func (v *UnitView[I, D]) check() {
	if v.gen != v.src.gen {
		panic("rowblock: unit view used after the source container was mutated")
	}
}

// Stale reports whether the source container has been mutated since this
// view was created.
func (v *UnitView[I, D]) Stale() bool {
	return v.gen != v.src.gen
}

// Rows returns the number of rows in the snapshot.
func (v *UnitView[I, D]) Rows() int {
	v.check()
	return v.rows
}

// Offsets returns the borrowed CSR offset array of length Rows()+1.
func (v *UnitView[I, D]) Offsets() []uint64 {
	v.check()
	return v.offset
}

// Index returns the borrowed feature index array.
func (v *UnitView[I, D]) Index() []I {
	v.check()
	return v.index
}

// IndexAt returns index entry i widened to uint64.
func (v *UnitView[I, D]) IndexAt(i int) uint64 {
	v.check()
	return uint64(v.index[i])
}

// Values returns the borrowed value array, or nil for implicit unit values.
func (v *UnitView[I, D]) Values() []D {
	v.check()
	if len(v.value) == 0 {
		return nil
	}

	return v.value
}

// UnitRowView is the borrowed per-row slice of a UnitView.
type UnitRowView[I format.Index, D format.Value] struct {
	// Index holds the row's feature indices.
	Index []I
	// Value holds the row's feature values, or nil for implicit unit values.
	Value []D
}

// Row returns row i of the snapshot.
func (v *UnitView[I, D]) Row(i int) UnitRowView[I, D] {
	v.check()

	start := v.offset[i] - v.offset[0]
	end := v.offset[i+1] - v.offset[0]

	row := UnitRowView[I, D]{Index: v.index[start:end]}
	if len(v.value) > 0 {
		row.Value = v.value[start:end]
	}

	return row
}

// All returns an iterator over (row index, UnitRowView) pairs.
func (v *UnitView[I, D]) All() iter.Seq2[int, UnitRowView[I, D]] {
	return func(yield func(int, UnitRowView[I, D]) bool) {
		for i := 0; i < v.rows; i++ {
			if !yield(i, v.Row(i)) {
				return
			}
		}
	}
}
