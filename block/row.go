package block

import "github.com/arloliu/rowblock/format"

// Row is one sparse record handed to Container.PushRow by a producer.
//
// Index and Field values are carried as uint64 regardless of the destination
// container's index width; the container narrows each element with overflow
// detection on append.
type Row[D format.Value] struct {
	// Label holds exactly the container's configured label width values.
	Label []D

	// Weight is the instance weight. Defaults are the producer's
	// responsibility; the container stores whatever it is given.
	Weight float32

	// QID is the session/query id of the instance.
	QID uint64

	// Field optionally carries one field id per feature entry. When non-nil
	// its length must equal len(Index).
	Field []uint64

	// Index holds the feature indices of the row's nonzero entries.
	Index []uint64

	// Value holds one value per entry. A nil Value means every entry has an
	// implicit unit value.
	Value []D

	// Extra holds exactly one row fragment per configured extra channel.
	Extra []UnitRow[D]
}

// UnitRow is one sparse row destined for a UnitContainer or an extra channel.
type UnitRow[D format.Value] struct {
	// Index holds the feature indices of the row's nonzero entries, widened
	// to uint64 for uniform narrowing.
	Index []uint64

	// Value holds one value per entry, or nil for implicit unit values.
	Value []D
}

// UnitBatch is the bulk producer interface for a UnitContainer: a whole
// foreign unit block exposed as parallel arrays with an explicit row count.
//
// Offsets returns the absolute CSR offsets of the source, so row r spans
// entries Offsets()[r]-Offsets()[0] up to Offsets()[r+1]-Offsets()[0].
// IndexAt surfaces entry i (relative to Offsets()[0]) as uint64 so blocks
// built with any index width can be merged with per-element narrowing.
type UnitBatch[D format.Value] interface {
	// Rows returns the declared row count of the batch.
	Rows() int

	// Offsets returns the batch's CSR offset array of length Rows()+1.
	Offsets() []uint64

	// IndexAt returns entry i of the batch's index array, widened to uint64.
	// i counts from the batch's first entry, not from Offsets()[0].
	IndexAt(i int) uint64

	// Values returns the batch's value array of length
	// Offsets()[Rows()]-Offsets()[0], or nil for implicit unit values.
	Values() []D
}

// RowBatch is the bulk producer interface for a Container: a whole foreign
// block exposed as parallel arrays with an explicit row count and label
// width. Index and field values are surfaced as uint64 so blocks of any
// index width merge through per-element narrowing.
//
// Views implement RowBatch, so a View of one container can be pushed
// directly into another, including across index widths.
type RowBatch[D format.Value] interface {
	// Rows returns the declared row count of the batch.
	Rows() int

	// LabelWidth returns the number of label values per row.
	LabelWidth() int

	// Offsets returns the batch's CSR offset array of length Rows()+1.
	Offsets() []uint64

	// Labels returns the flat label array of length Rows()*LabelWidth().
	Labels() []D

	// Weights returns the per-row weights of length Rows(), or nil when the
	// batch does not carry weights.
	Weights() []float32

	// QIDs returns the per-row session ids of length Rows(), or nil when the
	// batch does not carry them.
	QIDs() []uint64

	// HasFields reports whether the batch carries field ids.
	HasFields() bool

	// FieldAt returns entry i of the batch's field array, widened to uint64.
	// Only meaningful when HasFields() is true.
	FieldAt(i int) uint64

	// IndexAt returns entry i of the batch's index array, widened to uint64.
	IndexAt(i int) uint64

	// Values returns the batch's value array of length
	// Offsets()[Rows()]-Offsets()[0], or nil for implicit unit values.
	Values() []D

	// ExtraCount returns the number of extra channels the batch carries.
	ExtraCount() int

	// Extra returns the batch of extra channel i.
	Extra(i int) UnitBatch[D]
}

// Batch is a plain-struct RowBatch for producers that assemble parallel
// arrays directly rather than borrowing them from another container.
type Batch[D format.Value] struct {
	NumRows int
	Width   int // label width
	Offset  []uint64
	Label   []D
	Weight  []float32
	QID     []uint64
	Field   []uint64
	Index   []uint64
	Value   []D
	Extras  []UnitSlice[D]
}

var _ RowBatch[float32] = (*Batch[float32])(nil)

// Rows returns the declared row count.
func (b *Batch[D]) Rows() int { return b.NumRows }

// LabelWidth returns the number of label values per row.
func (b *Batch[D]) LabelWidth() int { return b.Width }

// Offsets returns the CSR offset array.
func (b *Batch[D]) Offsets() []uint64 { return b.Offset }

// Labels returns the flat label array.
func (b *Batch[D]) Labels() []D { return b.Label }

// Weights returns the per-row weights, or nil.
func (b *Batch[D]) Weights() []float32 { return b.Weight }

// QIDs returns the per-row session ids, or nil.
func (b *Batch[D]) QIDs() []uint64 { return b.QID }

// HasFields reports whether the batch carries field ids.
func (b *Batch[D]) HasFields() bool { return b.Field != nil }

// FieldAt returns field entry i.
func (b *Batch[D]) FieldAt(i int) uint64 { return b.Field[i] }

// IndexAt returns index entry i.
func (b *Batch[D]) IndexAt(i int) uint64 { return b.Index[i] }

// Values returns the value array, or nil.
func (b *Batch[D]) Values() []D { return b.Value }

// ExtraCount returns the number of extra channels.
func (b *Batch[D]) ExtraCount() int { return len(b.Extras) }

// Extra returns the batch of extra channel i.
func (b *Batch[D]) Extra(i int) UnitBatch[D] { return &b.Extras[i] }

// UnitSlice is a plain-struct UnitBatch assembled from parallel arrays.
type UnitSlice[D format.Value] struct {
	NumRows int
	Offset  []uint64
	Index   []uint64
	Value   []D
}

var _ UnitBatch[float32] = (*UnitSlice[float32])(nil)

// Rows returns the declared row count.
func (u *UnitSlice[D]) Rows() int { return u.NumRows }

// Offsets returns the CSR offset array.
func (u *UnitSlice[D]) Offsets() []uint64 { return u.Offset }

// IndexAt returns index entry i.
func (u *UnitSlice[D]) IndexAt(i int) uint64 { return u.Index[i] }

// Values returns the value array, or nil.
func (u *UnitSlice[D]) Values() []D { return u.Value }
