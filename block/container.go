package block

import (
	"fmt"

	"github.com/arloliu/rowblock/endian"
	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
	"github.com/arloliu/rowblock/internal/options"
)

// Default values substituted for per-row scalars when a merged batch omits
// them but the container tracks them (see PushBlock).
const (
	DefaultWeight float32 = 1.0
	DefaultQID    uint64  = 0
)

// containerConfig collects the construction-time settings of a Container.
type containerConfig struct {
	labelWidth    int
	extraChannels int
	rowCapacity   int
	entryCapacity int
	engine        endian.EndianEngine
}

// Option configures a Container at construction time.
type Option = options.Option[*containerConfig]

// WithLabelWidth sets the number of label values per row. The default is 1.
func WithLabelWidth(width int) Option {
	return options.New(func(c *containerConfig) error {
		if width < 1 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidLabelWidth, width)
		}
		c.labelWidth = width

		return nil
	})
}

// WithExtraChannels sets the number of auxiliary per-row channels the
// container maintains. The default is 0.
func WithExtraChannels(n int) Option {
	return options.New(func(c *containerConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidExtraCount, n)
		}
		c.extraChannels = n

		return nil
	})
}

// WithRowCapacity pre-allocates storage for the given number of rows.
func WithRowCapacity(rows int) Option {
	return options.NoError(func(c *containerConfig) {
		if rows > 0 {
			c.rowCapacity = rows
		}
	})
}

// WithEntryCapacity pre-allocates storage for the given number of feature
// entries across all rows.
func WithEntryCapacity(entries int) Option {
	return options.NoError(func(c *containerConfig) {
		if entries > 0 {
			c.entryCapacity = entries
		}
	})
}

// WithEndianEngine sets the byte order used by Save and Load. The default is
// little-endian; writer and reader must be configured identically.
func WithEndianEngine(engine endian.EndianEngine) Option {
	return options.NoError(func(c *containerConfig) {
		c.engine = engine
	})
}

// Container is a growable row block: a batch of sparse rows in CSR layout
// with labels, optional per-row weights and session ids, optional per-entry
// field ids, and a fixed-count collection of extra channels.
//
// The zero value is not usable; create containers with NewContainer.
// Containers are single-writer; see the package documentation for the
// concurrency and view-borrowing contracts.
type Container[I format.Index, D format.Value] struct {
	offset     []uint64
	label      []D
	weight     []float32
	qid        []uint64
	field      []I
	index      []I
	value      []D
	maxField   I
	maxIndex   I
	labelWidth int
	extra      []*UnitContainer[I, D]
	engine     endian.EndianEngine
	gen        uint64
}

// NewContainer creates an empty row block container.
//
// Parameters:
//   - opts: Optional configuration (label width, extra channels, capacity
//     hints, byte order for Save/Load)
//
// Returns:
//   - *Container[I, D]: New empty container
//   - error: Configuration error if invalid options provided
func NewContainer[I format.Index, D format.Value](opts ...Option) (*Container[I, D], error) {
	cfg := &containerConfig{
		labelWidth: 1,
		engine:     endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	c := &Container[I, D]{
		labelWidth: cfg.labelWidth,
		engine:     cfg.engine,
		extra:      make([]*UnitContainer[I, D], cfg.extraChannels),
	}
	for i := range c.extra {
		c.extra[i] = NewUnitContainer[I, D]()
	}

	if cfg.rowCapacity > 0 {
		c.offset = make([]uint64, 0, cfg.rowCapacity+1)
		c.label = make([]D, 0, cfg.rowCapacity*cfg.labelWidth)
		c.weight = make([]float32, 0, cfg.rowCapacity)
		c.qid = make([]uint64, 0, cfg.rowCapacity)
	}
	if cfg.entryCapacity > 0 {
		c.index = make([]I, 0, cfg.entryCapacity)
		c.value = make([]D, 0, cfg.entryCapacity)
	}
	c.Clear()

	return c, nil
}

// Size returns the number of rows currently stored.
func (c *Container[I, D]) Size() int {
	return len(c.offset) - 1
}

// LabelWidth returns the configured number of label values per row.
func (c *Container[I, D]) LabelWidth() int {
	return c.labelWidth
}

// ExtraChannels returns the configured number of extra channels.
func (c *Container[I, D]) ExtraChannels() int {
	return len(c.extra)
}

// MaxIndex returns the running maximum over all feature indices ever
// appended.
func (c *Container[I, D]) MaxIndex() I {
	return c.maxIndex
}

// MaxField returns the running maximum over all field ids ever appended.
func (c *Container[I, D]) MaxField() I {
	return c.maxField
}

// Clear resets the container and all its extra channels to the initial empty
// state. Allocated capacity is retained; any outstanding views become stale.
func (c *Container[I, D]) Clear() {
	c.offset = append(c.offset[:0], 0)
	c.label = c.label[:0]
	c.weight = c.weight[:0]
	c.qid = c.qid[:0]
	c.field = c.field[:0]
	c.index = c.index[:0]
	c.value = c.value[:0]
	c.maxField = 0
	c.maxIndex = 0
	for _, e := range c.extra {
		e.Clear()
	}
	c.gen++
}

// MemoryCost returns an estimate in bytes of the container's storage,
// including every extra channel.
func (c *Container[I, D]) MemoryCost() int {
	total := len(c.offset)*8 +
		len(c.label)*format.ValueSize[D]() +
		len(c.weight)*4 +
		len(c.qid)*8 +
		len(c.field)*format.IndexSize[I]() +
		len(c.index)*format.IndexSize[I]() +
		len(c.value)*format.ValueSize[D]()
	for _, e := range c.extra {
		total += e.MemoryCost()
	}

	return total
}

// PushRow appends one sparse row.
//
// The row must supply exactly LabelWidth() labels, a weight and a session id,
// an optional field id per feature entry, an optional value per entry, and
// exactly ExtraChannels() extra fragments. All parallel arrays (including
// every extra channel) are validated before the first element is copied, so
// a failed push leaves the container unchanged.
//
// Returns:
//   - error: ErrLabelWidthMismatch, ErrLengthMismatch, ErrExtraCountMismatch,
//     ErrMixedValues, ErrMixedFields, or ErrIndexOverflow
func (c *Container[I, D]) PushRow(row Row[D]) error {
	if len(row.Label) != c.labelWidth {
		return fmt.Errorf("%w: row has %d labels, container width is %d",
			errs.ErrLabelWidthMismatch, len(row.Label), c.labelWidth)
	}
	if row.Field != nil && len(row.Field) != len(row.Index) {
		return fmt.Errorf("%w: %d indices, %d fields", errs.ErrLengthMismatch, len(row.Index), len(row.Field))
	}
	if row.Value != nil && len(row.Value) != len(row.Index) {
		return fmt.Errorf("%w: %d indices, %d values", errs.ErrLengthMismatch, len(row.Index), len(row.Value))
	}
	if len(row.Extra) != len(c.extra) {
		return fmt.Errorf("%w: row has %d extra fragments, container has %d channels",
			errs.ErrExtraCountMismatch, len(row.Extra), len(c.extra))
	}

	if len(row.Index) > 0 {
		if row.Value != nil && len(c.index) > 0 && len(c.value) == 0 {
			return fmt.Errorf("%w: row carries values but prior rows do not", errs.ErrMixedValues)
		}
		if row.Value == nil && len(c.value) > 0 {
			return fmt.Errorf("%w: row carries no values but prior rows do", errs.ErrMixedValues)
		}
		if row.Field != nil && len(c.index) > 0 && len(c.field) == 0 {
			return fmt.Errorf("%w: row carries field ids but prior rows do not", errs.ErrMixedFields)
		}
		if row.Field == nil && len(c.field) > 0 {
			return fmt.Errorf("%w: row carries no field ids but prior rows do", errs.ErrMixedFields)
		}
	}

	for _, v := range row.Field {
		if !fitsIndex[I](v) {
			return fmt.Errorf("%w: field %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
		}
	}
	for _, v := range row.Index {
		if !fitsIndex[I](v) {
			return fmt.Errorf("%w: index %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
		}
	}
	for i, frag := range row.Extra {
		if err := c.extra[i].validateRow(frag); err != nil {
			return fmt.Errorf("extra channel %d: %w", i, err)
		}
	}

	// Validation passed, now mutate.
	c.label = append(c.label, row.Label...)
	c.backfillScalars()
	c.weight = append(c.weight, row.Weight)
	c.qid = append(c.qid, row.QID)

	for _, v := range row.Field {
		fv := I(v)
		c.field = append(c.field, fv)
		if fv > c.maxField {
			c.maxField = fv
		}
	}
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
	for i, frag := range row.Extra {
		c.extra[i].appendRow(frag)
	}
	c.offset = append(c.offset, uint64(len(c.index)))
	c.gen++

	return nil
}

// backfillScalars pads the weight and qid arrays with defaults up to the
// current row count. Prior weightless bulk merges may have left them empty;
// padding here keeps len(weight) and len(qid) at either 0 or Size().
func (c *Container[I, D]) backfillScalars() {
	for len(c.weight) < c.Size() {
		c.weight = append(c.weight, DefaultWeight)
	}
	for len(c.qid) < c.Size() {
		c.qid = append(c.qid, DefaultQID)
	}
}

// PushBlock bulk-merges a whole foreign batch.
//
// Labels are copied verbatim, field ids and indices are copied with
// per-element narrowing, values are copied as-is, and offsets are recomputed
// by shifting the batch's row-relative offsets by this container's current
// last offset. Each extra channel batch is forwarded to the matching
// channel's PushBlock with the pre-merge row count as the expected size.
//
// Weights and session ids never skew relative to Size(): when the batch
// omits them but this container tracks them, the merged rows are padded with
// DefaultWeight/DefaultQID; when the batch supplies them but this container
// does not yet track them, prior rows are backfilled with the defaults
// first. A container that has only ever merged scalar-less batches keeps
// empty weight/qid arrays.
//
// The batch is fully validated before the first element is copied, so a
// failed merge leaves the container unchanged.
//
// Returns:
//   - error: ErrLabelWidthMismatch, ErrLengthMismatch,
//     ErrExtraCountMismatch, ErrRowCountMismatch (extra channel row count),
//     ErrMixedValues, ErrMixedFields, ErrIndexOverflow, or ErrInvalidLayout
func (c *Container[I, D]) PushBlock(batch RowBatch[D]) error {
	priorSize := c.Size()

	rows := batch.Rows()
	if batch.LabelWidth() != c.labelWidth {
		return fmt.Errorf("%w: batch width %d, container width %d",
			errs.ErrLabelWidthMismatch, batch.LabelWidth(), c.labelWidth)
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

	labels := batch.Labels()
	if len(labels) != rows*c.labelWidth {
		return fmt.Errorf("%w: %d labels for %d rows of width %d",
			errs.ErrLengthMismatch, len(labels), rows, c.labelWidth)
	}

	weights := batch.Weights()
	if weights != nil && len(weights) != rows {
		return fmt.Errorf("%w: %d weights for %d rows", errs.ErrLengthMismatch, len(weights), rows)
	}
	qids := batch.QIDs()
	if qids != nil && len(qids) != rows {
		return fmt.Errorf("%w: %d qids for %d rows", errs.ErrLengthMismatch, len(qids), rows)
	}

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
		if batch.HasFields() && len(c.index) > 0 && len(c.field) == 0 {
			return fmt.Errorf("%w: batch carries field ids but prior rows do not", errs.ErrMixedFields)
		}
		if !batch.HasFields() && len(c.field) > 0 {
			return fmt.Errorf("%w: batch carries no field ids but prior rows do", errs.ErrMixedFields)
		}
	}

	if batch.ExtraCount() != len(c.extra) {
		return fmt.Errorf("%w: batch has %d extra channels, container has %d",
			errs.ErrExtraCountMismatch, batch.ExtraCount(), len(c.extra))
	}

	if batch.HasFields() {
		for i := 0; i < ndata; i++ {
			if v := batch.FieldAt(i); !fitsIndex[I](v) {
				return fmt.Errorf("%w: field %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
			}
		}
	}
	for i := 0; i < ndata; i++ {
		if v := batch.IndexAt(i); !fitsIndex[I](v) {
			return fmt.Errorf("%w: index %d exceeds maximum %d", errs.ErrIndexOverflow, v, MaxIndexValue[I]())
		}
	}
	for i := 0; i < len(c.extra); i++ {
		if err := c.extra[i].validateBlock(batch.Extra(i), priorSize); err != nil {
			return fmt.Errorf("extra channel %d: %w", i, err)
		}
	}

	// Validation passed, now mutate.
	c.label = append(c.label, labels...)

	if weights != nil {
		if len(c.weight) == 0 && priorSize > 0 {
			for i := 0; i < priorSize; i++ {
				c.weight = append(c.weight, DefaultWeight)
			}
		}
		c.weight = append(c.weight, weights...)
	} else if len(c.weight) > 0 {
		for i := 0; i < rows; i++ {
			c.weight = append(c.weight, DefaultWeight)
		}
	}

	if qids != nil {
		if len(c.qid) == 0 && priorSize > 0 {
			for i := 0; i < priorSize; i++ {
				c.qid = append(c.qid, DefaultQID)
			}
		}
		c.qid = append(c.qid, qids...)
	} else if len(c.qid) > 0 {
		for i := 0; i < rows; i++ {
			c.qid = append(c.qid, DefaultQID)
		}
	}

	if batch.HasFields() {
		for i := 0; i < ndata; i++ {
			fv := I(batch.FieldAt(i))
			c.field = append(c.field, fv)
			if fv > c.maxField {
				c.maxField = fv
			}
		}
	}
	for i := 0; i < ndata; i++ {
		iv := I(batch.IndexAt(i))
		c.index = append(c.index, iv)
		if iv > c.maxIndex {
			c.maxIndex = iv
		}
	}
	if values != nil {
		c.value = append(c.value, values...)
	}

	shift := c.offset[len(c.offset)-1]
	for i := 1; i <= rows; i++ {
		c.offset = append(c.offset, shift+offsets[i]-offsets[0])
	}

	for i := 0; i < len(c.extra); i++ {
		c.extra[i].appendBlock(batch.Extra(i))
	}
	c.gen++

	return nil
}

// validate checks invariants across all parallel arrays and extra channels.
func (c *Container[I, D]) validate() error {
	if len(c.offset) == 0 {
		return fmt.Errorf("%w: empty offset array", errs.ErrInvalidLayout)
	}
	for i := 1; i < len(c.offset); i++ {
		if c.offset[i] < c.offset[i-1] {
			return fmt.Errorf("%w: offsets decrease at row %d", errs.ErrInvalidLayout, i-1)
		}
	}

	size := c.Size()
	entries := int(c.offset[len(c.offset)-1] - c.offset[0])

	if entries != len(c.index) {
		return fmt.Errorf("%w: last offset %d, %d indices", errs.ErrInvalidLayout, entries, len(c.index))
	}
	if len(c.value) != 0 && len(c.value) != len(c.index) {
		return fmt.Errorf("%w: %d indices, %d values", errs.ErrInvalidLayout, len(c.index), len(c.value))
	}
	if len(c.label) != 0 && len(c.label) != size*c.labelWidth {
		return fmt.Errorf("%w: %d labels for %d rows of width %d",
			errs.ErrInvalidLayout, len(c.label), size, c.labelWidth)
	}
	if len(c.field) != 0 && len(c.field) != len(c.index) {
		return fmt.Errorf("%w: %d indices, %d fields", errs.ErrInvalidLayout, len(c.index), len(c.field))
	}
	if len(c.weight) != 0 && len(c.weight) != size {
		return fmt.Errorf("%w: %d weights for %d rows", errs.ErrInvalidLayout, len(c.weight), size)
	}
	if len(c.qid) != 0 && len(c.qid) != size {
		return fmt.Errorf("%w: %d qids for %d rows", errs.ErrInvalidLayout, len(c.qid), size)
	}

	for i, e := range c.extra {
		if err := e.validate(); err != nil {
			return fmt.Errorf("extra channel %d: %w", i, err)
		}
		if e.Rows() != size {
			return fmt.Errorf("%w: extra channel %d has %d rows, container has %d",
				errs.ErrInvalidLayout, i, e.Rows(), size)
		}
	}

	return nil
}

// View validates invariants across all parallel arrays and extra channels
// and returns a borrowed snapshot aggregating the primary arrays and each
// extra channel's view.
//
// The returned view aliases internal storage and is valid only until the
// container's next mutation; see View.
//
// Returns:
//   - *View[I, D]: Borrowed read-only snapshot
//   - error: ErrInvalidLayout when any array lengths are inconsistent,
//     signaling a prior bug in append sequencing
func (c *Container[I, D]) View() (*View[I, D], error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	v := &View[I, D]{
		src:        c,
		gen:        c.gen,
		size:       c.Size(),
		labelWidth: c.labelWidth,
		offset:     c.offset,
		label:      c.label,
		weight:     c.weight,
		qid:        c.qid,
		field:      c.field,
		index:      c.index,
		value:      c.value,
		extra:      make([]*UnitView[I, D], len(c.extra)),
	}
	for i, e := range c.extra {
		ev, err := e.View()
		if err != nil {
			return nil, fmt.Errorf("extra channel %d: %w", i, err)
		}
		v.extra[i] = ev
	}

	return v, nil
}
