package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rowblock/errs"
)

func TestUnitContainer_New(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()

	require.Equal(t, 0, c.Rows())
	require.Equal(t, uint32(0), c.MaxIndex())

	view, err := c.View()
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, view.Offsets())
	require.Equal(t, 0, view.Rows())
}

func TestUnitContainer_PushRow(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()

	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1, 5}, Value: []float32{0.1, 0.2}}))
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{3}, Value: []float32{0.9}}))
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{}, Value: []float32{}}))

	require.Equal(t, 3, c.Rows())
	require.Equal(t, uint32(5), c.MaxIndex())

	view, err := c.View()
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 2, 3, 3}, view.Offsets())
	require.Equal(t, []uint32{1, 5, 3}, view.Index())
	require.Equal(t, []float32{0.1, 0.2, 0.9}, view.Values())
}

func TestUnitContainer_PushRow_ImplicitValues(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()

	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{7, 9}}))
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{2}}))

	view, err := c.View()
	require.NoError(t, err)
	require.Nil(t, view.Values(), "valueless rows should leave the value array empty")
	require.Equal(t, []uint32{7, 9, 2}, view.Index())
}

func TestUnitContainer_PushRow_Overflow(t *testing.T) {
	c := NewUnitContainer[uint8, float32]()
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{10}}))

	err := c.PushRow(UnitRow[float32]{Index: []uint64{20, 300}})
	require.ErrorIs(t, err, errs.ErrIndexOverflow)

	// The failed push must leave the container untouched.
	require.Equal(t, 1, c.Rows())
	require.Equal(t, uint8(10), c.MaxIndex(), "max index must not see any element of a failed push")

	view, err := c.View()
	require.NoError(t, err)
	require.Equal(t, []uint8{10}, view.Index())
}

func TestUnitContainer_PushRow_LengthMismatch(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()

	err := c.PushRow(UnitRow[float32]{Index: []uint64{1, 2}, Value: []float32{0.5}})
	require.ErrorIs(t, err, errs.ErrLengthMismatch)
	require.Equal(t, 0, c.Rows())
}

func TestUnitContainer_PushRow_MixedValues(t *testing.T) {
	t.Run("values then none", func(t *testing.T) {
		c := NewUnitContainer[uint32, float32]()
		require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1}, Value: []float32{0.1}}))

		err := c.PushRow(UnitRow[float32]{Index: []uint64{2}})
		require.ErrorIs(t, err, errs.ErrMixedValues)
		require.Equal(t, 1, c.Rows())
	})

	t.Run("none then values", func(t *testing.T) {
		c := NewUnitContainer[uint32, float32]()
		require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1}}))

		err := c.PushRow(UnitRow[float32]{Index: []uint64{2}, Value: []float32{0.2}})
		require.ErrorIs(t, err, errs.ErrMixedValues)
	})

	t.Run("empty rows never conflict", func(t *testing.T) {
		c := NewUnitContainer[uint32, float32]()
		require.NoError(t, c.PushRow(UnitRow[float32]{}))
		require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1}, Value: []float32{0.1}}))
		require.NoError(t, c.PushRow(UnitRow[float32]{}))
	})
}

func TestUnitContainer_Clear(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1, 2}, Value: []float32{0.1, 0.2}}))

	c.Clear()

	require.Equal(t, 0, c.Rows())
	require.Equal(t, uint32(0), c.MaxIndex())

	view, err := c.View()
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, view.Offsets())
	require.Nil(t, view.Values())
}

func TestUnitContainer_PushBlock(t *testing.T) {
	src := NewUnitContainer[uint32, float32]()
	require.NoError(t, src.PushRow(UnitRow[float32]{Index: []uint64{1, 5}, Value: []float32{0.1, 0.2}}))
	require.NoError(t, src.PushRow(UnitRow[float32]{Index: []uint64{3}, Value: []float32{0.9}}))

	srcView, err := src.View()
	require.NoError(t, err)

	t.Run("matching expected rows", func(t *testing.T) {
		dst := NewUnitContainer[uint32, float32]()
		require.NoError(t, dst.PushBlock(srcView, 2))

		require.Equal(t, 2, dst.Rows())
		require.Equal(t, uint32(5), dst.MaxIndex())

		view, err := dst.View()
		require.NoError(t, err)
		require.Equal(t, []uint64{0, 2, 3}, view.Offsets())
		require.Equal(t, []uint32{1, 5, 3}, view.Index())
		require.Equal(t, []float32{0.1, 0.2, 0.9}, view.Values())
	})

	t.Run("row count mismatch", func(t *testing.T) {
		dst := NewUnitContainer[uint32, float32]()
		err := dst.PushBlock(srcView, 3)
		require.ErrorIs(t, err, errs.ErrRowCountMismatch)
		require.Equal(t, 0, dst.Rows())
	})

	t.Run("appends shift offsets", func(t *testing.T) {
		dst := NewUnitContainer[uint32, float32]()
		require.NoError(t, dst.PushRow(UnitRow[float32]{Index: []uint64{8}, Value: []float32{1.5}}))

		require.NoError(t, dst.PushBlock(srcView, 2))

		view, err := dst.View()
		require.NoError(t, err)
		require.Equal(t, []uint64{0, 1, 3, 4}, view.Offsets())
		require.Equal(t, []uint32{8, 1, 5, 3}, view.Index())
		require.Equal(t, []float32{1.5, 0.1, 0.2, 0.9}, view.Values())
	})
}

func TestUnitContainer_PushBlock_CrossWidth(t *testing.T) {
	src := NewUnitContainer[uint64, float32]()
	require.NoError(t, src.PushRow(UnitRow[float32]{Index: []uint64{200, 100}}))
	srcView, err := src.View()
	require.NoError(t, err)

	t.Run("narrows into smaller width", func(t *testing.T) {
		dst := NewUnitContainer[uint8, float32]()
		require.NoError(t, dst.PushBlock(srcView, 1))

		view, err := dst.View()
		require.NoError(t, err)
		require.Equal(t, []uint8{200, 100}, view.Index())
		require.Equal(t, uint8(200), dst.MaxIndex())
	})

	t.Run("overflow aborts the merge", func(t *testing.T) {
		wide := NewUnitContainer[uint64, float32]()
		require.NoError(t, wide.PushRow(UnitRow[float32]{Index: []uint64{300}}))
		wideView, err := wide.View()
		require.NoError(t, err)

		dst := NewUnitContainer[uint8, float32]()
		err = dst.PushBlock(wideView, 1)
		require.ErrorIs(t, err, errs.ErrIndexOverflow)
		require.Equal(t, 0, dst.Rows())
	})
}

func TestUnitContainer_PushBlock_FromSlices(t *testing.T) {
	batch := UnitSlice[float32]{
		NumRows: 2,
		Offset:  []uint64{10, 12, 13}, // non-zero base must be rebased on append
		Index:   []uint64{4, 2, 9},
		Value:   []float32{1, 2, 3},
	}

	dst := NewUnitContainer[uint32, float32]()
	require.NoError(t, dst.PushBlock(&batch, 2))

	view, err := dst.View()
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 2, 3}, view.Offsets())
	require.Equal(t, []uint32{4, 2, 9}, view.Index())
}

func TestUnitContainer_PushBlock_MixedValues(t *testing.T) {
	dst := NewUnitContainer[uint32, float32]()
	require.NoError(t, dst.PushRow(UnitRow[float32]{Index: []uint64{1}, Value: []float32{0.5}}))

	batch := UnitSlice[float32]{
		NumRows: 1,
		Offset:  []uint64{0, 1},
		Index:   []uint64{2},
	}
	err := dst.PushBlock(&batch, 1)
	require.ErrorIs(t, err, errs.ErrMixedValues)
}

func TestUnitContainer_Equivalence(t *testing.T) {
	rows := []UnitRow[float32]{
		{Index: []uint64{1, 5}, Value: []float32{0.1, 0.2}},
		{Index: []uint64{3}, Value: []float32{0.9}},
		{Index: []uint64{}, Value: []float32{}},
		{Index: []uint64{7, 2, 4}, Value: []float32{1, 2, 3}},
	}

	single := NewUnitContainer[uint32, float32]()
	for _, r := range rows {
		require.NoError(t, single.PushRow(r))
	}

	// Assemble the same rows into one batch and push it at once.
	batch := UnitSlice[float32]{Offset: []uint64{0}}
	for _, r := range rows {
		batch.Index = append(batch.Index, r.Index...)
		batch.Value = append(batch.Value, r.Value...)
		batch.Offset = append(batch.Offset, uint64(len(batch.Index)))
		batch.NumRows++
	}

	bulk := NewUnitContainer[uint32, float32]()
	require.NoError(t, bulk.PushBlock(&batch, len(rows)))

	sv, err := single.View()
	require.NoError(t, err)
	bv, err := bulk.View()
	require.NoError(t, err)

	require.Equal(t, sv.Offsets(), bv.Offsets())
	require.Equal(t, sv.Index(), bv.Index())
	require.Equal(t, sv.Values(), bv.Values())
	require.Equal(t, single.MaxIndex(), bulk.MaxIndex())
}

func TestUnitContainer_MemoryCost(t *testing.T) {
	c := NewUnitContainer[uint32, float64]()
	require.Equal(t, 8, c.MemoryCost(), "empty container holds one offset")

	require.NoError(t, c.PushRow(UnitRow[float64]{Index: []uint64{1, 2}, Value: []float64{0.1, 0.2}}))

	// offsets: 2*8, indices: 2*4, values: 2*8
	require.Equal(t, 16+8+16, c.MemoryCost())
}

func TestUnitView_Staleness(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1}}))

	view, err := c.View()
	require.NoError(t, err)
	require.False(t, view.Stale())

	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{2}}))

	require.True(t, view.Stale())
	require.Panics(t, func() { view.Offsets() })
	require.Panics(t, func() { view.Index() })
	require.Panics(t, func() { view.Rows() })
}

func TestUnitView_RowsAndIterator(t *testing.T) {
	c := NewUnitContainer[uint32, float32]()
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{1, 5}, Value: []float32{0.1, 0.2}}))
	require.NoError(t, c.PushRow(UnitRow[float32]{Index: []uint64{3}, Value: []float32{0.9}}))

	view, err := c.View()
	require.NoError(t, err)

	row := view.Row(0)
	require.Equal(t, []uint32{1, 5}, row.Index)
	require.Equal(t, []float32{0.1, 0.2}, row.Value)

	var visited int
	for i, r := range view.All() {
		require.Equal(t, view.Row(i).Index, r.Index)
		visited++
	}
	require.Equal(t, 2, visited)
}
