package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rowblock/errs"
)

func TestView_Row(t *testing.T) {
	c, err := NewContainer[uint32, float32](WithLabelWidth(2))
	require.NoError(t, err)
	require.NoError(t, c.PushRow(Row[float32]{
		Label:  []float32{1, 0},
		Weight: 2,
		QID:    11,
		Field:  []uint64{7, 8},
		Index:  []uint64{1, 5},
		Value:  []float32{0.1, 0.2},
	}))
	require.NoError(t, c.PushRow(Row[float32]{
		Label:  []float32{0, 1},
		Weight: 3,
		Field:  []uint64{9},
		Index:  []uint64{3},
		Value:  []float32{0.9},
	}))

	view, err := c.View()
	require.NoError(t, err)

	row := view.Row(0)
	require.Equal(t, []float32{1, 0}, row.Label)
	require.Equal(t, float32(2), row.Weight)
	require.Equal(t, uint64(11), row.QID)
	require.Equal(t, []uint32{7, 8}, row.Field)
	require.Equal(t, []uint32{1, 5}, row.Index)
	require.Equal(t, []float32{0.1, 0.2}, row.Value)

	row = view.Row(1)
	require.Equal(t, []float32{0, 1}, row.Label)
	require.Equal(t, []uint32{9}, row.Field)
	require.Equal(t, []uint32{3}, row.Index)
}

func TestView_Row_Defaults(t *testing.T) {
	c, err := NewContainer[uint32, float32]()
	require.NoError(t, err)

	// Scalar-less bulk merge: the container tracks no weights or qids, so
	// rows surface the defaults.
	require.NoError(t, c.PushBlock(&Batch[float32]{
		NumRows: 1,
		Width:   1,
		Offset:  []uint64{0, 1},
		Label:   []float32{1},
		Index:   []uint64{4},
	}))

	view, err := c.View()
	require.NoError(t, err)

	row := view.Row(0)
	require.Equal(t, DefaultWeight, row.Weight)
	require.Equal(t, DefaultQID, row.QID)
	require.Nil(t, row.Field)
	require.Nil(t, row.Value)
	require.Equal(t, []uint32{4}, row.Index)
}

func TestView_All(t *testing.T) {
	c, err := NewContainer[uint32, float32]()
	require.NoError(t, err)
	require.NoError(t, c.PushRow(Row[float32]{Label: []float32{1}, Index: []uint64{1, 5}}))
	require.NoError(t, c.PushRow(Row[float32]{Label: []float32{0}, Index: []uint64{3}}))
	require.NoError(t, c.PushRow(Row[float32]{Label: []float32{1}}))

	view, err := c.View()
	require.NoError(t, err)

	var visited int
	for i, row := range view.All() {
		require.Equal(t, view.Row(i).Label, row.Label)
		require.Equal(t, view.Row(i).Index, row.Index)
		visited++
	}
	require.Equal(t, 3, visited)

	// Early break must not panic or overrun.
	for i := range view.All() {
		if i == 1 {
			break
		}
	}
}

func TestView_ValidationFailure(t *testing.T) {
	t.Run("value array skew", func(t *testing.T) {
		c, err := NewContainer[uint32, float32]()
		require.NoError(t, err)
		require.NoError(t, c.PushRow(Row[float32]{Label: []float32{1}, Index: []uint64{1, 2}, Value: []float32{0.1, 0.2}}))

		// Corrupt the parallel arrays directly to simulate a sequencing bug.
		c.value = c.value[:1]

		_, err = c.View()
		require.ErrorIs(t, err, errs.ErrInvalidLayout)
	})

	t.Run("label array skew", func(t *testing.T) {
		c, err := NewContainer[uint32, float32](WithLabelWidth(2))
		require.NoError(t, err)
		require.NoError(t, c.PushRow(Row[float32]{Label: []float32{1, 0}}))

		c.label = c.label[:1]

		_, err = c.View()
		require.ErrorIs(t, err, errs.ErrInvalidLayout)
	})

	t.Run("extra channel row skew", func(t *testing.T) {
		c, err := NewContainer[uint32, float32](WithExtraChannels(1))
		require.NoError(t, err)
		require.NoError(t, c.PushRow(Row[float32]{
			Label: []float32{1},
			Extra: []UnitRow[float32]{{}},
		}))

		c.extra[0].Clear()

		_, err = c.View()
		require.ErrorIs(t, err, errs.ErrInvalidLayout)
	})
}

func TestView_ExtraChannels(t *testing.T) {
	c, err := NewContainer[uint32, float32](WithExtraChannels(2))
	require.NoError(t, err)
	require.NoError(t, c.PushRow(Row[float32]{
		Label: []float32{1},
		Index: []uint64{3},
		Extra: []UnitRow[float32]{
			{Index: []uint64{1, 2}},
			{Index: []uint64{5}, Value: []float32{0.5}},
		},
	}))

	view, err := c.View()
	require.NoError(t, err)
	require.Equal(t, 2, view.ExtraCount())

	first := view.ExtraView(0)
	require.Equal(t, 1, first.Rows())
	require.Equal(t, []uint32{1, 2}, first.Index())
	require.Nil(t, first.Values())

	second := view.ExtraView(1)
	require.Equal(t, []uint32{5}, second.Index())
	require.Equal(t, []float32{0.5}, second.Values())

	// Extra views share the parent's staleness contract.
	require.NoError(t, c.PushRow(Row[float32]{
		Label: []float32{0},
		Extra: []UnitRow[float32]{{}, {Index: []uint64{6}, Value: []float32{0.6}}},
	}))
	require.True(t, first.Stale())
	require.Panics(t, func() { first.Index() })
}
