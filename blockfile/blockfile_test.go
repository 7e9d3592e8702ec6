package blockfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rowblock/block"
	"github.com/arloliu/rowblock/endian"
	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
)

func buildContainer(t *testing.T, rows int) *block.Container[uint32, float32] {
	t.Helper()

	c, err := block.NewContainer[uint32, float32]()
	require.NoError(t, err)
	for i := 0; i < rows; i++ {
		require.NoError(t, c.PushRow(block.Row[float32]{
			Label:  []float32{float32(i % 2)},
			Weight: 1,
			QID:    uint64(i),
			Index:  []uint64{uint64(i), uint64(i + 100)},
			Value:  []float32{float32(i) * 0.5, float32(i) * 0.25},
		}))
	}

	return c
}

func requireSameContainer(t *testing.T, want, got *block.Container[uint32, float32]) {
	t.Helper()

	wv, err := want.View()
	require.NoError(t, err)
	gv, err := got.View()
	require.NoError(t, err)

	require.Equal(t, wv.Rows(), gv.Rows())
	require.Equal(t, wv.Offsets(), gv.Offsets())
	require.Equal(t, wv.Labels(), gv.Labels())
	require.Equal(t, wv.Weights(), gv.Weights())
	require.Equal(t, wv.QIDs(), gv.QIDs())
	require.Equal(t, wv.Index(), gv.Index())
	require.Equal(t, wv.Values(), gv.Values())
}

func TestWriterReader_RoundTrip(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionZstd,
	}

	for _, typ := range compressions {
		t.Run(typ.String(), func(t *testing.T) {
			first := buildContainer(t, 3)
			second := buildContainer(t, 1)

			var buf bytes.Buffer
			w, err := NewWriter[uint32, float32](&buf, WithCompression(typ))
			require.NoError(t, err)
			require.Equal(t, typ, w.Compression())

			require.NoError(t, w.Append(first))
			require.NoError(t, w.Append(second))
			require.Equal(t, 2, w.Records())

			r, err := NewReader[uint32, float32](&buf)
			require.NoError(t, err)
			require.Equal(t, typ, r.Compression())

			dst, err := block.NewContainer[uint32, float32]()
			require.NoError(t, err)

			ok, err := r.Next(dst)
			require.NoError(t, err)
			require.True(t, ok)
			requireSameContainer(t, first, dst)

			ok, err = r.Next(dst)
			require.NoError(t, err)
			require.True(t, ok)
			requireSameContainer(t, second, dst)

			ok, err = r.Next(dst)
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, 2, r.Records())
		})
	}
}

func TestWriter_LazyHeader(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriter[uint32, float32](&buf)
	require.NoError(t, err)

	require.Zero(t, buf.Len(), "a writer that never appends writes no bytes")
}

func TestWriter_InvalidCompression(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriter[uint32, float32](&buf, WithCompression(format.CompressionType(0xFF)))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestReader_EmptyStream(t *testing.T) {
	r, err := NewReader[uint32, float32](bytes.NewReader(nil))
	require.NoError(t, err)

	dst, err := block.NewContainer[uint32, float32]()
	require.NoError(t, err)

	ok, err := r.Next(dst)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReader_HeaderValidation(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	validHeader := func() []byte {
		h := engine.AppendUint32(nil, MagicNumber)
		return append(h, FormatVersion, byte(format.CompressionNone), 0, 0)
	}

	t.Run("short header", func(t *testing.T) {
		_, err := NewReader[uint32, float32](bytes.NewReader(validHeader()[:5]))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("bad magic", func(t *testing.T) {
		h := validHeader()
		h[0] = 'X'
		_, err := NewReader[uint32, float32](bytes.NewReader(h))
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("unsupported version", func(t *testing.T) {
		h := validHeader()
		h[4] = FormatVersion + 1
		_, err := NewReader[uint32, float32](bytes.NewReader(h))
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
	})

	t.Run("unknown compression", func(t *testing.T) {
		h := validHeader()
		h[5] = 0xFF
		_, err := NewReader[uint32, float32](bytes.NewReader(h))
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})
}

func TestReader_CorruptStream(t *testing.T) {
	encode := func(t *testing.T) []byte {
		t.Helper()
		var buf bytes.Buffer
		w, err := NewWriter[uint32, float32](&buf)
		require.NoError(t, err)
		require.NoError(t, w.Append(buildContainer(t, 2)))

		return buf.Bytes()
	}

	newDst := func(t *testing.T) *block.Container[uint32, float32] {
		t.Helper()
		c, err := block.NewContainer[uint32, float32]()
		require.NoError(t, err)

		return c
	}

	t.Run("flipped payload byte", func(t *testing.T) {
		stream := encode(t)
		stream[len(stream)-1] ^= 0xFF

		r, err := NewReader[uint32, float32](bytes.NewReader(stream))
		require.NoError(t, err)

		_, err = r.Next(newDst(t))
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("truncated frame header", func(t *testing.T) {
		stream := encode(t)
		r, err := NewReader[uint32, float32](bytes.NewReader(stream[:HeaderSize+4]))
		require.NoError(t, err)

		_, err = r.Next(newDst(t))
		require.ErrorIs(t, err, errs.ErrCorruptRecord)
	})

	t.Run("truncated payload", func(t *testing.T) {
		stream := encode(t)
		r, err := NewReader[uint32, float32](bytes.NewReader(stream[:len(stream)-3]))
		require.NoError(t, err)

		_, err = r.Next(newDst(t))
		require.ErrorIs(t, err, errs.ErrCorruptRecord)
	})

	t.Run("failed decode leaves destination intact", func(t *testing.T) {
		stream := encode(t)
		stream[len(stream)-1] ^= 0xFF

		r, err := NewReader[uint32, float32](bytes.NewReader(stream))
		require.NoError(t, err)

		dst := buildContainer(t, 1)
		_, err = r.Next(dst)
		require.Error(t, err)
		require.Equal(t, 1, dst.Size())
	})
}

func TestWriterReader_ExtrasNotPersisted(t *testing.T) {
	src, err := block.NewContainer[uint32, float32](block.WithExtraChannels(1))
	require.NoError(t, err)
	require.NoError(t, src.PushRow(block.Row[float32]{
		Label: []float32{1},
		Index: []uint64{2},
		Extra: []block.UnitRow[float32]{{Index: []uint64{9}}},
	}))

	var buf bytes.Buffer
	w, err := NewWriter[uint32, float32](&buf)
	require.NoError(t, err)
	require.NoError(t, w.Append(src))

	r, err := NewReader[uint32, float32](&buf)
	require.NoError(t, err)

	dst, err := block.NewContainer[uint32, float32](block.WithExtraChannels(1))
	require.NoError(t, err)

	ok, err := r.Next(dst)
	require.NoError(t, err)
	require.True(t, ok)

	view, err := dst.View()
	require.NoError(t, err)
	ev := view.ExtraView(0)
	require.Equal(t, 1, ev.Rows())
	require.Empty(t, ev.Index(), "extra channels are not part of the record format")
}
