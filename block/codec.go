package block

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/rowblock/endian"
	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
	"github.com/arloliu/rowblock/internal/pool"
)

// maxRecordElements bounds the element count a length prefix may declare.
// A corrupted or hostile stream must not be able to drive allocations past
// this limit before decoding fails.
const maxRecordElements = 1 << 32

// Save writes the container's primary arrays to the stream as one binary
// record: length-prefixed encodings of offset, label, weight, qid, field,
// index and value in fixed order, followed by the fixed-width maxField and
// maxIndex scalars. Extra channels are not persisted; this is a stated
// limitation of the record format.
//
// The byte order is the container's configured endian engine (little-endian
// by default). Element widths follow the container's type parameters, so
// writer and reader must be instantiated identically.
//
// Returns:
//   - error: ErrInvalidLayout when the arrays are inconsistent, or the
//     underlying stream error verbatim
func (c *Container[I, D]) Save(w io.Writer) error {
	if err := c.validate(); err != nil {
		return err
	}

	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	buf.B = appendUint64Array(buf.B, c.engine, c.offset)
	buf.B = appendValueArray(buf.B, c.engine, c.label)
	buf.B = appendFloat32Array(buf.B, c.engine, c.weight)
	buf.B = appendUint64Array(buf.B, c.engine, c.qid)
	buf.B = appendIndexArray(buf.B, c.engine, c.field)
	buf.B = appendIndexArray(buf.B, c.engine, c.index)
	buf.B = appendValueArray(buf.B, c.engine, c.value)
	buf.B = appendIndexScalar(buf.B, c.engine, c.maxField)
	buf.B = appendIndexScalar(buf.B, c.engine, c.maxIndex)

	if _, err := buf.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// Load reads one binary record from the stream, replacing the container's
// contents.
//
// A cleanly exhausted stream (EOF before any byte of a new record) is not an
// error: Load returns (false, nil). Once the first length prefix has been
// read, any truncation or implausible length is a hard ErrCorruptRecord;
// other stream errors propagate verbatim. The decode is atomic: on error the
// container keeps its prior contents.
//
// Extra channels are not part of the record format. On success each
// configured extra channel is reset to the loaded row count with every row
// empty, keeping the container's invariants intact.
//
// Returns:
//   - bool: true when a record was decoded, false on clean end of stream
//   - error: ErrCorruptRecord or the underlying stream error
func (c *Container[I, D]) Load(r io.Reader) (bool, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return false, fmt.Errorf("%w: truncated length prefix", errs.ErrCorruptRecord)
		}

		return false, err
	}

	nOffset := c.engine.Uint64(head[:])
	if nOffset == 0 || nOffset > maxRecordElements {
		return false, fmt.Errorf("%w: implausible offset count %d", errs.ErrCorruptRecord, nOffset)
	}

	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	data, err := readExact(r, buf, int(nOffset)*8)
	if err != nil {
		return false, err
	}
	offset := decodeUint64Array(data, c.engine, int(nOffset))

	label, err := readValueArray[D](r, c.engine, buf)
	if err != nil {
		return false, err
	}
	weight, err := readFloat32Array(r, c.engine, buf)
	if err != nil {
		return false, err
	}
	qid, err := readUint64Array(r, c.engine, buf)
	if err != nil {
		return false, err
	}
	field, err := readIndexArray[I](r, c.engine, buf)
	if err != nil {
		return false, err
	}
	index, err := readIndexArray[I](r, c.engine, buf)
	if err != nil {
		return false, err
	}
	value, err := readValueArray[D](r, c.engine, buf)
	if err != nil {
		return false, err
	}
	maxField, err := readIndexScalar[I](r, c.engine, buf)
	if err != nil {
		return false, err
	}
	maxIndex, err := readIndexScalar[I](r, c.engine, buf)
	if err != nil {
		return false, err
	}

	c.offset = offset
	c.label = label
	c.weight = weight
	c.qid = qid
	c.field = field
	c.index = index
	c.value = value
	c.maxField = maxField
	c.maxIndex = maxIndex
	for _, e := range c.extra {
		e.resetRows(len(offset) - 1)
	}
	c.gen++

	return true, nil
}

// resetRows clears the unit container and re-adds n empty rows.
func (c *UnitContainer[I, D]) resetRows(n int) {
	c.Clear()
	for i := 0; i < n; i++ {
		c.offset = append(c.offset, 0)
	}
}

// readExact reads exactly n bytes into the pooled buffer. Truncation inside
// a record is reported as ErrCorruptRecord; other stream errors propagate
// verbatim.
func readExact(r io.Reader, buf *pool.ByteBuffer, n int) ([]byte, error) {
	buf.SetLength(n)
	if _, err := io.ReadFull(r, buf.B); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated record", errs.ErrCorruptRecord)
		}

		return nil, err
	}

	return buf.B, nil
}

// readArrayLen reads one uint64 length prefix and bounds-checks it.
func readArrayLen(r io.Reader, engine endian.EndianEngine, buf *pool.ByteBuffer) (int, error) {
	data, err := readExact(r, buf, 8)
	if err != nil {
		return 0, err
	}
	n := engine.Uint64(data)
	if n > maxRecordElements {
		return 0, fmt.Errorf("%w: implausible array length %d", errs.ErrCorruptRecord, n)
	}

	return int(n), nil
}

func appendUint64Array(dst []byte, engine endian.EndianEngine, s []uint64) []byte {
	dst = engine.AppendUint64(dst, uint64(len(s)))
	for _, v := range s {
		dst = engine.AppendUint64(dst, v)
	}

	return dst
}

func readUint64Array(r io.Reader, engine endian.EndianEngine, buf *pool.ByteBuffer) ([]uint64, error) {
	n, err := readArrayLen(r, engine, buf)
	if err != nil || n == 0 {
		return nil, err
	}
	data, err := readExact(r, buf, n*8)
	if err != nil {
		return nil, err
	}

	return decodeUint64Array(data, engine, n), nil
}

func decodeUint64Array(data []byte, engine endian.EndianEngine, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = engine.Uint64(data[i*8:])
	}

	return out
}

func appendFloat32Array(dst []byte, engine endian.EndianEngine, s []float32) []byte {
	dst = engine.AppendUint64(dst, uint64(len(s)))
	for _, v := range s {
		dst = engine.AppendUint32(dst, math.Float32bits(v))
	}

	return dst
}

func readFloat32Array(r io.Reader, engine endian.EndianEngine, buf *pool.ByteBuffer) ([]float32, error) {
	n, err := readArrayLen(r, engine, buf)
	if err != nil || n == 0 {
		return nil, err
	}
	data, err := readExact(r, buf, n*4)
	if err != nil {
		return nil, err
	}

	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(engine.Uint32(data[i*4:]))
	}

	return out, nil
}

func appendIndexArray[I format.Index](dst []byte, engine endian.EndianEngine, s []I) []byte {
	dst = engine.AppendUint64(dst, uint64(len(s)))
	for _, v := range s {
		dst = appendIndexScalar(dst, engine, v)
	}

	return dst
}

func appendIndexScalar[I format.Index](dst []byte, engine endian.EndianEngine, v I) []byte {
	switch format.IndexSize[I]() {
	case 1:
		return append(dst, byte(v))
	case 2:
		return engine.AppendUint16(dst, uint16(v))
	case 4:
		return engine.AppendUint32(dst, uint32(v))
	default:
		return engine.AppendUint64(dst, uint64(v))
	}
}

func readIndexArray[I format.Index](r io.Reader, engine endian.EndianEngine, buf *pool.ByteBuffer) ([]I, error) {
	n, err := readArrayLen(r, engine, buf)
	if err != nil || n == 0 {
		return nil, err
	}
	size := format.IndexSize[I]()
	data, err := readExact(r, buf, n*size)
	if err != nil {
		return nil, err
	}

	out := make([]I, n)
	switch size {
	case 1:
		for i := range out {
			out[i] = I(data[i])
		}
	case 2:
		for i := range out {
			out[i] = I(engine.Uint16(data[i*2:]))
		}
	case 4:
		for i := range out {
			out[i] = I(engine.Uint32(data[i*4:]))
		}
	default:
		for i := range out {
			out[i] = I(engine.Uint64(data[i*8:]))
		}
	}

	return out, nil
}

func readIndexScalar[I format.Index](r io.Reader, engine endian.EndianEngine, buf *pool.ByteBuffer) (I, error) {
	size := format.IndexSize[I]()
	data, err := readExact(r, buf, size)
	if err != nil {
		return 0, err
	}

	switch size {
	case 1:
		return I(data[0]), nil
	case 2:
		return I(engine.Uint16(data)), nil
	case 4:
		return I(engine.Uint32(data)), nil
	default:
		return I(engine.Uint64(data)), nil
	}
}

func appendValueArray[D format.Value](dst []byte, engine endian.EndianEngine, s []D) []byte {
	dst = engine.AppendUint64(dst, uint64(len(s)))
	if format.ValueSize[D]() == 4 {
		for _, v := range s {
			dst = engine.AppendUint32(dst, math.Float32bits(float32(v)))
		}
	} else {
		for _, v := range s {
			dst = engine.AppendUint64(dst, math.Float64bits(float64(v)))
		}
	}

	return dst
}

func readValueArray[D format.Value](r io.Reader, engine endian.EndianEngine, buf *pool.ByteBuffer) ([]D, error) {
	n, err := readArrayLen(r, engine, buf)
	if err != nil || n == 0 {
		return nil, err
	}
	size := format.ValueSize[D]()
	data, err := readExact(r, buf, n*size)
	if err != nil {
		return nil, err
	}

	out := make([]D, n)
	if size == 4 {
		for i := range out {
			out[i] = D(math.Float32frombits(engine.Uint32(data[i*4:])))
		}
	} else {
		for i := range out {
			out[i] = D(math.Float64frombits(engine.Uint64(data[i*8:])))
		}
	}

	return out, nil
}
