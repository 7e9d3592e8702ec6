package blockfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/rowblock/block"
	"github.com/arloliu/rowblock/compress"
	"github.com/arloliu/rowblock/endian"
	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
	"github.com/arloliu/rowblock/internal/hash"
	"github.com/arloliu/rowblock/internal/pool"
)

// Reader decodes row block records from a framed stream produced by Writer.
//
// Reader is not safe for concurrent use.
type Reader[I format.Index, D format.Value] struct {
	r           io.Reader
	engine      endian.EndianEngine
	codec       compress.Codec
	compression format.CompressionType
	exhausted   bool
	records     int
}

// NewReader creates a stream reader on r and validates the stream header.
//
// A completely empty stream (zero bytes) is valid and yields a reader whose
// Next immediately reports end of stream; a Writer that never appended
// produces exactly that.
//
// Returns:
//   - *Reader[I, D]: New reader positioned at the first record
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber,
//     ErrUnsupportedVersion, ErrUnsupportedCompression, or stream errors
//     verbatim
func NewReader[I format.Index, D format.Value](r io.Reader) (*Reader[I, D], error) {
	engine := endian.GetLittleEndianEngine()

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return &Reader[I, D]{r: r, engine: engine, exhausted: true}, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: stream shorter than %d bytes", errs.ErrInvalidHeaderSize, HeaderSize)
		}

		return nil, err
	}

	if magic := engine.Uint32(header[0:4]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08x", errs.ErrInvalidMagicNumber, magic)
	}
	if version := header[4]; version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, version)
	}

	compression := format.CompressionType(header[5])
	codec, err := compress.NewCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedCompression, header[5])
	}

	return &Reader[I, D]{
		r:           r,
		engine:      engine,
		codec:       codec,
		compression: compression,
	}, nil
}

// Compression returns the compression type declared by the stream header.
func (r *Reader[I, D]) Compression() format.CompressionType {
	return r.compression
}

// Records returns the number of records decoded so far.
func (r *Reader[I, D]) Records() int {
	return r.records
}

// Next decodes the next record into dst, replacing its contents.
//
// Returns:
//   - bool: true when a record was decoded, false on clean end of stream
//   - error: ErrCorruptRecord on truncation, ErrChecksumMismatch on payload
//     corruption, decompression errors, or stream errors verbatim
func (r *Reader[I, D]) Next(dst *block.Container[I, D]) (bool, error) {
	if r.exhausted {
		return false, nil
	}

	var frameHeader [RecordHeaderSize]byte
	if _, err := io.ReadFull(r.r, frameHeader[:]); err != nil {
		if errors.Is(err, io.EOF) {
			r.exhausted = true
			return false, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return false, fmt.Errorf("%w: truncated record frame", errs.ErrCorruptRecord)
		}

		return false, err
	}

	length := int(r.engine.Uint32(frameHeader[0:4]))
	checksum := r.engine.Uint64(frameHeader[4:12])

	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	buf.SetLength(length)
	if _, err := io.ReadFull(r.r, buf.B); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, fmt.Errorf("%w: truncated record payload", errs.ErrCorruptRecord)
		}

		return false, err
	}

	if actual := hash.Checksum(buf.B); actual != checksum {
		return false, fmt.Errorf("%w: expected 0x%016x, got 0x%016x", errs.ErrChecksumMismatch, checksum, actual)
	}

	payload, err := r.codec.Decompress(buf.B)
	if err != nil {
		return false, fmt.Errorf("failed to decompress record payload: %w", err)
	}

	ok, err := dst.Load(bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	if !ok {
		// The frame existed but carried no record; the stream is damaged.
		return false, fmt.Errorf("%w: empty record payload", errs.ErrCorruptRecord)
	}
	r.records++

	return true, nil
}
