package blockfile

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/rowblock/block"
	"github.com/arloliu/rowblock/compress"
	"github.com/arloliu/rowblock/endian"
	"github.com/arloliu/rowblock/errs"
	"github.com/arloliu/rowblock/format"
	"github.com/arloliu/rowblock/internal/hash"
	"github.com/arloliu/rowblock/internal/options"
	"github.com/arloliu/rowblock/internal/pool"
)

// writerConfig collects the construction-time settings of a Writer.
type writerConfig struct {
	compression format.CompressionType
}

// WriterOption configures a Writer at construction time.
type WriterOption = options.Option[*writerConfig]

// WithCompression sets the compression applied to record payloads. The
// default is no compression.
func WithCompression(typ format.CompressionType) WriterOption {
	return options.New(func(c *writerConfig) error {
		if !typ.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrUnsupportedCompression, typ)
		}
		c.compression = typ

		return nil
	})
}

// Writer frames row block records onto a byte stream.
//
// The stream header is written lazily before the first record, so a Writer
// that never appends produces no bytes. Writer is not safe for concurrent
// use.
type Writer[I format.Index, D format.Value] struct {
	w             io.Writer
	engine        endian.EndianEngine
	codec         compress.Codec
	compression   format.CompressionType
	records       int
	headerWritten bool
}

// NewWriter creates a stream writer on w.
//
// Parameters:
//   - w: Destination stream; the writer never closes it
//   - opts: Optional configuration (compression)
//
// Returns:
//   - *Writer[I, D]: New writer
//   - error: Configuration error if invalid options provided
func NewWriter[I format.Index, D format.Value](w io.Writer, opts ...WriterOption) (*Writer[I, D], error) {
	cfg := &writerConfig{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.NewCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	return &Writer[I, D]{
		w:           w,
		engine:      endian.GetLittleEndianEngine(),
		codec:       codec,
		compression: cfg.compression,
	}, nil
}

// Compression returns the compression type the writer frames records with.
func (w *Writer[I, D]) Compression() format.CompressionType {
	return w.compression
}

// Records returns the number of records appended so far.
func (w *Writer[I, D]) Records() int {
	return w.records
}

// Append serializes the container through the block codec, compresses the
// record, and writes one checksummed frame.
//
// Returns:
//   - error: Validation errors from the block codec, compression errors, or
//     stream errors verbatim
func (w *Writer[I, D]) Append(c *block.Container[I, D]) error {
	if !w.headerWritten {
		if err := w.writeHeader(); err != nil {
			return err
		}
		w.headerWritten = true
	}

	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	if err := c.Save(buf); err != nil {
		return err
	}

	payload, err := w.codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to compress record payload: %w", err)
	}
	if len(payload) > math.MaxUint32 {
		return fmt.Errorf("%w: record payload of %d bytes exceeds frame limit", errs.ErrCorruptRecord, len(payload))
	}

	frame := make([]byte, 0, RecordHeaderSize+len(payload))
	frame = w.engine.AppendUint32(frame, uint32(len(payload)))
	frame = w.engine.AppendUint64(frame, hash.Checksum(payload))
	frame = append(frame, payload...)

	if _, err := w.w.Write(frame); err != nil {
		return err
	}
	w.records++

	return nil
}

func (w *Writer[I, D]) writeHeader() error {
	header := make([]byte, 0, HeaderSize)
	header = w.engine.AppendUint32(header, MagicNumber)
	header = append(header, FormatVersion, byte(w.compression), 0, 0)

	_, err := w.w.Write(header)

	return err
}
