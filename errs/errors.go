// Package errs defines the sentinel errors returned by rowblock packages.
//
// Callers should match errors with errors.Is, since most call sites wrap
// these sentinels with additional context via fmt.Errorf("%w: ...").
package errs

import "errors"

// Container append errors.
var (
	// ErrIndexOverflow indicates an externally supplied index or field id
	// exceeds the maximum representable value of the container's index width.
	ErrIndexOverflow = errors.New("index exceeds container index width")

	// ErrRowCountMismatch indicates a bulk merge declared a row count that
	// disagrees with the row count expected by the destination.
	ErrRowCountMismatch = errors.New("batch row count mismatch")

	// ErrExtraCountMismatch indicates a row or batch carries a different
	// number of extra channels than the destination container is configured
	// with.
	ErrExtraCountMismatch = errors.New("extra channel count mismatch")

	// ErrLabelWidthMismatch indicates a row or batch supplies labels whose
	// count disagrees with the container's configured label width.
	ErrLabelWidthMismatch = errors.New("label width mismatch")

	// ErrLengthMismatch indicates parallel arrays of a row or batch have
	// inconsistent lengths (e.g. values present but shorter than indices).
	ErrLengthMismatch = errors.New("mismatched array lengths")

	// ErrMixedValues indicates an append would mix rows that carry feature
	// values with rows that do not within the same container.
	ErrMixedValues = errors.New("mixed value presence across rows")

	// ErrMixedFields indicates an append would mix rows that carry field ids
	// with rows that do not within the same container.
	ErrMixedFields = errors.New("mixed field presence across rows")
)

// Configuration errors.
var (
	// ErrInvalidLabelWidth indicates a non-positive label width was requested.
	ErrInvalidLabelWidth = errors.New("label width must be positive")

	// ErrInvalidExtraCount indicates a negative extra channel count was
	// requested.
	ErrInvalidExtraCount = errors.New("extra channel count must be non-negative")
)

// View and codec errors.
var (
	// ErrInvalidLayout indicates a container's parallel arrays are mutually
	// inconsistent. It signals a prior bug in append sequencing, not a
	// recoverable condition.
	ErrInvalidLayout = errors.New("inconsistent container layout")

	// ErrCorruptRecord indicates a binary record was truncated or otherwise
	// undecodable after its first length prefix was read.
	ErrCorruptRecord = errors.New("corrupt row block record")
)

// Record stream errors.
var (
	// ErrInvalidMagicNumber indicates a stream does not start with the
	// blockfile magic number.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrInvalidHeaderSize indicates a stream ended before a complete
	// blockfile header could be read.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrUnsupportedVersion indicates a blockfile header declares a format
	// version this implementation does not understand.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrUnsupportedCompression indicates an unknown compression type in a
	// blockfile header.
	ErrUnsupportedCompression = errors.New("unsupported compression type")

	// ErrChecksumMismatch indicates a record payload failed checksum
	// verification.
	ErrChecksumMismatch = errors.New("record checksum mismatch")
)
