// Package format defines the type constraints and on-disk enums shared by the
// rowblock packages.
package format

import "unsafe"

// Index is the set of unsigned integer types a container may be configured
// with as its index width. The width bounds the feature indices and field ids
// the container can store.
type Index interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Value is the set of floating point types a container may be configured with
// as its feature value and label type.
type Value interface {
	~float32 | ~float64
}

// IndexSize returns the size in bytes of the index type I.
func IndexSize[I Index]() int {
	var v I
	return int(unsafe.Sizeof(v))
}

// ValueSize returns the size in bytes of the value type D.
func ValueSize[D Value]() int {
	var v D
	return int(unsafe.Sizeof(v))
}

// CompressionType identifies the compression applied to record payloads in a
// block stream.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known compression type.
func (c CompressionType) IsValid() bool {
	switch c {
	case CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4:
		return true
	default:
		return false
	}
}
