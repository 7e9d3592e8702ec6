package compress

import (
	"fmt"

	"github.com/arloliu/rowblock/format"
)

// Compressor compresses a complete record payload.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//     (except the no-op codec, which returns the input as-is)
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a complete record payload.
//
// The input must have been produced by the matching Compressor. Corrupted or
// mismatched data yields an error, never a partial result.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//     (except the no-op codec, which returns the input as-is)
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// NewCodec returns the codec implementing the given compression type.
func NewCodec(typ format.CompressionType) (Codec, error) {
	switch typ {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", typ)
	}
}
