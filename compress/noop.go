package compress

// NoOpCompressor bypasses data without compression.
//
// It is useful when the stream is already compressed at a lower layer, when
// CPU cost matters more than size, and as a baseline in benchmarks.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data as-is without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data while the returned slice is in use.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data as-is without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data while the returned slice is in use.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
