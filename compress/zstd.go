package compress

// ZstdCompressor compresses record payloads with Zstandard.
//
// It trades CPU for the best compression ratio of the available codecs,
// making it the right choice for cold storage and bandwidth-limited
// transport of row block streams.
//
// The implementation is selected at build time: the pure Go
// klauspost/compress encoder by default, or the cgo-backed gozstd library
// when building with the cgozstd tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
