// Package compress provides the compression codecs used by the rowblock
// record stream layer.
//
// Serialized row block records are flat numeric arrays (offsets, indices,
// values) that compress well with fast block compressors. The package offers
// four codecs selectable per stream:
//
//   - None: no compression, lowest CPU cost
//   - S2: Snappy-compatible, very fast with moderate ratio
//   - LZ4: fast with moderate ratio, widely interoperable
//   - Zstd: best ratio, higher CPU cost
//
// The Zstd codec uses the pure Go implementation by default; building with
// the cgozstd tag switches to the cgo-backed gozstd library for better
// throughput where cgo is acceptable.
package compress
