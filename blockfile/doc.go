// Package blockfile frames a sequence of row block records on a byte
// stream, with per-record xxHash64 checksums and optional compression.
//
// # Stream layout
//
// The stream starts with a fixed 8-byte header:
//
//	bytes 0-3: magic number "RBLK" (little-endian uint32)
//	byte  4:   format version
//	byte  5:   compression type (format.CompressionType)
//	bytes 6-7: reserved, zero
//
// Each record that follows is framed as:
//
//	bytes 0-3:  uint32 payload length
//	bytes 4-11: uint64 xxHash64 checksum of the payload
//	bytes 12-:  payload (the block codec record, compressed per the header)
//
// The framing is deliberately stream-oriented: Writer takes an io.Writer and
// Reader takes an io.Reader, so the layer composes with files, pipes and
// network connections without managing any of them.
//
// # Usage
//
//	w, _ := blockfile.NewWriter[uint32, float32](f, blockfile.WithCompression(format.CompressionS2))
//	_ = w.Append(container)
//
//	r, _ := blockfile.NewReader[uint32, float32](f)
//	for {
//	    ok, err := r.Next(container)
//	    if err != nil || !ok {
//	        break
//	    }
//	    consume(container)
//	}
package blockfile
