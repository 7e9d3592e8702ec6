package blockfile

// MagicNumber identifies a row block stream. Encoded little-endian it reads
// "RBLK" on disk.
const MagicNumber uint32 = 0x4B4C4252

// FormatVersion is the stream format version this package writes and the
// only version it accepts.
const FormatVersion uint8 = 1

const (
	// HeaderSize is the byte size of the fixed stream header.
	HeaderSize = 8

	// RecordHeaderSize is the byte size of the per-record frame header:
	// uint32 payload length plus uint64 checksum.
	RecordHeaderSize = 12
)
