package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.NotNil(t, engine)
	require.Equal(t, binary.LittleEndian, engine)

	buf := engine.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	require.Equal(t, uint32(0x01020304), engine.Uint32(buf))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.NotNil(t, engine)
	require.Equal(t, binary.BigEndian, engine)

	buf := engine.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
	require.Equal(t, uint32(0x01020304), engine.Uint32(buf))
}

func TestCheckEndianness(t *testing.T) {
	order := CheckEndianness()

	require.NotNil(t, order)
	// Exactly one of the two predicates must hold, and it must agree with
	// the reported byte order.
	require.NotEqual(t, IsNativeLittleEndian(), IsNativeBigEndian())
	if IsNativeLittleEndian() {
		require.Equal(t, binary.LittleEndian, order)
	} else {
		require.Equal(t, binary.BigEndian, order)
	}
}

func TestEngineRoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := engine.AppendUint64(nil, 0xDEADBEEFCAFEBABE)
		require.Len(t, buf, 8)
		require.Equal(t, uint64(0xDEADBEEFCAFEBABE), engine.Uint64(buf))

		buf = engine.AppendUint16(buf[:0], 0xBEEF)
		require.Equal(t, uint16(0xBEEF), engine.Uint16(buf))
	}
}
