package msgpack

// Lead byte values fixed by the MessagePack wire format. Bytes outside the
// listed singles belong to one of the inline ranges below.
const (
	ByteNil      byte = 0xc0
	ByteReserved byte = 0xc1 // never produced, always rejected
	ByteFalse    byte = 0xc2
	ByteTrue     byte = 0xc3
	ByteBin8     byte = 0xc4 // payload length u8
	ByteBin16    byte = 0xc5 // payload length u16 BE
	ByteBin32    byte = 0xc6 // payload length u32 BE
	ByteExt8     byte = 0xc7 // payload length u8, then type i8
	ByteExt16    byte = 0xc8 // payload length u16 BE, then type i8
	ByteExt32    byte = 0xc9 // payload length u32 BE, then type i8
	ByteFloat32  byte = 0xca
	ByteFloat64  byte = 0xcb
	ByteUint8    byte = 0xcc
	ByteUint16   byte = 0xcd
	ByteUint32   byte = 0xce
	ByteUint64   byte = 0xcf
	ByteInt8     byte = 0xd0
	ByteInt16    byte = 0xd1
	ByteInt32    byte = 0xd2
	ByteInt64    byte = 0xd3
	ByteFixExt1  byte = 0xd4 // type i8, 1 payload byte
	ByteFixExt2  byte = 0xd5
	ByteFixExt4  byte = 0xd6
	ByteFixExt8  byte = 0xd7
	ByteFixExt16 byte = 0xd8
	ByteStr8     byte = 0xd9
	ByteStr16    byte = 0xda
	ByteStr32    byte = 0xdb
	ByteArray16  byte = 0xdc
	ByteArray32  byte = 0xdd
	ByteMap16    byte = 0xde
	ByteMap32    byte = 0xdf
)

// Inline ranges: the low bits of the lead byte carry a small value or length.
const (
	FixPosMax byte = 0x7f // 0x00-0x7f, value 0-127 inline

	FixMapPrefix byte = 0x80 // 0x80-0x8f, pair count 0-15 inline
	FixMapMask   byte = 0x0f

	FixArrayPrefix byte = 0x90 // 0x90-0x9f, length 0-15 inline
	FixArrayMask   byte = 0x0f

	FixStrPrefix byte = 0xa0 // 0xa0-0xbf, length 0-31 inline
	FixStrMask   byte = 0x1f

	FixNegMin byte = 0xe0 // 0xe0-0xff, value -32..-1 inline (two's complement)
)

// Inline capacity bounds derived from the marker ranges.
const (
	MaxFixPos   = 127
	MinFixNeg   = -32
	MaxFixStr   = 31
	MaxFixArray = 15
	MaxFixMap   = 15
)

// TimestampExtType is the predefined extension type id for timestamps.
const TimestampExtType int8 = -1

// Worst-case encoded sizes per kind, marker included. Fixed-layout message
// sizes can be bounded by summing these; EncodedSize gives the exact
// figure. Variable-length kinds list their largest header; the payload
// length is added on top.
const (
	NilSize     = 1
	BoolSize    = 1
	IntSize     = 9 // Int64 marker + payload
	UintSize    = 9 // Uint64 marker + payload
	Float32Size = 5
	Float64Size = 9

	StrHeaderSize   = 5 // Str32 marker + u32 length
	BinHeaderSize   = 5
	ArrayHeaderSize = 5
	MapHeaderSize   = 5
	ExtHeaderSize   = 6 // Ext32 marker + u32 length + type byte

	TimestampSize = 15 // Ext8 layout: header + type + 12 payload bytes
)

// PreallocMax caps speculative allocation driven by a length declared in
// the input. Longer payloads still decode, growing as bytes actually
// arrive, so a truncated message cannot force a large allocation.
const PreallocMax = 64 * 1024
