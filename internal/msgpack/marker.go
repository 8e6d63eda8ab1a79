package msgpack

import "fmt"

// Kind identifies the wire family a lead byte belongs to.
type Kind uint8

const (
	KindNil Kind = iota
	KindFalse
	KindTrue
	KindFixPos
	KindFixNeg
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindFixStr
	KindStr8
	KindStr16
	KindStr32
	KindBin8
	KindBin16
	KindBin32
	KindFixArray
	KindArray16
	KindArray32
	KindFixMap
	KindMap16
	KindMap32
	KindFixExt1
	KindFixExt2
	KindFixExt4
	KindFixExt8
	KindFixExt16
	KindExt8
	KindExt16
	KindExt32
	KindReserved
)

// Marker is the decomposed form of a MessagePack lead byte. Fix carries the
// payload the format embeds in the byte itself: the value for FixPos, the
// two's-complement value for FixNeg, and the length for FixStr, FixArray
// and FixMap. It is zero for every other kind.
type Marker struct {
	Kind Kind
	Fix  byte
}

// FromByte decomposes a lead byte. It is total: every byte value maps to
// exactly one marker, with 0xc1 mapping to KindReserved.
func FromByte(b byte) Marker {
	switch {
	case b <= FixPosMax:
		return Marker{Kind: KindFixPos, Fix: b}
	case b >= FixNegMin:
		return Marker{Kind: KindFixNeg, Fix: b}
	case b&^FixMapMask == FixMapPrefix:
		return Marker{Kind: KindFixMap, Fix: b & FixMapMask}
	case b&^FixArrayMask == FixArrayPrefix:
		return Marker{Kind: KindFixArray, Fix: b & FixArrayMask}
	case b&^FixStrMask == FixStrPrefix:
		return Marker{Kind: KindFixStr, Fix: b & FixStrMask}
	}
	switch b {
	case ByteNil:
		return Marker{Kind: KindNil}
	case ByteReserved:
		return Marker{Kind: KindReserved}
	case ByteFalse:
		return Marker{Kind: KindFalse}
	case ByteTrue:
		return Marker{Kind: KindTrue}
	case ByteBin8:
		return Marker{Kind: KindBin8}
	case ByteBin16:
		return Marker{Kind: KindBin16}
	case ByteBin32:
		return Marker{Kind: KindBin32}
	case ByteExt8:
		return Marker{Kind: KindExt8}
	case ByteExt16:
		return Marker{Kind: KindExt16}
	case ByteExt32:
		return Marker{Kind: KindExt32}
	case ByteFloat32:
		return Marker{Kind: KindFloat32}
	case ByteFloat64:
		return Marker{Kind: KindFloat64}
	case ByteUint8:
		return Marker{Kind: KindUint8}
	case ByteUint16:
		return Marker{Kind: KindUint16}
	case ByteUint32:
		return Marker{Kind: KindUint32}
	case ByteUint64:
		return Marker{Kind: KindUint64}
	case ByteInt8:
		return Marker{Kind: KindInt8}
	case ByteInt16:
		return Marker{Kind: KindInt16}
	case ByteInt32:
		return Marker{Kind: KindInt32}
	case ByteInt64:
		return Marker{Kind: KindInt64}
	case ByteFixExt1:
		return Marker{Kind: KindFixExt1}
	case ByteFixExt2:
		return Marker{Kind: KindFixExt2}
	case ByteFixExt4:
		return Marker{Kind: KindFixExt4}
	case ByteFixExt8:
		return Marker{Kind: KindFixExt8}
	case ByteFixExt16:
		return Marker{Kind: KindFixExt16}
	case ByteStr8:
		return Marker{Kind: KindStr8}
	case ByteStr16:
		return Marker{Kind: KindStr16}
	case ByteStr32:
		return Marker{Kind: KindStr32}
	case ByteArray16:
		return Marker{Kind: KindArray16}
	case ByteArray32:
		return Marker{Kind: KindArray32}
	case ByteMap16:
		return Marker{Kind: KindMap16}
	}
	// 0xdf is the only byte the switches above do not cover.
	return Marker{Kind: KindMap32}
}

// Byte recomposes the lead byte. For every marker produced by FromByte,
// FromByte(m.Byte()) == m. Out-of-range Fix values are masked into the
// legal range of their kind.
func (m Marker) Byte() byte {
	switch m.Kind {
	case KindFixPos:
		return m.Fix & FixPosMax
	case KindFixNeg:
		return m.Fix | FixNegMin
	case KindFixMap:
		return FixMapPrefix | (m.Fix & FixMapMask)
	case KindFixArray:
		return FixArrayPrefix | (m.Fix & FixArrayMask)
	case KindFixStr:
		return FixStrPrefix | (m.Fix & FixStrMask)
	case KindNil:
		return ByteNil
	case KindReserved:
		return ByteReserved
	case KindFalse:
		return ByteFalse
	case KindTrue:
		return ByteTrue
	case KindBin8:
		return ByteBin8
	case KindBin16:
		return ByteBin16
	case KindBin32:
		return ByteBin32
	case KindExt8:
		return ByteExt8
	case KindExt16:
		return ByteExt16
	case KindExt32:
		return ByteExt32
	case KindFloat32:
		return ByteFloat32
	case KindFloat64:
		return ByteFloat64
	case KindUint8:
		return ByteUint8
	case KindUint16:
		return ByteUint16
	case KindUint32:
		return ByteUint32
	case KindUint64:
		return ByteUint64
	case KindInt8:
		return ByteInt8
	case KindInt16:
		return ByteInt16
	case KindInt32:
		return ByteInt32
	case KindInt64:
		return ByteInt64
	case KindFixExt1:
		return ByteFixExt1
	case KindFixExt2:
		return ByteFixExt2
	case KindFixExt4:
		return ByteFixExt4
	case KindFixExt8:
		return ByteFixExt8
	case KindFixExt16:
		return ByteFixExt16
	case KindStr8:
		return ByteStr8
	case KindStr16:
		return ByteStr16
	case KindStr32:
		return ByteStr32
	case KindArray16:
		return ByteArray16
	case KindArray32:
		return ByteArray32
	case KindMap16:
		return ByteMap16
	default:
		return ByteMap32
	}
}

// FixLen returns the inline length of a FixStr, FixArray or FixMap marker.
func (m Marker) FixLen() int {
	return int(m.Fix)
}

// FixInt returns the inline integer value of a FixPos or FixNeg marker.
func (m Marker) FixInt() int64 {
	if m.Kind == KindFixNeg {
		return int64(int8(m.Fix | FixNegMin))
	}
	return int64(m.Fix)
}

// String returns a human-readable name for diagnostics and error messages.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindFalse:
		return "False"
	case KindTrue:
		return "True"
	case KindFixPos:
		return "FixPos"
	case KindFixNeg:
		return "FixNeg"
	case KindUint8:
		return "Uint8"
	case KindUint16:
		return "Uint16"
	case KindUint32:
		return "Uint32"
	case KindUint64:
		return "Uint64"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindFixStr:
		return "FixStr"
	case KindStr8:
		return "Str8"
	case KindStr16:
		return "Str16"
	case KindStr32:
		return "Str32"
	case KindBin8:
		return "Bin8"
	case KindBin16:
		return "Bin16"
	case KindBin32:
		return "Bin32"
	case KindFixArray:
		return "FixArray"
	case KindArray16:
		return "Array16"
	case KindArray32:
		return "Array32"
	case KindFixMap:
		return "FixMap"
	case KindMap16:
		return "Map16"
	case KindMap32:
		return "Map32"
	case KindFixExt1:
		return "FixExt1"
	case KindFixExt2:
		return "FixExt2"
	case KindFixExt4:
		return "FixExt4"
	case KindFixExt8:
		return "FixExt8"
	case KindFixExt16:
		return "FixExt16"
	case KindExt8:
		return "Ext8"
	case KindExt16:
		return "Ext16"
	case KindExt32:
		return "Ext32"
	case KindReserved:
		return "Reserved"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// String formats the marker with its inline payload where one exists.
func (m Marker) String() string {
	switch m.Kind {
	case KindFixPos, KindFixNeg:
		return fmt.Sprintf("%s(%d)", m.Kind, m.FixInt())
	case KindFixStr, KindFixArray, KindFixMap:
		return fmt.Sprintf("%s(%d)", m.Kind, m.FixLen())
	default:
		return m.Kind.String()
	}
}
