package msgpack

import (
	"math"
	"unicode/utf8"
)

// Primitive encoders. Every encoder selects the smallest marker able to
// represent the value exactly; the width-selecting methods return the
// marker actually used so callers can account for sizes. Returned markers
// are meaningful only while Error() is nil.

// WriteNil writes the nil marker.
func (w *Writer) WriteNil() {
	w.writeByte(ByteNil)
}

// WriteBool writes a boolean value.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.writeByte(ByteTrue)
	} else {
		w.writeByte(ByteFalse)
	}
}

// WriteFixPos writes an integer in [0, 127] as a single inline byte.
func (w *Writer) WriteFixPos(v uint8) {
	if v > MaxFixPos {
		w.recordError(ErrOutOfRange)
		return
	}
	w.writeByte(v)
}

// WriteUint8 writes v with an explicit Uint8 marker, regardless of
// magnitude. Use WriteUint for minimal-width encoding.
func (w *Writer) WriteUint8(v uint8) {
	w.writeByte(ByteUint8)
	w.writeByte(v)
}

// WriteUint16 writes v with an explicit Uint16 marker.
func (w *Writer) WriteUint16(v uint16) {
	w.writeByte(ByteUint16)
	w.writeUint16(v)
}

// WriteUint32 writes v with an explicit Uint32 marker.
func (w *Writer) WriteUint32(v uint32) {
	w.writeByte(ByteUint32)
	w.writeUint32(v)
}

// WriteUint64 writes v with an explicit Uint64 marker.
func (w *Writer) WriteUint64(v uint64) {
	w.writeByte(ByteUint64)
	w.writeUint64(v)
}

// WriteInt8 writes v with an explicit Int8 marker.
func (w *Writer) WriteInt8(v int8) {
	w.writeByte(ByteInt8)
	w.writeByte(byte(v))
}

// WriteInt16 writes v with an explicit Int16 marker.
func (w *Writer) WriteInt16(v int16) {
	w.writeByte(ByteInt16)
	w.writeUint16(uint16(v))
}

// WriteInt32 writes v with an explicit Int32 marker.
func (w *Writer) WriteInt32(v int32) {
	w.writeByte(ByteInt32)
	w.writeUint32(uint32(v))
}

// WriteInt64 writes v with an explicit Int64 marker.
func (w *Writer) WriteInt64(v int64) {
	w.writeByte(ByteInt64)
	w.writeUint64(uint64(v))
}

// WriteUint writes an unsigned integer using the first width that fits:
// inline positive fixnum, then Uint8, Uint16, Uint32, Uint64.
func (w *Writer) WriteUint(v uint64) Marker {
	switch {
	case v <= MaxFixPos:
		w.writeByte(byte(v))
		return Marker{Kind: KindFixPos, Fix: byte(v)}
	case v <= math.MaxUint8:
		w.WriteUint8(uint8(v))
		return Marker{Kind: KindUint8}
	case v <= math.MaxUint16:
		w.WriteUint16(uint16(v))
		return Marker{Kind: KindUint16}
	case v <= math.MaxUint32:
		w.WriteUint32(uint32(v))
		return Marker{Kind: KindUint32}
	default:
		w.WriteUint64(v)
		return Marker{Kind: KindUint64}
	}
}

// WriteInt writes a signed integer. Non-negative values always take the
// unsigned minimal-width path, so the same logical value encodes to the
// same bytes whether it arrives signed or unsigned. Negative values use
// the signed minimal width for their magnitude.
func (w *Writer) WriteInt(v int64) Marker {
	if v >= 0 {
		return w.WriteUint(uint64(v))
	}
	switch {
	case v >= MinFixNeg:
		w.writeByte(byte(v))
		return Marker{Kind: KindFixNeg, Fix: byte(v)}
	case v >= math.MinInt8:
		w.WriteInt8(int8(v))
		return Marker{Kind: KindInt8}
	case v >= math.MinInt16:
		w.WriteInt16(int16(v))
		return Marker{Kind: KindInt16}
	case v >= math.MinInt32:
		w.WriteInt32(int32(v))
		return Marker{Kind: KindInt32}
	default:
		w.WriteInt64(v)
		return Marker{Kind: KindInt64}
	}
}

// WriteFloat32 writes an IEEE 754 single-precision float. Floats keep the
// precision of their input type; there is no narrowing.
func (w *Writer) WriteFloat32(v float32) {
	w.writeByte(ByteFloat32)
	w.writeUint32(math.Float32bits(v))
}

// WriteFloat64 writes an IEEE 754 double-precision float.
func (w *Writer) WriteFloat64(v float64) {
	w.writeByte(ByteFloat64)
	w.writeUint64(math.Float64bits(v))
}

// WriteStringHeader writes a string marker for a payload of n bytes. The
// caller is then responsible for writing exactly n raw bytes.
func (w *Writer) WriteStringHeader(n int) Marker {
	switch {
	case n < 0 || int64(n) > math.MaxUint32:
		w.recordError(ErrLength)
		return Marker{}
	case n <= MaxFixStr:
		w.writeByte(FixStrPrefix | byte(n))
		return Marker{Kind: KindFixStr, Fix: byte(n)}
	case n <= math.MaxUint8:
		w.writeByte(ByteStr8)
		w.writeByte(byte(n))
		return Marker{Kind: KindStr8}
	case n <= math.MaxUint16:
		w.writeByte(ByteStr16)
		w.writeUint16(uint16(n))
		return Marker{Kind: KindStr16}
	default:
		w.writeByte(ByteStr32)
		w.writeUint32(uint32(n))
		return Marker{Kind: KindStr32}
	}
}

// WriteString writes a length-prefixed UTF-8 string. Invalid UTF-8 is
// rejected; raw byte payloads belong in WriteBin.
func (w *Writer) WriteString(s string) Marker {
	if !utf8.ValidString(s) {
		w.recordError(&InvalidUTF8Error{Bytes: []byte(s), Pos: invalidUTF8Offset([]byte(s))})
		return Marker{}
	}
	m := w.WriteStringHeader(len(s))
	w.writeAll([]byte(s))
	return m
}

// WriteBinHeader writes a binary marker for a payload of n bytes.
func (w *Writer) WriteBinHeader(n int) Marker {
	switch {
	case n < 0 || int64(n) > math.MaxUint32:
		w.recordError(ErrLength)
		return Marker{}
	case n <= math.MaxUint8:
		w.writeByte(ByteBin8)
		w.writeByte(byte(n))
		return Marker{Kind: KindBin8}
	case n <= math.MaxUint16:
		w.writeByte(ByteBin16)
		w.writeUint16(uint16(n))
		return Marker{Kind: KindBin16}
	default:
		w.writeByte(ByteBin32)
		w.writeUint32(uint32(n))
		return Marker{Kind: KindBin32}
	}
}

// WriteBin writes a length-prefixed byte blob.
func (w *Writer) WriteBin(p []byte) Marker {
	m := w.WriteBinHeader(len(p))
	w.writeAll(p)
	return m
}

// WriteArrayHeader writes an array marker for n elements. The caller is
// then responsible for writing each element.
func (w *Writer) WriteArrayHeader(n int) Marker {
	switch {
	case n < 0 || int64(n) > math.MaxUint32:
		w.recordError(ErrLength)
		return Marker{}
	case n <= MaxFixArray:
		w.writeByte(FixArrayPrefix | byte(n))
		return Marker{Kind: KindFixArray, Fix: byte(n)}
	case n <= math.MaxUint16:
		w.writeByte(ByteArray16)
		w.writeUint16(uint16(n))
		return Marker{Kind: KindArray16}
	default:
		w.writeByte(ByteArray32)
		w.writeUint32(uint32(n))
		return Marker{Kind: KindArray32}
	}
}

// WriteMapHeader writes a map marker for n key-value pairs. The caller is
// then responsible for writing 2*n values, keys and values interleaved.
func (w *Writer) WriteMapHeader(n int) Marker {
	switch {
	case n < 0 || int64(n) > math.MaxUint32:
		w.recordError(ErrLength)
		return Marker{}
	case n <= MaxFixMap:
		w.writeByte(FixMapPrefix | byte(n))
		return Marker{Kind: KindFixMap, Fix: byte(n)}
	case n <= math.MaxUint16:
		w.writeByte(ByteMap16)
		w.writeUint16(uint16(n))
		return Marker{Kind: KindMap16}
	default:
		w.writeByte(ByteMap32)
		w.writeUint32(uint32(n))
		return Marker{Kind: KindMap32}
	}
}

// WriteExtHeader writes an extension marker for a payload of n bytes with
// the given application type id. Payload sizes 1, 2, 4, 8 and 16 take the
// fixed-size shortcut markers. The caller writes the n payload bytes next.
func (w *Writer) WriteExtHeader(typ int8, n int) Marker {
	var m Marker
	switch {
	case n == 1:
		w.writeByte(ByteFixExt1)
		m = Marker{Kind: KindFixExt1}
	case n == 2:
		w.writeByte(ByteFixExt2)
		m = Marker{Kind: KindFixExt2}
	case n == 4:
		w.writeByte(ByteFixExt4)
		m = Marker{Kind: KindFixExt4}
	case n == 8:
		w.writeByte(ByteFixExt8)
		m = Marker{Kind: KindFixExt8}
	case n == 16:
		w.writeByte(ByteFixExt16)
		m = Marker{Kind: KindFixExt16}
	case n >= 0 && n <= math.MaxUint8:
		w.writeByte(ByteExt8)
		w.writeByte(byte(n))
		m = Marker{Kind: KindExt8}
	case n > 0 && n <= math.MaxUint16:
		w.writeByte(ByteExt16)
		w.writeUint16(uint16(n))
		m = Marker{Kind: KindExt16}
	case n > 0 && int64(n) <= math.MaxUint32:
		w.writeByte(ByteExt32)
		w.writeUint32(uint32(n))
		m = Marker{Kind: KindExt32}
	default:
		w.recordError(ErrLength)
		return Marker{}
	}
	w.writeByte(byte(typ))
	return m
}

// WriteExt writes a complete extension value: header, type id and payload.
func (w *Writer) WriteExt(typ int8, p []byte) Marker {
	m := w.WriteExtHeader(typ, len(p))
	w.writeAll(p)
	return m
}
