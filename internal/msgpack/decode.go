package msgpack

import (
	"math"
)

// Primitive decoders. Every typed reader consumes exactly one marker and its
// payload; a marker of any other kind fails with a TypeMismatchError
// carrying the marker actually observed. Width-strict readers accept only
// their own marker (ReadUint8 rejects a positive fixnum; use ReadFixPos or
// the widening ReadUint for that). The marker is consumed either way, so a
// mismatch leaves the stream positioned after it.

// ExtMeta describes an extension value header: the application-defined type
// id and the declared payload size in bytes. The payload itself is opaque
// to the codec.
type ExtMeta struct {
	Type int8
	Size int
}

// ReadMarker reads and decomposes the next lead byte. A clean end of the
// stream before the byte is io.EOF.
func (r *Reader) ReadMarker() (Marker, error) {
	b, err := r.readMarkerByte()
	if err != nil {
		return Marker{}, err
	}
	return FromByte(b), nil
}

// ReadNil expects the nil marker.
func (r *Reader) ReadNil() error {
	m, err := r.ReadMarker()
	if err != nil {
		return err
	}
	if m.Kind != KindNil {
		r.recordError(mismatch(m))
		return r.err
	}
	return nil
}

// ReadBool expects a boolean marker.
func (r *Reader) ReadBool() (bool, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return false, err
	}
	switch m.Kind {
	case KindTrue:
		return true, nil
	case KindFalse:
		return false, nil
	default:
		r.recordError(mismatch(m))
		return false, r.err
	}
}

// ReadFixPos expects an inline positive fixnum and returns its value 0-127.
func (r *Reader) ReadFixPos() (uint8, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindFixPos {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	return m.Fix, nil
}

// ReadFixNeg expects an inline negative fixnum and returns its value -32..-1.
func (r *Reader) ReadFixNeg() (int8, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindFixNeg {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	return int8(m.FixInt()), nil
}

// ReadUint8 expects an explicit Uint8 marker and its one payload byte.
func (r *Reader) ReadUint8() (uint8, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindUint8 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	return r.readByte()
}

// ReadUint16 expects an explicit Uint16 marker and its payload.
func (r *Reader) ReadUint16() (uint16, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindUint16 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	return r.readUint16()
}

// ReadUint32 expects an explicit Uint32 marker and its payload.
func (r *Reader) ReadUint32() (uint32, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindUint32 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	return r.readUint32()
}

// ReadUint64 expects an explicit Uint64 marker and its payload.
func (r *Reader) ReadUint64() (uint64, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindUint64 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	return r.readUint64()
}

// ReadInt8 expects an explicit Int8 marker and its payload.
func (r *Reader) ReadInt8() (int8, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindInt8 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	b, err := r.readByte()
	return int8(b), err
}

// ReadInt16 expects an explicit Int16 marker and its payload.
func (r *Reader) ReadInt16() (int16, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindInt16 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	v, err := r.readUint16()
	return int16(v), err
}

// ReadInt32 expects an explicit Int32 marker and its payload.
func (r *Reader) ReadInt32() (int32, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindInt32 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	v, err := r.readUint32()
	return int32(v), err
}

// ReadInt64 expects an explicit Int64 marker and its payload.
func (r *Reader) ReadInt64() (int64, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindInt64 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	v, err := r.readUint64()
	return int64(v), err
}

// ReadFloat32 expects a Float32 marker and its payload.
func (r *Reader) ReadFloat32() (float32, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindFloat32 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	bits, err := r.readUint32()
	return math.Float32frombits(bits), err
}

// ReadFloat64 expects a Float64 marker and its payload.
func (r *Reader) ReadFloat64() (float64, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	if m.Kind != KindFloat64 {
		r.recordError(mismatch(m))
		return 0, r.err
	}
	bits, err := r.readUint64()
	return math.Float64frombits(bits), err
}

// lenToInt narrows a wire length field into int, guarding platforms where
// int cannot hold the full u32 range.
func (r *Reader) lenToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		r.recordError(ErrLength)
		return 0, r.err
	}
	return int(v), nil
}

// stringHeaderFrom resolves the payload length of an already-read string
// family marker.
func (r *Reader) stringHeaderFrom(m Marker) (int, error) {
	switch m.Kind {
	case KindFixStr:
		return m.FixLen(), nil
	case KindStr8:
		v, err := r.readByte()
		return int(v), err
	case KindStr16:
		v, err := r.readUint16()
		return int(v), err
	case KindStr32:
		v, err := r.readUint32()
		if err != nil {
			return 0, err
		}
		return r.lenToInt(v)
	default:
		r.recordError(mismatch(m))
		return 0, r.err
	}
}

// ReadStringHeader reads a string marker of any width and returns the
// payload length. The caller then consumes exactly that many bytes.
func (r *Reader) ReadStringHeader() (int, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	return r.stringHeaderFrom(m)
}

// readStringBody consumes n payload bytes and validates them as UTF-8.
// Invalid payloads fail with an InvalidUTF8Error carrying the raw bytes and
// the offset of the first invalid byte; nothing is silently replaced.
func (r *Reader) readStringBody(n int) (string, error) {
	buf, err := r.readBlob(n)
	if err != nil {
		return "", err
	}
	if pos := invalidUTF8Offset(buf); pos >= 0 {
		r.recordError(&InvalidUTF8Error{Bytes: buf, Pos: pos})
		return "", r.err
	}
	return string(buf), nil
}

// ReadString reads a complete length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadStringHeader()
	if err != nil {
		return "", err
	}
	return r.readStringBody(n)
}

// binHeaderFrom resolves the payload length of an already-read binary
// family marker.
func (r *Reader) binHeaderFrom(m Marker) (int, error) {
	switch m.Kind {
	case KindBin8:
		v, err := r.readByte()
		return int(v), err
	case KindBin16:
		v, err := r.readUint16()
		return int(v), err
	case KindBin32:
		v, err := r.readUint32()
		if err != nil {
			return 0, err
		}
		return r.lenToInt(v)
	default:
		r.recordError(mismatch(m))
		return 0, r.err
	}
}

// ReadBinHeader reads a binary marker of any width and returns the payload
// length.
func (r *Reader) ReadBinHeader() (int, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	return r.binHeaderFrom(m)
}

// ReadBin reads a complete length-prefixed byte blob.
func (r *Reader) ReadBin() ([]byte, error) {
	n, err := r.ReadBinHeader()
	if err != nil {
		return nil, err
	}
	return r.readBlob(n)
}

// arrayHeaderFrom resolves the element count of an already-read array
// family marker.
func (r *Reader) arrayHeaderFrom(m Marker) (int, error) {
	switch m.Kind {
	case KindFixArray:
		return m.FixLen(), nil
	case KindArray16:
		v, err := r.readUint16()
		return int(v), err
	case KindArray32:
		v, err := r.readUint32()
		if err != nil {
			return 0, err
		}
		return r.lenToInt(v)
	default:
		r.recordError(mismatch(m))
		return 0, r.err
	}
}

// ReadArrayHeader reads an array marker of any width and returns the number
// of elements that follow.
func (r *Reader) ReadArrayHeader() (int, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	return r.arrayHeaderFrom(m)
}

// mapHeaderFrom resolves the pair count of an already-read map family
// marker.
func (r *Reader) mapHeaderFrom(m Marker) (int, error) {
	switch m.Kind {
	case KindFixMap:
		return m.FixLen(), nil
	case KindMap16:
		v, err := r.readUint16()
		return int(v), err
	case KindMap32:
		v, err := r.readUint32()
		if err != nil {
			return 0, err
		}
		return r.lenToInt(v)
	default:
		r.recordError(mismatch(m))
		return 0, r.err
	}
}

// ReadMapHeader reads a map marker of any width and returns the number of
// key-value pairs that follow. The count is pairs, not values: a map of n
// pairs is followed by 2n values on the wire.
func (r *Reader) ReadMapHeader() (int, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	return r.mapHeaderFrom(m)
}

// extHeaderFrom resolves the type id and payload size of an already-read
// extension family marker. Fixed-size ext markers carry the type byte
// immediately; the variable-width ones carry a length field first.
func (r *Reader) extHeaderFrom(m Marker) (ExtMeta, error) {
	var size int
	switch m.Kind {
	case KindFixExt1:
		size = 1
	case KindFixExt2:
		size = 2
	case KindFixExt4:
		size = 4
	case KindFixExt8:
		size = 8
	case KindFixExt16:
		size = 16
	case KindExt8:
		v, err := r.readByte()
		if err != nil {
			return ExtMeta{}, err
		}
		size = int(v)
	case KindExt16:
		v, err := r.readUint16()
		if err != nil {
			return ExtMeta{}, err
		}
		size = int(v)
	case KindExt32:
		v, err := r.readUint32()
		if err != nil {
			return ExtMeta{}, err
		}
		if size, err = r.lenToInt(v); err != nil {
			return ExtMeta{}, err
		}
	default:
		r.recordError(mismatch(m))
		return ExtMeta{}, r.err
	}
	typ, err := r.readByte()
	if err != nil {
		return ExtMeta{}, err
	}
	return ExtMeta{Type: int8(typ), Size: size}, nil
}

// ReadExtHeader reads an extension marker of any layout and returns its
// type id and declared payload size.
func (r *Reader) ReadExtHeader() (ExtMeta, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return ExtMeta{}, err
	}
	return r.extHeaderFrom(m)
}

// ReadExt reads a complete extension value: header, type id and payload.
func (r *Reader) ReadExt() (ExtMeta, []byte, error) {
	meta, err := r.ReadExtHeader()
	if err != nil {
		return ExtMeta{}, nil, err
	}
	payload, err := r.readBlob(meta.Size)
	if err != nil {
		return ExtMeta{}, nil, err
	}
	return meta, payload, nil
}
