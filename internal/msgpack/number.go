package msgpack

import "math"

// Widening numeric readers. Unlike the width-strict readers in decode.go,
// these accept every integer-family marker and convert the decoded value to
// the requested destination, failing with ErrOutOfRange when the sign or
// magnitude cannot fit. They are the loosely-typed path callers use when
// the peer may have chosen any of the valid encodings for a number.

// intFromMarker finishes a widening signed read whose marker has already
// been consumed.
func (r *Reader) intFromMarker(m Marker) (int64, error) {
	switch m.Kind {
	case KindFixPos, KindFixNeg:
		return m.FixInt(), nil
	case KindUint8:
		v, err := r.readByte()
		return int64(v), err
	case KindUint16:
		v, err := r.readUint16()
		return int64(v), err
	case KindUint32:
		v, err := r.readUint32()
		return int64(v), err
	case KindUint64:
		v, err := r.readUint64()
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			r.recordError(ErrOutOfRange)
			return 0, r.err
		}
		return int64(v), nil
	case KindInt8:
		v, err := r.readByte()
		return int64(int8(v)), err
	case KindInt16:
		v, err := r.readUint16()
		return int64(int16(v)), err
	case KindInt32:
		v, err := r.readUint32()
		return int64(int32(v)), err
	case KindInt64:
		v, err := r.readUint64()
		return int64(v), err
	default:
		r.recordError(mismatch(m))
		return 0, r.err
	}
}

// ReadInt reads any integer-family value and widens it to int64. Unsigned
// magnitudes above math.MaxInt64 fail with ErrOutOfRange.
func (r *Reader) ReadInt() (int64, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	return r.intFromMarker(m)
}

// uintFromMarker finishes a widening unsigned read whose marker has already
// been consumed.
func (r *Reader) uintFromMarker(m Marker) (uint64, error) {
	switch m.Kind {
	case KindFixNeg, KindInt8, KindInt16, KindInt32, KindInt64:
		v, err := r.intFromMarker(m)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			r.recordError(ErrOutOfRange)
			return 0, r.err
		}
		return uint64(v), nil
	case KindFixPos:
		return uint64(m.Fix), nil
	case KindUint8:
		v, err := r.readByte()
		return uint64(v), err
	case KindUint16:
		v, err := r.readUint16()
		return uint64(v), err
	case KindUint32:
		v, err := r.readUint32()
		return uint64(v), err
	case KindUint64:
		return r.readUint64()
	default:
		r.recordError(mismatch(m))
		return 0, r.err
	}
}

// ReadUint reads any integer-family value and widens it to uint64. Negative
// values fail with ErrOutOfRange.
func (r *Reader) ReadUint() (uint64, error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, err
	}
	return r.uintFromMarker(m)
}
