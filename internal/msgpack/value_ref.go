package msgpack

import (
	"encoding/binary"
	"io"
	"math"
)

// ValueRef is one node of a borrowed value tree. Strings, binaries and
// extension payloads are sub-slices of the decoded buffer rather than
// copies, so building the tree allocates only its structure. The borrowed
// spans alias the input: they are valid exactly as long as the caller keeps
// the source buffer alive and unmodified. Owned converts a borrowed tree
// into an independent one when it must outlive the buffer.
//
// Scalar nodes carry no buffer references, so Nil, Bool, Int, Uint, Float32
// and Float64 are shared with the owned tree and satisfy both interfaces.
type ValueRef interface {
	Encodable
	isValueRef()
	// Owned returns a deep copy that no longer references the source
	// buffer.
	Owned() Value
}

// StringRef is a UTF-8 string borrowed from the source buffer. Decoding
// validated the bytes; treat the span as immutable.
type StringRef []byte

// BinaryRef is a byte blob borrowed from the source buffer.
type BinaryRef []byte

// ArrayRef is an ordered sequence of borrowed values.
type ArrayRef []ValueRef

// PairRef is one borrowed map entry.
type PairRef struct {
	Key ValueRef
	Val ValueRef
}

// MapRef is a borrowed key-value sequence in wire order, duplicates
// preserved.
type MapRef []PairRef

// ExtRef is an extension value whose payload is borrowed from the source
// buffer.
type ExtRef struct {
	Type int8
	Data []byte
}

func (Nil) isValueRef()       {}
func (Bool) isValueRef()      {}
func (Int) isValueRef()       {}
func (Uint) isValueRef()      {}
func (Float32) isValueRef()   {}
func (Float64) isValueRef()   {}
func (StringRef) isValueRef() {}
func (BinaryRef) isValueRef() {}
func (ArrayRef) isValueRef()  {}
func (MapRef) isValueRef()    {}
func (ExtRef) isValueRef()    {}

func (v Nil) Owned() Value     { return v }
func (v Bool) Owned() Value    { return v }
func (v Int) Owned() Value     { return v }
func (v Uint) Owned() Value    { return v }
func (v Float32) Owned() Value { return v }
func (v Float64) Owned() Value { return v }

func (v StringRef) Owned() Value {
	return String(v)
}

func (v BinaryRef) Owned() Value {
	return Binary(append([]byte{}, v...))
}

func (v ArrayRef) Owned() Value {
	vs := make([]Value, len(v))
	for i, el := range v {
		vs[i] = ownedNode(el)
	}
	return Array(vs)
}

func (v MapRef) Owned() Value {
	ps := make([]Pair, len(v))
	for i, p := range v {
		ps[i] = Pair{Key: ownedNode(p.Key), Val: ownedNode(p.Val)}
	}
	return Map(ps)
}

func (v ExtRef) Owned() Value {
	return Ext{Type: v.Type, Data: append([]byte{}, v.Data...)}
}

func ownedNode(v ValueRef) Value {
	if v == nil {
		return Nil{}
	}
	return v.Owned()
}

func (v StringRef) EncodeMsgpack(w *Writer) error {
	if pos := invalidUTF8Offset(v); pos >= 0 {
		w.recordError(&InvalidUTF8Error{Bytes: v, Pos: pos})
		return w.Error()
	}
	w.WriteStringHeader(len(v))
	w.writeAll(v)
	return w.Error()
}

func (v BinaryRef) EncodeMsgpack(w *Writer) error {
	w.WriteBin(v)
	return w.Error()
}

func (v ArrayRef) EncodeMsgpack(w *Writer) error {
	w.WriteArrayHeader(len(v))
	for _, el := range v {
		if err := WriteValueRef(w, el); err != nil {
			return err
		}
	}
	return w.Error()
}

func (v MapRef) EncodeMsgpack(w *Writer) error {
	w.WriteMapHeader(len(v))
	for _, p := range v {
		if err := WriteValueRef(w, p.Key); err != nil {
			return err
		}
		if err := WriteValueRef(w, p.Val); err != nil {
			return err
		}
	}
	return w.Error()
}

func (v ExtRef) EncodeMsgpack(w *Writer) error {
	w.WriteExt(v.Type, v.Data)
	return w.Error()
}

// WriteValueRef encodes one borrowed tree. A nil interface encodes as nil.
func WriteValueRef(w *Writer, v ValueRef) error {
	if v == nil {
		w.WriteNil()
		return w.Error()
	}
	return v.EncodeMsgpack(w)
}

// ReadValueRef decodes one value from b into a borrowed tree under
// DefaultLimits. Decoding from a slice-backed source is what makes the
// zero-copy guarantee possible; fragmented input must be made contiguous
// (or decoded with ReadValue) first.
func ReadValueRef(b *Bytes) (ValueRef, error) {
	return ReadValueRefLimits(b, DefaultLimits())
}

// ReadValueRefLimits decodes one value from b into a borrowed tree. Limits
// are enforced the same way as in ReadValueLimits. A clean end of input
// before the first marker is io.EOF; running out of bytes anywhere else
// matches errors.Is(err, io.ErrUnexpectedEOF).
func ReadValueRefLimits(b *Bytes, limits Limits) (ValueRef, error) {
	d := refDecoder{b: b, limits: limits, start: b.Pos()}
	return d.value(0)
}

type refDecoder struct {
	b      *Bytes
	limits Limits
	start  int
}

func (d *refDecoder) budget(n int) error {
	if d.limits.MaxBytes <= 0 {
		return nil
	}
	used := d.b.Pos() - d.start
	if used > d.limits.MaxBytes || n > d.limits.MaxBytes-used {
		return ErrTooLarge
	}
	return nil
}

// marker consumes the next lead byte. Exhaustion on the very first byte of
// the value is a clean io.EOF; later it is truncation.
func (d *refDecoder) marker() (Marker, error) {
	c, err := d.b.ReadByte()
	if err != nil {
		if d.b.Pos() == d.start {
			return Marker{}, io.EOF
		}
		return Marker{}, &InsufficientDataError{Expected: 1, Actual: 0, Pos: d.b.Pos()}
	}
	return FromByte(c), nil
}

func (d *refDecoder) uint16() (uint16, error) {
	p, err := d.b.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

func (d *refDecoder) uint32() (uint32, error) {
	p, err := d.b.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

func (d *refDecoder) uint64() (uint64, error) {
	p, err := d.b.Next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

func (d *refDecoder) byte() (byte, error) {
	p, err := d.b.Next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// length resolves a one, two or four byte length field.
func (d *refDecoder) length(size int) (int, error) {
	switch size {
	case 1:
		v, err := d.byte()
		return int(v), err
	case 2:
		v, err := d.uint16()
		return int(v), err
	default:
		v, err := d.uint32()
		if err != nil {
			return 0, err
		}
		if uint64(v) > uint64(math.MaxInt) {
			return 0, ErrLength
		}
		return int(v), nil
	}
}

func (d *refDecoder) value(depth int) (ValueRef, error) {
	if err := d.budget(1); err != nil {
		return nil, err
	}
	m, err := d.marker()
	if err != nil {
		return nil, err
	}
	switch m.Kind {
	case KindNil:
		return Nil{}, nil
	case KindTrue:
		return Bool(true), nil
	case KindFalse:
		return Bool(false), nil
	case KindFixPos:
		return Uint(m.Fix), nil
	case KindFixNeg:
		return Int(m.FixInt()), nil
	case KindUint8:
		v, err := d.byte()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindUint16:
		v, err := d.uint16()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindUint32:
		v, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindUint64:
		v, err := d.uint64()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindInt8:
		v, err := d.byte()
		if err != nil {
			return nil, err
		}
		return Int(int8(v)), nil
	case KindInt16:
		v, err := d.uint16()
		if err != nil {
			return nil, err
		}
		return Int(int16(v)), nil
	case KindInt32:
		v, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return Int(int32(v)), nil
	case KindInt64:
		v, err := d.uint64()
		if err != nil {
			return nil, err
		}
		return Int(int64(v)), nil
	case KindFloat32:
		bits, err := d.uint32()
		if err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(bits)), nil
	case KindFloat64:
		bits, err := d.uint64()
		if err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(bits)), nil
	case KindFixStr:
		return d.str(m.FixLen())
	case KindStr8:
		return d.strHeader(1)
	case KindStr16:
		return d.strHeader(2)
	case KindStr32:
		return d.strHeader(4)
	case KindBin8:
		return d.bin(1)
	case KindBin16:
		return d.bin(2)
	case KindBin32:
		return d.bin(4)
	case KindFixArray:
		return d.array(m.FixLen(), depth+1)
	case KindArray16:
		n, err := d.length(2)
		if err != nil {
			return nil, err
		}
		return d.array(n, depth+1)
	case KindArray32:
		n, err := d.length(4)
		if err != nil {
			return nil, err
		}
		return d.array(n, depth+1)
	case KindFixMap:
		return d.mapping(m.FixLen(), depth+1)
	case KindMap16:
		n, err := d.length(2)
		if err != nil {
			return nil, err
		}
		return d.mapping(n, depth+1)
	case KindMap32:
		n, err := d.length(4)
		if err != nil {
			return nil, err
		}
		return d.mapping(n, depth+1)
	case KindFixExt1:
		return d.ext(1)
	case KindFixExt2:
		return d.ext(2)
	case KindFixExt4:
		return d.ext(4)
	case KindFixExt8:
		return d.ext(8)
	case KindFixExt16:
		return d.ext(16)
	case KindExt8:
		n, err := d.length(1)
		if err != nil {
			return nil, err
		}
		return d.ext(n)
	case KindExt16:
		n, err := d.length(2)
		if err != nil {
			return nil, err
		}
		return d.ext(n)
	case KindExt32:
		n, err := d.length(4)
		if err != nil {
			return nil, err
		}
		return d.ext(n)
	default:
		return nil, ErrReserved
	}
}

func (d *refDecoder) strHeader(lenSize int) (ValueRef, error) {
	n, err := d.length(lenSize)
	if err != nil {
		return nil, err
	}
	return d.str(n)
}

func (d *refDecoder) str(n int) (ValueRef, error) {
	if err := d.budget(n); err != nil {
		return nil, err
	}
	p, err := d.b.Next(n)
	if err != nil {
		return nil, err
	}
	if pos := invalidUTF8Offset(p); pos >= 0 {
		return nil, &InvalidUTF8Error{Bytes: p, Pos: pos}
	}
	return StringRef(p), nil
}

func (d *refDecoder) bin(lenSize int) (ValueRef, error) {
	n, err := d.length(lenSize)
	if err != nil {
		return nil, err
	}
	if err := d.budget(n); err != nil {
		return nil, err
	}
	p, err := d.b.Next(n)
	if err != nil {
		return nil, err
	}
	return BinaryRef(p), nil
}

func (d *refDecoder) ext(n int) (ValueRef, error) {
	if err := d.budget(n + 1); err != nil {
		return nil, err
	}
	typ, err := d.byte()
	if err != nil {
		return nil, err
	}
	p, err := d.b.Next(n)
	if err != nil {
		return nil, err
	}
	return ExtRef{Type: int8(typ), Data: p}, nil
}

func (d *refDecoder) open(depth, elems int) error {
	if d.limits.MaxDepth > 0 && depth > d.limits.MaxDepth {
		return ErrTooDeep
	}
	return d.budget(elems)
}

func (d *refDecoder) array(n, depth int) (ValueRef, error) {
	if err := d.open(depth, n); err != nil {
		return nil, err
	}
	vs := make([]ValueRef, 0, capHint(n, valueNodeSize))
	for i := 0; i < n; i++ {
		el, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		vs = append(vs, el)
	}
	return ArrayRef(vs), nil
}

func (d *refDecoder) mapping(n, depth int) (ValueRef, error) {
	if err := d.open(depth, 2*n); err != nil {
		return nil, err
	}
	ps := make([]PairRef, 0, capHint(n, 2*valueNodeSize))
	for i := 0; i < n; i++ {
		k, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		v, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		ps = append(ps, PairRef{Key: k, Val: v})
	}
	return MapRef(ps), nil
}
