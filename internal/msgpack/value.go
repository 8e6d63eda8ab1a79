package msgpack

import (
	"io"
	"math"
)

// Value is one node of an owned MessagePack value tree: a schemaless
// representation for inspecting or constructing messages whose shape is
// not known at compile time. The set of implementations is closed; every
// node owns its memory and stays valid after the source buffer is reused.
//
// Integer nodes keep the wire's signedness family: unsigned markers decode
// as Uint, signed markers as Int. Because the encoder writes non-negative
// integers on the unsigned path, re-encoding a tree is byte-identical only
// for trees in that canonical form.
type Value interface {
	Encodable
	isValue()
}

// Nil is the explicit nil value.
type Nil struct{}

// Bool is a boolean value.
type Bool bool

// Int is a signed integer value. Decoding produces Int only for the signed
// marker families; non-negative integers arrive as Uint.
type Int int64

// Uint is an unsigned integer value.
type Uint uint64

// Float32 is a single-precision float value.
type Float32 float32

// Float64 is a double-precision float value.
type Float64 float64

// String is a UTF-8 string value.
type String string

// Binary is a raw byte blob value.
type Binary []byte

// Array is an ordered sequence of values.
type Array []Value

// Pair is one map entry. Keys may be of any value type.
type Pair struct {
	Key Value
	Val Value
}

// Map is a key-value sequence in wire order. Duplicate keys are preserved,
// not collapsed; resolving them is the application's policy.
type Map []Pair

// Ext is an application-defined extension value: an opaque payload tagged
// with a type id.
type Ext struct {
	Type int8
	Data []byte
}

func (Nil) isValue()     {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Uint) isValue()    {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (String) isValue()  {}
func (Binary) isValue()  {}
func (Array) isValue()   {}
func (Map) isValue()     {}
func (Ext) isValue()     {}

func (Nil) EncodeMsgpack(w *Writer) error {
	w.WriteNil()
	return w.Error()
}

func (v Bool) EncodeMsgpack(w *Writer) error {
	w.WriteBool(bool(v))
	return w.Error()
}

func (v Int) EncodeMsgpack(w *Writer) error {
	w.WriteInt(int64(v))
	return w.Error()
}

func (v Uint) EncodeMsgpack(w *Writer) error {
	w.WriteUint(uint64(v))
	return w.Error()
}

func (v Float32) EncodeMsgpack(w *Writer) error {
	w.WriteFloat32(float32(v))
	return w.Error()
}

func (v Float64) EncodeMsgpack(w *Writer) error {
	w.WriteFloat64(float64(v))
	return w.Error()
}

func (v String) EncodeMsgpack(w *Writer) error {
	w.WriteString(string(v))
	return w.Error()
}

func (v Binary) EncodeMsgpack(w *Writer) error {
	w.WriteBin(v)
	return w.Error()
}

func (v Array) EncodeMsgpack(w *Writer) error {
	w.WriteArrayHeader(len(v))
	for _, el := range v {
		if err := WriteValue(w, el); err != nil {
			return err
		}
	}
	return w.Error()
}

func (v Map) EncodeMsgpack(w *Writer) error {
	w.WriteMapHeader(len(v))
	for _, p := range v {
		if err := WriteValue(w, p.Key); err != nil {
			return err
		}
		if err := WriteValue(w, p.Val); err != nil {
			return err
		}
	}
	return w.Error()
}

func (v Ext) EncodeMsgpack(w *Writer) error {
	w.WriteExt(v.Type, v.Data)
	return w.Error()
}

// WriteValue encodes one value tree. A nil interface encodes as nil, so
// trees built with missing entries still serialize.
func WriteValue(w *Writer, v Value) error {
	if v == nil {
		w.WriteNil()
		return w.Error()
	}
	return v.EncodeMsgpack(w)
}

// ReadValue decodes one value of any type into an owned tree under
// DefaultLimits.
func ReadValue(r *Reader) (Value, error) {
	return ReadValueLimits(r, DefaultLimits())
}

// ReadValueLimits decodes one value of any type into an owned tree. Depth
// counts open containers; the byte budget covers the whole value including
// markers and length fields, and declared lengths are charged against it
// before their payload bytes are read, so a hostile header cannot force a
// large allocation.
func ReadValueLimits(r *Reader, limits Limits) (Value, error) {
	d := valueDecoder{r: r, limits: limits, start: r.BytesRead()}
	return d.value(0)
}

type valueDecoder struct {
	r      *Reader
	limits Limits
	start  int
}

// budget charges n upcoming bytes against MaxBytes.
func (d *valueDecoder) budget(n int) error {
	if d.limits.MaxBytes <= 0 {
		return nil
	}
	used := d.r.BytesRead() - d.start
	if used > d.limits.MaxBytes || n > d.limits.MaxBytes-used {
		d.r.recordError(ErrTooLarge)
		return d.r.Error()
	}
	return nil
}

// marker consumes the next lead byte. A clean end of the stream is io.EOF
// only before the value's first byte; inside the value it is truncation,
// even when the stream ends exactly on a marker boundary.
func (d *valueDecoder) marker() (Marker, error) {
	m, err := d.r.ReadMarker()
	if err == io.EOF && d.r.BytesRead() > d.start {
		short := &InsufficientDataError{Expected: 1, Actual: 0, Pos: d.r.BytesRead()}
		d.r.recordError(short)
		return Marker{}, d.r.Error()
	}
	return m, err
}

// value decodes the next value. depth is the number of containers already
// open above it.
func (d *valueDecoder) value(depth int) (Value, error) {
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
		v, err := d.r.readByte()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindUint16:
		v, err := d.r.readUint16()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindUint32:
		v, err := d.r.readUint32()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindUint64:
		v, err := d.r.readUint64()
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	case KindInt8:
		v, err := d.r.readByte()
		if err != nil {
			return nil, err
		}
		return Int(int8(v)), nil
	case KindInt16:
		v, err := d.r.readUint16()
		if err != nil {
			return nil, err
		}
		return Int(int16(v)), nil
	case KindInt32:
		v, err := d.r.readUint32()
		if err != nil {
			return nil, err
		}
		return Int(int32(v)), nil
	case KindInt64:
		v, err := d.r.readUint64()
		if err != nil {
			return nil, err
		}
		return Int(int64(v)), nil
	case KindFloat32:
		bits, err := d.r.readUint32()
		if err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(bits)), nil
	case KindFloat64:
		bits, err := d.r.readUint64()
		if err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(bits)), nil
	case KindFixStr, KindStr8, KindStr16, KindStr32:
		n, err := d.r.stringHeaderFrom(m)
		if err != nil {
			return nil, err
		}
		if err := d.budget(n); err != nil {
			return nil, err
		}
		s, err := d.r.readStringBody(n)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case KindBin8, KindBin16, KindBin32:
		n, err := d.r.binHeaderFrom(m)
		if err != nil {
			return nil, err
		}
		if err := d.budget(n); err != nil {
			return nil, err
		}
		p, err := d.r.readBlob(n)
		if err != nil {
			return nil, err
		}
		return Binary(p), nil
	case KindFixArray, KindArray16, KindArray32:
		n, err := d.r.arrayHeaderFrom(m)
		if err != nil {
			return nil, err
		}
		return d.array(n, depth+1)
	case KindFixMap, KindMap16, KindMap32:
		n, err := d.r.mapHeaderFrom(m)
		if err != nil {
			return nil, err
		}
		return d.mapping(n, depth+1)
	case KindFixExt1, KindFixExt2, KindFixExt4, KindFixExt8, KindFixExt16,
		KindExt8, KindExt16, KindExt32:
		meta, err := d.r.extHeaderFrom(m)
		if err != nil {
			return nil, err
		}
		if err := d.budget(meta.Size); err != nil {
			return nil, err
		}
		p, err := d.r.readBlob(meta.Size)
		if err != nil {
			return nil, err
		}
		return Ext{Type: meta.Type, Data: p}, nil
	default:
		d.r.recordError(ErrReserved)
		return nil, d.r.Error()
	}
}

// containerOpen enforces the depth limit and charges the declared element
// count against the byte budget: every element is at least one byte, so an
// oversized header fails before any element is read.
func (d *valueDecoder) containerOpen(depth, elems int) error {
	if d.limits.MaxDepth > 0 && depth > d.limits.MaxDepth {
		d.r.recordError(ErrTooDeep)
		return d.r.Error()
	}
	return d.budget(elems)
}

func (d *valueDecoder) array(n, depth int) (Value, error) {
	if err := d.containerOpen(depth, n); err != nil {
		return nil, err
	}
	vs := make([]Value, 0, capHint(n, valueNodeSize))
	for i := 0; i < n; i++ {
		el, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		vs = append(vs, el)
	}
	return Array(vs), nil
}

func (d *valueDecoder) mapping(n, depth int) (Value, error) {
	if err := d.containerOpen(depth, 2*n); err != nil {
		return nil, err
	}
	ps := make([]Pair, 0, capHint(n, 2*valueNodeSize))
	for i := 0; i < n; i++ {
		k, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		v, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		ps = append(ps, Pair{Key: k, Val: v})
	}
	return Map(ps), nil
}

// valueNodeSize approximates one interface header for preallocation math.
const valueNodeSize = 16

// capHint caps a declared element count so container preallocation never
// exceeds PreallocMax; larger containers grow as their elements actually
// arrive.
func capHint(n, elemSize int) int {
	if most := PreallocMax / elemSize; n > most {
		return most
	}
	return n
}

// EncodedSize returns the exact number of bytes WriteValue produces for v,
// without encoding. Callers use it to size buffers or enforce quotas before
// serializing. Strings are not revalidated here; an invalid payload still
// fails at encode time.
func EncodedSize(v Value) int {
	switch t := v.(type) {
	case Bool:
		return 1
	case Int:
		return intSize(int64(t))
	case Uint:
		return uintSize(uint64(t))
	case Float32:
		return 5
	case Float64:
		return 9
	case String:
		return strHeaderSize(len(t)) + len(t)
	case Binary:
		return binHeaderSize(len(t)) + len(t)
	case Array:
		n := arrayHeaderSize(len(t))
		for _, el := range t {
			n += EncodedSize(el)
		}
		return n
	case Map:
		n := mapHeaderSize(len(t))
		for _, p := range t {
			n += EncodedSize(p.Key) + EncodedSize(p.Val)
		}
		return n
	case Ext:
		return extHeaderSize(len(t.Data)) + len(t.Data)
	default: // Nil and the nil interface
		return 1
	}
}

// The *Size helpers mirror the width selection of the corresponding Write*
// methods exactly.

func uintSize(v uint64) int {
	switch {
	case v <= MaxFixPos:
		return 1
	case v <= math.MaxUint8:
		return 2
	case v <= math.MaxUint16:
		return 3
	case v <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

func intSize(v int64) int {
	if v >= 0 {
		return uintSize(uint64(v))
	}
	switch {
	case v >= MinFixNeg:
		return 1
	case v >= math.MinInt8:
		return 2
	case v >= math.MinInt16:
		return 3
	case v >= math.MinInt32:
		return 5
	default:
		return 9
	}
}

func strHeaderSize(n int) int {
	switch {
	case n <= MaxFixStr:
		return 1
	case n <= math.MaxUint8:
		return 2
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

func binHeaderSize(n int) int {
	switch {
	case n <= math.MaxUint8:
		return 2
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

func arrayHeaderSize(n int) int {
	switch {
	case n <= MaxFixArray:
		return 1
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

func mapHeaderSize(n int) int {
	switch {
	case n <= MaxFixMap:
		return 1
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

func extHeaderSize(n int) int {
	switch n {
	case 1, 2, 4, 8, 16:
		return 2 // marker + type byte
	}
	switch {
	case n <= math.MaxUint8:
		return 3
	case n <= math.MaxUint16:
		return 4
	default:
		return 6
	}
}
