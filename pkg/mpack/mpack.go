// Package mpack is the public surface of the MessagePack codec.
//
// It re-exports the codec layers so applications need a single import:
//
// Streaming codec:
//   - Writer: minimal-width encoding onto an io.Writer
//   - Reader: strict typed decoding from an io.Reader
//   - Bytes: zero-copy byte slice source for borrowed decoding
//   - Marker, Kind: the lead byte model shared by all layers
//
// Value trees:
//   - Value: owned tree for decode-then-inspect workloads
//   - ValueRef: borrowed tree aliasing the source buffer
//
// Message framing:
//   - Scanner: resumable message length detection over chunks
//   - MessageBuffer: chunk accumulator that emits whole messages
//   - Limits: depth and size bounds shared by scanner and decoders
//
// Example usage:
//
//	import "github.com/mpack-go/mpack/pkg/mpack"
//
//	// Encode a value tree
//	enc, err := mpack.Marshal(mpack.Map{
//		{Key: mpack.String("id"), Val: mpack.Uint(7)},
//		{Key: mpack.String("name"), Val: mpack.String("ada")},
//	})
//
//	// Decode it back
//	v, n, err := mpack.Unmarshal(enc)
//
//	// Or stream primitives directly
//	w := mpack.NewWriter(&buf)
//	w.WriteArrayHeader(2)
//	w.WriteUint(7)
//	w.WriteString("ada")
//	err = w.Error()
package mpack

import (
	"bytes"

	"github.com/mpack-go/mpack/internal/msgpack"
)

// Codec core types
type (
	// Writer encodes MessagePack values onto an io.Writer
	Writer = msgpack.Writer

	// Reader decodes MessagePack values from an io.Reader
	Reader = msgpack.Reader

	// Bytes is an in-memory source whose reads borrow from the buffer
	Bytes = msgpack.Bytes

	// Marker identifies one wire-format lead byte
	Marker = msgpack.Marker

	// Kind classifies markers into format families
	Kind = msgpack.Kind

	// ExtMeta describes an extension header: application type and payload size
	ExtMeta = msgpack.ExtMeta

	// Limits bounds nesting depth and total message size
	Limits = msgpack.Limits
)

// Incremental scanning and framing
type (
	// Scanner detects message boundaries across arbitrary chunk splits
	Scanner = msgpack.Scanner

	// MessageBuffer accumulates chunks and hands out complete messages
	MessageBuffer = msgpack.MessageBuffer
)

// Self-encoding types
type (
	// Encodable serializes itself with a Writer
	Encodable = msgpack.Encodable

	// Decodable populates itself from a Reader
	Decodable = msgpack.Decodable

	// Timestamp adapts time.Time to the timestamp extension
	Timestamp = msgpack.Timestamp

	// Shape picks the wire layout of record types
	Shape = msgpack.Shape

	// TupleShape writes records as positional arrays
	TupleShape = msgpack.TupleShape

	// NamedShape writes records as maps keyed by field name
	NamedShape = msgpack.NamedShape
)

// Owned value tree
type (
	// Value is one node of an owned MessagePack value tree
	Value = msgpack.Value

	// Nil is the nil value
	Nil = msgpack.Nil

	// Bool is a boolean value
	Bool = msgpack.Bool

	// Int is a signed integer value
	Int = msgpack.Int

	// Uint is an unsigned integer value
	Uint = msgpack.Uint

	// Float32 is a single precision float value
	Float32 = msgpack.Float32

	// Float64 is a double precision float value
	Float64 = msgpack.Float64

	// String is a UTF-8 string value
	String = msgpack.String

	// Binary is a raw byte payload value
	Binary = msgpack.Binary

	// Array is an ordered value sequence
	Array = msgpack.Array

	// Pair is one map entry
	Pair = msgpack.Pair

	// Map is a key-value sequence preserving wire order and duplicates
	Map = msgpack.Map

	// Ext is an application extension value
	Ext = msgpack.Ext
)

// Borrowed value tree
type (
	// ValueRef is one node of a value tree aliasing the source buffer
	ValueRef = msgpack.ValueRef

	// StringRef is a string whose bytes alias the source buffer
	StringRef = msgpack.StringRef

	// BinaryRef is a byte payload aliasing the source buffer
	BinaryRef = msgpack.BinaryRef

	// ArrayRef is an ordered borrowed value sequence
	ArrayRef = msgpack.ArrayRef

	// PairRef is one borrowed map entry
	PairRef = msgpack.PairRef

	// MapRef is a borrowed key-value sequence
	MapRef = msgpack.MapRef

	// ExtRef is an extension value whose payload aliases the source buffer
	ExtRef = msgpack.ExtRef
)

// Error types
type (
	// TypeMismatchError reports a decoded marker outside the requested family
	TypeMismatchError = msgpack.TypeMismatchError

	// InvalidUTF8Error reports string payload bytes that are not valid UTF-8
	InvalidUTF8Error = msgpack.InvalidUTF8Error

	// InsufficientDataError reports input ending inside a value
	InsufficientDataError = msgpack.InsufficientDataError
)

// Marker kinds
const (
	KindNil      = msgpack.KindNil
	KindFalse    = msgpack.KindFalse
	KindTrue     = msgpack.KindTrue
	KindFixPos   = msgpack.KindFixPos
	KindFixNeg   = msgpack.KindFixNeg
	KindUint8    = msgpack.KindUint8
	KindUint16   = msgpack.KindUint16
	KindUint32   = msgpack.KindUint32
	KindUint64   = msgpack.KindUint64
	KindInt8     = msgpack.KindInt8
	KindInt16    = msgpack.KindInt16
	KindInt32    = msgpack.KindInt32
	KindInt64    = msgpack.KindInt64
	KindFloat32  = msgpack.KindFloat32
	KindFloat64  = msgpack.KindFloat64
	KindFixStr   = msgpack.KindFixStr
	KindStr8     = msgpack.KindStr8
	KindStr16    = msgpack.KindStr16
	KindStr32    = msgpack.KindStr32
	KindBin8     = msgpack.KindBin8
	KindBin16    = msgpack.KindBin16
	KindBin32    = msgpack.KindBin32
	KindFixArray = msgpack.KindFixArray
	KindArray16  = msgpack.KindArray16
	KindArray32  = msgpack.KindArray32
	KindFixMap   = msgpack.KindFixMap
	KindMap16    = msgpack.KindMap16
	KindMap32    = msgpack.KindMap32
	KindFixExt1  = msgpack.KindFixExt1
	KindFixExt2  = msgpack.KindFixExt2
	KindFixExt4  = msgpack.KindFixExt4
	KindFixExt8  = msgpack.KindFixExt8
	KindFixExt16 = msgpack.KindFixExt16
	KindExt8     = msgpack.KindExt8
	KindExt16    = msgpack.KindExt16
	KindExt32    = msgpack.KindExt32
	KindReserved = msgpack.KindReserved
)

// TimestampExtType is the reserved extension type of the timestamp format.
const TimestampExtType = msgpack.TimestampExtType

// Worst-case encoded sizes per kind, marker included. EncodedSize gives
// the exact figure for a concrete value.
const (
	NilSize         = msgpack.NilSize
	BoolSize        = msgpack.BoolSize
	IntSize         = msgpack.IntSize
	UintSize        = msgpack.UintSize
	Float32Size     = msgpack.Float32Size
	Float64Size     = msgpack.Float64Size
	StrHeaderSize   = msgpack.StrHeaderSize
	BinHeaderSize   = msgpack.BinHeaderSize
	ArrayHeaderSize = msgpack.ArrayHeaderSize
	MapHeaderSize   = msgpack.MapHeaderSize
	ExtHeaderSize   = msgpack.ExtHeaderSize
	TimestampSize   = msgpack.TimestampSize
)

// Sentinel errors
var (
	// ErrReserved reports the reserved marker byte 0xc1
	ErrReserved = msgpack.ErrReserved

	// ErrOutOfRange reports an integer that does not fit the requested type
	ErrOutOfRange = msgpack.ErrOutOfRange

	// ErrTooDeep reports nesting beyond Limits.MaxDepth
	ErrTooDeep = msgpack.ErrTooDeep

	// ErrTooLarge reports a message beyond Limits.MaxBytes
	ErrTooLarge = msgpack.ErrTooLarge

	// ErrLength reports a length outside the format's range
	ErrLength = msgpack.ErrLength

	// ErrExtType reports an extension of an unexpected type
	ErrExtType = msgpack.ErrExtType

	// ErrScanDone reports bytes fed to a finished scan
	ErrScanDone = msgpack.ErrScanDone
)

// Constructors and helpers
var (
	// NewWriter wraps an io.Writer for encoding
	NewWriter = msgpack.NewWriter

	// NewReader wraps an io.Reader for decoding
	NewReader = msgpack.NewReader

	// NewBytes wraps a byte slice as a borrowing source
	NewBytes = msgpack.NewBytes

	// NewScanner creates a message boundary scanner
	NewScanner = msgpack.NewScanner

	// NewMessageBuffer creates a chunk-accumulating framer
	NewMessageBuffer = msgpack.NewMessageBuffer

	// FromByte classifies a lead byte
	FromByte = msgpack.FromByte

	// DefaultLimits returns the bounds applied when none are configured
	DefaultLimits = msgpack.DefaultLimits

	// MessageLen reports the length of the first complete message in p
	MessageLen = msgpack.MessageLen

	// WriteValue encodes an owned value tree
	WriteValue = msgpack.WriteValue

	// WriteValueRef encodes a borrowed value tree
	WriteValueRef = msgpack.WriteValueRef

	// ReadValue decodes one owned value tree under default limits
	ReadValue = msgpack.ReadValue

	// ReadValueLimits decodes one owned value tree under explicit limits
	ReadValueLimits = msgpack.ReadValueLimits

	// ReadValueRef decodes one borrowed value tree under default limits
	ReadValueRef = msgpack.ReadValueRef

	// ReadValueRefLimits decodes one borrowed value tree under explicit limits
	ReadValueRefLimits = msgpack.ReadValueRefLimits

	// EncodedSize reports the exact encoded size of an owned value tree
	EncodedSize = msgpack.EncodedSize
)

// Marshal encodes one value tree into a fresh buffer sized ahead of time,
// so encoding performs a single allocation.
func Marshal(v Value) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msgpack.EncodedSize(v)))
	w := msgpack.NewWriter(buf)
	if err := msgpack.WriteValue(w, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the first value in p into an owned tree and reports how
// many bytes it consumed. Trailing bytes are left for the caller.
func Unmarshal(p []byte) (Value, int, error) {
	r := msgpack.NewReader(msgpack.NewBytes(p))
	v, err := msgpack.ReadValue(r)
	if err != nil {
		return nil, 0, err
	}
	return v, r.BytesRead(), nil
}

// UnmarshalNoCopy decodes the first value in p into a borrowed tree whose
// strings, byte payloads and extension payloads alias p. The tree is valid
// only while p is unchanged; call Owned on it to detach.
func UnmarshalNoCopy(p []byte) (ValueRef, int, error) {
	b := msgpack.NewBytes(p)
	ref, err := msgpack.ReadValueRef(b)
	if err != nil {
		return nil, 0, err
	}
	return ref, b.Pos(), nil
}
