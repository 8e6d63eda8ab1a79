package msgpack

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeValue(t *testing.T, v Value) []byte {
	t.Helper()
	w, buf := newTestWriter()
	require.NoError(t, WriteValue(w, v))
	return buf.Bytes()
}

// valueCorpus holds trees in canonical form: non-negative integers as Uint,
// so decode(encode(v)) reproduces v exactly.
var valueCorpus = []Value{
	Nil{},
	Bool(true),
	Bool(false),
	Uint(0),
	Uint(127),
	Uint(128),
	Uint(100500),
	Uint(math.MaxUint64),
	Int(-1),
	Int(-32),
	Int(-33),
	Int(-100500),
	Int(math.MinInt64),
	Float32(1.5),
	Float64(-2.75),
	String(""),
	String("hello"),
	String("héllo wörld"),
	Binary{},
	Binary{0x01, 0x02, 0x03},
	Array{},
	Array{Uint(1), String("two"), Nil{}, Array{Bool(true)}},
	Map{},
	Map{
		{Key: String("id"), Val: Uint(7)},
		{Key: Uint(42), Val: Array{Int(-1)}},
		{Key: Nil{}, Val: Map{}},
	},
	Ext{Type: 5, Data: []byte{0xde, 0xad}},
	Ext{Type: -128, Data: []byte{0x00}},
}

func TestValueRoundTrip(t *testing.T) {
	for _, v := range valueCorpus {
		enc := encodeValue(t, v)
		got, err := ReadValue(newTestReader(enc))
		require.NoError(t, err, "%#v", v)
		assert.Equal(t, v, got, "%#v", v)
	}
}

func TestValueRoundTripWholeCorpusAsArray(t *testing.T) {
	whole := Array(valueCorpus)
	enc := encodeValue(t, whole)
	got, err := ReadValue(newTestReader(enc))
	require.NoError(t, err)
	assert.Equal(t, Value(whole), got)
}

// Non-negative integers always decode as Uint because the encoder writes
// them on the unsigned path; only explicitly signed wire forms produce Int.
func TestValueIntegerNormalization(t *testing.T) {
	enc := encodeValue(t, Int(5))
	got, err := ReadValue(newTestReader(enc))
	require.NoError(t, err)
	assert.Equal(t, Value(Uint(5)), got)

	// an explicit Int8 wire encoding keeps its signed family
	got, err = ReadValue(newTestReader([]byte{0xd0, 0x05}))
	require.NoError(t, err)
	assert.Equal(t, Value(Int(5)), got)
}

func TestValueMapPreservesOrderAndDuplicates(t *testing.T) {
	m := Map{
		{Key: String("k"), Val: Uint(1)},
		{Key: String("k"), Val: Uint(2)},
		{Key: String("a"), Val: Uint(3)},
	}
	got, err := ReadValue(newTestReader(encodeValue(t, m)))
	require.NoError(t, err)
	require.IsType(t, Map{}, got)
	gotMap := got.(Map)
	require.Len(t, gotMap, 3)
	assert.Equal(t, m[0], gotMap[0])
	assert.Equal(t, m[1], gotMap[1])
	assert.Equal(t, m[2], gotMap[2])
}

func TestValueDepthLimit(t *testing.T) {
	var v Value = Uint(1)
	for i := 0; i < 5; i++ {
		v = Array{v}
	}
	enc := encodeValue(t, v)

	_, err := ReadValueLimits(newTestReader(enc), Limits{MaxDepth: 4})
	assert.ErrorIs(t, err, ErrTooDeep)

	got, err := ReadValueLimits(newTestReader(enc), Limits{MaxDepth: 5})
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestValueByteBudget(t *testing.T) {
	enc := encodeValue(t, String("this string needs well over a dozen bytes"))

	_, err := ReadValueLimits(newTestReader(enc), Limits{MaxBytes: 12})
	assert.ErrorIs(t, err, ErrTooLarge)

	got, err := ReadValueLimits(newTestReader(enc), Limits{MaxBytes: len(enc)})
	require.NoError(t, err)
	assert.Equal(t, Value(String("this string needs well over a dozen bytes")), got)
}

// A container header promising more elements than the budget allows fails
// on the header alone: each element costs at least one byte.
func TestValueBudgetFailsFastOnHeader(t *testing.T) {
	_, err := ReadValueLimits(newTestReader([]byte{0x94, 0xc0, 0xc0, 0xc0, 0xc0}), Limits{MaxBytes: 4})
	assert.ErrorIs(t, err, ErrTooLarge)

	got, err := ReadValueLimits(newTestReader([]byte{0x93, 0xc0, 0xc0, 0xc0}), Limits{MaxBytes: 4})
	require.NoError(t, err)
	assert.Equal(t, Value(Array{Nil{}, Nil{}, Nil{}}), got)
}

// A huge declared array with hardly any bytes behind it fails with
// truncation; preallocation is capped so the declaration alone cannot
// balloon memory.
func TestValueTruncatedGiantArray(t *testing.T) {
	_, err := ReadValue(newTestReader([]byte{0xdd, 0x00, 0x10, 0x00, 0x00, 0xc0, 0xc0}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestValueReservedByte(t *testing.T) {
	_, err := ReadValue(newTestReader([]byte{0xc1}))
	assert.ErrorIs(t, err, ErrReserved)
}

func TestValueCleanEOF(t *testing.T) {
	_, err := ReadValue(newTestReader(nil))
	assert.Equal(t, io.EOF, err)
}

func TestWriteValueNilInterface(t *testing.T) {
	w, buf := newTestWriter()
	require.NoError(t, WriteValue(w, nil))
	assert.Equal(t, []byte{0xc0}, buf.Bytes())

	w, buf = newTestWriter()
	require.NoError(t, WriteValue(w, Array{nil, Uint(1)}))
	assert.Equal(t, []byte{0x92, 0xc0, 0x01}, buf.Bytes())
}

func TestEncodedSizeMatchesEncoding(t *testing.T) {
	for _, v := range valueCorpus {
		enc := encodeValue(t, v)
		assert.Equal(t, len(enc), EncodedSize(v), "%#v", v)
	}
	whole := Array(valueCorpus)
	assert.Equal(t, len(encodeValue(t, whole)), EncodedSize(whole))
	assert.Equal(t, 1, EncodedSize(nil))
}

func TestEncodedSizeWidthBoundaries(t *testing.T) {
	tests := []struct {
		v    Value
		want int
	}{
		{Uint(127), 1},
		{Uint(128), 2},
		{Uint(256), 3},
		{Uint(65536), 5},
		{Uint(math.MaxUint32 + 1), 9},
		{Int(-32), 1},
		{Int(-33), 2},
		{Int(-129), 3},
		{Int(-32769), 5},
		{Int(math.MinInt32 - 1), 9},
		{String("0123456789012345678901234567890"), 32},  // fixstr max
		{String("01234567890123456789012345678901"), 34}, // str8 min
		{Ext{Type: 1, Data: make([]byte, 4)}, 6},   // fixext4
		{Ext{Type: 1, Data: make([]byte, 5)}, 8},   // ext8
		{Ext{Type: 1, Data: make([]byte, 256)}, 260}, // ext16
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodedSize(tt.v), "%#v", tt.v)
		assert.Equal(t, len(encodeValue(t, tt.v)), EncodedSize(tt.v), "%#v", tt.v)
	}
}

// The worst-case size constants must match the widest encoding each kind
// can produce, so fixed-layout message bounds computed from them hold.
func TestWorstCaseSizeConstants(t *testing.T) {
	assert.Equal(t, NilSize, EncodedSize(Nil{}))
	assert.Equal(t, BoolSize, EncodedSize(Bool(true)))
	assert.Equal(t, UintSize, EncodedSize(Uint(math.MaxUint64)))
	assert.Equal(t, IntSize, EncodedSize(Int(math.MinInt64)))
	assert.Equal(t, Float32Size, EncodedSize(Float32(1)))
	assert.Equal(t, Float64Size, EncodedSize(Float64(1)))

	wide := make([]byte, math.MaxUint16+1) // forces the 32-bit headers
	assert.Equal(t, BinHeaderSize+len(wide), EncodedSize(Binary(wide)))
	assert.Equal(t, StrHeaderSize+len(wide), EncodedSize(String(wide)))
	assert.Equal(t, ExtHeaderSize+len(wide), EncodedSize(Ext{Type: 1, Data: wide}))

	w, buf := newTestWriter()
	w.WriteArrayHeader(math.MaxUint16 + 1)
	w.WriteMapHeader(math.MaxUint16 + 1)
	require.NoError(t, w.Error())
	assert.Equal(t, ArrayHeaderSize+MapHeaderSize, buf.Len())
}
