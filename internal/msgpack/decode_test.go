package msgpack

import (
	"bytes"
	"io"
	"math"
	"strings"
	"syscall"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReader(p []byte) *Reader {
	return NewReader(bytes.NewReader(p))
}

func TestReadTypedRoundTrip(t *testing.T) {
	w, buf := newTestWriter()
	w.WriteNil()
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteFixPos(100)
	w.WriteUint8(200)
	w.WriteUint16(60000)
	w.WriteUint32(4000000000)
	w.WriteUint64(1 << 60)
	w.WriteInt8(-100)
	w.WriteInt16(-30000)
	w.WriteInt32(-2000000000)
	w.WriteInt64(-1 << 50)
	w.WriteFloat32(3.25)
	w.WriteFloat64(-6.5)
	require.NoError(t, w.Error())

	r := newTestReader(buf.Bytes())
	require.NoError(t, r.ReadNil())

	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)
	b, err = r.ReadBool()
	require.NoError(t, err)
	assert.False(t, b)

	fp, err := r.ReadFixPos()
	require.NoError(t, err)
	assert.Equal(t, uint8(100), fp)

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u8)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(60000), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(4000000000), u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<60, u64)

	i8, err := r.ReadInt8()
	require.NoError(t, err)
	assert.Equal(t, int8(-100), i8)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-30000), i16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-2000000000), i32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1)<<50, i64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.25), f32)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, -6.5, f64)

	require.NoError(t, r.Error())
	assert.Equal(t, len(buf.Bytes()), r.BytesRead())

	_, err = r.ReadMarker()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Error(), "clean end of stream is not a reader fault")
}

func TestReadStrictWidth(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		read  func(r *Reader) error
		kind  Kind
	}{
		{"uint8 rejects fixpos", []byte{0x2a}, func(r *Reader) error { _, err := r.ReadUint8(); return err }, KindFixPos},
		{"uint16 rejects uint8", []byte{0xcc, 0x2a}, func(r *Reader) error { _, err := r.ReadUint16(); return err }, KindUint8},
		{"int8 rejects fixneg", []byte{0xff}, func(r *Reader) error { _, err := r.ReadInt8(); return err }, KindFixNeg},
		{"int64 rejects int32", []byte{0xd2, 0, 0, 0, 1}, func(r *Reader) error { _, err := r.ReadInt64(); return err }, KindInt32},
		{"fixpos rejects uint8", []byte{0xcc, 0x2a}, func(r *Reader) error { _, err := r.ReadFixPos(); return err }, KindUint8},
		{"float32 rejects float64", []byte{0xcb, 0, 0, 0, 0, 0, 0, 0, 0}, func(r *Reader) error { _, err := r.ReadFloat32(); return err }, KindFloat64},
		{"bool rejects nil", []byte{0xc0}, func(r *Reader) error { _, err := r.ReadBool(); return err }, KindNil},
		{"nil rejects false", []byte{0xc2}, func(r *Reader) error { return r.ReadNil() }, KindFalse},
		{"string rejects bin", []byte{0xc4, 0x00}, func(r *Reader) error { _, err := r.ReadString(); return err }, KindBin8},
		{"bin rejects string", []byte{0xa0}, func(r *Reader) error { _, err := r.ReadBin(); return err }, KindFixStr},
		{"array rejects map", []byte{0x80}, func(r *Reader) error { _, err := r.ReadArrayHeader(); return err }, KindFixMap},
		{"map rejects array", []byte{0x90}, func(r *Reader) error { _, err := r.ReadMapHeader(); return err }, KindFixArray},
		{"int rejects reserved", []byte{0xc1}, func(r *Reader) error { _, err := r.ReadInt(); return err }, KindReserved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(tt.input)
			err := tt.read(r)
			var tm *TypeMismatchError
			require.ErrorAs(t, err, &tm)
			assert.Equal(t, tt.kind, tm.Marker.Kind)

			// the reader is poisoned: later reads report the first error
			_, err2 := r.ReadMarker()
			assert.Same(t, err, err2)
		})
	}
}

func TestReadString(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty fixstr", []byte{0xa0}, ""},
		{"fixstr", []byte{0xa5, 'h', 'e', 'l', 'l', 'o'}, "hello"},
		{"str8", append([]byte{0xd9, 0x03}, "abc"...), "abc"},
		{"str16", append([]byte{0xda, 0x00, 0x03}, "abc"...), "abc"},
		{"str32", append([]byte{0xdb, 0x00, 0x00, 0x00, 0x03}, "abc"...), "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(tt.input)
			got, err := r.ReadString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadStringInvalidUTF8(t *testing.T) {
	r := newTestReader([]byte{0xa2, 0xc3, 0x28})
	_, err := r.ReadString()
	var utf8Err *InvalidUTF8Error
	require.ErrorAs(t, err, &utf8Err)
	assert.Equal(t, 0, utf8Err.Pos)
	assert.Equal(t, []byte{0xc3, 0x28}, utf8Err.Bytes)
}

func TestReadTruncatedPayload(t *testing.T) {
	r := newTestReader([]byte{0xa5, 'h', 'i'})
	_, err := r.ReadString()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	var short *InsufficientDataError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 5, short.Expected)
	assert.Equal(t, 2, short.Actual)
	assert.Equal(t, 1, short.Pos)
}

func TestReadTruncatedLengthField(t *testing.T) {
	r := newTestReader([]byte{0xda, 0x01})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadMarkerCleanEOF(t *testing.T) {
	r := newTestReader(nil)
	_, err := r.ReadMarker()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Error())

	// still readable: EOF did not poison the reader
	_, err = r.ReadMarker()
	assert.Equal(t, io.EOF, err)
}

func TestReadReservedMarkerIsTotal(t *testing.T) {
	m, err := newTestReader([]byte{0xc1}).ReadMarker()
	require.NoError(t, err)
	assert.Equal(t, KindReserved, m.Kind)
}

func TestReadContainerHeaders(t *testing.T) {
	w, buf := newTestWriter()
	w.WriteArrayHeader(3)
	w.WriteArrayHeader(1000)
	w.WriteArrayHeader(70000)
	w.WriteMapHeader(2)
	w.WriteMapHeader(1000)
	require.NoError(t, w.Error())

	r := newTestReader(buf.Bytes())
	for _, want := range []int{3, 1000, 70000} {
		n, err := r.ReadArrayHeader()
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	for _, want := range []int{2, 1000} {
		n, err := r.ReadMapHeader()
		require.NoError(t, err)
		assert.Equal(t, want, n, "map headers count pairs")
	}
}

// Two arrays written back to back decode in sequence with the exact bytes
// the minimal-width rules promise.
func TestReadConsecutiveArrays(t *testing.T) {
	w, buf := newTestWriter()
	w.WriteArrayHeader(3)
	for _, v := range []int64{1, 2, 3} {
		w.WriteInt(v)
	}
	w.WriteArrayHeader(2)
	w.WriteInt(42)
	w.WriteUint(100500)
	require.NoError(t, w.Error())
	assert.Equal(t, []byte{
		0x93, 0x01, 0x02, 0x03,
		0x92, 0x2a, 0xce, 0x00, 0x01, 0x88, 0x94,
	}, buf.Bytes())

	r := newTestReader(buf.Bytes())
	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	for want := int64(1); want <= 3; want++ {
		got, err := r.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	n, err = r.ReadArrayHeader()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	got, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	u, err := r.ReadUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(100500), u)

	_, err = r.ReadMarker()
	assert.Equal(t, io.EOF, err)
}

func TestReadExt(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		typ     int8
		payload []byte
	}{
		{"fixext1", []byte{0xd4, 0x05, 0xaa}, 5, []byte{0xaa}},
		{"fixext16", append([]byte{0xd8, 0x7f}, bytes.Repeat([]byte{0xee}, 16)...), 127, bytes.Repeat([]byte{0xee}, 16)},
		{"ext8", []byte{0xc7, 0x03, 0xf6, 1, 2, 3}, -10, []byte{1, 2, 3}},
		{"ext16", append([]byte{0xc8, 0x00, 0x11, 0x01}, bytes.Repeat([]byte{7}, 17)...), 1, bytes.Repeat([]byte{7}, 17)},
		{"ext32 empty payload", []byte{0xc9, 0x00, 0x00, 0x00, 0x00, 0x02}, 2, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(tt.input)
			meta, payload, err := r.ReadExt()
			require.NoError(t, err)
			assert.Equal(t, tt.typ, meta.Type)
			assert.Equal(t, len(tt.payload), meta.Size)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestReadLargeBlobGrowsIncrementally(t *testing.T) {
	payload := strings.Repeat("x", PreallocMax+3)
	w, buf := newTestWriter()
	w.WriteString(payload)
	require.NoError(t, w.Error())

	r := newTestReader(buf.Bytes())
	got, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// A declared length far beyond the available bytes must fail with
// truncation, not attempt the full allocation up front.
func TestReadHugeDeclaredLengthTruncated(t *testing.T) {
	r := newTestReader([]byte{0xdb, 0xff, 0xff, 0xff, 0xff, 'x'})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFromFragmentedStream(t *testing.T) {
	w, buf := newTestWriter()
	w.WriteString("fragmented transport")
	w.WriteUint32(100500)
	require.NoError(t, w.Error())

	r := NewReader(iotest.OneByteReader(bytes.NewReader(buf.Bytes())))
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "fragmented transport", s)
	u, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(100500), u)
}

// interruptedReader reports EINTR once before delivering bytes.
type interruptedReader struct {
	r    io.Reader
	sent bool
}

func (f *interruptedReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return 0, syscall.EINTR
	}
	return f.r.Read(p)
}

func TestReaderRetriesInterrupted(t *testing.T) {
	r := NewReader(&interruptedReader{r: bytes.NewReader([]byte{0xcd, 0x01, 0x00})})
	v, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(256), v)
}

func TestReadFloatSpecials(t *testing.T) {
	w, buf := newTestWriter()
	w.WriteFloat64(math.NaN())
	w.WriteFloat64(math.Inf(1))
	w.WriteFloat32(float32(math.Inf(-1)))
	require.NoError(t, w.Error())

	r := newTestReader(buf.Bytes())
	nan, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nan))
	inf, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.True(t, math.IsInf(inf, 1))
	ninf, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(ninf), -1))
}

func TestReadFixNeg(t *testing.T) {
	r := newTestReader([]byte{0xe0, 0xff})
	v, err := r.ReadFixNeg()
	require.NoError(t, err)
	assert.Equal(t, int8(-32), v)
	v, err = r.ReadFixNeg()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), v)
}
