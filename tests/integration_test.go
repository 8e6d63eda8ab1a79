package tests

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpack-go/mpack/pkg/mpack"
)

// sampleDocument is a tree touching every value family once.
func sampleDocument() mpack.Value {
	return mpack.Map{
		{Key: mpack.String("seq"), Val: mpack.Uint(42)},
		{Key: mpack.String("delta"), Val: mpack.Int(-7)},
		{Key: mpack.String("ratio"), Val: mpack.Float64(0.25)},
		{Key: mpack.String("live"), Val: mpack.Bool(true)},
		{Key: mpack.String("note"), Val: mpack.Nil{}},
		{Key: mpack.String("raw"), Val: mpack.Binary{0xde, 0xad}},
		{Key: mpack.String("tags"), Val: mpack.Array{
			mpack.String("alpha"),
			mpack.Array{mpack.Uint(1), mpack.Uint(2)},
		}},
		{Key: mpack.String("ext"), Val: mpack.Ext{Type: 4, Data: []byte{1, 2, 3}}},
	}
}

func TestStreamAndTreeEncodingsAgree(t *testing.T) {
	tree := mpack.Array{mpack.Uint(7), mpack.String("ada"), mpack.Bool(false)}

	fromTree, err := mpack.Marshal(tree)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := mpack.NewWriter(&buf)
	w.WriteArrayHeader(3)
	w.WriteUint(7)
	w.WriteString("ada")
	w.WriteBool(false)
	require.NoError(t, w.Error())

	assert.Equal(t, buf.Bytes(), fromTree,
		"hand-written stream and tree encoder must pick the same widths")

	// and the typed readers take the tree encoding apart again
	r := mpack.NewReader(bytes.NewReader(fromTree))
	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	u, err := r.ReadUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "ada", s)
	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.False(t, b)
}

func TestFramedPipeline(t *testing.T) {
	docs := []mpack.Value{
		sampleDocument(),
		mpack.Uint(1),
		mpack.String("solo"),
		mpack.Array{},
		sampleDocument(),
	}

	var stream []byte
	var encodings [][]byte
	for _, d := range docs {
		enc, err := mpack.Marshal(d)
		require.NoError(t, err)
		encodings = append(encodings, enc)
		stream = append(stream, enc...)
	}

	// boundary detection on the raw concatenation
	offset := 0
	for i, enc := range encodings {
		n, err := mpack.MessageLen(stream[offset:])
		require.NoError(t, err)
		assert.Equal(t, len(enc), n, "message %d", i)
		offset += n
	}

	// the framer recovers the same messages regardless of chunking
	for _, chunkSize := range []int{1, 2, 3, 5, 7, 16, len(stream)} {
		mb := mpack.NewMessageBuffer(mpack.DefaultLimits())
		for start := 0; start < len(stream); start += chunkSize {
			end := start + chunkSize
			if end > len(stream) {
				end = len(stream)
			}
			mb.Push(stream[start:end])
		}

		for i, d := range docs {
			chunks, err := mb.Next()
			require.NoError(t, err, "chunk size %d, message %d", chunkSize, i)
			require.NotNil(t, chunks, "chunk size %d, message %d", chunkSize, i)

			msg := bytes.Join(chunks, nil)
			assert.Equal(t, encodings[i], msg)

			v, n, err := mpack.Unmarshal(msg)
			require.NoError(t, err)
			assert.Equal(t, len(msg), n)
			assert.Equal(t, d, v)
		}

		chunks, err := mb.Next()
		require.NoError(t, err)
		assert.Nil(t, chunks, "stream must be fully drained")
		assert.Equal(t, 0, mb.Buffered())
	}
}

func TestNoCopyPipeline(t *testing.T) {
	enc, err := mpack.Marshal(sampleDocument())
	require.NoError(t, err)

	ref, n, err := mpack.UnmarshalNoCopy(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, sampleDocument(), ref.Owned())

	// borrowed re-encoding reproduces the input exactly
	var buf bytes.Buffer
	w := mpack.NewWriter(&buf)
	require.NoError(t, mpack.WriteValueRef(w, ref))
	assert.Equal(t, enc, buf.Bytes())
}

func TestDepthLimitAcrossLayers(t *testing.T) {
	depth := mpack.DefaultLimits().MaxDepth + 1
	var v mpack.Value = mpack.Uint(0)
	for i := 0; i < depth; i++ {
		v = mpack.Array{v}
	}
	enc, err := mpack.Marshal(v)
	require.NoError(t, err, "encoding does not bound depth")

	// tree decoding refuses it
	_, _, err = mpack.Unmarshal(enc)
	assert.ErrorIs(t, err, mpack.ErrTooDeep)

	// and so does boundary scanning
	_, err = mpack.MessageLen(enc)
	assert.ErrorIs(t, err, mpack.ErrTooDeep)

	mb := mpack.NewMessageBuffer(mpack.DefaultLimits())
	mb.Push(enc)
	_, err = mb.Next()
	assert.ErrorIs(t, err, mpack.ErrTooDeep)
}

func TestSizeLimitAcrossLayers(t *testing.T) {
	limits := mpack.Limits{MaxDepth: 16, MaxBytes: 64}

	big, err := mpack.Marshal(mpack.Binary(make([]byte, 128)))
	require.NoError(t, err)

	_, err = mpack.ReadValueLimits(mpack.NewReader(bytes.NewReader(big)), limits)
	assert.ErrorIs(t, err, mpack.ErrTooLarge)

	_, err = mpack.ReadValueRefLimits(mpack.NewBytes(big), limits)
	assert.ErrorIs(t, err, mpack.ErrTooLarge)

	mb := mpack.NewMessageBuffer(limits)
	mb.Push(big[:3])
	_, err = mb.Next()
	assert.ErrorIs(t, err, mpack.ErrTooLarge,
		"the scanner fails on the declared length before payload arrives")
}
