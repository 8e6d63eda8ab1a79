package msgpack

import "io"

// Bytes is a positional reader over a caller-supplied slice. It is the
// zero-copy byte source: Next hands out sub-slices of the original buffer
// without copying, which is what ReadValueRef builds its borrowed string and
// binary spans from. The returned spans alias the input and are valid only
// as long as the caller keeps the underlying buffer alive and unmodified.
//
// Bytes also implements io.Reader and io.ByteReader, so it can back a
// Reader when owned decoding of in-memory data is wanted instead.
type Bytes struct {
	buf []byte
	pos int
}

// NewBytes wraps p without copying it.
func NewBytes(p []byte) *Bytes {
	return &Bytes{buf: p}
}

// Pos returns the number of bytes consumed so far.
func (b *Bytes) Pos() int {
	return b.pos
}

// Len returns the number of unread bytes.
func (b *Bytes) Len() int {
	return len(b.buf) - b.pos
}

// Rest returns the unread tail of the buffer without consuming it.
func (b *Bytes) Rest() []byte {
	return b.buf[b.pos:]
}

// Next consumes and returns the next n bytes as a sub-slice of the original
// buffer. Fewer than n remaining bytes fail with an InsufficientDataError
// carrying the shortfall and the position, and consume nothing.
func (b *Bytes) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrLength
	}
	if rem := b.Len(); rem < n {
		return nil, &InsufficientDataError{Expected: n, Actual: rem, Pos: b.pos}
	}
	p := b.buf[b.pos : b.pos+n : b.pos+n]
	b.pos += n
	return p, nil
}

// ReadByte implements io.ByteReader. Exhaustion is io.EOF so that a Reader
// wrapping this source sees the usual end-of-stream condition.
func (b *Bytes) ReadByte() (byte, error) {
	if b.pos >= len(b.buf) {
		return 0, io.EOF
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

// Read implements io.Reader over the unread tail.
func (b *Bytes) Read(p []byte) (int, error) {
	if b.pos >= len(b.buf) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += n
	return n, nil
}
