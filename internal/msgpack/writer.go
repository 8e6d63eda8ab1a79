package msgpack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"syscall"
)

// Writer encodes values into MessagePack wire format. It wraps an io.Writer
// (typically a bytes.Buffer) and provides methods for writing markers and
// payloads. The first error encountered is recorded and every later call
// becomes a no-op, so a sequence of writes needs a single Error() check.
//
// A Writer must not be reused for further messages after an error: the
// stream position is undefined once a write fails mid-value.
type Writer struct {
	w            io.Writer
	err          error // first error encountered during writing
	bytesWritten int   // bytes successfully handed to the underlying writer
}

// NewWriter creates a Writer that writes to the provided io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Bytes returns the written bytes if the underlying writer is a
// *bytes.Buffer. It returns nil if the writer is not a *bytes.Buffer or if
// an error occurred.
func (w *Writer) Bytes() []byte {
	if w.err != nil {
		return nil
	}
	if bb, ok := w.w.(*bytes.Buffer); ok {
		return bb.Bytes()
	}
	return nil
}

// Error returns the first error that occurred during writing, if any.
func (w *Writer) Error() error {
	return w.err
}

// BytesWritten returns the number of bytes successfully written via this
// Writer so far.
func (w *Writer) BytesWritten() int {
	return w.bytesWritten
}

// recordError records the first error encountered.
func (w *Writer) recordError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// writeAll writes the whole of p, retrying interrupted writes. That retry
// is the only automatic retry in the codec; any other failure poisons the
// Writer.
func (w *Writer) writeAll(p []byte) {
	if w.err != nil {
		return
	}
	for len(p) > 0 {
		n, err := w.w.Write(p)
		w.bytesWritten += n
		p = p[n:]
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			w.recordError(Errorf("write: %w", err))
			return
		}
		if n == 0 && len(p) > 0 {
			w.recordError(Errorf("write: %w", io.ErrShortWrite))
			return
		}
	}
}

func (w *Writer) writeByte(b byte) {
	var buf [1]byte
	buf[0] = b
	w.writeAll(buf[:])
}

// WriteMarker writes a raw lead byte. Most callers want the typed Write*
// methods instead; this exists for collaborators that compose their own
// marker sequences.
func (w *Writer) WriteMarker(m Marker) {
	w.writeByte(m.Byte())
}

// writeUint16 writes a uint16 in big-endian order.
func (w *Writer) writeUint16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.writeAll(buf[:])
}

// writeUint32 writes a uint32 in big-endian order.
func (w *Writer) writeUint32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.writeAll(buf[:])
}

// writeUint64 writes a uint64 in big-endian order.
func (w *Writer) writeUint64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.writeAll(buf[:])
}
