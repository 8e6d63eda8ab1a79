package msgpack

import (
	"encoding/binary"
	"errors"
	"io"
	"syscall"
)

// Reader decodes MessagePack wire data from an io.Reader (typically a
// *Bytes, bytes.Reader or a network stream). It keeps track of bytes
// consumed and records the first error encountered; every later call
// becomes a no-op returning that error, so a sequence of reads needs a
// single Error() check.
//
// A clean io.EOF before a marker byte is not recorded: it is the normal end
// of a message stream. Running out of bytes anywhere else is truncation and
// surfaces as an error that matches errors.Is(err, io.ErrUnexpectedEOF).
type Reader struct {
	r         io.Reader
	bytesRead int   // bytes successfully consumed from the underlying reader
	err       error // first error encountered during reading
}

// NewReader creates a Reader that consumes from the provided io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Error returns the first error that occurred during reading, if any.
func (r *Reader) Error() error {
	return r.err
}

// BytesRead returns the number of bytes successfully consumed so far.
func (r *Reader) BytesRead() int {
	return r.bytesRead
}

// recordError records the first error encountered.
func (r *Reader) recordError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// readFull fills p from the underlying reader, retrying interrupted reads.
// That retry is the only automatic retry in the codec. An end of input with
// p partially (or not at all) filled is truncation, reported as an
// InsufficientDataError.
func (r *Reader) readFull(p []byte) error {
	if r.err != nil {
		return r.err
	}
	pos := r.bytesRead
	filled := 0
	for filled < len(p) {
		n, err := r.r.Read(p[filled:])
		filled += n
		r.bytesRead += n
		if filled == len(p) {
			break
		}
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				r.recordError(&InsufficientDataError{Expected: len(p), Actual: filled, Pos: pos})
			} else {
				r.recordError(Errorf("read: %w", err))
			}
			return r.err
		}
	}
	return nil
}

// readByte reads one payload byte.
func (r *Reader) readByte() (byte, error) {
	var buf [1]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// readMarkerByte reads a lead byte. Unlike payload reads, a clean io.EOF
// here is passed through unrecorded so callers can loop over a stream of
// messages until it ends.
func (r *Reader) readMarkerByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	var buf [1]byte
	for {
		n, err := r.r.Read(buf[:])
		if n > 0 {
			r.bytesRead++
			return buf[0], nil
		}
		if err == nil {
			continue
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err == io.EOF {
			return 0, io.EOF
		}
		r.recordError(Errorf("read: %w", err))
		return 0, r.err
	}
}

func (r *Reader) readUint16() (uint16, error) {
	var buf [2]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (r *Reader) readUint32() (uint32, error) {
	var buf [4]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (r *Reader) readUint64() (uint64, error) {
	var buf [8]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// readBlob reads exactly n payload bytes into a fresh buffer. Allocation is
// capped at PreallocMax up front; larger payloads grow the buffer as bytes
// actually arrive, so a truncated message cannot force a giant allocation
// from a declared length alone.
func (r *Reader) readBlob(n int) ([]byte, error) {
	if n < 0 {
		r.recordError(ErrLength)
		return nil, r.err
	}
	if n <= PreallocMax {
		buf := make([]byte, n)
		if err := r.readFull(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	buf := make([]byte, 0, PreallocMax)
	for len(buf) < n {
		chunk := n - len(buf)
		if chunk > PreallocMax {
			chunk = PreallocMax
		}
		start := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		if err := r.readFull(buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
