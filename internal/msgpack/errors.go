package msgpack

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrReserved   = errors.New("msgpack: reserved marker 0xc1")
	ErrOutOfRange = errors.New("msgpack: integer out of range")
	ErrTooDeep    = errors.New("msgpack: nesting depth limit exceeded")
	ErrTooLarge   = errors.New("msgpack: message size limit exceeded")
	ErrLength     = errors.New("msgpack: length out of range")
	ErrExtType    = errors.New("msgpack: unexpected extension type")
	ErrScanDone   = errors.New("msgpack: scan already complete")
)

// TypeMismatchError reports that the decoded marker does not match what a
// typed read expected. It carries the marker actually observed so callers
// can detect schema drift without a schema.
type TypeMismatchError struct {
	Marker Marker
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("msgpack: type mismatch: got marker %s", e.Marker)
}

// InvalidUTF8Error reports string payload bytes that are not valid UTF-8.
// Bytes holds the untouched payload and Pos the offset of the first
// invalid byte.
type InvalidUTF8Error struct {
	Bytes []byte
	Pos   int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("msgpack: invalid utf8 in string payload at offset %d", e.Pos)
}

// invalidUTF8Offset returns the offset of the first byte where p stops
// being valid UTF-8, or -1 when p is valid.
func invalidUTF8Offset(p []byte) int {
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// InsufficientDataError reports that an in-memory source ran out of bytes
// mid-value. It unwraps to io.ErrUnexpectedEOF so streaming callers can
// distinguish "need more bytes" from "malformed" with a single errors.Is.
type InsufficientDataError struct {
	Expected int // bytes the read required
	Actual   int // bytes that remained
	Pos      int // source position at the point of the read
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("msgpack: insufficient data at position %d: need %d bytes, have %d",
		e.Pos, e.Expected, e.Actual)
}

func (e *InsufficientDataError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// Errorf adds the standard "msgpack:" prefix to formatted errors so helpers
// and callers remain consistent with the built-in Err* values.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf("msgpack: "+format, args...)
}

// mismatch is a shorthand used by the typed readers.
func mismatch(m Marker) error {
	return &TypeMismatchError{Marker: m}
}
