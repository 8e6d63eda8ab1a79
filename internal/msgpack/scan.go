package msgpack

import (
	"encoding/binary"
	"math"
)

type scanState uint8

const (
	scanMarker scanState = iota // expecting the next lead byte
	scanLen                     // accumulating a length field
	scanData                    // skipping declared payload bytes
	scanDone                    // message complete
	scanFailed                  // structurally invalid, terminal
)

// Scanner determines the total byte length of one MessagePack message from
// a prefix of its bytes, without materializing any value. Transport layers
// use it to know when a full frame has arrived before allocating.
//
// Feed consumes chunks as they arrive and is resumable: after a "need more
// bytes" result the next call continues exactly where the previous one
// stopped, so every byte is inspected once regardless of how the input is
// chunked. The only state carried between calls is the stack of open
// containers and the byte count consumed so far.
//
// A Scanner is owned by one logical stream and is not safe for concurrent
// use. Reset it after each complete message before scanning the next.
type Scanner struct {
	limits Limits

	state   scanState
	stack   []int64 // remaining child slots per open container
	slotSum int64   // sum of stack, maintained incrementally
	pos     int     // bytes consumed across all Feed calls
	min     int64   // monotone lower bound on the total message length
	total   int     // exact total, valid once the scan is done

	dataLeft int64 // scanData: payload bytes still to skip
	lenKind  Kind  // scanLen: family whose length field is being read
	lenBuf   [4]byte
	lenHas   int
	lenSize  int

	err error
	ops int // state transitions, for checking linear scanning
}

// NewScanner creates a Scanner enforcing the given limits. Exceeding a
// limit is a structural failure, not a "need more bytes" condition.
func NewScanner(limits Limits) *Scanner {
	return &Scanner{limits: limits, min: 1}
}

// Reset forgets all state so the next Feed starts a new message.
func (s *Scanner) Reset() {
	s.state = scanMarker
	s.stack = s.stack[:0]
	s.slotSum = 0
	s.pos = 0
	s.min = 1
	s.total = 0
	s.dataLeft = 0
	s.lenHas = 0
	s.lenSize = 0
	s.err = nil
	s.ops = 0
}

// Feed scans the next chunk of the message. It returns true once a
// complete, well-formed message has been delimited; Total then reports its
// exact byte length, and any surplus bytes in the chunk are left untouched.
// A false return with a nil error means more bytes are needed; MinTotal
// reports a lower bound on the total length. A non-nil error is terminal
// for this message: the input is structurally invalid or breaches a limit.
//
// Feeding again after completion without a Reset returns ErrScanDone.
func (s *Scanner) Feed(chunk []byte) (bool, error) {
	s.ops++
	switch s.state {
	case scanFailed:
		return false, s.err
	case scanDone:
		return true, ErrScanDone
	}
	data := chunk
	for {
		switch s.state {
		case scanMarker:
			if len(data) == 0 {
				s.updateMin()
				return false, nil
			}
			b := data[0]
			data = data[1:]
			s.pos++
			s.ops++
			if err := s.markerByte(b); err != nil {
				return false, err
			}

		case scanLen:
			if len(data) == 0 {
				s.updateMin()
				return false, nil
			}
			n := copy(s.lenBuf[s.lenHas:s.lenSize], data)
			data = data[n:]
			s.pos += n
			s.lenHas += n
			s.ops++
			if s.lenHas < s.lenSize {
				s.updateMin()
				return false, nil
			}
			if err := s.lenDone(); err != nil {
				return false, err
			}

		case scanData:
			if len(data) == 0 {
				s.updateMin()
				return false, nil
			}
			take := int64(len(data))
			if take > s.dataLeft {
				take = s.dataLeft
			}
			data = data[take:]
			s.pos += int(take)
			s.dataLeft -= take
			s.ops++
			if s.dataLeft > 0 {
				s.updateMin()
				return false, nil
			}
			if err := s.completeItem(); err != nil {
				return false, err
			}

		case scanDone:
			return true, nil
		}
	}
}

// Done reports whether a complete message has been delimited.
func (s *Scanner) Done() bool {
	return s.state == scanDone
}

// Total returns the exact byte length of the delimited message. It is zero
// until Done reports true.
func (s *Scanner) Total() int {
	return s.total
}

// MinTotal returns the current lower bound on the total message length,
// counted from the first byte ever fed. It never decreases and never
// exceeds the true total, so callers can safely read that many bytes
// without overshooting the end of the message.
func (s *Scanner) MinTotal() int {
	if s.min > int64(math.MaxInt) {
		return math.MaxInt
	}
	return int(s.min)
}

// markerByte dispatches one lead byte: scalars with inline payloads resolve
// immediately, fixed-width scalars switch to payload skipping, containers
// push their child slot count, and variable-width families first collect
// their length field.
func (s *Scanner) markerByte(b byte) error {
	m := FromByte(b)
	switch m.Kind {
	case KindNil, KindTrue, KindFalse, KindFixPos, KindFixNeg:
		return s.completeItem()
	case KindReserved:
		return s.fail(ErrReserved)
	case KindFixStr:
		return s.setData(int64(m.FixLen()))
	case KindFixArray:
		return s.openSeq(int64(m.FixLen()))
	case KindFixMap:
		return s.openSeq(int64(m.FixLen()) * 2)
	case KindUint8, KindInt8:
		return s.setData(1)
	case KindUint16, KindInt16:
		return s.setData(2)
	case KindUint32, KindInt32, KindFloat32:
		return s.setData(4)
	case KindUint64, KindInt64, KindFloat64:
		return s.setData(8)
	case KindFixExt1:
		return s.setData(1 + 1) // type byte + payload
	case KindFixExt2:
		return s.setData(1 + 2)
	case KindFixExt4:
		return s.setData(1 + 4)
	case KindFixExt8:
		return s.setData(1 + 8)
	case KindFixExt16:
		return s.setData(1 + 16)
	case KindStr8, KindBin8, KindExt8:
		return s.setLen(m.Kind, 1)
	case KindStr16, KindBin16, KindExt16, KindArray16, KindMap16:
		return s.setLen(m.Kind, 2)
	default: // Str32, Bin32, Ext32, Array32, Map32
		return s.setLen(m.Kind, 4)
	}
}

// setLen starts collecting a big-endian length field of size bytes.
func (s *Scanner) setLen(kind Kind, size int) error {
	s.state = scanLen
	s.lenKind = kind
	s.lenSize = size
	s.lenHas = 0
	return s.checkSize()
}

// lenDone resolves a fully collected length field.
func (s *Scanner) lenDone() error {
	var n int64
	switch s.lenSize {
	case 1:
		n = int64(s.lenBuf[0])
	case 2:
		n = int64(binary.BigEndian.Uint16(s.lenBuf[:2]))
	default:
		n = int64(binary.BigEndian.Uint32(s.lenBuf[:4]))
	}
	switch s.lenKind {
	case KindStr8, KindStr16, KindStr32, KindBin8, KindBin16, KindBin32:
		return s.setData(n)
	case KindExt8, KindExt16, KindExt32:
		return s.setData(n + 1) // type byte precedes the payload
	case KindArray16, KindArray32:
		return s.openSeq(n)
	default: // Map16, Map32
		return s.openSeq(n * 2)
	}
}

// setData switches to skipping n payload bytes; zero-length payloads
// resolve immediately.
func (s *Scanner) setData(n int64) error {
	if n == 0 {
		return s.completeItem()
	}
	s.state = scanData
	s.dataLeft = n
	return s.checkSize()
}

// openSeq pushes a container with n child slots (map pairs contribute two
// slots each). Depth counts the container even when it is empty and closes
// immediately.
func (s *Scanner) openSeq(n int64) error {
	if s.limits.MaxDepth > 0 && len(s.stack)+1 > s.limits.MaxDepth {
		return s.fail(ErrTooDeep)
	}
	if n == 0 {
		return s.completeItem()
	}
	s.stack = append(s.stack, n)
	s.slotSum += n
	s.state = scanMarker
	return s.checkSize()
}

// completeItem marks one value as fully scanned: the innermost container
// loses a slot, and every container that reaches zero closes and cascades
// the decrement upward. An empty stack afterwards means the message is
// complete.
func (s *Scanner) completeItem() error {
	s.state = scanMarker
	for len(s.stack) > 0 {
		top := len(s.stack) - 1
		s.stack[top]--
		s.slotSum--
		s.ops++
		if s.stack[top] > 0 {
			return nil
		}
		s.stack = s.stack[:top]
	}
	s.state = scanDone
	s.total = s.pos
	s.min = int64(s.pos)
	return nil
}

// pending computes the current lower bound on the total message length:
// bytes consumed, plus the in-flight item's remaining minimum, plus one
// byte for every container slot a future value must fill. Slots held by
// values currently in progress are excluded: each open container has one
// slot taken by the next-deeper container (or by the in-flight item), and
// those bytes are already counted through wip.
func (s *Scanner) pending() int64 {
	if s.state == scanDone {
		return int64(s.total)
	}
	var wip int64
	switch s.state {
	case scanMarker:
		wip = 1
	case scanData:
		wip = s.dataLeft
	case scanLen:
		wip = int64(s.lenSize - s.lenHas)
	}
	return int64(s.pos) + wip + s.slotSum - int64(len(s.stack))
}

func (s *Scanner) updateMin() {
	if p := s.pending(); p > s.min {
		s.min = p
	}
}

// checkSize fails fast when the declared structure cannot fit the byte
// budget, before any of the declared bytes arrive.
func (s *Scanner) checkSize() error {
	if s.limits.MaxBytes > 0 && s.pending() > int64(s.limits.MaxBytes) {
		return s.fail(ErrTooLarge)
	}
	return nil
}

func (s *Scanner) fail(err error) error {
	s.state = scanFailed
	s.err = err
	return err
}

// MessageLen reports the exact encoded length of the single message at the
// start of p under DefaultLimits. Extra bytes after the message are
// ignored. A truncated message fails with an InsufficientDataError whose
// Expected field is a lower bound on the total length needed.
//
// Scanning many prefixes of the same buffer this way is quadratic; use a
// Scanner and Feed for streaming input.
func MessageLen(p []byte) (int, error) {
	s := NewScanner(DefaultLimits())
	done, err := s.Feed(p)
	if err != nil {
		return 0, err
	}
	if !done {
		return 0, &InsufficientDataError{Expected: s.MinTotal(), Actual: len(p), Pos: len(p)}
	}
	return s.Total(), nil
}
