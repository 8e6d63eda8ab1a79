package msgpack

// MessageBuffer splits a stream of arbitrarily chunked bytes into complete
// MessagePack messages. Push hands it chunks exactly as they arrive from
// the transport; Next yields one full message at a time, re-chunking at
// message boundaries without copying payload bytes: a returned message
// references the pushed chunks, split only at its first and last chunk.
//
// The zero value is not ready for use; construct with NewMessageBuffer.
type MessageBuffer struct {
	scanner *Scanner
	chunks  [][]byte // unconsumed input, in arrival order
	parsed  int      // bytes of chunks already scanned
	err     error    // first structural error, terminal
}

// NewMessageBuffer creates a MessageBuffer whose message scanning enforces
// the given limits.
func NewMessageBuffer(limits Limits) *MessageBuffer {
	return &MessageBuffer{scanner: NewScanner(limits)}
}

// Push appends one received chunk. Empty chunks are dropped, as is
// everything pushed after a structural failure. Push never fails;
// structural errors surface from Next.
func (m *MessageBuffer) Push(chunk []byte) {
	if m.err != nil || len(chunk) == 0 {
		return
	}
	m.chunks = append(m.chunks, chunk)
}

// Next returns the chunks making up the next complete message, or nil when
// the buffered bytes do not yet form one. Once the stream turns out to be
// structurally invalid, Next reports that error forever; bytes already
// buffered are unrecoverable because the message boundary is unknowable.
func (m *MessageBuffer) Next() ([][]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	for m.parsed < len(m.chunks) {
		done, err := m.scanner.Feed(m.chunks[m.parsed])
		if err != nil {
			m.err = err
			m.chunks = nil
			m.parsed = 0
			return nil, err
		}
		if !done {
			m.parsed++
			continue
		}
		return m.take(), nil
	}
	return nil, nil
}

// take carves the completed message out of chunks and resets the scanner
// for the next one. The last chunk may hold bytes of the following message;
// it is split in place.
func (m *MessageBuffer) take() [][]byte {
	total := m.scanner.Total()
	msg := make([][]byte, 0, m.parsed+1)
	for _, c := range m.chunks[:m.parsed] {
		msg = append(msg, c)
		total -= len(c)
	}
	last := m.chunks[m.parsed]
	if total > 0 {
		msg = append(msg, last[:total:total])
	}
	rest := last[total:]
	m.chunks = m.chunks[m.parsed:]
	m.chunks[0] = rest
	if len(rest) == 0 {
		m.chunks = m.chunks[1:]
	}
	m.parsed = 0
	m.scanner.Reset()
	return msg
}

// Need reports how many more bytes must be pushed, at minimum, before Next
// can possibly return a message. It is zero when a message may already be
// complete.
func (m *MessageBuffer) Need() int {
	if m.err != nil {
		return 0
	}
	buffered := 0
	for _, c := range m.chunks {
		buffered += len(c)
	}
	need := m.scanner.MinTotal() - buffered
	if need < 0 {
		return 0
	}
	return need
}

// Buffered reports the number of unconsumed bytes currently held.
func (m *MessageBuffer) Buffered() int {
	n := 0
	for _, c := range m.chunks {
		n += len(c)
	}
	return n
}
