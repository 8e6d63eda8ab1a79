package msgpack

// Encodable is implemented by types that serialize themselves with a
// Writer. Implementations call the Write* primitives and report the
// writer's first error; they must not buffer or reorder output.
type Encodable interface {
	EncodeMsgpack(w *Writer) error
}

// Decodable is implemented by types that populate themselves from a
// Reader. Implementations consume exactly one value, nested content
// included, so that the reader is left positioned at the next value.
type Decodable interface {
	DecodeMsgpack(r *Reader) error
}
