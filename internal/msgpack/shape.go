package msgpack

// Shape decides how a record and its field labels appear on the wire.
// Serialization layers that map typed records onto MessagePack inject a
// Shape instead of hardcoding one container family, so the same record
// type can be written compactly or self-describingly without touching the
// codec.
type Shape interface {
	// WriteHeader begins a record of n fields.
	WriteHeader(w *Writer, n int)
	// WriteField introduces the next field before its value is written.
	WriteField(w *Writer, name string)
}

// TupleShape writes records as arrays: fields are positional and field
// names never reach the wire. This is the compact default.
type TupleShape struct{}

// NamedShape writes records as maps keyed by field name. Peers can then
// reorder or skip fields, at the cost of the names on the wire.
type NamedShape struct{}

var (
	_ Shape = TupleShape{}
	_ Shape = NamedShape{}
)

func (TupleShape) WriteHeader(w *Writer, n int) {
	w.WriteArrayHeader(n)
}

func (TupleShape) WriteField(w *Writer, name string) {
}

func (NamedShape) WriteHeader(w *Writer, n int) {
	w.WriteMapHeader(n)
}

func (NamedShape) WriteField(w *Writer, name string) {
	w.WriteString(name)
}

// ReadRecordHeader accepts a record encoded under either shape: it reads
// one container header and reports the field count and whether fields are
// keyed by name. Callers reading a named record consume a string key before
// each field value.
func (r *Reader) ReadRecordHeader() (n int, named bool, err error) {
	m, err := r.ReadMarker()
	if err != nil {
		return 0, false, err
	}
	switch m.Kind {
	case KindFixArray, KindArray16, KindArray32:
		n, err = r.arrayHeaderFrom(m)
		return n, false, err
	case KindFixMap, KindMap16, KindMap32:
		n, err = r.mapHeaderFrom(m)
		return n, true, err
	default:
		r.recordError(mismatch(m))
		return 0, false, r.err
	}
}
