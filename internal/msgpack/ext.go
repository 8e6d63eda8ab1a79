package msgpack

import "time"

// The timestamp extension (type -1) has three wire layouts, chosen by
// payload size. FixExt4 carries 32-bit unsigned seconds. FixExt8 packs
// 30-bit nanoseconds and 34-bit seconds into one big-endian u64 as
// (nsec<<34)|sec. Ext8 with length 12 carries u32 nanoseconds followed by
// i64 seconds and covers the full time.Time range.

const maxNanos = 999999999

// WriteTimestamp writes t as a timestamp extension value in the smallest
// layout that represents it exactly. The marker of the chosen layout is
// returned.
func (w *Writer) WriteTimestamp(t time.Time) Marker {
	secs := t.Unix()
	nsecs := uint64(t.Nanosecond())
	if secs >= 0 && secs>>34 == 0 {
		data := nsecs<<34 | uint64(secs)
		if data&0xffffffff00000000 == 0 {
			m := w.WriteExtHeader(TimestampExtType, 4)
			w.writeUint32(uint32(data))
			return m
		}
		m := w.WriteExtHeader(TimestampExtType, 8)
		w.writeUint64(data)
		return m
	}
	m := w.WriteExtHeader(TimestampExtType, 12)
	w.writeUint32(uint32(nsecs))
	w.writeUint64(uint64(secs))
	return m
}

// ReadTimestamp reads a timestamp extension value in any of its three
// layouts and returns the instant in UTC. An extension of any other type
// fails with ErrExtType; a timestamp payload of an unknown size fails with
// ErrLength.
func (r *Reader) ReadTimestamp() (time.Time, error) {
	meta, err := r.ReadExtHeader()
	if err != nil {
		return time.Time{}, err
	}
	if meta.Type != TimestampExtType {
		r.recordError(ErrExtType)
		return time.Time{}, r.err
	}
	switch meta.Size {
	case 4:
		v, err := r.readUint32()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(int64(v), 0).UTC(), nil
	case 8:
		v, err := r.readUint64()
		if err != nil {
			return time.Time{}, err
		}
		nsecs := v >> 34
		secs := v & (1<<34 - 1)
		if nsecs > maxNanos {
			r.recordError(ErrOutOfRange)
			return time.Time{}, r.err
		}
		return time.Unix(int64(secs), int64(nsecs)).UTC(), nil
	case 12:
		nsecs, err := r.readUint32()
		if err != nil {
			return time.Time{}, err
		}
		secs, err := r.readUint64()
		if err != nil {
			return time.Time{}, err
		}
		if nsecs > maxNanos {
			r.recordError(ErrOutOfRange)
			return time.Time{}, r.err
		}
		return time.Unix(int64(secs), int64(nsecs)).UTC(), nil
	default:
		r.recordError(ErrLength)
		return time.Time{}, r.err
	}
}

// Timestamp adapts time.Time to the codec interfaces so timestamps can be
// fields of self-encoding records.
type Timestamp struct {
	time.Time
}

var (
	_ Encodable = Timestamp{}
	_ Decodable = (*Timestamp)(nil)
)

func (t Timestamp) EncodeMsgpack(w *Writer) error {
	w.WriteTimestamp(t.Time)
	return w.Error()
}

func (t *Timestamp) DecodeMsgpack(r *Reader) error {
	v, err := r.ReadTimestamp()
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}
