package codec

// Base128Writer is the innermost layer: it appends each value as a
// Base-128 varint onto a bounded writer. It has no further layer to
// cascade to, so Commit is a no-op.
type Base128Writer struct {
	w *BoundedWriter
}

// NewBase128Writer wraps w as the terminal varint layer.
func NewBase128Writer(w *BoundedWriter) *Base128Writer {
	return &Base128Writer{w: w}
}

// Write appends v as a varint.
func (b *Base128Writer) Write(v uint64) error {
	return PutUvarint(b.w, v)
}

// Commit is a no-op; Base128Writer is the terminal layer.
func (b *Base128Writer) Commit() error { return nil }

// Base128Reader reads varints back off a cursor.
type Base128Reader struct {
	c *Cursor
}

// NewBase128Reader wraps c as the terminal varint layer.
func NewBase128Reader(c *Cursor) *Base128Reader {
	return &Base128Reader{c: c}
}

// Read returns the next varint, or ok=false when the cursor is exhausted.
func (b *Base128Reader) Read() (v uint64, ok bool, err error) {
	if b.c.Remaining() == 0 {
		return 0, false, nil
	}

	v, err = ReadUvarint(b.c)
	if err != nil {
		return 0, false, err
	}

	return v, true, nil
}

// RLEWriter buffers the current run of equal values and flushes a
// (count, value) pair to the next layer whenever the value changes, or on
// Commit.
type RLEWriter struct {
	next       *Base128Writer
	curVal     uint64
	curCount   uint64
	hasCurrent bool
}

// NewRLEWriter wraps next in a run-length encoding layer.
func NewRLEWriter(next *Base128Writer) *RLEWriter {
	return &RLEWriter{next: next}
}

// Write extends the current run, or flushes it and starts a new one.
func (w *RLEWriter) Write(v uint64) error {
	if w.hasCurrent && v == w.curVal {
		w.curCount++

		return nil
	}

	if w.hasCurrent {
		if err := w.flush(); err != nil {
			return err
		}
	}

	w.curVal = v
	w.curCount = 1
	w.hasCurrent = true

	return nil
}

func (w *RLEWriter) flush() error {
	if err := w.next.Write(w.curCount); err != nil {
		return err
	}

	return w.next.Write(w.curVal)
}

// Commit flushes any buffered run, then cascades to the next layer.
func (w *RLEWriter) Commit() error {
	if w.hasCurrent {
		if err := w.flush(); err != nil {
			return err
		}

		w.hasCurrent = false
	}

	return w.next.Commit()
}

// RLEReader expands (count, value) pairs back into a flat sequence.
type RLEReader struct {
	next      *Base128Reader
	remaining uint64
	val       uint64
}

// NewRLEReader wraps next in a run-length decoding layer.
func NewRLEReader(next *Base128Reader) *RLEReader {
	return &RLEReader{next: next}
}

// Read returns the next value in the expanded sequence.
func (r *RLEReader) Read() (v uint64, ok bool, err error) {
	if r.remaining == 0 {
		count, ok, err := r.next.Read()
		if err != nil || !ok {
			return 0, ok, err
		}

		val, ok, err := r.next.Read()
		if err != nil {
			return 0, false, err
		}

		if !ok {
			return 0, false, ErrStreamOutOfBounds
		}

		r.remaining = count
		r.val = val
	}

	r.remaining--

	return r.val, true, nil
}

// ZigZagWriter maps signed values to unsigned ones before handing them to
// the next (unsigned) layer.
type ZigZagWriter struct {
	next *RLEWriter
}

// NewZigZagWriter wraps next in a zigzag-encoding layer.
func NewZigZagWriter(next *RLEWriter) *ZigZagWriter {
	return &ZigZagWriter{next: next}
}

// Write zigzag-encodes v and forwards it.
func (w *ZigZagWriter) Write(v int64) error {
	return w.next.Write(ZigZagEncode(v))
}

// Commit cascades to the next layer.
func (w *ZigZagWriter) Commit() error { return w.next.Commit() }

// ZigZagReader reverses ZigZagWriter.
type ZigZagReader struct {
	next *RLEReader
}

// NewZigZagReader wraps next in a zigzag-decoding layer.
func NewZigZagReader(next *RLEReader) *ZigZagReader {
	return &ZigZagReader{next: next}
}

// Read returns the next zigzag-decoded signed value.
func (r *ZigZagReader) Read() (v int64, ok bool, err error) {
	u, ok, err := r.next.Read()
	if err != nil || !ok {
		return 0, ok, err
	}

	return ZigZagDecode(u), true, nil
}

// DeltaWriter stores each value as the difference from the previous one
// (x_{-1} = 0 for the first value), forwarding signed deltas to the next
// layer.
type DeltaWriter struct {
	next *ZigZagWriter
	prev int64
	has  bool
}

// NewDeltaWriter wraps next in a delta-encoding layer.
func NewDeltaWriter(next *ZigZagWriter) *DeltaWriter {
	return &DeltaWriter{next: next}
}

// Write encodes v as a delta from the previously written value.
func (w *DeltaWriter) Write(v int64) error {
	d := v
	if w.has {
		d = v - w.prev
	}

	w.prev = v
	w.has = true

	return w.next.Write(d)
}

// Commit cascades to the next layer.
func (w *DeltaWriter) Commit() error { return w.next.Commit() }

// DeltaReader reverses DeltaWriter by maintaining a running sum.
type DeltaReader struct {
	next *ZigZagReader
	prev int64
	has  bool
}

// NewDeltaReader wraps next in a delta-decoding layer.
func NewDeltaReader(next *ZigZagReader) *DeltaReader {
	return &DeltaReader{next: next}
}

// Read returns the next reconstructed absolute value.
func (r *DeltaReader) Read() (v int64, ok bool, err error) {
	d, ok, err := r.next.Read()
	if err != nil || !ok {
		return 0, ok, err
	}

	if r.has {
		v = r.prev + d
	} else {
		v = d
	}

	r.prev = v
	r.has = true

	return v, true, nil
}
