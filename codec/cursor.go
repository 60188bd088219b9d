package codec

import "errors"

// ErrStreamOutOfBounds is returned when a write or read would cross the end
// of the bounded cursor backing a byte stream. It mirrors the original
// implementation's StreamOutOfBounds exception, rendered as a Go error.
var ErrStreamOutOfBounds = errors.New("codec: stream out of bounds")

// Cursor is a read-only view over a byte slice, consumed by the varint
// layer's decoders. It never reads past len(buf); encoding goes through
// BoundedWriter instead.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps an existing byte slice for reading from offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total number of bytes backing the cursor.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Bytes returns the full backing slice.
func (c *Cursor) Bytes() []byte { return c.buf }

// ReadByte reads a single byte, advancing the cursor. Returns
// ErrStreamOutOfBounds if the cursor has been exhausted.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrStreamOutOfBounds
	}

	b := c.buf[c.pos]
	c.pos++

	return b, nil
}

// BoundedWriter appends to an internal slice, but fails with
// ErrStreamOutOfBounds once the caller-provided maximum length would be
// exceeded. It is used when encoding into a fixed-size page region where
// overrunning the free space must be detected rather than silently
// reallocated.
type BoundedWriter struct {
	buf []byte
	max int
}

// NewBoundedWriter creates a writer that will refuse to grow its buffer
// past maxLen bytes.
func NewBoundedWriter(maxLen int) *BoundedWriter {
	return &BoundedWriter{buf: make([]byte, 0, maxLen), max: maxLen}
}

// WriteByte appends a single byte, or fails if the bound would be exceeded.
func (w *BoundedWriter) WriteByte(b byte) error {
	if len(w.buf) >= w.max {
		return ErrStreamOutOfBounds
	}

	w.buf = append(w.buf, b)

	return nil
}

// Write appends p, or fails (without partial writes) if the bound would be
// exceeded.
func (w *BoundedWriter) Write(p []byte) error {
	if len(w.buf)+len(p) > w.max {
		return ErrStreamOutOfBounds
	}

	w.buf = append(w.buf, p...)

	return nil
}

// Bytes returns the bytes written so far.
func (w *BoundedWriter) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *BoundedWriter) Len() int { return len(w.buf) }
