package codec

// PutUvarint writes v as a Base-128 varint (7 bits/byte, high bit set on
// continuation) onto w, failing with ErrStreamOutOfBounds if w's bound
// would be exceeded partway through.
func PutUvarint(w *BoundedWriter, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}

		v >>= 7
	}

	return w.WriteByte(byte(v))
}

// AppendUvarint appends v to dst as a Base-128 varint and returns the
// extended slice, for callers that manage their own growable buffer
// instead of a BoundedWriter.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// ReadUvarint reads a Base-128 varint from c, failing with
// ErrStreamOutOfBounds if the cursor is exhausted before a terminating byte
// (high bit clear) is found.
func ReadUvarint(c *Cursor) (uint64, error) {
	var v uint64

	var shift uint

	for {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}

		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}

		shift += 7
		if shift >= 64 {
			return 0, ErrStreamOutOfBounds
		}
	}
}
