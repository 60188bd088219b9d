package codec

// EncodeTimestamps writes ts through the Delta -> ZigZag -> RLE -> Base128
// pipeline. Timestamps are monotonic in the common case but late writes can
// make a delta negative, hence the ZigZag stage.
func EncodeTimestamps(ts []uint64, w *BoundedWriter) error {
	chain := NewDeltaWriter(NewZigZagWriter(NewRLEWriter(NewBase128Writer(w))))

	for _, v := range ts {
		if err := chain.Write(int64(v)); err != nil {
			return err
		}
	}

	return chain.Commit()
}

// DecodeTimestamps reads n timestamps back off c.
func DecodeTimestamps(c *Cursor, n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}

	chain := NewDeltaReader(NewZigZagReader(NewRLEReader(NewBase128Reader(c))))

	out := make([]uint64, 0, n)

	for i := 0; i < n; i++ {
		v, ok, err := chain.Read()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, ErrStreamOutOfBounds
		}

		out = append(out, uint64(v))
	}

	return out, nil
}

// EncodeParamIDs writes ids through the Base128-only pipeline. Parameter
// ids are small integers assigned sequentially by the series matcher, so
// a plain varint already keeps them short.
func EncodeParamIDs(ids []uint64, w *BoundedWriter) error {
	chain := NewBase128Writer(w)

	for _, v := range ids {
		if err := chain.Write(v); err != nil {
			return err
		}
	}

	return chain.Commit()
}

// DecodeParamIDs reads n parameter ids back off c.
func DecodeParamIDs(c *Cursor, n int) ([]uint64, error) {
	chain := NewBase128Reader(c)

	out := make([]uint64, 0, n)

	for i := 0; i < n; i++ {
		v, ok, err := chain.Read()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, ErrStreamOutOfBounds
		}

		out = append(out, v)
	}

	return out, nil
}

// EncodeLengths writes lens through the RLE -> Base128 pipeline. Entry
// payload lengths repeat heavily within a chunk (fixed-width values), so
// RLE alone is effective without a delta stage.
func EncodeLengths(lens []uint64, w *BoundedWriter) error {
	chain := NewRLEWriter(NewBase128Writer(w))

	for _, v := range lens {
		if err := chain.Write(v); err != nil {
			return err
		}
	}

	return chain.Commit()
}

// DecodeLengths reads n lengths back off c.
func DecodeLengths(c *Cursor, n int) ([]uint64, error) {
	chain := NewRLEReader(NewBase128Reader(c))

	out := make([]uint64, 0, n)

	for i := 0; i < n; i++ {
		v, ok, err := chain.Read()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, ErrStreamOutOfBounds
		}

		out = append(out, v)
	}

	return out, nil
}

// EncodeOffsets writes offsets through the Delta -> ZigZag -> RLE ->
// Base128 pipeline, identical in shape to EncodeTimestamps but named
// separately since offsets and timestamps are distinct domains.
func EncodeOffsets(offsets []int64, w *BoundedWriter) error {
	chain := NewDeltaWriter(NewZigZagWriter(NewRLEWriter(NewBase128Writer(w))))

	for _, v := range offsets {
		if err := chain.Write(v); err != nil {
			return err
		}
	}

	return chain.Commit()
}

// DecodeOffsets reads n offsets back off c.
func DecodeOffsets(c *Cursor, n int) ([]int64, error) {
	chain := NewDeltaReader(NewZigZagReader(NewRLEReader(NewBase128Reader(c))))

	out := make([]int64, 0, n)

	for i := 0; i < n; i++ {
		v, ok, err := chain.Read()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, ErrStreamOutOfBounds
		}

		out = append(out, v)
	}

	return out, nil
}
