package page

import (
	"github.com/macneib/Akumuli/chunk"
	"github.com/macneib/Akumuli/errs"
)

// CompleteChunk encodes an uncompressed chunk per the chunk codec,
// packs the encoded region into the page's free space, then publishes a
// forward and backward descriptor entry (CHUNK_FWD_ID timestamped at the
// chunk's first sample, CHUNK_BWD_ID at its last) and syncs both into the
// readable prefix, sorting the histogram once after the second.
func (p *Page) CompleteChunk(c *chunk.UncompressedChunk, codecImpl chunk.Codec) error {
	if c.Len() == 0 {
		return errs.ErrBadData
	}

	payload, desc, err := chunk.Encode(c, codecImpl)
	if err != nil {
		return err
	}

	size := uint64(len(payload))
	if p.freeBytes() < size {
		return errs.ErrOverflow
	}

	offset := p.header.LastOffset - size
	copy(p.mem[offset:offset+size], payload)
	p.header.LastOffset = offset

	timeOrdered := chunk.ToTimeOrder(c)
	firstTS := timeOrdered.Timestamps[0]
	lastTS := timeOrdered.Timestamps[len(timeOrdered.Timestamps)-1]

	cd := ChunkDesc{
		NElements:   desc.NElements,
		BeginOffset: uint32(offset),
		EndOffset:   uint32(offset) + uint32(size),
		CRC32:       desc.CRC32,
	}
	cdBytes := cd.Bytes()

	if _, err := p.placeEntry(ChunkFwdID, firstTS, cdBytes); err != nil {
		return err
	}

	if err := p.SyncNextIndex(false); err != nil {
		return err
	}

	if _, err := p.placeEntry(ChunkBwdID, lastTS, cdBytes); err != nil {
		return err
	}

	return p.SyncNextIndex(true)
}
