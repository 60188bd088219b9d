// Package volume owns one page-backed mmap'd file plus the in-memory
// sequencer buffering writes destined for it.
package volume

import (
	"fmt"
	"os"

	"github.com/macneib/Akumuli/chunk"
	"github.com/macneib/Akumuli/page"
	"github.com/macneib/Akumuli/sequencer"
)

// Volume is one slot in a storage ring: a single page-backed file plus
// the sequencer buffering not-yet-flushed writes for it.
type Volume struct {
	Page       *page.Page
	Sequencer  *sequencer.Sequencer
	Path       string
	length     uint64
	seqCfg     sequencer.Config
	isTemp     bool
	tmpSibling string
}

// Create makes a brand-new volume file of the given length and opens
// it for writing.
func Create(path string, index uint32, length uint64, seqCfg sequencer.Config) (*Volume, error) {
	p, err := page.Create(path, index, length)
	if err != nil {
		return nil, err
	}

	return &Volume{
		Page:      p,
		Sequencer: sequencer.New(seqCfg),
		Path:      path,
		length:    length,
		seqCfg:    seqCfg,
	}, nil
}

// Open maps an existing volume file and, if its open/close counters
// disagree, restores the page's readable prefix before returning.
func Open(path string, seqCfg sequencer.Config) (*Volume, error) {
	p, err := page.Open(path)
	if err != nil {
		return nil, err
	}

	if p.NeedsRestore() {
		p.Restore()
	}

	return &Volume{
		Page:      p,
		Sequencer: sequencer.New(seqCfg),
		Path:      path,
		length:    p.Header().Length,
		seqCfg:    seqCfg,
	}, nil
}

// OpenForWrite opens an existing volume and prepares it to accept new
// writes: reuse() then flush(), matching the page's open() contract.
func (v *Volume) OpenForWrite() error {
	v.Page.Reuse()

	return v.Flush()
}

// Flush persists the header then the mapped body to disk.
func (v *Volume) Flush() error {
	return v.Page.Flush()
}

// Close flushes and unmaps the volume, releasing its resources. It
// does not touch close_count: a full process shutdown leaves
// open_count ahead of close_count by one, which is how the next
// startup tells "cleanly stopped while active" apart from "crashed
// mid-rotation" (see Deactivate).
func (v *Volume) Close() error {
	if err := v.Flush(); err != nil {
		return err
	}

	if err := v.Page.Close(); err != nil {
		return err
	}

	if v.isTemp && v.tmpSibling != "" {
		return os.Remove(v.tmpSibling)
	}

	return nil
}

// Deactivate flushes and marks the volume closed, without unmapping
// it: used when rotating a volume out of the active slot, so the
// bumped close_count tells a future startup this volume's generation
// ended cleanly rather than mid-switch. The mapping stays valid for
// any reader still traversing it.
func (v *Volume) Deactivate() error {
	if err := v.Flush(); err != nil {
		return err
	}

	v.Page.MarkClosed()

	return v.Flush()
}

// MakeReadonly revokes write access to the underlying mapping,
// used when the volume is rotated out of the active slot.
func (v *Volume) MakeReadonly() error {
	return v.Page.MakeReadonly()
}

// MakeWritable restores write access, used when recycling a volume
// back into the active slot.
func (v *Volume) MakeWritable() error {
	return v.Page.MakeWritable()
}

// SafeRealloc recycles the volume's backing file for reuse while its
// existing mapping stays valid for any reader still traversing it: the
// file is renamed to a `.tmp` sibling — the inode v's mmap already
// points at keeps working — and a fresh file of the same dimensions
// takes its place at the original path. v itself is marked to delete
// the `.tmp` sibling once its own Close runs, by which point any
// reader holding v has had a chance to finish with it. The returned
// Volume is the fresh one, ready for OpenForWrite.
func (v *Volume) SafeRealloc() (*Volume, error) {
	tmpPath := fmt.Sprintf("%s.tmp", v.Path)

	if err := os.Rename(v.Path, tmpPath); err != nil {
		return nil, err
	}

	v.isTemp = true
	v.tmpSibling = tmpPath

	fresh, err := Create(v.Path, v.Page.Header().PageID, v.length, v.seqCfg)
	if err != nil {
		return nil, err
	}

	return fresh, nil
}

// CompleteChunk encodes c and publishes it into the volume's page,
// using codecImpl for the optional secondary compression pass.
func (v *Volume) CompleteChunk(c *chunk.UncompressedChunk, codecImpl chunk.Codec) error {
	return v.Page.CompleteChunk(c, codecImpl)
}
