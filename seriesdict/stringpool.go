// Package seriesdict implements the series name interning layer: a
// fixed-bin string pool, a name<->id matcher built on it, and the
// normal-form parser series names must satisfy.
package seriesdict

import "sync"

// maxBinSize bounds how large a single pool bin grows before a new one is
// allocated; mirrors the original implementation's MAX_SNAME-scaled bin
// size, generalized into a plain constant since Go has no equivalent
// compile-time limits header to derive it from.
const maxBinSize = 512 * 0x1000

// Handle identifies an interned byte range: which bin it lives in and its
// offset/length within that bin. Handles remain valid for the lifetime of
// the StringPool, since bins are never reallocated or moved once
// allocated — only appended to, up to maxBinSize, after which a new bin
// is started.
type Handle struct {
	Bin    int
	Offset int
	Length int
}

// StringPool is an append-only sequence of fixed-size bins. Add copies the
// given bytes into the current bin (allocating a new one if it would not
// fit) and returns a Handle describing where they landed.
type StringPool struct {
	mu      sync.Mutex
	bins    [][]byte
	counter int
}

// NewStringPool creates an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{}
}

// Add interns name's bytes and returns a Handle for later retrieval via
// Get. Thread-safe under a single mutex, matching the original's
// single-mutex StringPool.
func (p *StringPool) Add(name string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.bins) == 0 || len(p.bins[len(p.bins)-1])+len(name) > maxBinSize {
		cap := maxBinSize
		if len(name) > cap {
			cap = len(name)
		}

		p.bins = append(p.bins, make([]byte, 0, cap))
	}

	bin := len(p.bins) - 1
	offset := len(p.bins[bin])
	p.bins[bin] = append(p.bins[bin], name...)
	p.counter++

	return Handle{Bin: bin, Offset: offset, Length: len(name)}
}

// Get resolves a Handle back to its interned string.
func (p *StringPool) Get(h Handle) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return string(p.bins[h.Bin][h.Offset : h.Offset+h.Length])
}

// Size returns the number of strings interned so far.
func (p *StringPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.counter
}
