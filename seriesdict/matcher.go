package seriesdict

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// NamedID pairs a series name with the id the matcher assigned it. Used
// both as the staging-buffer element type and as PullNewNames' return
// value.
type NamedID struct {
	Name string
	ID   uint64
}

type tableEntry struct {
	name   string
	handle Handle
	id     uint64
}

// Matcher maps interned series names to stable ids and back. Ids are
// assigned in increasing order starting from startingID and are never
// reused.
type Matcher struct {
	mu      sync.Mutex
	pool    *StringPool
	table   map[uint64][]tableEntry // xxhash fingerprint -> collision chain
	inv     map[uint64]Handle
	nextID  uint64
	pending []NamedID
}

// NewMatcher creates a Matcher whose next assigned id is startingID.
// Panics if startingID is 0: a starting id of 0 would collide with
// Match's "unknown" sentinel return value.
func NewMatcher(startingID uint64) *Matcher {
	if startingID == 0 {
		panic("seriesdict: bad starting series id")
	}

	return &Matcher{
		pool:   NewStringPool(),
		table:  make(map[uint64][]tableEntry),
		inv:    make(map[uint64]Handle),
		nextID: startingID,
	}
}

// Add interns name, assigns it the next series id, and records it in the
// staging buffer for the caller to persist via PullNewNames. Always
// assigns a fresh id, even if name is already known — callers are
// expected to call Match first and only Add on a miss.
func (m *Matcher) Add(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	handle := m.pool.Add(name)
	fp := xxhash.Sum64String(name)
	m.table[fp] = append(m.table[fp], tableEntry{name: name, handle: handle, id: id})
	m.inv[id] = handle
	m.pending = append(m.pending, NamedID{Name: name, ID: id})

	return id
}

// AddKnown inserts a (name, id) pair loaded from persistence without
// touching the id counter or the staging buffer. A no-op on an empty
// name.
func (m *Matcher) AddKnown(name string, id uint64) {
	if name == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	handle := m.pool.Add(name)
	fp := xxhash.Sum64String(name)
	m.table[fp] = append(m.table[fp], tableEntry{name: name, handle: handle, id: id})
	m.inv[id] = handle
}

// Match returns name's id, or 0 if it is unknown.
func (m *Matcher) Match(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	fp := xxhash.Sum64String(name)
	for _, e := range m.table[fp] {
		if e.name == name {
			return e.id
		}
	}

	return 0
}

// IDToString reverses Match/Add: resolves id back to its series name. The
// second return value is false if id is unknown.
func (m *Matcher) IDToString(id uint64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.inv[id]
	if !ok {
		return "", false
	}

	return m.pool.Get(h), true
}

// PullNewNames atomically drains the staging buffer of names added since
// the last call (or since creation). The caller is expected to persist
// the returned rows.
func (m *Matcher) PullNewNames() []NamedID {
	m.mu.Lock()
	defer m.mu.Unlock()

	drained := m.pending
	m.pending = nil

	return drained
}

// AllIDs returns every id the matcher currently knows about, in no
// particular order.
func (m *Matcher) AllIDs() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint64, 0, len(m.inv))
	for id := range m.inv {
		ids = append(ids, id)
	}

	return ids
}
