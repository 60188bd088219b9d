// Package chunkcache holds decompressed chunks in memory, shared
// read-only across concurrent searches, so a hot chunk is decoded once
// rather than once per query. It implements page.ChunkResolver.
package chunkcache

import (
	"container/list"
	"sync"

	"github.com/macneib/Akumuli/chunk"
)

// Key identifies a chunk by the page it lives on and its byte offset
// within that page.
type Key struct {
	PageID      uint32
	ChunkOffset uint32
}

type entry struct {
	key  Key
	size uint64
	item *chunk.UncompressedChunk
}

// Cache is a FIFO-eviction bounded cache of decompressed chunks, keyed
// by (pageID, chunkOffset). Insertion past SizeLimit evicts the oldest
// entry first; a single insert never evicts more than one entry, so
// the cache can briefly exceed its limit, matching the source
// structure this is grounded on.
type Cache struct {
	mu        sync.Mutex
	items     map[Key]*list.Element
	fifo      *list.List
	totalSize uint64
	sizeLimit uint64
}

// New builds an empty Cache that evicts once its resident byte total
// would exceed sizeLimit.
func New(sizeLimit uint64) *Cache {
	return &Cache{
		items:     make(map[Key]*list.Element),
		fifo:      list.New(),
		sizeLimit: sizeLimit,
	}
}

// Contains reports whether key is currently cached.
func (c *Cache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]

	return ok
}

// Get returns the cached chunk for key, or nil if absent.
func (c *Cache) Get(key Key) *chunk.UncompressedChunk {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil
	}

	return el.Value.(*entry).item
}

func chunkSize(c *chunk.UncompressedChunk) uint64 {
	n := uint64(c.Len())

	return n*8 /* paramid */ + n*8 /* timestamp */ + n*8 /* value */
}

// Put inserts c under key, evicting the single oldest entry first if
// the insert would push the cache's resident size over its limit.
func (c *Cache) Put(key Key, item *chunk.UncompressedChunk) {
	size := chunkSize(item)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		return
	}

	if c.totalSize+size > c.sizeLimit && c.fifo.Len() > 0 {
		oldest := c.fifo.Back()
		c.fifo.Remove(oldest)

		ev := oldest.Value.(*entry)
		delete(c.items, ev.key)
		c.totalSize -= ev.size
	}

	el := c.fifo.PushFront(&entry{key: key, size: size, item: item})
	c.items[key] = el
	c.totalSize += size
}

// Resolve implements page.ChunkResolver: it serves chunkOffset out of
// the cache when present, otherwise runs decode and caches the result
// before returning it.
func (c *Cache) Resolve(pageID uint32, chunkOffset uint32, decode func() (*chunk.UncompressedChunk, error)) (*chunk.UncompressedChunk, error) {
	key := Key{PageID: pageID, ChunkOffset: chunkOffset}

	if cached := c.Get(key); cached != nil {
		return cached, nil
	}

	decoded, err := decode()
	if err != nil {
		return nil, err
	}

	c.Put(key, decoded)

	return decoded, nil
}
