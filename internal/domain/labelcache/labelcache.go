// Package labelcache remembers oracle labels by image content so repeated
// uploads of the same photo do not reach the oracle again.
package labelcache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/okian/lookbook/internal/domain/types"
)

// Cache maps image bytes to the label the oracle returned for them.
type Cache interface {
	// Get returns the cached label for image and marks it recently used.
	Get(ctx context.Context, image []byte) (types.Label, bool)

	// Put records label for image, evicting the least recently used entry
	// when the cache is full.
	Put(ctx context.Context, image []byte, label types.Label)

	Size() int64
}

// Digest is the cache key for image.
func Digest(image []byte) uint64 { return xxhash.Sum64(image) }

// node is one entry in the recency list.
type node struct {
	key        uint64
	label      types.Label
	prev, next *node
}

// reset clears the node state for reuse
func (n *node) reset() {
	*n = node{}
}

// lruCache is a bounded in-memory cache. head is the most recently used
// entry and tail the next to evict.
type lruCache struct {
	mu       sync.Mutex
	entries  map[uint64]*node
	head     *node
	tail     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// New creates an in-memory LRU cache.
func New(opts ...Option) Cache {
	c := &lruCache{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[uint64]*node, c.maxSize)
	c.nodePool = sync.Pool{New: func() any { return &node{} }}
	return c
}

func (c *lruCache) Get(_ context.Context, image []byte) (types.Label, bool) {
	key := Digest(image)

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return types.Label{}, false
	}
	c.moveToFront(n)
	return n.label, true
}

func (c *lruCache) Put(_ context.Context, image []byte, label types.Label) {
	key := Digest(image)

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.label = label
		c.moveToFront(n)
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evict()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.label = label
	c.pushFront(n)
	c.entries[key] = n
	c.size.Add(1)
}

func (c *lruCache) Size() int64 { return c.size.Load() }

// Must be called with c.mu held.
func (c *lruCache) pushFront(n *node) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// Must be called with c.mu held.
func (c *lruCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// Must be called with c.mu held.
func (c *lruCache) moveToFront(n *node) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// evict drops the least recently used entry. Must be called with c.mu held.
func (c *lruCache) evict() {
	n := c.tail
	if n == nil {
		return
	}
	c.unlink(n)
	delete(c.entries, n.key)
	n.reset()
	c.nodePool.Put(n)
	c.size.Add(-1)
}
