package mappedfile

import "container/list"

// BlockSize is the fixed window size used by the block cache, and the
// granularity the backing file is grown/aligned to.
const BlockSize = 4096

// MaxCachedBlocks bounds the LRU block cache. The mapping itself always
// covers the whole file; this cap only bounds the bookkeeping set used to
// decide which blocks are "hot" — evicting a block does not unmap any
// memory, it just drops the cache's reference to that window.
const MaxCachedBlocks = 1000

type blockIndex int64

// block is a windowed view into the mapping at a block-aligned offset.
// It carries a cursor field, but MappedFile's reads and writes do not use
// it: they compute their offset within the block on every call.
type block struct {
	index  blockIndex
	data   []byte // BlockSize bytes sliced out of the mapping
	cursor int
}

func (b *block) reset() { b.cursor = 0 }

// blockCache is an LRU cache of at most MaxCachedBlocks blocks, keyed by
// block index. It never owns the bytes it caches — those live in the
// MappedFile's mapping — it only orders and bounds which indices are
// considered resident.
type blockCache struct {
	capacity int
	order    *list.List
	entries  map[blockIndex]*list.Element
}

type cacheEntry struct {
	index blockIndex
	blk   *block
}

func newBlockCache(capacity int) *blockCache {
	if capacity <= 0 {
		capacity = MaxCachedBlocks
	}
	return &blockCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[blockIndex]*list.Element),
	}
}

// get returns the cached block for index, moving it to the front of the
// LRU order, or (nil, false) on a cache miss.
func (c *blockCache) get(idx blockIndex) (*block, bool) {
	elem, ok := c.entries[idx]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).blk, true
}

// put inserts or refreshes a block in the cache, evicting the least
// recently used entry if the cache is at capacity.
func (c *blockCache) put(blk *block) {
	if elem, ok := c.entries[blk.index]; ok {
		elem.Value.(*cacheEntry).blk = blk
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{index: blk.index, blk: blk})
	c.entries[blk.index] = elem

	for c.order.Len() > c.capacity {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.order.Remove(back)
		delete(c.entries, back.Value.(*cacheEntry).index)
	}
}

// clear drops every cached block; it does not affect the mapping.
func (c *blockCache) clear() {
	c.order.Init()
	c.entries = make(map[blockIndex]*list.Element)
}

// len reports how many blocks are currently resident in the cache.
func (c *blockCache) len() int {
	return c.order.Len()
}
