package cache

import "github.com/IvanBrykalov/mediawindow/media"

// ItemCache is the bounded media item store fed by the pager and swept
// against the currently visible window.
type ItemCache struct {
	c Cache[media.Key, media.Item]
}

// NewItemCache builds an ItemCache. See Options for defaults.
func NewItemCache(opt Options[media.Key, media.Item]) *ItemCache {
	return &ItemCache{c: New(opt)}
}

// Put upserts items under their keys and evicts the oldest-inserted excess.
func (ic *ItemCache) Put(items []media.Item) {
	if len(items) == 0 {
		return
	}
	entries := make([]Entry[media.Key, media.Item], len(items))
	for i, it := range items {
		entries[i] = Entry[media.Key, media.Item]{Key: it.Key(), Value: it}
	}
	ic.c.Put(entries...)
}

// Get returns the cached item for k.
func (ic *ItemCache) Get(k media.Key) (media.Item, bool) { return ic.c.Get(k) }

// SweepVisible drops every item whose key is not in visible, subject to
// the sweep interval. ran reports whether the sweep was due.
func (ic *ItemCache) SweepVisible(visible map[media.Key]struct{}) (removed int, ran bool) {
	return ic.c.Sweep(func(k media.Key) bool {
		_, ok := visible[k]
		return ok
	})
}

// Len returns the number of cached items.
func (ic *ItemCache) Len() int { return ic.c.Len() }

// Keys returns cached keys, oldest-inserted first.
func (ic *ItemCache) Keys() []media.Key { return ic.c.Keys() }

// Close stops accepting writes.
func (ic *ItemCache) Close() error { return ic.c.Close() }
