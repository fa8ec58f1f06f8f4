// Package media defines the item type shared by the list engine packages.
package media

import "strconv"

// Key identifies an item inside the bounded cache.
// It is derived deterministically from (MediaType, ID).
type Key string

// Item is a single entry of a media list (a movie, a show, an episode...).
// Only MediaType and ID take part in identity; everything else is payload.
type Item struct {
	MediaType string `json:"media_type"`
	ID        string `json:"id"`

	// AssetURL points at the artwork warmed by the preload scheduler.
	// Empty means "nothing to preload".
	AssetURL string `json:"asset_url,omitempty"`

	Title string `json:"title,omitempty"`

	// Data carries caller-defined payload untouched by the engine.
	Data any `json:"-"`
}

// KeyOf builds the cache key for a (mediaType, id) pair.
func KeyOf(mediaType, id string) Key { return Key(mediaType + "-" + id) }

// IntID formats a numeric identifier the way Item.ID expects it.
func IntID(id int64) string { return strconv.FormatInt(id, 10) }

// Key returns the item's cache key.
func (it Item) Key() Key { return KeyOf(it.MediaType, it.ID) }

// Keys returns the keys of items in order.
func Keys(items []Item) []Key {
	out := make([]Key, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

// KeySet returns the set of keys of items.
func KeySet(items []Item) map[Key]struct{} {
	set := make(map[Key]struct{}, len(items))
	for _, it := range items {
		set[it.Key()] = struct{}{}
	}
	return set
}
