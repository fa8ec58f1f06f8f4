// Package cache provides a generic, bounded, insertion-ordered in-memory
// cache used to keep the memory footprint of a growing media list in check.
//
// Design
//
//   - Concurrency: a single mutex guards a map[K]*node and an intrusive
//     oldest↔newest doubly linked list. The list is global (no sharding)
//     because eviction order must be exact across all keys.
//
//   - Policies: ordering is pluggable via the policy package. The default,
//     policy/fifo, keeps order of first insertion: re-inserting a key
//     updates its value in place without refreshing it. policy/lru is
//     available as an explicit opt-in.
//
//   - Capacity: after every Set/Put the oldest entries are evicted until
//     Len() <= Capacity. Put trims once per batch.
//
//   - Sweep: Sweep(keep) drops every entry not kept, at most once per
//     Options.SweepInterval (measured with Options.Clock) and reports
//     whether it ran. Sweeping is independent of Capacity and may empty
//     the cache.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; metrics/prom exports them.
//
//   - Callbacks: Options.OnEvict(k, v, reason) is called for every eviction
//     (reason is one of EvictPolicy, EvictCapacity, EvictSweep).
//
// Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{Capacity: 1000})
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// Media items
//
//	ic := cache.NewItemCache(cache.Options[media.Key, media.Item]{
//	    Capacity:      1000,
//	    SweepInterval: 30 * time.Second,
//	})
//	ic.Put(page.Items)
//	ic.SweepVisible(media.KeySet(visible))
package cache
