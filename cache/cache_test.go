package cache

import (
	"strconv"
	"testing"
	"time"

	"github.com/IvanBrykalov/mediawindow/media"
	"github.com/IvanBrykalov/mediawindow/policy/lru"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) NowUnixNano() int64  { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t += int64(d) }

// Basic Set/Get/Remove semantics.
func TestCache_BasicSetGetRemove(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 8})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	c.Set("a", 11)
	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("Get a want 11, got %v ok=%v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("upsert must not duplicate, Len=%d", c.Len())
	}
	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if c.Remove("a") {
		t.Fatal("second Remove a must be false")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
}

// Default policy evicts the oldest inserted key, ignoring reads.
func TestCache_EvictionFIFO(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 2})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok { // a read does not protect a
		t.Fatal("expect hit for a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be evicted (oldest inserted)")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("b must survive")
	}
}

// Re-inserting a key keeps its original position in the eviction order.
func TestCache_ReinsertKeepsOrder(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 3})
	t.Cleanup(func() { _ = c.Close() })

	c.Put(Entry[string, int]{"a", 1}, Entry[string, int]{"b", 2}, Entry[string, int]{"c", 3})
	c.Set("a", 10) // update in place
	c.Set("d", 4)  // overflow

	if _, ok := c.Get("a"); ok {
		t.Fatal("updated a must still be evicted first")
	}
	keys := c.Keys()
	want := []string{"b", "c", "d"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("want order %v, got %v", want, keys)
		}
	}
}

// LRU is available as an explicit opt-in and promotes on access.
func TestCache_LRUOptIn(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 2, Policy: lru.New[string, int]()})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be evicted under LRU")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a must survive (promoted)")
	}
}

// 1100 distinct items in one Put leave exactly the newest 1000.
func TestItemCache_PutBoundsSizeFIFO(t *testing.T) {
	t.Parallel()

	var evicted []media.Key
	ic := NewItemCache(Options[media.Key, media.Item]{
		Capacity: 1000,
		OnEvict: func(k media.Key, _ media.Item, r EvictReason) {
			if r != EvictCapacity {
				t.Errorf("unexpected reason %v", r)
			}
			evicted = append(evicted, k)
		},
	})
	t.Cleanup(func() { _ = ic.Close() })

	items := make([]media.Item, 1100)
	for i := range items {
		items[i] = media.Item{MediaType: "movie", ID: strconv.Itoa(i)}
	}
	ic.Put(items)

	if ic.Len() != 1000 {
		t.Fatalf("Len want 1000, got %d", ic.Len())
	}
	if len(evicted) != 100 {
		t.Fatalf("want 100 evictions, got %d", len(evicted))
	}
	for i := 0; i < 100; i++ {
		if _, ok := ic.Get(items[i].Key()); ok {
			t.Fatalf("item %d must be evicted", i)
		}
	}
	for i := 100; i < 1100; i++ {
		if _, ok := ic.Get(items[i].Key()); !ok {
			t.Fatalf("item %d must be retained", i)
		}
	}
}

// Sweep is throttled by SweepInterval and keeps only the visible keys.
func TestItemCache_SweepInterval(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: 1}
	ic := NewItemCache(Options[media.Key, media.Item]{
		Capacity:      100,
		SweepInterval: 30 * time.Second,
		Clock:         clk,
	})
	t.Cleanup(func() { _ = ic.Close() })

	items := []media.Item{
		{MediaType: "movie", ID: "1"},
		{MediaType: "movie", ID: "2"},
		{MediaType: "tv", ID: "3"},
	}
	ic.Put(items)
	visible := media.KeySet(items[2:])

	if n, ran := ic.SweepVisible(visible); n != 0 || ran {
		t.Fatalf("sweep before the interval must be a no-op, removed %d ran=%v", n, ran)
	}
	clk.add(31 * time.Second)
	if n, ran := ic.SweepVisible(visible); n != 2 || !ran {
		t.Fatalf("sweep must run and remove 2 entries, removed %d ran=%v", n, ran)
	}
	if ic.Len() != 1 {
		t.Fatalf("Len want 1, got %d", ic.Len())
	}
	if _, ok := ic.Get(items[2].Key()); !ok {
		t.Fatal("visible item must survive the sweep")
	}

	ic.Put(items[:1])
	clk.add(time.Second)
	if n, ran := ic.SweepVisible(nil); n != 0 || ran {
		t.Fatalf("second sweep inside the interval must be a no-op, removed %d ran=%v", n, ran)
	}
}

// An empty visible set may empty the cache entirely.
func TestCache_SweepCanEmpty(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options[int, int]{Capacity: 10})
	for i := 0; i < 5; i++ {
		c.Set(i, i)
	}
	if n, ran := c.Sweep(func(int) bool { return false }); n != 5 || !ran || c.Len() != 0 {
		t.Fatalf("want 5 removed and empty cache, removed %d ran=%v Len=%d", n, ran, c.Len())
	}
}

// A sweep that finds nothing to remove still counts as run and restarts
// the interval.
func TestItemCache_EmptySweepStillRuns(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: 1}
	ic := NewItemCache(Options[media.Key, media.Item]{Capacity: 10, SweepInterval: time.Minute, Clock: clk})
	items := []media.Item{{MediaType: "movie", ID: "1"}}
	ic.Put(items)

	clk.add(time.Minute)
	if n, ran := ic.SweepVisible(media.KeySet(items)); n != 0 || !ran {
		t.Fatalf("due sweep must run, removed %d ran=%v", n, ran)
	}
	clk.add(time.Second)
	if _, ran := ic.SweepVisible(nil); ran {
		t.Fatal("sweep right after a run must be throttled")
	}
	if ic.Len() != 1 {
		t.Fatalf("Len want 1, got %d", ic.Len())
	}
}

func TestCache_ClosedIgnoresWrites(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 2})
	_ = c.Close()
	c.Set("a", 1)
	if c.Len() != 0 {
		t.Fatal("closed cache must ignore Set")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("closed cache must miss")
	}
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("New must panic on Capacity <= 0")
		}
	}()
	New[string, int](Options[string, int]{})
}
