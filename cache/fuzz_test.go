//go:build go1.18

package cache

import (
	"testing"
)

// Fuzz a sequence of inserts encoded as bytes: the cache must never exceed
// its capacity and must retain exactly the newest first-time inserts.
func FuzzCache_BoundAndOrder(f *testing.F) {
	f.Add([]byte{}, uint8(1))
	f.Add([]byte{1, 2, 3, 1, 4}, uint8(2))
	f.Add([]byte("abcabcabcxyz"), uint8(3))

	f.Fuzz(func(t *testing.T, keys []byte, capacity uint8) {
		capN := int(capacity%16) + 1
		c := New[byte, int](Options[byte, int]{Capacity: capN})
		t.Cleanup(func() { _ = c.Close() })

		// Model: first-insertion order of keys still resident.
		var order []byte
		resident := map[byte]bool{}
		for i, k := range keys {
			c.Set(k, i)
			if !resident[k] {
				resident[k] = true
				order = append(order, k)
				if len(order) > capN {
					delete(resident, order[0])
					order = order[1:]
				}
			}
			if c.Len() > capN {
				t.Fatalf("Len %d exceeds capacity %d", c.Len(), capN)
			}
		}

		got := c.Keys()
		if len(got) != len(order) {
			t.Fatalf("want keys %v, got %v", order, got)
		}
		for i := range order {
			if got[i] != order[i] {
				t.Fatalf("want keys %v, got %v", order, got)
			}
		}
	})
}
