package prom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/IvanBrykalov/mediawindow/cache"
	"github.com/IvanBrykalov/mediawindow/preload"
)

func TestAdapter_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "mediawindow", prometheus.Labels{"list": "test"})

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(cache.EvictCapacity)
	a.Evict(cache.EvictSweep)
	a.Evict(cache.EvictSweep)
	a.Size(42)
	a.FetchStarted()
	a.ItemsAppended(20)
	a.ItemsAppended(5)
	a.StaleDiscarded()
	a.PreloadIssued()
	a.PreloadDropped(preload.DropSaturated)

	if got := testutil.ToFloat64(a.hits); got != 2 {
		t.Fatalf("hits: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(a.evicts.WithLabelValues("sweep")); got != 2 {
		t.Fatalf("sweep evictions: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(a.size); got != 42 {
		t.Fatalf("size: want 42, got %v", got)
	}
	if got := testutil.ToFloat64(a.items); got != 25 {
		t.Fatalf("items appended: want 25, got %v", got)
	}

	want := `
# HELP mediawindow_preload_dropped_total Asset warm requests dropped by reason
# TYPE mediawindow_preload_dropped_total counter
mediawindow_preload_dropped_total{list="test",reason="saturated"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "mediawindow_preload_dropped_total"); err != nil {
		t.Fatal(err)
	}
}

func TestAdapter_RegistersEverything(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "mw", nil)
	a.Evict(cache.EvictPolicy)
	a.PreloadDropped(preload.DropRate)

	// 8 plain metrics plus two vectors with one child each.
	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Fatalf("want 10 series, got %d", n)
	}
}
