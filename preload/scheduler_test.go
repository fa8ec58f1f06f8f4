package preload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/mediawindow/media"
)

type countMetrics struct {
	issued  atomic.Int32
	mu      sync.Mutex
	dropped map[string]int
}

func (m *countMetrics) PreloadIssued() { m.issued.Add(1) }
func (m *countMetrics) PreloadDropped(r string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dropped == nil {
		m.dropped = map[string]int{}
	}
	m.dropped[r]++
}

func withAssets(from, n int) []media.Item {
	out := make([]media.Item, n)
	for i := range out {
		id := strconv.Itoa(from + i)
		out[i] = media.Item{MediaType: "movie", ID: id, AssetURL: "https://img.example/" + id + ".jpg"}
	}
	return out
}

type recordWarmer struct {
	mu   sync.Mutex
	urls []string
}

func (w *recordWarmer) Warm(_ context.Context, url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.urls = append(w.urls, url)
	return nil
}

func (w *recordWarmer) seen() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.urls...)
}

func TestScheduler_WarmsLeadingItemsOnChange(t *testing.T) {
	t.Parallel()

	w := &recordWarmer{}
	s := New(w, Options{Threshold: 3, MaxInFlight: 16})

	visible := withAssets(0, 5)
	visible[1].AssetURL = "" // nothing to warm

	assert.Equal(t, 2, s.Update(visible))
	s.Wait()
	assert.ElementsMatch(t, []string{
		"https://img.example/0.jpg",
		"https://img.example/2.jpg",
	}, w.seen())

	// Same set again: nothing new is issued.
	assert.Zero(t, s.Update(withAssets(0, 5)))
	assert.Equal(t, 3, s.Update(withAssets(1, 5)))
	s.Wait()
	assert.Len(t, w.seen(), 5)
}

func TestScheduler_UnchangedSetIsIgnored(t *testing.T) {
	t.Parallel()

	w := &recordWarmer{}
	s := New(w, Options{})
	items := withAssets(0, 4)

	assert.Equal(t, 4, s.Update(items))
	assert.Zero(t, s.Update(items))
	s.Wait()
	assert.Len(t, w.seen(), 4)
}

func TestScheduler_DropsWhenSaturated(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	m := &countMetrics{}
	s := New(WarmerFunc(func(context.Context, string) error {
		<-release
		return nil
	}), Options{MaxInFlight: 2, Metrics: m})

	assert.Equal(t, 2, s.Update(withAssets(0, 5)))
	close(release)
	s.Wait()

	assert.EqualValues(t, 2, m.issued.Load())
	assert.Equal(t, 3, m.dropped[DropSaturated])
}

func TestScheduler_DedupesInFlightURL(t *testing.T) {
	t.Parallel()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	m := &countMetrics{}
	s := New(WarmerFunc(func(context.Context, string) error {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}), Options{Metrics: m})

	first := withAssets(0, 1)
	require.Equal(t, 1, s.Update(first))
	<-started

	// A different visible set that still contains the same asset.
	second := append(withAssets(0, 1), media.Item{MediaType: "tv", ID: "x"})
	assert.Zero(t, s.Update(second))
	close(release)
	s.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, m.dropped[DropInFlight])
}

func TestScheduler_DuplicateURLInOneUpdate(t *testing.T) {
	t.Parallel()

	w := &recordWarmer{}
	m := &countMetrics{}
	s := New(w, Options{Metrics: m})

	items := withAssets(0, 3)
	items[2].AssetURL = items[0].AssetURL // two titles share a poster

	assert.Equal(t, 2, s.Update(items))
	s.Wait()
	assert.EqualValues(t, 2, m.issued.Load())
	assert.Equal(t, 1, m.dropped[DropInFlight])
	assert.ElementsMatch(t, []string{
		"https://img.example/0.jpg",
		"https://img.example/1.jpg",
	}, w.seen())
}

func TestScheduler_RateLimit(t *testing.T) {
	t.Parallel()

	m := &countMetrics{}
	s := New(&recordWarmer{}, Options{
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 2),
		Metrics: m,
	})
	assert.Equal(t, 2, s.Update(withAssets(0, 6)))
	s.Wait()
	assert.Equal(t, 4, m.dropped[DropRate])
}

func TestScheduler_ClosedIssuesNothing(t *testing.T) {
	t.Parallel()

	w := &recordWarmer{}
	s := New(w, Options{})
	s.Close()
	assert.Zero(t, s.Update(withAssets(0, 3)))
	assert.Empty(t, w.seen())
}

func TestHTTPWarmer(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "mediawindow-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	t.Cleanup(srv.Close)

	hw := NewHTTPWarmer(time.Second)
	hw.UserAgent = "mediawindow-test"
	require.NoError(t, hw.Warm(context.Background(), srv.URL+"/poster.jpg"))
	assert.Error(t, hw.Warm(context.Background(), srv.URL+"/missing.jpg"))
	assert.EqualValues(t, 2, hits.Load())
}
