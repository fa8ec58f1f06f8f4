// Package httpsource fetches list pages from a JSON HTTP API.
//
// Requests go through a circuit breaker: once the backend keeps failing,
// Fetch fails fast with gobreaker.ErrOpenState until the breaker lets a
// trial request through again. The pager stores that error like any other, so the
// next scroll-triggered load is the retry.
package httpsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/IvanBrykalov/mediawindow/media"
	"github.com/IvanBrykalov/mediawindow/pager"
)

// Defaults applied by New.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPageParam    = "page"
	DefaultSizeParam    = "page_size"
	DefaultTripFailures = 5
	DefaultOpenTimeout  = 30 * time.Second
	maxBodyBytes        = 8 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpsource: %s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Options configures a Source. Zero values take defaults.
type Options struct {
	// BaseURL is the list endpoint; page parameters are added to its query.
	BaseURL string
	// PageParam and SizeParam name the query parameters.
	PageParam string
	SizeParam string
	// MediaType is used for items without a media_type field.
	MediaType string
	// AssetBaseURL is prefixed to poster_path when asset_url is absent.
	AssetBaseURL string
	// Header is added to every request (e.g. Authorization).
	Header http.Header

	Client  *http.Client
	Timeout time.Duration

	// TripFailures is the number of consecutive failures that opens the breaker.
	TripFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration

	Logger *zerolog.Logger
}

// Source implements pager.Fetcher over HTTP.
type Source struct {
	base *url.URL
	opt  Options
	cb   *gobreaker.CircuitBreaker[pager.Page]
	log  zerolog.Logger
}

// New validates opt and builds a Source.
func New(opt Options) (*Source, error) {
	u, err := url.Parse(opt.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("httpsource: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpsource: unsupported scheme %q", u.Scheme)
	}
	if opt.PageParam == "" {
		opt.PageParam = DefaultPageParam
	}
	if opt.SizeParam == "" {
		opt.SizeParam = DefaultSizeParam
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.Client == nil {
		opt.Client = &http.Client{Timeout: opt.Timeout}
	}
	if opt.TripFailures == 0 {
		opt.TripFailures = DefaultTripFailures
	}
	if opt.OpenTimeout <= 0 {
		opt.OpenTimeout = DefaultOpenTimeout
	}

	log := zerolog.Nop()
	if opt.Logger != nil {
		log = opt.Logger.With().Str("component", "httpsource").Str("host", u.Host).Logger()
	}
	s := &Source{base: u, opt: opt, log: log}
	s.cb = gobreaker.NewCircuitBreaker[pager.Page](gobreaker.Settings{
		Name:        "httpsource:" + u.Host,
		MaxRequests: 1,
		Timeout:     opt.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= opt.TripFailures
		},
		// A cancelled load (reset, close) says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
	return s, nil
}

// Fetch implements pager.Fetcher.
func (s *Source) Fetch(ctx context.Context, page, pageSize int) (pager.Page, error) {
	return s.cb.Execute(func() (pager.Page, error) {
		return s.fetch(ctx, page, pageSize)
	})
}

// State returns the breaker state.
func (s *Source) State() gobreaker.State { return s.cb.State() }

func (s *Source) fetch(ctx context.Context, page, pageSize int) (pager.Page, error) {
	u := *s.base
	q := u.Query()
	q.Set(s.opt.PageParam, strconv.Itoa(page))
	q.Set(s.opt.SizeParam, strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pager.Page{}, fmt.Errorf("httpsource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range s.opt.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := s.opt.Client.Do(req)
	if err != nil {
		return pager.Page{}, fmt.Errorf("httpsource: get page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return pager.Page{}, &StatusError{Code: resp.StatusCode, URL: s.base.Redacted()}
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).DecodeContext(ctx, &env); err != nil {
		return pager.Page{}, fmt.Errorf("httpsource: decode page %d: %w", page, err)
	}

	wire := env.items()
	items := make([]media.Item, 0, len(wire))
	for _, w := range wire {
		it := w.toItem(s.opt.MediaType, s.opt.AssetBaseURL)
		if it.ID == "" || it.MediaType == "" {
			s.log.Debug().Int("page", page).Msg("skipping item without identity")
			continue
		}
		items = append(items, it)
	}
	out := pager.Page{Items: items, HasMore: env.hasMore(pageSize)}

	s.log.Debug().Int("page", page).Int("items", len(items)).Bool("has_more", out.HasMore).
		Dur("took", time.Since(start)).Msg("page fetched")
	return out, nil
}

var _ pager.Fetcher = (*Source)(nil)
