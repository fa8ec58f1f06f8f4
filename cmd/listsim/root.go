package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/mediawindow/config"
	"github.com/IvanBrykalov/mediawindow/engine"
	"github.com/IvanBrykalov/mediawindow/internal/logging"
	pmet "github.com/IvanBrykalov/mediawindow/metrics/prom"
	"github.com/IvanBrykalov/mediawindow/pager"
	"github.com/IvanBrykalov/mediawindow/preload"
	"github.com/IvanBrykalov/mediawindow/source/httpsource"
	"github.com/IvanBrykalov/mediawindow/source/memsource"
)

type simFlags struct {
	configPath  string
	source      string
	url         string
	assetBase   string
	catalogSize int
	push        bool
	latency     time.Duration
	steps       int
	stepPx      float64
	tick        time.Duration
	settle      time.Duration
	metricsAddr string
	warm        bool
	warmRate    float64
}

// frame is one printed step.
type frame struct {
	Step      int     `json:"step"`
	Offset    float64 `json:"offset"`
	Start     int     `json:"start"`
	Render    int     `json:"render_start"`
	Visible   int     `json:"visible"`
	Total     int     `json:"total"`
	Height    float64 `json:"total_height"`
	Loading   bool    `json:"loading"`
	HasMore   bool    `json:"has_more"`
	CacheSize int     `json:"cache_size"`
	Error     string  `json:"error,omitempty"`
}

func newRootCmd() *cobra.Command {
	var f simFlags

	cmd := &cobra.Command{
		Use:   "listsim",
		Short: "Simulate scrolling through a paginated media list",
		Long: `listsim builds a list engine over an in-memory catalog or an HTTP list
endpoint and scrolls it step by step. Each step prints the window, pagination
and cache state as one JSON line on stdout; logs go to stderr.

Configuration is read from --config (YAML), then MEDIAWINDOW_* environment
variables.`,
		Example: `  # Scroll a synthetic 500-item catalog
  listsim --catalog-size 500 --steps 40

  # Scroll an HTTP endpoint and expose metrics
  listsim --source http --url https://api.example.com/popular --metrics-addr :9090`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	fl.StringVar(&f.source, "source", "mem", "item source: mem | http")
	fl.StringVar(&f.url, "url", "", "list endpoint for --source http")
	fl.StringVar(&f.assetBase, "asset-base", "", "asset URL prefix for generated or poster_path items")
	fl.IntVar(&f.catalogSize, "catalog-size", 1000, "synthetic catalog size for --source mem")
	fl.BoolVar(&f.push, "push", false, "use push mode (give-me-more) instead of page numbers for --source mem")
	fl.DurationVar(&f.latency, "latency", 0, "simulated fetch latency for --source mem")
	fl.IntVar(&f.steps, "steps", 20, "number of scroll steps")
	fl.Float64Var(&f.stepPx, "step-px", 400, "pixels scrolled per step")
	fl.DurationVar(&f.tick, "tick", 100*time.Millisecond, "pause between steps")
	fl.DurationVar(&f.settle, "settle", 2*time.Second, "max wait for an in-flight load after each step")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics at addr (empty = disabled)")
	fl.BoolVar(&f.warm, "warm", false, "issue real HTTP asset warm requests")
	fl.Float64Var(&f.warmRate, "warm-rate", 0, "max warm requests per second (0 = unlimited)")

	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, f simFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log, stderr)

	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "mediawindow", nil)
	if f.metricsAddr != "" {
		stopMetrics, err := serveMetrics(f.metricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	fetcher, err := newFetcher(f, log)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(log), engine.WithMetrics(metrics)}
	if !f.warm {
		opts = append(opts, engine.WithWarmer(preload.WarmerFunc(func(context.Context, string) error { return nil })))
	}
	if f.warmRate > 0 {
		opts = append(opts, engine.WithPreloadRate(rate.Limit(f.warmRate), max(1, int(f.warmRate))))
	}
	e, err := engine.New(cfg, fetcher, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	log.Info().Str("engine_id", e.ID()).Str("source", f.source).Int("steps", f.steps).Msg("simulation started")

	enc := json.NewEncoder(stdout)
	offset := 0.0
	for step := 1; step <= f.steps; step++ {
		if err := settle(ctx, e, f.settle); err != nil {
			return err
		}
		s := e.Snapshot()
		if err := enc.Encode(frame{
			Step:      step,
			Offset:    offset,
			Start:     s.StartIndex,
			Render:    s.RenderStart,
			Visible:   len(s.VisibleItems),
			Total:     s.Total,
			Height:    s.TotalHeight,
			Loading:   s.IsLoading,
			HasMore:   s.HasMore,
			CacheSize: s.CacheSize,
			Error:     s.Error,
		}); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}

		offset += f.stepPx
		e.Scroll(offset)
		if f.tick > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.tick):
			}
		}
	}

	s := e.Snapshot()
	log.Info().Int("total", s.Total).Int("cache_size", s.CacheSize).Bool("has_more", s.HasMore).
		Msg("simulation finished")
	return nil
}

func newFetcher(f simFlags, log zerolog.Logger) (pager.Fetcher, error) {
	switch f.source {
	case "mem":
		c := memsource.Catalog{Size: f.catalogSize, AssetBaseURL: f.assetBase, Latency: f.latency}
		if f.push {
			return c.Feed(config.DefaultPageSize), nil
		}
		return c, nil
	case "http":
		if f.url == "" {
			return nil, errors.New("--url is required for --source http")
		}
		src, err := httpsource.New(httpsource.Options{BaseURL: f.url, AssetBaseURL: f.assetBase, Logger: &log})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source %q (want mem or http)", f.source)
	}
}

// settle waits until no load is in flight, up to limit.
func settle(ctx context.Context, e *engine.Engine, limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for e.Snapshot().IsLoading && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
