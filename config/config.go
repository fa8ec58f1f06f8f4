// Package config holds the list engine configuration and its loaders.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables prefixed with MEDIAWINDOW_ (MEDIAWINDOW_PAGE_SIZE ->
// page_size, MEDIAWINDOW_LOG_LEVEL -> log.level). Explicit values, zero
// included, are kept as written.
//
// For a Config built in code, WithDefaults fills zero fields. Overscan,
// ContainerHeight and ThresholdPx have a meaningful zero, so they are
// pointers and only nil takes the default (use Int and Float to set them).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/IvanBrykalov/mediawindow/internal/logging"
)

// Defaults for every tunable.
const (
	DefaultMaxItems         = 1000
	DefaultPreloadThreshold = 50
	DefaultCleanupInterval  = 30 * time.Second
	DefaultItemHeight       = 200
	DefaultOverscan         = 5
	DefaultContainerHeight  = 600
	DefaultPageSize         = 20
	DefaultThresholdPx      = 200
	DefaultMaxPages         = 50
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config tunes one engine instance.
type Config struct {
	// MaxItems bounds the item cache.
	MaxItems int `koanf:"max_items" validate:"gte=1"`
	// PreloadThreshold is how many leading visible items get their assets warmed.
	PreloadThreshold int `koanf:"preload_threshold" validate:"gte=1"`
	// CleanupInterval is the minimum time between two cache sweeps.
	CleanupInterval time.Duration `koanf:"cleanup_interval" validate:"gt=0"`

	// ItemHeight is the uniform row height in pixels.
	ItemHeight float64 `koanf:"item_height" validate:"gt=0"`
	// Overscan is the number of extra rows rendered around the viewport.
	Overscan *int `koanf:"overscan" validate:"omitempty,gte=0"`
	// ContainerHeight is the initial viewport height until a resize is reported.
	ContainerHeight *float64 `koanf:"container_height" validate:"omitempty,gte=0"`

	// PageSize is requested from the fetcher on every load.
	PageSize int `koanf:"page_size" validate:"gte=1,lte=1000"`
	// ThresholdPx moves the load-more sentinel above the end of the window.
	ThresholdPx *float64 `koanf:"threshold_px" validate:"omitempty,gte=0"`
	// MaxPages caps pagination; -1 disables the cap.
	MaxPages int `koanf:"max_pages" validate:"gte=-1"`

	DisableVirtualization bool `koanf:"disable_virtualization"`
	DisableInfiniteScroll bool `koanf:"disable_infinite_scroll"`
	DisablePreload        bool `koanf:"disable_preload"`

	Log logging.Config `koanf:"log"`
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		MaxItems:         DefaultMaxItems,
		PreloadThreshold: DefaultPreloadThreshold,
		CleanupInterval:  DefaultCleanupInterval,
		ItemHeight:       DefaultItemHeight,
		Overscan:         Int(DefaultOverscan),
		ContainerHeight:  Float(DefaultContainerHeight),
		PageSize:         DefaultPageSize,
		ThresholdPx:      Float(DefaultThresholdPx),
		MaxPages:         DefaultMaxPages,
		Log:              logging.DefaultConfig(),
	}
}

// WithDefaults returns c with zero (or nil) fields replaced by defaults.
// Negative values are kept so that Validate can reject them.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.MaxItems == 0 {
		c.MaxItems = d.MaxItems
	}
	if c.PreloadThreshold == 0 {
		c.PreloadThreshold = d.PreloadThreshold
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.ItemHeight == 0 {
		c.ItemHeight = d.ItemHeight
	}
	if c.Overscan == nil {
		c.Overscan = d.Overscan
	}
	if c.ContainerHeight == nil {
		c.ContainerHeight = d.ContainerHeight
	}
	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}
	if c.ThresholdPx == nil {
		c.ThresholdPx = d.ThresholdPx
	}
	if c.MaxPages == 0 {
		c.MaxPages = d.MaxPages
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	return c
}

// Int returns a pointer to v, for the optional fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for the optional fields.
func Float(v float64) *float64 { return &v }

// OverscanRows returns Overscan, or the default when unset.
func (c Config) OverscanRows() int {
	if c.Overscan == nil {
		return DefaultOverscan
	}
	return *c.Overscan
}

// InitialHeight returns ContainerHeight, or the default when unset.
func (c Config) InitialHeight() float64 {
	if c.ContainerHeight == nil {
		return DefaultContainerHeight
	}
	return *c.ContainerHeight
}

// SentinelMargin returns ThresholdPx, or the default when unset.
func (c Config) SentinelMargin() float64 {
	if c.ThresholdPx == nil {
		return DefaultThresholdPx
	}
	return *c.ThresholdPx
}

//nolint:gochecknoglobals // validator caches struct metadata; one instance is enough
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects degenerate values (non-positive item height, empty
// cache, negative geometry). Call it on a Config with defaults applied.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s must satisfy %s (got %v)", ErrInvalid, fe.Field(), ruleOf(fe), deref(fe.Value()))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func deref(v any) any {
	switch p := v.(type) {
	case *int:
		if p != nil {
			return *p
		}
	case *float64:
		if p != nil {
			return *p
		}
	}
	return v
}
