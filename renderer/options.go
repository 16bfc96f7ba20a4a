package renderer

import (
	"time"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/content"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/observability"
	"github.com/wudi/docview/ocr"
	"github.com/wudi/docview/search"
	"github.com/wudi/docview/surface"
	"github.com/wudi/docview/virtual"
)

// Defaults for a renderer without options.
var (
	DefaultViewport = geometry.Size{Width: 1024, Height: 768}
)

const (
	// DefaultGap separates stacked units in continuous mode.
	DefaultGap = 16.0
)

type config struct {
	logger        observability.Logger
	tracer        observability.Tracer
	zoom          geometry.Range
	viewport      geometry.Size
	continuous    *bool
	searchContext int
	window        virtual.Config
	clock         func() time.Time
	ids           annotation.IDGenerator
	ocr           ocr.Engine
	ocrLanguages  []string
	dispatcher    *surface.Dispatcher
	gap           float64
	maxSize       int64
	contentType   string
}

func defaults() config {
	return config{
		logger:        observability.NopLogger{},
		tracer:        observability.NopTracer(),
		viewport:      DefaultViewport,
		searchContext: search.DefaultContext,
		window:        virtual.DefaultConfig(),
		clock:         time.Now,
		ids:           annotation.NewID,
		gap:           DefaultGap,
		maxSize:       content.DefaultMaxSize,
	}
}

// Option configures a renderer.
type Option func(*config)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l observability.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer wrapped around load, render and search.
func WithTracer(t observability.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithZoomRange narrows the renderer's zoom range. Ranges outside
// [geometry.MinZoom, geometry.MaxZoom] are ignored.
func WithZoomRange(r geometry.Range) Option {
	return func(c *config) {
		if r.Valid() {
			c.zoom = r
		}
	}
}

// WithViewport sets the initial size of the visible area.
func WithViewport(s geometry.Size) Option {
	return func(c *config) {
		if !s.IsEmpty() {
			c.viewport = s
		}
	}
}

// WithContinuous switches between stacking every unit and showing one at a
// time. Only paged and flow renderers honour it.
func WithContinuous(on bool) Option {
	return func(c *config) { c.continuous = &on }
}

// WithContentType declares the media type of the sources to load. Renderers
// covering several formats pick their parser by it before the extension.
func WithContentType(t string) Option {
	return func(c *config) { c.contentType = normalizeType(t) }
}

// WithSearchContext sets the characters of context kept on each side of a
// match.
func WithSearchContext(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.searchContext = n
		}
	}
}

// WithWindow configures grid row windowing.
func WithWindow(cfg virtual.Config) Option {
	return func(c *config) { c.window = cfg }
}

// WithClock replaces time.Now for annotation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithIDGenerator replaces the annotation ID generator.
func WithIDGenerator(gen annotation.IDGenerator) Option {
	return func(c *config) {
		if gen != nil {
			c.ids = gen
		}
	}
}

// WithOCR sets the engine the image renderer extracts text with.
func WithOCR(engine ocr.Engine, languages ...string) Option {
	return func(c *config) {
		c.ocr = engine
		c.ocrLanguages = languages
	}
}

// WithDispatcher subscribes the renderer to host input. Listeners are
// released by Destroy.
func WithDispatcher(d *surface.Dispatcher) Option {
	return func(c *config) { c.dispatcher = d }
}

// WithGap sets the spacing between stacked units.
func WithGap(px float64) Option {
	return func(c *config) {
		if px >= 0 {
			c.gap = px
		}
	}
}

// WithMaxSize bounds the bytes read from a source.
func WithMaxSize(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSize = n
		}
	}
}
