// Package virtual computes which rows of a large grid need to exist in the
// surface for a given scroll position.
package virtual

import "math"

// Config tunes a Window. Zero fields take the DefaultConfig value; a
// negative Overscan or Threshold means none.
type Config struct {
	RowHeight float64 // pixels per row
	Visible   int     // rows that fit the viewport
	Overscan  int     // extra rows above and below
	Threshold int     // offset drift tolerated before re-rendering
	MinRows   int     // below this the whole grid renders
}

func DefaultConfig() Config {
	return Config{RowHeight: 28, Visible: 20, Overscan: 5, Threshold: 5, MinRows: 100}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RowHeight <= 0 {
		c.RowHeight = d.RowHeight
	}
	if c.Visible <= 0 {
		c.Visible = d.Visible
	}
	switch {
	case c.Overscan == 0:
		c.Overscan = d.Overscan
	case c.Overscan < 0:
		c.Overscan = 0
	}
	switch {
	case c.Threshold == 0:
		c.Threshold = d.Threshold
	case c.Threshold < 0:
		c.Threshold = 0
	}
	if c.MinRows <= 0 {
		c.MinRows = d.MinRows
	}
	return c
}

// Range is a half-open interval of 0-based row indices.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Contains(row int) bool { return row >= r.Start && row < r.End }

// OffsetFor maps a scroll position to the first visible row.
func OffsetFor(scrollTop, rowHeight float64) int {
	if rowHeight <= 0 || scrollTop <= 0 {
		return 0
	}
	return int(math.Floor(scrollTop / rowHeight))
}

// Window tracks the rendered slice of a grid of Total rows. It is not safe
// for concurrent use.
type Window struct {
	cfg      Config
	total    int
	offset   int
	rendered int
}

func New(total int, cfg Config) *Window {
	return &Window{cfg: cfg.withDefaults(), total: max(total, 0)}
}

func (w *Window) Config() Config { return w.cfg }

func (w *Window) Total() int { return w.total }

// Bypassed reports whether the grid is small enough to render in full.
func (w *Window) Bypassed() bool { return w.total < w.cfg.MinRows }

// Offset is the first visible row for the last scroll position.
func (w *Window) Offset() int { return w.offset }

// RenderedOffset is the offset the current Range was built from.
func (w *Window) RenderedOffset() int { return w.rendered }

// Scroll records a new scroll position and reports whether the drift since
// the last render exceeds the threshold.
func (w *Window) Scroll(scrollTop float64) bool {
	off := OffsetFor(scrollTop, w.cfg.RowHeight)
	if last := max(w.total-1, 0); off > last {
		off = last
	}
	w.offset = off
	if w.Bypassed() {
		return false
	}
	d := off - w.rendered
	if d < 0 {
		d = -d
	}
	if d <= w.cfg.Threshold {
		return false
	}
	w.rendered = off
	return true
}

// Reset moves both offsets to row, e.g. when navigating to a cell.
func (w *Window) Reset(row int) {
	row = min(max(row, 0), max(w.total-1, 0))
	w.offset, w.rendered = row, row
}

// Range returns the rows that should be materialised.
func (w *Window) Range() Range {
	if w.Bypassed() {
		return Range{0, w.total}
	}
	start := max(w.rendered-w.cfg.Overscan, 0)
	end := min(w.rendered+w.cfg.Visible+w.cfg.Overscan, w.total)
	return Range{start, end}
}

// Padding returns the spacer heights above and below the rendered range so
// the scroll extent matches the full grid.
func (w *Window) Padding() (top, bottom float64) {
	r := w.Range()
	return float64(r.Start) * w.cfg.RowHeight, float64(w.total-r.End) * w.cfg.RowHeight
}

// Height is the full scroll extent of the grid.
func (w *Window) Height() float64 { return float64(w.total) * w.cfg.RowHeight }
