// Package viewport decides which unit is current while several units are
// laid out in one scrolling container.
package viewport

import "math"

// Span is a unit element's extent along the scroll axis in container
// content coordinates.
type Span struct {
	Top    float64
	Height float64
}

func (s Span) Bottom() float64 { return s.Top + s.Height }

// Visible returns how much of s lies inside [top, bottom).
func Visible(s Span, top, bottom float64) float64 {
	return math.Max(0, math.Min(s.Bottom(), bottom)-math.Max(s.Top, top))
}

// MostVisible returns the 1-indexed unit with the largest visible height;
// ties go to the top-most unit. It returns 0 when nothing is visible.
func MostVisible(spans []Span, top, height float64) int {
	bottom := top + height
	best, bestVis := 0, 0.0
	for i, s := range spans {
		if v := Visible(s, top, bottom); v > bestVis {
			best, bestVis = i+1, v
		}
	}
	return best
}

// Stack lays out units of the given heights top to bottom separated by gap.
func Stack(heights []float64, gap float64) []Span {
	spans := make([]Span, len(heights))
	y := 0.0
	for i, h := range heights {
		spans[i] = Span{Top: y, Height: h}
		y += h + gap
	}
	return spans
}

// Tracker follows scroll and layout changes. Input only marks it dirty;
// the recomputation happens on Frame so a burst of scroll events within one
// frame costs a single O(n) pass. It is not safe for concurrent use.
type Tracker struct {
	spans      []Span
	top        float64
	height     float64
	current    int
	dirty      bool
	recomputes int
	onChange   func(unit int)
}

// New returns a tracker positioned on unit 1. onChange runs from Frame
// whenever the current unit changes.
func New(onChange func(unit int)) *Tracker {
	return &Tracker{current: 1, onChange: onChange}
}

// SetLayout replaces the unit extents, e.g. after a zoom change.
func (t *Tracker) SetLayout(spans []Span) {
	t.spans = append(t.spans[:0], spans...)
	t.dirty = true
}

// Scroll records the container's visible window.
func (t *Tracker) Scroll(top, height float64) {
	t.top, t.height = top, height
	t.dirty = true
}

// Frame recomputes the current unit if anything changed since the last
// frame and reports whether it moved.
func (t *Tracker) Frame() (int, bool) {
	if !t.dirty {
		return t.current, false
	}
	t.dirty = false
	t.recomputes++
	next := MostVisible(t.spans, t.top, t.height)
	if next == 0 || next == t.current {
		return t.current, false
	}
	t.current = next
	if t.onChange != nil {
		t.onChange(next)
	}
	return next, true
}

func (t *Tracker) Current() int { return t.current }

// SetCurrent aligns the tracker with a programmatic navigation without
// notifying.
func (t *Tracker) SetCurrent(unit int) { t.current = unit }

// ScrollTopFor returns the scroll offset that brings unit to the top.
func (t *Tracker) ScrollTopFor(unit int) float64 {
	if unit < 1 || unit > len(t.spans) {
		return t.top
	}
	return t.spans[unit-1].Top
}

// Reveal makes unit current and moves the window top to it, so the next
// Frame measures from where the unit is shown. It returns the new top.
func (t *Tracker) Reveal(unit int) float64 {
	t.current = unit
	t.top = t.ScrollTopFor(unit)
	t.dirty = true
	return t.top
}

// Window returns the current scroll window.
func (t *Tracker) Window() (top, height float64) { return t.top, t.height }

// Spans returns the current layout.
func (t *Tracker) Spans() []Span { return t.spans }

// Recomputes counts the passes performed, for throttling diagnostics.
func (t *Tracker) Recomputes() int { return t.recomputes }
