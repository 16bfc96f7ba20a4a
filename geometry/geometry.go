// Package geometry holds the pure viewport arithmetic shared by every
// renderer: zoom ranges, zoom-about-point pan composition and the mapping
// between fractional unit coordinates and on-screen pixels.
package geometry

import "math"

// Bounds every renderer's zoom range must stay inside.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

type Point struct{ X, Y float64 }

type Size struct{ Width, Height float64 }

// Scale returns the size multiplied by factor in both directions.
func (s Size) Scale(factor float64) Size {
	return Size{Width: s.Width * factor, Height: s.Height * factor}
}

// IsEmpty reports whether the size has non-positive dimensions.
func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is an axis aligned rectangle with the origin in the upper-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle has non-positive dimensions.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains returns true if p lies within r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersect returns the overlap of r and o; the zero Rect when they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.Right(), o.Right())
	y1 := math.Min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Range is the closed zoom interval a renderer accepts.
type Range struct {
	Min float64
	Max float64
}

var (
	DefaultZoomRange = Range{Min: 0.1, Max: 5.0}
	ImageZoomRange   = Range{Min: 0.1, Max: 10.0}
	GridZoomRange    = Range{Min: 0.5, Max: 2.0}
)

// Valid reports whether the range is ordered and inside [MinZoom, MaxZoom].
func (r Range) Valid() bool {
	return r.Min >= MinZoom && r.Max <= MaxZoom && r.Min <= r.Max
}

// Clamp limits z to the range. NaN is treated as a request for 1.0.
func (r Range) Clamp(z float64) float64 {
	if math.IsNaN(z) {
		z = 1
	}
	return math.Min(r.Max, math.Max(r.Min, z))
}

// ZoomAbout returns the pan that keeps the content point under pin fixed
// while the zoom changes from z0 to z1.
func ZoomAbout(z0, z1 float64, pin, pan Point) Point {
	if z0 == 0 {
		return pan
	}
	k := z1 / z0
	return Point{
		X: pin.X + (pan.X-pin.X)*k,
		Y: pin.Y + (pan.Y-pin.Y)*k,
	}
}

// Viewport is the visible window of the host container together with the
// view transform applied to its content.
type Viewport struct {
	Size Size
	Zoom float64
	Pan  Point
}

// Center returns the centre of the viewport in viewport pixels.
func (v Viewport) Center() Point {
	return Point{X: v.Size.Width / 2, Y: v.Size.Height / 2}
}

// ToScreen maps a content point at zoom 1 to viewport pixels.
func (v Viewport) ToScreen(p Point) Point {
	return Point{X: p.X*v.Zoom + v.Pan.X, Y: p.Y*v.Zoom + v.Pan.Y}
}

// ToContent is the inverse of ToScreen.
func (v Viewport) ToContent(p Point) Point {
	if v.Zoom == 0 {
		return p
	}
	return Point{X: (p.X - v.Pan.X) / v.Zoom, Y: (p.Y - v.Pan.Y) / v.Zoom}
}

// ToPixels places a fractional rectangle on a unit of the given unzoomed
// size rendered at zoom.
func ToPixels(f Rect, unit Size, zoom float64) Rect {
	s := unit.Scale(zoom)
	return Rect{
		X:      f.X * s.Width,
		Y:      f.Y * s.Height,
		Width:  f.Width * s.Width,
		Height: f.Height * s.Height,
	}
}

// ToFraction converts a pixel rectangle authored on a unit rendered at zoom
// back into fractions of the unzoomed unit size. The result is clamped to
// the unit.
func ToFraction(px Rect, unit Size, zoom float64) Rect {
	s := unit.Scale(zoom)
	if s.IsEmpty() {
		return Rect{}
	}
	x0 := clamp01(px.X / s.Width)
	y0 := clamp01(px.Y / s.Height)
	x1 := clamp01(px.Right() / s.Width)
	y1 := clamp01(px.Bottom() / s.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// IsFractional reports whether every edge of r lies in [0,1].
func IsFractional(r Rect) bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(r.X) && in(r.Y) && r.Width >= 0 && r.Height >= 0 && in(r.Right()) && in(r.Bottom())
}

func clamp01(v float64) float64 { return math.Min(1, math.Max(0, v)) }

// FitWidth returns the zoom at which unit fills the viewport width.
func FitWidth(unit, view Size) float64 {
	if unit.Width <= 0 {
		return 1
	}
	return view.Width / unit.Width
}

// FitHeight returns the zoom at which unit fills the viewport height.
func FitHeight(unit, view Size) float64 {
	if unit.Height <= 0 {
		return 1
	}
	return view.Height / unit.Height
}

// FitPage returns the largest zoom at which the whole unit is visible.
// Both axes share one factor; scaling is always uniform.
func FitPage(unit, view Size) float64 {
	return math.Min(FitWidth(unit, view), FitHeight(unit, view))
}
