package geometry

import (
	"errors"
	"math"
)

// Matrix is a 2-D affine transform [a b c d e f] using the row-vector
// convention of page description formats: (x y 1) × M.
type Matrix [6]float64

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Mul returns m followed by o.
func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

var errSingular = errors.New("matrix singular")

func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errSingular
	}
	return Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// ScaleX is the length of the transformed x unit vector, sqrt(a²+b²).
func (m Matrix) ScaleX() float64 { return math.Hypot(m[0], m[1]) }

// ScaleY is the length of the transformed y unit vector, sqrt(c²+d²).
func (m Matrix) ScaleY() float64 { return math.Hypot(m[2], m[3]) }

// PageToViewport maps page space (origin bottom-left, y up, points) to
// unit pixels (origin top-left, y down) at the given zoom.
func PageToViewport(page Size, zoom float64) Matrix {
	return Matrix{zoom, 0, 0, -zoom, 0, page.Height * zoom}
}

// GlyphBox returns the on-screen box of a glyph run. glyph is the run's
// text rendering matrix in page space (font size folded in), page maps page
// space to pixels and advance is the run width in text space units of one
// em. The box height is the transformed font height; the baseline sits at
// the bottom edge.
func GlyphBox(page, glyph Matrix, advance float64) Rect {
	full := glyph.Mul(page)
	height := full.ScaleY()
	return Rect{
		X:      full[4],
		Y:      full[5] - height,
		Width:  advance * full.ScaleX(),
		Height: height,
	}
}
