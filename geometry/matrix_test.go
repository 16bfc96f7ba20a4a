package geometry

import (
	"math"
	"testing"
)

func TestMatrixInverse(t *testing.T) {
	m := Matrix{2, 0.5, -1, 3, 10, -4}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	id := m.Mul(inv)
	for i, v := range Identity() {
		if math.Abs(id[i]-v) > 1e-9 {
			t.Fatalf("m*inv = %v, want identity", id)
		}
	}
	if _, err := (Matrix{1, 2, 2, 4, 0, 0}).Inverse(); err == nil {
		t.Fatal("expected singular matrix error")
	}
}

func TestMatrixMulOrder(t *testing.T) {
	// scale first, then translate
	m := Scale(2, 2).Mul(Translate(5, 7))
	p := m.Apply(Point{X: 1, Y: 1})
	if p != (Point{X: 7, Y: 9}) {
		t.Fatalf("Apply = %+v", p)
	}
}

func TestGlyphBox(t *testing.T) {
	page := Size{Width: 612, Height: 792}
	// 12pt glyph run with its baseline at (72, 700) in page space.
	glyph := Matrix{12, 0, 0, 12, 72, 700}

	box := GlyphBox(PageToViewport(page, 1.5), glyph, 2.5)
	want := Rect{X: 108, Y: (792-700)*1.5 - 18, Width: 2.5 * 18, Height: 18}
	if math.Abs(box.X-want.X) > 1e-9 || math.Abs(box.Y-want.Y) > 1e-9 ||
		math.Abs(box.Width-want.Width) > 1e-9 || math.Abs(box.Height-want.Height) > 1e-9 {
		t.Fatalf("GlyphBox = %+v, want %+v", box, want)
	}
}

func TestGlyphBoxRotatedScale(t *testing.T) {
	// 90 degree rotation keeps sqrt(a²+b²) equal to the font size.
	glyph := Matrix{0, 10, -10, 0, 100, 100}
	box := GlyphBox(Identity(), glyph, 1)
	if math.Abs(box.Width-10) > 1e-9 || math.Abs(box.Height-10) > 1e-9 {
		t.Fatalf("rotated glyph box = %+v", box)
	}
}
