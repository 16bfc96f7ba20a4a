// Package content is the narrow contract between renderers and the format
// backends that decode document bytes.
package content

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/docview/geometry"
)

// Document is the parsed form of one load.
type Document struct {
	Title string
	Units []Unit
}

// Unit is one page, slide or sheet.
type Unit interface {
	// SearchableText returns the plain text search runs against. For
	// markup units it equals the text content RenderInto produces.
	SearchableText() string
	// Size is the unzoomed unit size in pixels.
	Size() geometry.Size
	// RenderInto paints the unit below target for the given viewport.
	RenderInto(ctx context.Context, target *html.Node, vp geometry.Viewport) error
}

// Parser decodes raw bytes into a Document.
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Document, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, data []byte) (*Document, error)

func (f ParserFunc) Parse(ctx context.Context, data []byte) (*Document, error) { return f(ctx, data) }

// Markup is implemented by units whose rendered nodes are live text, so
// search hits are wrapped in place instead of drawn as boxes.
type Markup interface {
	Unit
	IsMarkup() bool
}

// GlyphRun is a run of text placed by a page description format.
type GlyphRun struct {
	Text string
	// Offset is the rune offset of the run in the unit's searchable text.
	Offset int
	// Matrix is the text rendering matrix in page space with the font size
	// folded in.
	Matrix geometry.Matrix
	// Advances holds one advance per rune in text space units of one em.
	Advances []float64
}

// Width returns the advance of the whole run.
func (g GlyphRun) Width() float64 {
	var w float64
	for _, a := range g.Advances {
		w += a
	}
	return w
}

// GlyphSource is implemented by units whose text layer is positioned by a
// per page matrix.
type GlyphSource interface {
	Unit
	Glyphs() []GlyphRun
	// PageMatrix maps page space to unit pixels at zoom.
	PageMatrix(zoom float64) geometry.Matrix
}

// Tabular is implemented by sheet units.
type Tabular interface {
	Unit
	Name() string
	Header() []string
	RowCount() int
	Row(i int) []string
}

var ErrEmptyDocument = errors.New("document has no units")

// Validate checks the invariants the renderers rely on.
func (d *Document) Validate() error {
	if d == nil || len(d.Units) == 0 {
		return ErrEmptyDocument
	}
	for i, u := range d.Units {
		if u == nil {
			return fmt.Errorf("nil unit at index %d", i)
		}
	}
	return nil
}

// NormalizeText brings extracted text to NFC so search offsets computed on
// it line up with the text rendered from it.
func NormalizeText(s string) string { return norm.NFC.String(s) }
