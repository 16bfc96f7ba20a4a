// Package pdf is the paged backend. pdfcpu reads and validates the file and
// hands out decoded page content; the text layer is rebuilt from the text
// operators of each page so search hits can be boxed on the canvas.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/fonts"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

// Parser decodes PDF bytes into one unit per page.
type Parser struct {
	advances AdvanceFunc
}

// NewParser returns a parser that measures glyphs with Go Regular.
func NewParser() (*Parser, error) {
	m, err := fonts.Default()
	if err != nil {
		return nil, fmt.Errorf("load measurement font: %w", err)
	}
	return &Parser{advances: m.Advances}, nil
}

func (p *Parser) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	conf := model.NewDefaultConfiguration()
	pc, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	if pc.PageCount == 0 {
		return nil, content.ErrEmptyDocument
	}
	dims, err := pc.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions: %w", err)
	}

	doc := &content.Document{Title: strings.TrimSpace(pc.Title)}
	for nr := 1; nr <= pc.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := &Page{number: nr}
		if nr-1 < len(dims) {
			page.size = geometry.Size{Width: dims[nr-1].Width, Height: dims[nr-1].Height}
		}
		stream, err := pageContent(pc, nr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		if len(stream) > 0 {
			// A broken stream still yields the runs read before the fault.
			page.runs, page.text, _ = ExtractGlyphs(stream, p.advances)
		}
		doc.Units = append(doc.Units, page)
	}
	if doc.Title == "" {
		doc.Title = firstLine(doc.Units[0].SearchableText())
	}
	return doc, nil
}

func pageContent(pc *model.Context, nr int) ([]byte, error) {
	r, err := pdfcpu.ExtractPageContent(pc, nr)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			if r := []rune(line); len(r) > 200 {
				line = string(r[:200])
			}
			return line
		}
	}
	return ""
}

// Page is one PDF page. Its size is in points, drawn one point per pixel at
// zoom 1.
type Page struct {
	number int
	size   geometry.Size
	text   string
	runs   []content.GlyphRun
}

// NewPage builds a page from already extracted runs.
func NewPage(number int, size geometry.Size, runs []content.GlyphRun, text string) *Page {
	return &Page{number: number, size: size, runs: runs, text: text}
}

func (p *Page) Number() int                { return p.number }
func (p *Page) SearchableText() string     { return p.text }
func (p *Page) Size() geometry.Size        { return p.size }
func (p *Page) Glyphs() []content.GlyphRun { return p.runs }

func (p *Page) PageMatrix(zoom float64) geometry.Matrix {
	return geometry.PageToViewport(p.size, zoom)
}

// RenderInto emits the page canvas at the zoomed size and a transparent text
// layer with one span per glyph run.
func (p *Page) RenderInto(ctx context.Context, target *html.Node, vp geometry.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	px := p.size.Scale(vp.Zoom)
	canvas := surface.Element("canvas",
		surface.Attr("width", fmt.Sprintf("%.0f", px.Width)),
		surface.Attr("height", fmt.Sprintf("%.0f", px.Height)),
		surface.Attr("style", surface.SizeStyle(px)),
	)
	layer := surface.Element("div",
		surface.Attr("class", surface.ClassTextLayer),
		surface.Attr("style", surface.BoxStyle(geometry.Rect{Width: px.Width, Height: px.Height})),
	)
	pm := p.PageMatrix(vp.Zoom)
	for _, run := range p.runs {
		box := geometry.GlyphBox(pm, run.Matrix, run.Width())
		style := fmt.Sprintf("%s;font-size:%.2fpx", surface.BoxStyle(box), box.Height)
		span := surface.Element("span", surface.Attr("style", style))
		span.AppendChild(surface.Text(run.Text))
		layer.AppendChild(span)
	}
	surface.Append(target, canvas, layer)
	return nil
}
