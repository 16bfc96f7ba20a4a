// Package flow holds the backends for flowed text: DOCX, HTML, Markdown and
// plain text. Each one produces a block list that is sanitised, split into
// pages and exposed as live markup units.
package flow

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/fonts"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

// Page geometry for flowed content: US Letter at 96 dpi.
const (
	PageWidth       = 816
	PageHeight      = 1056
	Margin          = 48
	DefaultFontSize = 16
	LineHeight      = 1.5
)

// ClassFlow marks the article element a flow page renders into.
const ClassFlow = "dv-flow"

// Page is one page of flowed content.
type Page struct {
	markup string
	text   string
	size   geometry.Size
}

func (p *Page) SearchableText() string { return p.text }
func (p *Page) Size() geometry.Size    { return p.size }
func (p *Page) IsMarkup() bool         { return true }

// HTML returns the sanitised markup of the page.
func (p *Page) HTML() string { return p.markup }

// RenderInto parses the page markup into an article scaled to the zoom.
func (p *Page) RenderInto(ctx context.Context, target *html.Node, vp geometry.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nodes, err := surface.ParseFragment(p.markup)
	if err != nil {
		return fmt.Errorf("parse page markup: %w", err)
	}
	px := p.size.Scale(vp.Zoom)
	style := fmt.Sprintf("%s;padding:%dpx;box-sizing:border-box;transform:scale(%.3f);transform-origin:0 0",
		surface.SizeStyle(p.size), Margin, vp.Zoom)
	article := surface.Element("article",
		surface.Attr("class", ClassFlow),
		surface.Attr("style", style),
	)
	surface.Append(article, nodes...)
	frame := surface.Element("div", surface.Attr("style", surface.SizeStyle(px)))
	surface.Append(target, surface.Append(frame, article))
	return nil
}

// Builder turns block nodes into paginated flow documents.
type Builder struct {
	policy    Policy
	sanitizer *bluemonday.Policy
	measurer  *fonts.Measurer
}

type BuilderOption func(*Builder)

// WithPolicy overrides the pagination policy.
func WithPolicy(p Policy) BuilderOption {
	return func(b *Builder) { b.policy = p }
}

// WithSanitizer replaces the HTML sanitising policy.
func WithSanitizer(p *bluemonday.Policy) BuilderOption {
	return func(b *Builder) { b.sanitizer = p }
}

func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	m, err := fonts.Default()
	if err != nil {
		return nil, fmt.Errorf("load measurement font: %w", err)
	}
	b := &Builder{policy: DefaultPolicy(), sanitizer: Sanitizer(), measurer: m}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Sanitizer is the user-generated-content policy extended with the MathML
// elements produced by the Markdown backend.
func Sanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("math", "semantics", "annotation", "mrow", "mi", "mn", "mo", "ms", "mtext",
		"mspace", "msup", "msub", "msubsup", "mfrac", "msqrt", "mroot", "mover", "munder",
		"munderover", "mtable", "mtr", "mtd", "mstyle", "mpadded", "mphantom")
	p.AllowAttrs("display", "xmlns").OnElements("math")
	p.AllowAttrs("mathvariant", "stretchy", "fence", "separator", "lspace", "rspace").Globally()
	p.AllowAttrs("encoding").OnElements("annotation")
	return p
}

// Document sanitises blocks, paginates them and builds the units.
func (b *Builder) Document(title string, blocks []*html.Node) (*content.Document, error) {
	var raw bytes.Buffer
	for _, n := range blocks {
		if err := html.Render(&raw, n); err != nil {
			return nil, fmt.Errorf("render block: %w", err)
		}
	}
	clean := content.NormalizeText(b.sanitizer.Sanitize(raw.String()))
	nodes, err := surface.ParseFragment(clean)
	if err != nil {
		return nil, fmt.Errorf("parse sanitised markup: %w", err)
	}

	doc := &content.Document{Title: strings.TrimSpace(title)}
	for _, group := range Paginate(nodes, b.policy) {
		page, err := b.page(group)
		if err != nil {
			return nil, err
		}
		doc.Units = append(doc.Units, page)
	}
	if len(doc.Units) == 0 {
		doc.Units = append(doc.Units, &Page{size: geometry.Size{Width: PageWidth, Height: PageHeight}})
	}
	return doc, nil
}

func (b *Builder) page(nodes []*html.Node) (*Page, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return nil, fmt.Errorf("render page: %w", err)
		}
	}
	markup := buf.String()
	// Text is taken from a fresh parse so it matches what RenderInto emits.
	parsed, err := surface.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	var text strings.Builder
	for _, n := range parsed {
		text.WriteString(surface.TextContent(n))
	}
	return &Page{
		markup: markup,
		text:   text.String(),
		size:   geometry.Size{Width: PageWidth, Height: b.estimateHeight(parsed)},
	}, nil
}

// estimateHeight lays the blocks out line by line with the measurement font
// and returns the page height, never less than PageHeight.
func (b *Builder) estimateHeight(nodes []*html.Node) float64 {
	width := float64(PageWidth - 2*Margin)
	cursor := float64(Margin)
	for _, n := range nodes {
		text := strings.Join(strings.Fields(surface.TextContent(n)), " ")
		if text == "" {
			continue
		}
		size := fontSizeFor(n)
		lines := math.Ceil(b.measurer.Width(text, size) / width)
		cursor += lines*size*LineHeight + size*0.5
	}
	return math.Max(PageHeight, cursor+Margin)
}

func fontSizeFor(n *html.Node) float64 {
	switch n.DataAtom {
	case atom.H1:
		return DefaultFontSize * 2.0
	case atom.H2:
		return DefaultFontSize * 1.5
	case atom.H3, atom.H4, atom.H5, atom.H6:
		return DefaultFontSize * 1.25
	default:
		return DefaultFontSize
	}
}

// headingText returns the text of the first heading among nodes.
func headingText(nodes []*html.Node) string {
	for _, n := range nodes {
		var found string
		surface.Walk(n, func(c *html.Node) bool {
			if found != "" {
				return false
			}
			if isHeading(c) {
				found = strings.TrimSpace(surface.TextContent(c))
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}
