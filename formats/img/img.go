// Package img is the raster image backend. The decoded image is a single
// unit; when an OCR engine is configured its words become the searchable
// text and the glyph runs used to box search hits.
package img

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/ocr"
	"github.com/wudi/docview/surface"
)

// MaxRendition bounds the long side of a scaled rendition in pixels.
const MaxRendition = 8192

// Image is a decoded raster image.
type Image struct {
	src    image.Image
	format string
	text   string
	runs   []content.GlyphRun
	ocrErr error
}

// NewImage wraps a decoded image without searchable text.
func NewImage(src image.Image, format string) *Image {
	return &Image{src: src, format: format}
}

func (u *Image) Format() string { return u.format }

// Source returns the decoded image.
func (u *Image) Source() image.Image { return u.src }

// OCRError reports why recognition failed, if it did.
func (u *Image) OCRError() error { return u.ocrErr }

func (u *Image) SearchableText() string     { return u.text }
func (u *Image) Glyphs() []content.GlyphRun { return u.runs }

func (u *Image) Size() geometry.Size {
	b := u.src.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// PageMatrix maps image pixels (y down) to unit pixels at zoom.
func (u *Image) PageMatrix(zoom float64) geometry.Matrix {
	return geometry.Scale(zoom, zoom)
}

// SetWords replaces the searchable text with recognised words. Words on one
// line are joined by spaces and lines by newlines. Each word becomes a
// glyph run whose box is the word's bounds.
func (u *Image) SetWords(lines [][]ocr.TextWord) {
	var sb strings.Builder
	var runs []content.GlyphRun
	pos := 0
	write := func(s string) {
		sb.WriteString(s)
		pos += utf8.RuneCountInString(s)
	}
	for _, line := range lines {
		wrote := false
		for _, w := range line {
			text := content.NormalizeText(strings.TrimSpace(w.Text))
			n := utf8.RuneCountInString(text)
			if n == 0 || w.Bounds.Height <= 0 {
				continue
			}
			switch {
			case wrote:
				write(" ")
			case sb.Len() > 0:
				write("\n")
			}
			wrote = true
			h := w.Bounds.Height
			adv := make([]float64, n)
			for i := range adv {
				adv[i] = w.Bounds.Width / h / float64(n)
			}
			runs = append(runs, content.GlyphRun{
				Text:     text,
				Offset:   pos,
				Matrix:   geometry.Matrix{h, 0, 0, h, w.Bounds.X, w.Bounds.Y + h},
				Advances: adv,
			})
			write(text)
		}
	}
	u.text = sb.String()
	u.runs = runs
}

// Rendition scales the image to zoom and encodes it as PNG.
func (u *Image) Rendition(zoom float64) ([]byte, error) {
	b := u.src.Bounds()
	w, h := scaled(b.Dx(), zoom), scaled(b.Dy(), zoom)
	if long := max(w, h); long > MaxRendition {
		k := float64(MaxRendition) / float64(long)
		w, h = max(1, int(float64(w)*k)), max(1, int(float64(h)*k))
	}
	var out image.Image = u.src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), u.src, b, draw.Src, nil)
		out = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode rendition: %w", err)
	}
	return buf.Bytes(), nil
}

func scaled(n int, zoom float64) int {
	return max(1, int(math.Round(float64(n)*zoom)))
}

// RenderWith emits an <img> for the rendition at vp.Zoom. With a blob store
// the bytes are published there and the URL is returned so the caller can
// revoke it; without one the image is inlined as a data URL.
func (u *Image) RenderWith(ctx context.Context, target *html.Node, vp geometry.Viewport, blobs *surface.BlobStore) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := u.Rendition(vp.Zoom)
	if err != nil {
		return "", err
	}
	var src, url string
	if blobs != nil {
		url = blobs.Create(data, "image/png")
		src = url
	} else {
		src = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	}
	px := u.Size().Scale(vp.Zoom)
	frame := surface.Element("div", surface.Attr("style", surface.SizeStyle(px)))
	surface.Append(frame, surface.Element("img",
		surface.Attr("src", src),
		surface.Attr("width", fmt.Sprintf("%.0f", px.Width)),
		surface.Attr("height", fmt.Sprintf("%.0f", px.Height)),
		surface.Attr("draggable", "false"),
	))
	if len(u.runs) > 0 {
		surface.Append(frame, surface.Element("div",
			surface.Attr("class", surface.ClassTextLayer),
			surface.Attr("style", surface.BoxStyle(geometry.Rect{Width: px.Width, Height: px.Height})),
		))
	}
	surface.Append(target, frame)
	return url, nil
}

func (u *Image) RenderInto(ctx context.Context, target *html.Node, vp geometry.Viewport) error {
	_, err := u.RenderWith(ctx, target, vp, nil)
	return err
}

// Parser decodes PNG, JPEG, GIF, BMP, TIFF and WebP.
type Parser struct {
	engine    ocr.Engine
	languages []string
}

type Option func(*Parser)

// WithOCR sets the engine used for searchable text. Nil disables OCR.
func WithOCR(engine ocr.Engine, languages ...string) Option {
	return func(p *Parser) {
		p.engine = engine
		p.languages = languages
	}
}

// NewParser uses the process default OCR engine unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{engine: ocr.DefaultEngine()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if src.Bounds().Empty() {
		return nil, content.ErrEmptyDocument
	}
	u := NewImage(src, format)
	if p.engine != nil && !ocr.IsNoop(p.engine) {
		if err := p.recognize(ctx, u); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			u.ocrErr = err
		}
	}
	return &content.Document{Units: []content.Unit{u}}, nil
}

func (p *Parser) recognize(ctx context.Context, u *Image) error {
	var opts []ocr.InputOption
	if len(p.languages) > 0 {
		opts = append(opts, ocr.WithLanguages(p.languages...))
	}
	if p.engine.Name() == "tesseract" {
		opts = append(opts, ocr.WithTesseractDefaults())
	}
	in, err := ocr.InputFromImage(1, u.src, opts...)
	if err != nil {
		return err
	}
	results, err := ocr.Recognize(ctx, p.engine, []ocr.Input{in})
	if err != nil {
		return fmt.Errorf("ocr %s: %w", p.engine.Name(), err)
	}
	var lines [][]ocr.TextWord
	for _, r := range results {
		for _, b := range r.Blocks {
			for _, l := range b.Lines {
				lines = append(lines, l.Words)
			}
		}
	}
	u.SetWords(lines)
	return nil
}
