// Package slides is the PPTX backend: one unit per slide, text only, laid
// out on a fixed 16:9 stage.
package slides

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/ooxml"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

// Stage size at zoom 1.
const (
	StageWidth  = 960
	StageHeight = 540
)

const ClassSlide = "dv-slide"

// Paragraph is one text paragraph of a slide.
type Paragraph struct {
	Text  string
	Title bool
}

// Slide is one slide of a deck.
type Slide struct {
	number int
	paras  []Paragraph
	text   string
}

// NewSlide builds a slide from its paragraphs in reading order.
func NewSlide(number int, paras []Paragraph) *Slide {
	s := &Slide{number: number}
	texts := make([]string, 0, len(paras))
	for _, p := range paras {
		p.Text = content.NormalizeText(p.Text)
		s.paras = append(s.paras, p)
		texts = append(texts, p.Text)
	}
	s.text = strings.Join(texts, "\n")
	return s
}

func (s *Slide) Number() int             { return s.number }
func (s *Slide) Paragraphs() []Paragraph { return s.paras }
func (s *Slide) SearchableText() string  { return s.text }
func (s *Slide) Size() geometry.Size     { return geometry.Size{Width: StageWidth, Height: StageHeight} }
func (s *Slide) IsMarkup() bool          { return true }

// Title returns the text of the first title paragraph.
func (s *Slide) Title() string {
	for _, p := range s.paras {
		if p.Title {
			return p.Text
		}
	}
	return ""
}

// RenderInto emits the slide stage scaled to the zoom. Paragraphs are
// separated by newline text nodes so the rendered text equals the
// searchable text.
func (s *Slide) RenderInto(ctx context.Context, target *html.Node, vp geometry.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	section := surface.Element("section",
		surface.Attr("class", ClassSlide),
		surface.Attr("style", fmt.Sprintf("%s;transform:scale(%.3f);transform-origin:0 0",
			surface.SizeStyle(s.Size()), vp.Zoom)),
	)
	for i, p := range s.paras {
		if i > 0 {
			section.AppendChild(surface.Text("\n"))
		}
		tag := "p"
		if p.Title {
			tag = "h2"
		}
		section.AppendChild(surface.Append(surface.Element(tag), surface.Text(p.Text)))
	}
	frame := surface.Element("div", surface.Attr("style", surface.SizeStyle(s.Size().Scale(vp.Zoom))))
	surface.Append(target, surface.Append(frame, section))
	return nil
}

// Parser reads a PPTX package.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

func (Parser) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, err
	}
	names := slideOrder(pkg)
	if len(names) == 0 {
		return nil, content.ErrEmptyDocument
	}

	doc := &content.Document{Title: pkg.Title()}
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc, err := pkg.Open(name)
		if err != nil {
			return nil, err
		}
		paras, err := slideParagraphs(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		doc.Units = append(doc.Units, NewSlide(i+1, paras))
	}
	if doc.Title == "" {
		doc.Title = doc.Units[0].(*Slide).Title()
	}
	return doc, nil
}

// slideOrder lists slide parts in presentation order. It follows the slide
// id list of ppt/presentation.xml and falls back to the numeric order of
// the part names when the list cannot be resolved.
func slideOrder(pkg *ooxml.Package) []string {
	if names := presentationOrder(pkg); len(names) > 0 {
		return names
	}
	type numbered struct {
		n    int
		name string
	}
	var parts []numbered
	for _, f := range pkg.Files("ppt/slides/slide") {
		base := strings.TrimSuffix(path.Base(f.Name), ".xml")
		n, err := strconv.Atoi(strings.TrimPrefix(base, "slide"))
		if err != nil || path.Dir(f.Name) != "ppt/slides" {
			continue
		}
		parts = append(parts, numbered{n, f.Name})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.name
	}
	return out
}

func presentationOrder(pkg *ooxml.Package) []string {
	var pres struct {
		IDs []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldIdLst>sldId"`
	}
	var rels struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if decodePart(pkg, "ppt/presentation.xml", &pres) != nil ||
		decodePart(pkg, "ppt/_rels/presentation.xml.rels", &rels) != nil {
		return nil
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = path.Join("ppt", r.Target)
	}
	var out []string
	for _, id := range pres.IDs {
		name, ok := targets[id.RID]
		if !ok || pkg.File(name) == nil {
			return nil
		}
		out = append(out, name)
	}
	return out
}

func decodePart(pkg *ooxml.Package, name string, v any) error {
	rc, err := pkg.Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// slideParagraphs collects a:p paragraphs in document order. Paragraphs of
// a shape whose placeholder is a title are flagged.
func slideParagraphs(r io.Reader) ([]Paragraph, error) {
	var out []Paragraph
	var text strings.Builder
	inText, inPara, titleShape := false, false, false

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode slide: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				titleShape = false
			case "ph":
				for _, a := range t.Attr {
					if a.Name.Local == "type" && (a.Value == "title" || a.Value == "ctrTitle") {
						titleShape = true
					}
				}
			case "p":
				inPara = true
				text.Reset()
			case "t":
				inText = inPara
			case "br":
				if inPara {
					text.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(text.String()); s != "" {
					out = append(out, Paragraph{Text: s, Title: titleShape})
				}
				inPara = false
			case "sp":
				titleShape = false
			}
		}
	}
}
