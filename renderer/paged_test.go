package renderer

import (
	"context"
	"strings"
	"testing"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/pdf"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

func halfEm(text string) []float64 {
	adv := make([]float64, 0, len(text))
	for range text {
		adv = append(adv, 0.5)
	}
	return adv
}

// glyphParser serves one 200x100 page per content stream, measured at half
// an em per rune.
func glyphParser(streams ...string) content.Parser {
	return content.ParserFunc(func(context.Context, []byte) (*content.Document, error) {
		doc := &content.Document{}
		for i, s := range streams {
			runs, text, err := pdf.ExtractGlyphs([]byte(s), halfEm)
			if err != nil {
				return nil, err
			}
			doc.Units = append(doc.Units, pdf.NewPage(i+1, geometry.Size{Width: 200, Height: 100}, runs, text))
		}
		return doc, nil
	})
}

func TestPagedSearchBoxesDecomposedText(t *testing.T) {
	ctx := context.Background()
	p, err := NewPaged(surface.Element("div"), WithContinuous(false))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Destroy)
	// "e" + combining acute + " bar", 10pt at (20, 50).
	parser := glyphParser("BT /F1 10 Tf 20 50 Td <FEFF006503010020006200610072> Tj ET")
	p.parserFor = func(content.Source) (content.Parser, error) { return parser, nil }
	if err := p.Load(ctx, content.Bytes("doc.pdf", []byte("%PDF"))); err != nil {
		t.Fatal(err)
	}
	if err := p.Render(ctx); err != nil {
		t.Fatal(err)
	}

	results, err := p.Search(ctx, "bar")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].CharOffset != 2 || results[0].Length != 3 {
		t.Fatalf("results = %+v", results)
	}
	hits := surface.ByClass(p.root, surface.ClassSearchHit)
	if len(hits) != 1 {
		t.Fatalf("hits = %d", len(hits))
	}
	// "b" sits after the composed e (two half-em advances) and the space.
	style, _ := surface.GetAttr(hits[0], "style")
	if !strings.Contains(style, "left:35.00px;top:40.00px;width:15.00px") {
		t.Fatalf("hit style = %s", style)
	}
}
