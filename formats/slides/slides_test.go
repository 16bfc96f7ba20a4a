package slides

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

func slideXML(title string, body ...string) string {
	s := `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`
	if title != "" {
		s += `<p:sp><p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>` + title + `</a:t></a:r></a:p></p:txBody></p:sp>`
	}
	s += `<p:sp><p:txBody>`
	for _, b := range body {
		s += `<a:p><a:r><a:t>` + b + `</a:t></a:r></a:p>`
	}
	return s + `<a:p></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

func buildPPTX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseNumericOrder(t *testing.T) {
	parts := map[string]string{}
	for _, n := range []int{10, 2, 1} {
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", n)] = slideXML(fmt.Sprintf("Slide %d", n), "body")
	}
	parts["ppt/slides/_rels/slide1.xml.rels"] = "<Relationships/>"
	doc, err := NewParser().Parse(context.Background(), buildPPTX(t, parts))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var titles []string
	for _, u := range doc.Units {
		titles = append(titles, u.(*Slide).Title())
	}
	if diff := cmp.Diff([]string{"Slide 1", "Slide 2", "Slide 10"}, titles); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if doc.Title != "Slide 1" {
		t.Fatalf("title = %q", doc.Title)
	}
}

func TestParsePresentationOrder(t *testing.T) {
	parts := map[string]string{
		"ppt/slides/slide1.xml": slideXML("First file"),
		"ppt/slides/slide2.xml": slideXML("Second file"),
		"ppt/presentation.xml": `<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<p:sldIdLst><p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId2"/></p:sldIdLst></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId2" Target="slides/slide1.xml"/><Relationship Id="rId3" Target="slides/slide2.xml"/></Relationships>`,
		"docProps/core.xml": `<cp:coreProperties xmlns:cp="c" xmlns:dc="d"><dc:title>Deck</dc:title></cp:coreProperties>`,
	}
	doc, err := NewParser().Parse(context.Background(), buildPPTX(t, parts))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Deck" {
		t.Fatalf("title = %q", doc.Title)
	}
	if got := doc.Units[0].(*Slide).Title(); got != "Second file" {
		t.Fatalf("first slide = %q", got)
	}
}

func TestParseEmptyDeck(t *testing.T) {
	data := buildPPTX(t, map[string]string{"ppt/presentation.xml": "<p:presentation/>"})
	if _, err := NewParser().Parse(context.Background(), data); err == nil {
		t.Fatalf("expected error for deck without slides")
	}
}

func TestSlideRenderMatchesText(t *testing.T) {
	s := NewSlide(1, []Paragraph{{Text: "Roadmap", Title: true}, {Text: "Ship it"}, {Text: "Measure"}})
	if got := s.SearchableText(); got != "Roadmap\nShip it\nMeasure" {
		t.Fatalf("text = %q", got)
	}
	root := surface.Element("div")
	if err := s.RenderInto(context.Background(), root, geometry.Viewport{Zoom: 0.5}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := surface.TextContent(root); got != s.SearchableText() {
		t.Fatalf("rendered text = %q", got)
	}
	if len(surface.ByClass(root, ClassSlide)) != 1 {
		t.Fatalf("missing slide section")
	}
}
