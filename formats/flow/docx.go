package flow

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/ooxml"
	"github.com/wudi/docview/surface"
)

// DOCX reads word/document.xml from the package and maps paragraphs, runs,
// lists and tables onto HTML blocks.
type DOCX struct{ b *Builder }

func NewDOCX(b *Builder) *DOCX { return &DOCX{b: b} }

func (d *DOCX) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, err
	}
	rc, err := pkg.Open("word/document.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	body, err := docxBlocks(ctx, rc)
	if err != nil {
		return nil, err
	}
	title := pkg.Title()
	if title == "" {
		title = headingText(body)
	}
	return d.b.Document(title, body)
}

type docxRun struct {
	bold, italic bool
	text         strings.Builder
}

type docxParagraph struct {
	style    string
	numbered bool
	runs     []*docxRun
}

// docxBlocks walks the document body token by token.
func docxBlocks(ctx context.Context, r io.Reader) ([]*html.Node, error) {
	body := surface.Element("div")
	containers := []*html.Node{body}
	var rows []*html.Node
	var para *docxParagraph
	var run *docxRun
	inText, inProps := false, false

	dec := xml.NewDecoder(r)
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}
		container := containers[len(containers)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				table := surface.Element("table")
				container.AppendChild(table)
				tbody := surface.Element("tbody")
				table.AppendChild(tbody)
				rows = append(rows, tbody)
			case "tr":
				if len(rows) > 0 {
					tr := surface.Element("tr")
					rows[len(rows)-1].AppendChild(tr)
					containers = append(containers, tr)
				}
			case "tc":
				td := surface.Element("td")
				container.AppendChild(td)
				containers = append(containers, td)
			case "p":
				para = &docxParagraph{}
			case "pStyle":
				if para != nil {
					para.style = attrVal(t)
				}
			case "numPr":
				if para != nil {
					para.numbered = true
				}
			case "r":
				if para != nil {
					run = &docxRun{}
					para.runs = append(para.runs, run)
				}
			case "rPr":
				inProps = true
			case "b":
				if run != nil && inProps {
					run.bold = toggleOn(t)
				}
			case "i":
				if run != nil && inProps {
					run.italic = toggleOn(t)
				}
			case "t":
				inText = true
			case "tab":
				if run != nil {
					run.text.WriteByte('\t')
				}
			case "br", "cr":
				if run != nil {
					run.text.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText && run != nil {
				run.text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inProps = false
			case "r":
				run = nil
			case "p":
				if para != nil {
					appendParagraph(container, para)
				}
				para = nil
			case "tc", "tr":
				if len(containers) > 1 {
					containers = containers[:len(containers)-1]
				}
			case "tbl":
				if len(rows) > 0 {
					rows = rows[:len(rows)-1]
				}
			}
		}
	}

	var blocks []*html.Node
	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		body.RemoveChild(c)
		blocks = append(blocks, c)
		c = next
	}
	return blocks, nil
}

func attrVal(t xml.StartElement) string {
	for _, a := range t.Attr {
		if a.Name.Local == "val" {
			return a.Value
		}
	}
	return ""
}

// toggleOn reads an on/off property such as <w:b/> or <w:b w:val="0"/>.
func toggleOn(t xml.StartElement) bool {
	switch strings.ToLower(attrVal(t)) {
	case "0", "false", "off":
		return false
	}
	return true
}

func appendParagraph(container *html.Node, p *docxParagraph) {
	var text strings.Builder
	for _, r := range p.runs {
		text.WriteString(r.text.String())
	}
	inCell := container.Data == "td"
	if strings.TrimSpace(text.String()) == "" && !inCell {
		return
	}

	tag := "p"
	if level := docxHeadingLevel(p.style); level > 0 {
		tag = fmt.Sprintf("h%d", level)
	} else if p.numbered {
		tag = "li"
	}
	el := surface.Element(tag)
	for _, r := range p.runs {
		appendRun(el, r)
	}

	if tag != "li" {
		container.AppendChild(el)
		return
	}
	list := container.LastChild
	if list == nil || list.Type != html.ElementNode || list.Data != "ul" {
		list = surface.Element("ul")
		container.AppendChild(list)
	}
	list.AppendChild(el)
}

func appendRun(parent *html.Node, r *docxRun) {
	s := r.text.String()
	if s == "" {
		return
	}
	target := parent
	if r.bold {
		b := surface.Element("strong")
		target.AppendChild(b)
		target = b
	}
	if r.italic {
		i := surface.Element("em")
		target.AppendChild(i)
		target = i
	}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			target.AppendChild(surface.Element("br"))
		}
		if line != "" {
			target.AppendChild(surface.Text(line))
		}
	}
}

// docxHeadingLevel maps a paragraph style id to a heading level, 0 for body
// text. "Heading1" and "Title" are 1, "Subtitle" is 2.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	switch lower {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}
