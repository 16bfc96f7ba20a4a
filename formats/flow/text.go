package flow

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/surface"
)

// Text splits plain text into paragraphs at blank lines. Input that is not
// valid UTF-8 is read as Windows-1252.
type Text struct{ b *Builder }

func NewText(b *Builder) *Text { return &Text{b: b} }

func (t *Text) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := string(data)
	if !utf8.Valid(data) {
		if dec, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			s = string(dec)
		}
	}
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var blocks []*html.Node
	var title string
	for _, para := range strings.Split(s, "\n\n") {
		lines := strings.Split(strings.Trim(para, "\n"), "\n")
		if len(lines) == 1 && strings.TrimSpace(lines[0]) == "" {
			continue
		}
		p := surface.Element("p")
		for i, line := range lines {
			if i > 0 {
				p.AppendChild(surface.Element("br"))
			}
			p.AppendChild(surface.Text(line))
		}
		if title == "" {
			title = strings.TrimSpace(lines[0])
		}
		blocks = append(blocks, p)
	}
	if r := []rune(title); len(r) > 200 {
		title = string(r[:200])
	}
	return t.b.Document(title, blocks)
}
