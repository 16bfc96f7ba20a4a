package flow

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/surface"
)

// HTML reads a full HTML document. The <title> becomes the document title
// and the children of <body> become blocks.
type HTML struct{ b *Builder }

func NewHTML(b *Builder) *HTML { return &HTML{b: b} }

func (h *HTML) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var title string
	var body *html.Node
	surface.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Title:
			if title == "" {
				title = strings.TrimSpace(surface.TextContent(n))
			}
			return false
		case atom.Body:
			if body == nil {
				body = n
			}
			return false
		}
		return true
	})
	var blocks []*html.Node
	if body != nil {
		for c := body.FirstChild; c != nil; {
			next := c.NextSibling
			body.RemoveChild(c)
			blocks = append(blocks, c)
			c = next
		}
	}
	if title == "" {
		title = headingText(blocks)
	}
	return h.b.Document(title, blocks)
}
