package flow

import (
	"bytes"
	"context"
	"fmt"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/surface"
)

// Markdown converts CommonMark with GitHub extensions; $...$ and $$...$$
// math is rendered to MathML.
type Markdown struct {
	b  *Builder
	md goldmark.Markdown
}

func NewMarkdown(b *Builder) *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			treeblood.MathML(),
		),
	)
	return &Markdown{b: b, md: md}
}

func (m *Markdown) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := m.md.Convert(data, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	blocks, err := surface.ParseFragment(buf.String())
	if err != nil {
		return nil, err
	}
	return m.b.Document(headingText(blocks), blocks)
}
