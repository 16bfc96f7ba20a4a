package renderer

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/pdf"
	"github.com/wudi/docview/geometry"
)

// Paged shows PDF pages, stacked in continuous mode unless disabled with
// WithContinuous(false).
type Paged struct {
	*core
}

func NewPaged(host *html.Node, opts ...Option) (*Paged, error) {
	p, err := pdf.NewParser()
	if err != nil {
		return nil, fmt.Errorf("new paged renderer: %w", err)
	}
	c := newCore(host, "pdf", geometry.DefaultZoomRange, true, opts)
	c.parserFor = func(content.Source) (content.Parser, error) { return p, nil }
	return &Paged{core: c}, nil
}

func (p *Paged) FitToWidth(ctx context.Context) error  { return p.fit(ctx, fitWidth) }
func (p *Paged) FitToHeight(ctx context.Context) error { return p.fit(ctx, fitHeight) }
func (p *Paged) FitToPage(ctx context.Context) error   { return p.fit(ctx, fitPage) }
