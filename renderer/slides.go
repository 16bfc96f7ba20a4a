package renderer

import (
	"context"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/slides"
	"github.com/wudi/docview/geometry"
)

// Slides shows one slide at a time, fitted to the viewport on load.
type Slides struct {
	*core
}

func NewSlides(host *html.Node, opts ...Option) *Slides {
	p := slides.NewParser()
	c := newCore(host, "pptx", geometry.DefaultZoomRange, false, opts)
	c.parserFor = func(content.Source) (content.Parser, error) { return p, nil }
	c.onLoaded = func() {
		c.zoom = c.zoomRange.Clamp(geometry.FitPage(c.doc.Units[0].Size(), c.view))
	}
	return &Slides{core: c}
}

func (s *Slides) FitToWidth(ctx context.Context) error  { return s.fit(ctx, fitWidth) }
func (s *Slides) FitToHeight(ctx context.Context) error { return s.fit(ctx, fitHeight) }
func (s *Slides) FitToPage(ctx context.Context) error   { return s.fit(ctx, fitPage) }
