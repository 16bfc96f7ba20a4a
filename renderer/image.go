package renderer

import (
	"context"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/img"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/observability"
)

// Image shows a raster image. Every paint publishes the scaled rendition as
// a blob URL; the previous URL is revoked when the new paint is attached.
type Image struct {
	*core
}

func NewImage(host *html.Node, opts ...Option) *Image {
	c := newCore(host, "image", geometry.ImageZoomRange, false, opts)
	var popts []img.Option
	if c.cfg.ocr != nil {
		popts = append(popts, img.WithOCR(c.cfg.ocr, c.cfg.ocrLanguages...))
	}
	p := img.NewParser(popts...)
	c.parserFor = func(content.Source) (content.Parser, error) { return p, nil }
	c.paintUnit = func(ctx context.Context, job *paintJob, _ int, u content.Unit, target *html.Node) error {
		im, ok := u.(*img.Image)
		if !ok {
			return u.RenderInto(ctx, target, job.vp)
		}
		url, err := im.RenderWith(ctx, target, job.vp, c.blobs)
		if url != "" {
			job.urls = append(job.urls, url)
		}
		return err
	}
	c.onLoaded = func() {
		for _, u := range c.doc.Units {
			if im, ok := u.(*img.Image); ok && im.OCRError() != nil {
				c.log.Warn("ocr failed, image has no searchable text", observability.Error("error", im.OCRError()))
			}
		}
	}
	return &Image{core: c}
}

func (i *Image) FitToWidth(ctx context.Context) error  { return i.fit(ctx, fitWidth) }
func (i *Image) FitToHeight(ctx context.Context) error { return i.fit(ctx, fitHeight) }
func (i *Image) FitToPage(ctx context.Context) error   { return i.fit(ctx, fitPage) }
