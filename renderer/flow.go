package renderer

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/flow"
	"github.com/wudi/docview/geometry"
)

// Flow shows DOCX, HTML, Markdown and plain text as stacked pages of live
// markup. The backend is picked from the source extension; unknown
// extensions are read as plain text.
type Flow struct {
	*core
}

func NewFlow(host *html.Node, opts ...Option) (*Flow, error) {
	b, err := flow.NewBuilder()
	if err != nil {
		return nil, fmt.Errorf("new flow renderer: %w", err)
	}
	htmlParser := flow.NewHTML(b)
	md := flow.NewMarkdown(b)
	text := flow.NewText(b)
	c := newCore(host, "flow", geometry.DefaultZoomRange, true, opts)
	c.parserFor = byFormat(c.cfg.contentType, map[string]string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
		"text/html":             "html",
		"application/xhtml+xml": "xhtml",
		"text/markdown":         "md",
		"text/plain":            "txt",
	}, map[string]content.Parser{
		"docx":     flow.NewDOCX(b),
		"html":     htmlParser,
		"htm":      htmlParser,
		"xhtml":    htmlParser,
		"md":       md,
		"markdown": md,
		"txt":      text,
		"text":     text,
	}, text)
	return &Flow{core: c}, nil
}

// byFormat selects a parser by the declared content type, mapped through
// types to a key of parsers, and otherwise by the source's extension.
func byFormat(contentType string, types map[string]string, parsers map[string]content.Parser, fallback content.Parser) func(content.Source) (content.Parser, error) {
	return func(src content.Source) (content.Parser, error) {
		if p, ok := parsers[types[contentType]]; ok {
			return p, nil
		}
		if p, ok := parsers[content.Ext(src)]; ok {
			return p, nil
		}
		if fallback != nil {
			return fallback, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, src.Name())
	}
}
