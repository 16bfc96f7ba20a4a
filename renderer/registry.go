package renderer

import (
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
)

// Constructor builds a renderer painting into host.
type Constructor func(host *html.Node, opts ...Option) (Renderer, error)

// Registry maps content types and file extensions to renderer
// constructors. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Constructor
	byExt  map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string]Constructor),
		byExt:  make(map[string]Constructor),
	}
}

// Register maps every content type and extension to ctor, replacing
// earlier registrations.
func (r *Registry) Register(ctor Constructor, contentTypes, extensions []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range contentTypes {
		r.byType[normalizeType(t)] = ctor
	}
	for _, e := range extensions {
		r.byExt[normalizeExt(e)] = ctor
	}
}

// Lookup resolves a content type first and the extension second. A
// constructor found by content type builds renderers that parse by that type.
func (r *Registry) Lookup(contentType, ext string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if contentType != "" {
		if c, ok := r.byType[normalizeType(contentType)]; ok {
			return func(host *html.Node, opts ...Option) (Renderer, error) {
				return c(host, append([]Option{WithContentType(contentType)}, opts...)...)
			}, nil
		}
	}
	if c, ok := r.byExt[normalizeExt(ext)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: content type %q, extension %q", ErrUnsupported, contentType, ext)
}

// ForSource resolves by the source name's extension.
func (r *Registry) ForSource(src content.Source) (Constructor, error) {
	return r.Lookup("", content.Ext(src))
}

// Extensions lists the registered extensions in order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byExt))
	for e := range r.byExt {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

func normalizeType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(t))
}

func normalizeExt(e string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
}

// Builtin returns a registry holding every renderer of this module.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(func(h *html.Node, opts ...Option) (Renderer, error) { return NewPaged(h, opts...) },
		[]string{"application/pdf"},
		[]string{"pdf"})
	r.Register(func(h *html.Node, opts ...Option) (Renderer, error) { return NewFlow(h, opts...) },
		[]string{
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/html", "application/xhtml+xml", "text/markdown", "text/plain",
		},
		[]string{"docx", "html", "htm", "xhtml", "md", "markdown", "txt", "text"})
	r.Register(func(h *html.Node, opts ...Option) (Renderer, error) { return NewGrid(h, opts...), nil },
		[]string{
			"text/csv", "text/tab-separated-values",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel.sheet.macroenabled.12",
		},
		[]string{"csv", "tsv", "xlsx", "xlsm"})
	r.Register(func(h *html.Node, opts ...Option) (Renderer, error) { return NewSlides(h, opts...), nil },
		[]string{"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		[]string{"pptx"})
	r.Register(func(h *html.Node, opts ...Option) (Renderer, error) { return NewImage(h, opts...), nil },
		[]string{"image/png", "image/jpeg", "image/gif", "image/bmp", "image/tiff", "image/webp"},
		[]string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"})
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, populated with Builtin on
// first use.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = Builtin() })
	return defaultRegistry
}
