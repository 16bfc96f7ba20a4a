package renderer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/formats/sheet"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/observability"
	"github.com/wudi/docview/surface"
	"github.com/wudi/docview/virtual"
)

// Grid shows one sheet at a time; Goto switches sheets. Large sheets only
// materialise the rows around the scroll position.
type Grid struct {
	*core
	window *virtual.Window
}

func NewGrid(host *html.Node, opts ...Option) *Grid {
	c := newCore(host, "grid", geometry.GridZoomRange, false, opts)
	g := &Grid{core: c}
	comma := sheet.NewCSV()
	c.parserFor = byFormat(c.cfg.contentType, map[string]string{
		"text/csv":                  "csv",
		"text/tab-separated-values": "tsv",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
		"application/vnd.ms-excel.sheet.macroenabled.12":                    "xlsm",
	}, map[string]content.Parser{
		"csv":  comma,
		"tsv":  &sheet.CSV{Comma: '\t'},
		"xlsx": sheet.NewXLSX(),
		"xlsm": sheet.NewXLSX(),
	}, comma)
	c.onLoaded = g.resetWindow
	c.onGoto = func(int) { g.resetWindow() }
	c.extraKey = func() int {
		if g.window == nil {
			return 0
		}
		return g.window.RenderedOffset()
	}
	c.onScroll = g.scroll
	c.prepare = func(job *paintJob) {
		if g.window != nil {
			w := *g.window
			job.window = &w
		}
	}
	c.paintUnit = g.paintSheet
	return g
}

func (g *Grid) resetWindow() {
	g.window = nil
	if t, ok := g.doc.Units[g.unit-1].(content.Tabular); ok {
		g.window = virtual.New(t.RowCount(), g.cfg.window)
	}
}

// scroll maps a pixel scroll offset at the current zoom to rows.
func (g *Grid) scroll(in surface.Input) bool {
	if g.window == nil || g.zoom <= 0 {
		return false
	}
	return g.window.Scroll(in.ScrollTop / g.zoom)
}

func (g *Grid) paintSheet(ctx context.Context, job *paintJob, _ int, u content.Unit, target *html.Node) error {
	t, ok := u.(content.Tabular)
	if !ok {
		return u.RenderInto(ctx, target, job.vp)
	}
	r := virtual.Range{Start: 0, End: t.RowCount()}
	var top, bottom float64
	if job.window != nil {
		r = job.window.Range()
		top, bottom = job.window.Padding()
	}
	grid := surface.NewGrid(t.Header(), r.Start, r.End, t.Row)
	surface.SetAttr(grid.Table, "data-sheet", t.Name())
	surface.SetAttr(grid.Table, "style", fmt.Sprintf("font-size:%.2fpx", 14*job.vp.Zoom))
	if top > 0 {
		grid.Body.InsertBefore(surface.Spacer(top*job.vp.Zoom), grid.Body.FirstChild)
	}
	if bottom > 0 {
		grid.Body.AppendChild(surface.Spacer(bottom * job.vp.Zoom))
	}
	target.AppendChild(grid.Table)
	g.log.Debug("grid rows", observability.Int(observability.MetricRenderedRows, r.Len()))
	return nil
}

// Window returns the rows currently materialised for the current sheet.
func (g *Grid) Window() virtual.Range {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.window == nil {
		return virtual.Range{}
	}
	return g.window.Range()
}

// ExportCSV writes every row of the current sheet, header first.
func (g *Grid) ExportCSV(w io.Writer) error {
	g.mu.Lock()
	if err := g.requireDocLocked("export csv"); err != nil {
		g.mu.Unlock()
		return err
	}
	u := g.doc.Units[g.unit-1]
	g.mu.Unlock()
	t, ok := u.(content.Tabular)
	if !ok {
		return fmt.Errorf("export csv: unit %T is not tabular", u)
	}

	cw := csv.NewWriter(w)
	if h := t.Header(); len(h) > 0 {
		if err := cw.Write(h); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	for i := 0; i < t.RowCount(); i++ {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}
