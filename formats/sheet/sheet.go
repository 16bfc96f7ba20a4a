// Package sheet holds the tabular backends. CSV and XLSX both decode into
// Sheet units: a header row plus string rows, padded to a common width.
package sheet

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

// Cell geometry at zoom 1.
const (
	ColumnWidth = 120
	RowHeight   = 28
)

// Sheet is one grid of cells.
type Sheet struct {
	name   string
	header []string
	rows   [][]string

	once   sync.Once
	layout *content.CellLayout
}

// NewSheet cleans every cell and pads rows to the widest row.
func NewSheet(name string, header []string, rows [][]string) *Sheet {
	width := len(header)
	for _, r := range rows {
		width = max(width, len(r))
	}
	s := &Sheet{name: name}
	if len(header) > 0 {
		s.header = pad(header, width)
	}
	s.rows = make([][]string, len(rows))
	for i, r := range rows {
		s.rows[i] = pad(r, width)
	}
	return s
}

func pad(cells []string, width int) []string {
	out := make([]string, width)
	for i, c := range cells {
		out[i] = content.CellText(c)
	}
	return out
}

func (s *Sheet) Name() string       { return s.name }
func (s *Sheet) Header() []string   { return s.header }
func (s *Sheet) RowCount() int      { return len(s.rows) }
func (s *Sheet) Row(i int) []string { return s.rows[i] }

// Columns returns the number of columns of every row.
func (s *Sheet) Columns() int {
	if len(s.header) > 0 {
		return len(s.header)
	}
	if len(s.rows) > 0 {
		return len(s.rows[0])
	}
	return 0
}

// Layout returns the cell address map of the sheet's searchable text.
func (s *Sheet) Layout() *content.CellLayout {
	s.once.Do(func() { s.layout = content.LayoutCells(s) })
	return s.layout
}

func (s *Sheet) SearchableText() string { return s.Layout().Text }

func (s *Sheet) Size() geometry.Size {
	rows := len(s.rows)
	if len(s.header) > 0 {
		rows++
	}
	return geometry.Size{
		Width:  float64(max(s.Columns(), 1) * ColumnWidth),
		Height: float64(max(rows, 1) * RowHeight),
	}
}

// RenderInto emits every row. Windowed rendering is left to the caller.
func (s *Sheet) RenderInto(ctx context.Context, target *html.Node, vp geometry.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g := surface.NewGrid(s.header, 0, len(s.rows), s.Row)
	surface.SetAttr(g.Table, "style", fmt.Sprintf("font-size:%.2fpx", 14*vp.Zoom))
	surface.Append(target, g.Table)
	return nil
}

// Title derives a document title from the unit names.
func title(sheets []*Sheet) string {
	names := make([]string, 0, len(sheets))
	for _, s := range sheets {
		names = append(names, s.name)
	}
	return strings.Join(names, ", ")
}
