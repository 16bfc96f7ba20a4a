package content

import (
	"context"
	"testing"

	"golang.org/x/net/html"

	"github.com/wudi/docview/geometry"
)

type grid struct {
	header []string
	rows   [][]string
}

func (g grid) SearchableText() string { return "" }
func (g grid) Size() geometry.Size    { return geometry.Size{} }
func (g grid) RenderInto(context.Context, *html.Node, geometry.Viewport) error {
	return nil
}
func (g grid) Name() string       { return "g" }
func (g grid) Header() []string   { return g.header }
func (g grid) RowCount() int      { return len(g.rows) }
func (g grid) Row(i int) []string { return g.rows[i] }

func TestLayoutCells(t *testing.T) {
	g := grid{
		header: []string{"name", "qty"},
		rows:   [][]string{{"apple", "3"}, {"pear", "12"}},
	}
	l := LayoutCells(g)
	if l.Text != "name\tqty\napple\t3\npear\t12" {
		t.Fatalf("text = %q", l.Text)
	}
	tests := []struct {
		offset int
		cell   Cell
		local  int
	}{
		{0, Cell{-1, 0}, 0},
		{5, Cell{-1, 1}, 0},
		{11, Cell{0, 0}, 2},
		{18, Cell{1, 0}, 1},
		{23, Cell{1, 1}, 1},
	}
	for _, tt := range tests {
		cell, local, ok := l.Locate(tt.offset)
		if !ok || cell != tt.cell || local != tt.local {
			t.Errorf("Locate(%d) = %+v %d %v, want %+v %d", tt.offset, cell, local, ok, tt.cell, tt.local)
		}
	}
	if _, _, ok := l.Locate(-1); ok {
		t.Fatalf("negative offset should not resolve")
	}
}

func TestCellText(t *testing.T) {
	if got := CellText("a\tb\r\nc"); got != "a b  c" {
		t.Fatalf("CellText = %q", got)
	}
}
