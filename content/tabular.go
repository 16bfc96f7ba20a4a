package content

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// CellText cleans a raw cell value for display and search: NFC, with tabs
// and line breaks folded to spaces so the grid text layout stays
// addressable.
func CellText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
	return NormalizeText(s)
}

// Cell addresses one grid cell. Row -1 is the header.
type Cell struct {
	Row int
	Col int
}

// CellLayout is the searchable text of a Tabular unit together with the
// rune offset of every cell. The header comes first, then each row; cells
// are joined by tabs and rows by newlines.
type CellLayout struct {
	Text   string
	starts []int
	cells  []Cell
}

// LayoutCells builds the layout for t. The address space covers every row,
// whether or not it is currently rendered.
func LayoutCells(t Tabular) *CellLayout {
	var sb strings.Builder
	l := &CellLayout{}
	pos, started := 0, false
	add := func(row int, cells []string) {
		if started {
			sb.WriteByte('\n')
			pos++
		}
		if row >= 0 || len(cells) > 0 {
			started = true
		}
		for col, c := range cells {
			if col > 0 {
				sb.WriteByte('\t')
				pos++
			}
			l.starts = append(l.starts, pos)
			l.cells = append(l.cells, Cell{Row: row, Col: col})
			sb.WriteString(c)
			pos += utf8.RuneCountInString(c)
		}
	}
	add(-1, t.Header())
	for i := 0; i < t.RowCount(); i++ {
		add(i, t.Row(i))
	}
	l.Text = sb.String()
	return l
}

// Locate returns the cell containing the rune offset and the offset
// relative to the start of that cell.
func (l *CellLayout) Locate(offset int) (Cell, int, bool) {
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	if i < 0 || offset < 0 {
		return Cell{}, 0, false
	}
	return l.cells[i], offset - l.starts[i], true
}
