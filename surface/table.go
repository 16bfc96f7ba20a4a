package surface

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Grid is a rendered table and its body.
type Grid struct {
	Table *html.Node
	Body  *html.Node
}

// NewGrid builds a table with an optional header and the rows [from, to)
// fetched through row. Every row carries its data index in AttrRow; the
// header row is -1.
func NewGrid(header []string, from, to int, row func(i int) []string) Grid {
	g := Grid{Table: Element("table"), Body: Element("tbody")}
	if len(header) > 0 {
		tr := Element("tr", Attr(AttrRow, "-1"))
		for _, h := range header {
			tr.AppendChild(Append(Element("th"), Text(h)))
		}
		g.Table.AppendChild(Append(Element("thead"), tr))
	}
	g.Table.AppendChild(g.Body)
	for i := from; i < to; i++ {
		tr := Element("tr", Attr("class", ClassRow), Attr(AttrRow, strconv.Itoa(i)))
		for _, c := range row(i) {
			tr.AppendChild(Append(Element("td"), Text(c)))
		}
		g.Body.AppendChild(tr)
	}
	return g
}

// Spacer returns a body row standing in for rows that are not materialised.
func Spacer(height float64) *html.Node {
	return Element("tr",
		Attr("class", ClassSpacer),
		Attr("style", fmt.Sprintf("height:%.2fpx", height)),
	)
}

// CellNode finds the cell at row and col below root, or nil when that row
// is not materialised.
func CellNode(root *html.Node, row, col int) *html.Node {
	want := strconv.Itoa(row)
	var cell *html.Node
	Walk(root, func(n *html.Node) bool {
		if cell != nil {
			return false
		}
		if n.DataAtom != atom.Tr {
			return true
		}
		if v, _ := GetAttr(n, AttrRow); v != want {
			return false
		}
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.DataAtom != atom.Td && c.DataAtom != atom.Th {
				continue
			}
			if i == col {
				cell = c
				break
			}
			i++
		}
		return false
	})
	return cell
}
