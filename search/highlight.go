package search

import (
	"strconv"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

func hitAttrs(match int, current bool) []html.Attribute {
	class := surface.ClassSearchHit
	if current {
		class += " " + surface.ClassSearchCurrent
	}
	return []html.Attribute{
		surface.Attr("class", class),
		surface.Attr(surface.AttrMatch, strconv.Itoa(match)),
	}
}

// textNodes lists the text nodes below root in the order TextContent reads them.
func textNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	surface.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return false
		}
		if n.Type == html.TextNode {
			out = append(out, n)
		}
		return true
	})
	return out
}

// MarkRange wraps the characters [offset, offset+length) of root's text in
// <mark> elements, one per text node the range touches. It returns the
// number of wrappers created.
func MarkRange(root *html.Node, offset, length, match int, current bool) int {
	if length <= 0 {
		return 0
	}
	end := offset + length
	pos, marks := 0, 0
	for _, tn := range textNodes(root) {
		n := utf8.RuneCountInString(tn.Data)
		from, to := max(offset, pos), min(end, pos+n)
		if from < to {
			wrapRunes(tn, from-pos, to-pos, hitAttrs(match, current))
			marks++
		}
		pos += n
		if pos >= end {
			break
		}
	}
	return marks
}

func wrapRunes(tn *html.Node, from, to int, attrs []html.Attribute) {
	b0, b1 := runeToByte(tn.Data, from), runeToByte(tn.Data, to)
	before, mid, after := tn.Data[:b0], tn.Data[b0:b1], tn.Data[b1:]
	parent := tn.Parent

	mark := surface.Element("mark", attrs...)
	mark.AppendChild(surface.Text(mid))
	parent.InsertBefore(mark, tn.NextSibling)
	if after != "" {
		parent.InsertBefore(surface.Text(after), mark.NextSibling)
	}
	if before == "" {
		parent.RemoveChild(tn)
	} else {
		tn.Data = before
	}
}

func runeToByte(s string, r int) int {
	i := 0
	for k := 0; k < r && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// MatchBoxes computes the on-screen boxes covering the characters
// [offset, offset+length) of a glyph positioned text layer.
func MatchBoxes(runs []content.GlyphRun, page geometry.Matrix, offset, length int) []geometry.Rect {
	if length <= 0 {
		return nil
	}
	end := offset + length
	var boxes []geometry.Rect
	for _, run := range runs {
		n := utf8.RuneCountInString(run.Text)
		from, to := max(offset, run.Offset), min(end, run.Offset+n)
		if from >= to {
			continue
		}
		from -= run.Offset
		to -= run.Offset
		var prefix, width float64
		for i, adv := range run.Advances {
			switch {
			case i < from:
				prefix += adv
			case i < to:
				width += adv
			}
		}
		glyph := geometry.Translate(prefix, 0).Mul(run.Matrix)
		boxes = append(boxes, geometry.GlyphBox(page, glyph, width))
	}
	return boxes
}

// BoxRange appends absolutely positioned highlight boxes for a match to
// layer. It returns the number of boxes added.
func BoxRange(layer *html.Node, runs []content.GlyphRun, page geometry.Matrix, offset, length, match int, current bool) int {
	boxes := MatchBoxes(runs, page, offset, length)
	for _, r := range boxes {
		attrs := append(hitAttrs(match, current), surface.Attr("style", surface.BoxStyle(r)))
		layer.AppendChild(surface.Element("div", attrs...))
	}
	return len(boxes)
}

// SetCurrent moves the current-match marker to the overlays of match.
func SetCurrent(root *html.Node, match int) {
	want := strconv.Itoa(match)
	for _, n := range surface.ByClass(root, surface.ClassSearchHit) {
		if v, _ := surface.GetAttr(n, surface.AttrMatch); v == want {
			surface.AddClass(n, surface.ClassSearchCurrent)
		} else {
			surface.RemoveClass(n, surface.ClassSearchCurrent)
		}
	}
}

// Clear removes every highlight overlay below root in one sweep.
func Clear(root *html.Node) int {
	return surface.Sweep(root, surface.ClassSearchHit)
}
