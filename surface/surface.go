// Package surface is the in-memory node tree renderers paint into. It is an
// x/net/html tree owned by a host container; overlays are tracked with
// marker classes so they can be removed with one sweep.
package surface

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docview/geometry"
)

// Marker classes and attributes shared by renderers and overlays.
const (
	ClassRoot          = "dv-root"
	ClassUnit          = "dv-unit"
	ClassTextLayer     = "dv-text-layer"
	ClassSearchHit     = "dv-search-hit"
	ClassSearchCurrent = "dv-search-current"
	ClassAnnotation    = "dv-annotation"
	ClassRow           = "dv-row"
	ClassSpacer        = "dv-spacer"

	AttrUnit       = "data-unit"
	AttrRow        = "data-row"
	AttrMatch      = "data-match"
	AttrAnnotation = "data-annotation"
)

func Attr(key, val string) html.Attribute { return html.Attribute{Key: key, Val: val} }

// Element creates a detached element node.
func Element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Append adds children to n and returns n.
func Append(n *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		n.AppendChild(c)
	}
	return n
}

func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func HasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	v, _ := GetAttr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	v, _ := GetAttr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(v+" "+class))
}

func RemoveClass(n *html.Node, class string) {
	v, ok := GetAttr(n, "class")
	if !ok {
		return
	}
	var kept []string
	for _, c := range strings.Fields(v) {
		if c != class {
			kept = append(kept, c)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// FindAll returns every descendant of root (root included) matching pred.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func ByClass(root *html.Node, class string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool { return HasClass(n, class) })
}

// Sweep removes every node carrying class below root. <mark> wrappers are
// unwrapped so the text they enclosed stays in place; anything else is
// dropped with its subtree. It returns the number of nodes swept.
func Sweep(root *html.Node, class string) int {
	nodes := ByClass(root, class)
	for _, n := range nodes {
		parent := n.Parent
		if parent == nil {
			continue
		}
		if n.DataAtom == atom.Mark {
			for c := n.FirstChild; c != nil; {
				next := c.NextSibling
				n.RemoveChild(c)
				parent.InsertBefore(c, n)
				c = next
			}
		}
		parent.RemoveChild(n)
		MergeText(parent)
	}
	return len(nodes)
}

// MergeText joins adjacent text children of n.
func MergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for c.Type == html.TextNode && c.NextSibling != nil && c.NextSibling.Type == html.TextNode {
			next := c.NextSibling
			c.Data += next.Data
			n.RemoveChild(next)
		}
	}
}

// Clear detaches every child of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// TextContent concatenates the text below n, skipping script and style.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			return false
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// Render serialises the children of n.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// ParseFragment parses markup as the content of a <div>.
func ParseFragment(markup string) ([]*html.Node, error) {
	ctx := Element("div")
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return nodes, nil
}

// BoxStyle positions an element absolutely over r.
func BoxStyle(r geometry.Rect) string {
	return fmt.Sprintf("position:absolute;left:%.2fpx;top:%.2fpx;width:%.2fpx;height:%.2fpx", r.X, r.Y, r.Width, r.Height)
}

// SizeStyle fixes an element's size.
func SizeStyle(s geometry.Size) string {
	return fmt.Sprintf("position:relative;width:%.2fpx;height:%.2fpx", s.Width, s.Height)
}
