package flow

import (
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docview/surface"
)

// Policy controls when and how flowed content is split into pages. The
// thresholds are heuristics and may be tuned freely.
type Policy struct {
	MinWords     int // below this the document stays on one page
	MinPages     int
	MaxPages     int
	WordsPerPage int // target for the length strategy
}

func DefaultPolicy() Policy {
	return Policy{MinWords: 600, MinPages: 2, MaxPages: 6, WordsPerPage: 500}
}

// Strategy splits top-level blocks into pages.
type Strategy func(blocks []*html.Node, p Policy) [][]*html.Node

// Strategies are tried in order; the first result with an acceptable page
// count wins.
var Strategies = []Strategy{ByHeadings, ByLength}

// Paginate applies the policy. Documents that are too short, or for which
// no strategy lands within [MinPages, MaxPages], are returned as one page.
func Paginate(blocks []*html.Node, p Policy) [][]*html.Node {
	if len(blocks) == 0 {
		return nil
	}
	if CountWords(blocks) >= p.MinWords {
		for _, s := range Strategies {
			pages := s(blocks, p)
			if len(pages) >= p.MinPages && len(pages) <= p.MaxPages {
				return pages
			}
		}
	}
	return [][]*html.Node{blocks}
}

// ByHeadings starts a new page at every top-level h1 or h2 that follows body
// text. Content before the first heading stays with it.
func ByHeadings(blocks []*html.Node, _ Policy) [][]*html.Node {
	var pages [][]*html.Node
	var cur []*html.Node
	seenText := false
	for _, n := range blocks {
		if seenText && n.Type == html.ElementNode && (n.DataAtom == atom.H1 || n.DataAtom == atom.H2) {
			pages = append(pages, cur)
			cur, seenText = nil, false
		}
		cur = append(cur, n)
		if !isHeading(n) && wordCount(n) > 0 {
			seenText = true
		}
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}
	return pages
}

// ByLength cuts at block boundaries once a page reaches its share of the
// words.
func ByLength(blocks []*html.Node, p Policy) [][]*html.Node {
	total := CountWords(blocks)
	per := max(p.WordsPerPage, 1)
	n := int(math.Ceil(float64(total) / float64(per)))
	if n <= 1 {
		return [][]*html.Node{blocks}
	}
	target := int(math.Ceil(float64(total) / float64(n)))
	var pages [][]*html.Node
	var cur []*html.Node
	count := 0
	for _, b := range blocks {
		cur = append(cur, b)
		count += wordCount(b)
		if count >= target {
			pages = append(pages, cur)
			cur, count = nil, 0
		}
	}
	if len(cur) > 0 {
		if count == 0 && len(pages) > 0 {
			// Trailing whitespace-only blocks join the last page.
			pages[len(pages)-1] = append(pages[len(pages)-1], cur...)
		} else {
			pages = append(pages, cur)
		}
	}
	return pages
}

func CountWords(blocks []*html.Node) int {
	total := 0
	for _, b := range blocks {
		total += wordCount(b)
	}
	return total
}

func wordCount(n *html.Node) int { return len(strings.Fields(surface.TextContent(n))) }
