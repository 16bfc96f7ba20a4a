package surface

import (
	"strings"
	"testing"
)

func TestSweepUnwrapsMarksAndDropsBoxes(t *testing.T) {
	root := Element("div")
	p := Element("p")
	mark := Element("mark", Attr("class", ClassSearchHit))
	Append(mark, Text("Foo"))
	Append(p, Text("say "), mark, Text(" bar"))
	box := Element("div", Attr("class", "x "+ClassSearchHit))
	Append(root, p, box)

	if n := Sweep(root, ClassSearchHit); n != 2 {
		t.Fatalf("Sweep removed %d nodes, want 2", n)
	}
	out, err := Render(root)
	if err != nil {
		t.Fatal(err)
	}
	if out != "<p>say Foo bar</p>" {
		t.Fatalf("rendered %q", out)
	}
	if p.FirstChild == nil || p.FirstChild != p.LastChild {
		t.Fatal("text nodes should be merged after unwrap")
	}
	if len(ByClass(root, ClassSearchHit)) != 0 {
		t.Fatal("residual highlight nodes")
	}
}

func TestClassHelpers(t *testing.T) {
	n := Element("span")
	AddClass(n, "a")
	AddClass(n, "b")
	AddClass(n, "a")
	if v, _ := GetAttr(n, "class"); v != "a b" {
		t.Fatalf("class = %q", v)
	}
	RemoveClass(n, "a")
	if HasClass(n, "a") || !HasClass(n, "b") {
		t.Fatal("RemoveClass")
	}
}

func TestParseFragmentAndText(t *testing.T) {
	nodes, err := ParseFragment("<h1>Title</h1><p>Body <b>bold</b></p><script>x()</script>")
	if err != nil {
		t.Fatal(err)
	}
	root := Element("div")
	Append(root, nodes...)
	if got := TextContent(root); got != "TitleBody bold" {
		t.Fatalf("TextContent = %q", got)
	}
}

func TestBlobStore(t *testing.T) {
	s := NewBlobStore()
	u1 := s.Create([]byte("png"), "image/png")
	u2 := s.Create([]byte("png"), "image/png")
	if u1 != u2 || !strings.HasPrefix(u1, "blob:docview/") {
		t.Fatalf("urls %q %q", u1, u2)
	}
	s.Revoke(u1)
	if _, ok := s.Get(u1); !ok {
		t.Fatal("blob released while still referenced")
	}
	s.Revoke(u2)
	if s.Len() != 0 {
		t.Fatalf("Len = %d after revoking all references", s.Len())
	}
	s.Create([]byte("a"), "text/plain")
	s.RevokeAll()
	if s.Len() != 0 {
		t.Fatal("RevokeAll left blobs")
	}
}

func TestHandleReleasesListeners(t *testing.T) {
	d := NewDispatcher()
	var h Handle
	hits := 0
	h.Listen(d, KeyDown, func(Input) { hits++ })
	h.Listen(d, Wheel, func(Input) { hits++ })
	d.Dispatch(Input{Kind: KeyDown, Key: "ArrowRight"})
	h.Close()
	h.Close()
	d.Dispatch(Input{Kind: KeyDown})
	d.Dispatch(Input{Kind: Wheel})
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
	if d.Count(KeyDown) != 0 || d.Count(Wheel) != 0 {
		t.Fatal("listeners survived Close")
	}
	h.Listen(d, KeyDown, func(Input) {})
	if d.Count(KeyDown) != 0 {
		t.Fatal("closed handle accepted a listener")
	}
}

func TestGrid(t *testing.T) {
	rows := [][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	g := NewGrid([]string{"k", "v"}, 1, 3, func(i int) []string { return rows[i] })
	g.Body.InsertBefore(Spacer(28), g.Body.FirstChild)
	if n := len(ByClass(g.Table, ClassRow)); n != 2 {
		t.Fatalf("rows = %d", n)
	}
	if n := len(ByClass(g.Table, ClassSpacer)); n != 1 {
		t.Fatalf("spacers = %d", n)
	}
	if c := CellNode(g.Table, 2, 1); c == nil || TextContent(c) != "3" {
		t.Fatalf("cell (2,1) = %v", c)
	}
	if c := CellNode(g.Table, -1, 0); c == nil || TextContent(c) != "k" {
		t.Fatalf("header cell = %v", c)
	}
	if c := CellNode(g.Table, 0, 0); c != nil {
		t.Fatalf("row 0 is not materialised")
	}
}
