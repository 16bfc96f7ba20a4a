package sheet

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/surface"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"a,b,c\n1,2,3", ','},
		{"a;b;c\n1;2;3", ';'},
		{"a\tb\n1\t2", '\t'},
		{`"x;y",b` + "\n", ','},
		{"single", ','},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.in)); got != tt.want {
			t.Fatalf("Sniff(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCSVParse(t *testing.T) {
	data := "name;qty\napple;3\n\"pear\nwilliams\";12;extra\n"
	doc, err := NewCSV().Parse(context.Background(), []byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Units) != 1 {
		t.Fatalf("units = %d", len(doc.Units))
	}
	sh := doc.Units[0].(*Sheet)
	if sh.Name() != DefaultSheetName {
		t.Fatalf("name = %q", sh.Name())
	}
	if diff := cmp.Diff([]string{"name", "qty", ""}, sh.Header()); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pear williams", "12", "extra"}, sh.Row(1)); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	want := "name\tqty\t\napple\t3\t\npear williams\t12\textra"
	if got := sh.SearchableText(); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if got := sh.Size(); got != (geometry.Size{Width: 360, Height: 84}) {
		t.Fatalf("size = %+v", got)
	}
}

func TestCSVEmpty(t *testing.T) {
	doc, err := NewCSV().Parse(context.Background(), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if doc.Units[0].(*Sheet).RowCount() != 0 {
		t.Fatalf("expected no rows")
	}
}

func TestCSVWindows1252(t *testing.T) {
	doc, err := NewCSV().Parse(context.Background(), []byte("caf\xe9,x\n1,2"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Units[0].(*Sheet).Header()[0]; got != "café" {
		t.Fatalf("header = %q", got)
	}
}

func TestSheetRender(t *testing.T) {
	sh := NewSheet("s", []string{"k", "v"}, [][]string{{"a", "1"}, {"b", "2"}})
	root := surface.Element("div")
	if err := sh.RenderInto(context.Background(), root, geometry.Viewport{Zoom: 1}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := len(surface.ByClass(root, surface.ClassRow)); n != 2 {
		t.Fatalf("rows = %d", n)
	}
	out, _ := surface.Render(root)
	if !strings.Contains(out, "<th>k</th>") {
		t.Fatalf("missing header: %s", out)
	}
}

func TestSheetLocate(t *testing.T) {
	sh := NewSheet("s", []string{"k", "v"}, [][]string{{"apple", "1"}})
	var tab content.Tabular = sh
	text := tab.SearchableText()
	off := strings.Index(text, "pple")
	cell, local, ok := sh.Layout().Locate(off)
	if !ok || cell != (content.Cell{Row: 0, Col: 0}) || local != 1 {
		t.Fatalf("locate = %+v %d %v", cell, local, ok)
	}
}

func TestXLSXParse(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetDocProps(&excelize.DocProperties{Title: "Inventory"}); err != nil {
		t.Fatalf("doc props: %v", err)
	}
	f.SetCellValue("Sheet1", "A1", "name")
	f.SetCellValue("Sheet1", "B1", "qty")
	f.SetCellValue("Sheet1", "A2", "apple")
	f.SetCellValue("Sheet1", "B2", 3)
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	f.SetCellValue("Notes", "A1", "remark")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := NewXLSX().Parse(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Inventory" {
		t.Fatalf("title = %q", doc.Title)
	}
	if len(doc.Units) != 2 {
		t.Fatalf("units = %d", len(doc.Units))
	}
	first := doc.Units[0].(*Sheet)
	if first.Name() != "Sheet1" || first.RowCount() != 1 {
		t.Fatalf("first sheet = %q rows %d", first.Name(), first.RowCount())
	}
	if diff := cmp.Diff([]string{"apple", "3"}, first.Row(0)); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Units[1].(*Sheet).Header(); len(got) != 1 || got[0] != "remark" {
		t.Fatalf("second header = %v", got)
	}
}

func TestXLSXRejectsGarbage(t *testing.T) {
	if _, err := NewXLSX().Parse(context.Background(), []byte("not a workbook")); err == nil {
		t.Fatalf("expected error")
	}
}
