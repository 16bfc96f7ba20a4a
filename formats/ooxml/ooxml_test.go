package ooxml

import (
	"archive/zip"
	"bytes"
	"testing"
)

func build(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestPackage(t *testing.T) {
	data := build(t, map[string]string{
		"docProps/core.xml":     `<cp:coreProperties xmlns:cp="c" xmlns:dc="d"><dc:title> Plan </dc:title></cp:coreProperties>`,
		"ppt/slides/slide1.xml": "<a/>",
		"ppt/slides/slide2.xml": "<b/>",
	})
	p, err := Open(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := p.Title(); got != "Plan" {
		t.Fatalf("title = %q", got)
	}
	if n := len(p.Files("ppt/slides/")); n != 2 {
		t.Fatalf("slides = %d", n)
	}
	if _, err := p.Open("missing.xml"); err == nil {
		t.Fatalf("expected error for missing part")
	}
}

func TestOpenRejectsNonZip(t *testing.T) {
	if _, err := Open([]byte("plain")); err == nil {
		t.Fatalf("expected error")
	}
}
