package renderer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/wudi/docview/content"
)

func TestRegistryLookup(t *testing.T) {
	r := Builtin()
	tests := []struct {
		contentType string
		ext         string
		format      string
	}{
		{"application/pdf", "", "pdf"},
		{"Application/PDF; charset=binary", "txt", "pdf"},
		{"", ".XLSX", "grid"},
		{"text/csv", "", "grid"},
		{"", "pptx", "pptx"},
		{"", "md", "flow"},
		{"application/octet-stream", "webp", "image"},
	}
	for _, tt := range tests {
		ctor, err := r.Lookup(tt.contentType, tt.ext)
		if err != nil {
			t.Fatalf("lookup(%q, %q): %v", tt.contentType, tt.ext, err)
		}
		rd, err := ctor(nil)
		if err != nil {
			t.Fatalf("construct(%q, %q): %v", tt.contentType, tt.ext, err)
		}
		if got := rd.Snapshot().Format; got != tt.format {
			t.Fatalf("lookup(%q, %q) built %q, want %q", tt.contentType, tt.ext, got, tt.format)
		}
		rd.Destroy()
	}

	if _, err := r.Lookup("application/x-msdownload", "exe"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("unsupported lookup: %v", err)
	}
	if _, err := r.ForSource(content.Bytes("report.docx", nil)); err != nil {
		t.Fatalf("for source: %v", err)
	}
}

func TestRegistryOverride(t *testing.T) {
	r := NewRegistry()
	r.Register(func(_ *html.Node, opts ...Option) (Renderer, error) { return NewGrid(nil, opts...), nil }, nil, []string{".Dat"})
	if _, err := r.Lookup("", "dat"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"dat"}, r.Extensions()); diff != "" {
		t.Fatalf("extensions (-want +got):\n%s", diff)
	}
	if Default() != Default() {
		t.Fatalf("default registry is not shared")
	}
}
