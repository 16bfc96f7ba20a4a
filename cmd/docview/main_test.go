package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docview.yaml")
	yml := `
content_type: text/csv
zoom: 1.5
continuous: false
viewport:
  width: 800
  height: 600
ocr:
  enabled: true
log_level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ContentType != "text/csv" || cfg.Zoom != 1.5 || cfg.Continuous == nil || *cfg.Continuous {
		t.Fatalf("cfg = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"eng"}, cfg.OCR.Languages); diff != "" {
		t.Fatalf("languages (-want +got):\n%s", diff)
	}
	if cfg.Viewport.Width != 800 || cfg.SearchContext != 40 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if got := cfg.level().String(); got != "DEBUG" {
		t.Fatalf("level = %s", got)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("zoom: 2\nlog_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := parseFlags([]string{"-config", path, "-zoom", "3", "-goto", "2", "doc.csv"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.cfg.Zoom != 3 || opts.cfg.LogLevel != "warn" || opts.unit != 2 || opts.source != "doc.csv" {
		t.Fatalf("opts = %+v cfg = %+v", opts, opts.cfg)
	}
	if _, err := parseFlags(nil); err == nil {
		t.Fatalf("missing document accepted")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "fruit.csv")
	if err := os.WriteFile(doc, []byte("name,qty\napple,3\npear,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "s.js")
	if err := os.WriteFile(script, []byte(`console.log(viewer.state().title)`), 0o644); err != nil {
		t.Fatal(err)
	}
	htmlOut := filepath.Join(dir, "out.html")
	csvOut := filepath.Join(dir, "out.csv")
	opts, err := parseFlags([]string{"-search", "pear", "-script", script, "-html", htmlOut, "-csv", csvOut, "-log-level", "error", doc})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q", out.String())
	}
	var first struct {
		Type    string `json:"type"`
		Payload struct {
			UnitCount int    `json:"unitCount"`
			Title     string `json:"title"`
		} `json:"payload"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "documentloaded" || first.Payload.Title != "fruit" || first.Payload.UnitCount != 1 {
		t.Fatalf("first event = %+v", first)
	}
	if !strings.HasPrefix(lines[1], `{"type":"searchresult"`) || lines[2] != "fruit" {
		t.Fatalf("output = %q", lines)
	}

	markup, err := os.ReadFile(htmlOut)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(markup), "dv-search-hit") {
		t.Fatalf("html has no highlight: %s", markup)
	}
	csvData, err := os.ReadFile(csvOut)
	if err != nil {
		t.Fatal(err)
	}
	if string(csvData) != "name,qty\napple,3\npear,5\n" {
		t.Fatalf("csv = %q", csvData)
	}
}
