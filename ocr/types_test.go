package ocr

import "testing"

func TestSplitLines(t *testing.T) {
	words := []TextWord{
		{Text: "Hello", Bounds: Region{X: 0, Y: 0, Width: 50, Height: 10}, Confidence: 0.8},
		{Text: "world", Bounds: Region{X: 60, Y: 1, Width: 50, Height: 10}, Confidence: 0.6},
		{Text: "Next", Bounds: Region{X: 0, Y: 20, Width: 40, Height: 10}, Confidence: 1},
	}
	lines := SplitLines(words)
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0].Text != "Hello world" || lines[1].Text != "Next" {
		t.Fatalf("texts = %q, %q", lines[0].Text, lines[1].Text)
	}
	if got := lines[0].Bounds; got != (Region{X: 0, Y: 0, Width: 110, Height: 11}) {
		t.Fatalf("bounds = %+v", got)
	}
	if c := lines[0].Confidence; c < 0.69 || c > 0.71 {
		t.Fatalf("confidence = %v", c)
	}
	if SplitLines(nil) != nil {
		t.Fatalf("expected no lines")
	}
}
