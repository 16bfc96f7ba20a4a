package virtual

import "testing"

func TestOffsetAtScrollTop(t *testing.T) {
	w := New(1000, Config{RowHeight: 25})
	if !w.Scroll(2500) {
		t.Fatalf("expected re-render after jumping 100 rows")
	}
	if w.Offset() != 100 {
		t.Fatalf("offset = %d, want 100", w.Offset())
	}
	r := w.Range()
	cfg := w.Config()
	if r.Len() > cfg.Visible+2*cfg.Overscan {
		t.Fatalf("rendered %d rows, limit %d", r.Len(), cfg.Visible+2*cfg.Overscan)
	}
	if r.Start != 95 || r.End != 125 {
		t.Fatalf("range = %+v", r)
	}
}

func TestRangeNeverExceedsBudget(t *testing.T) {
	w := New(1000, Config{RowHeight: 25})
	limit := w.Config().Visible + 2*w.Config().Overscan
	for top := 0.0; top <= w.Height(); top += 37 {
		w.Scroll(top)
		if n := w.Range().Len(); n > limit {
			t.Fatalf("scrollTop %.0f: rendered %d rows", top, n)
		}
	}
}

func TestHysteresis(t *testing.T) {
	w := New(500, Config{RowHeight: 10})
	tests := []struct {
		top  float64
		want bool
	}{
		{30, false},  // 3 rows
		{50, false},  // 5 rows, at the threshold
		{60, true},   // 6 rows
		{100, false}, // 4 rows from 6
		{0, true},
	}
	for _, tt := range tests {
		if got := w.Scroll(tt.top); got != tt.want {
			t.Fatalf("Scroll(%v) = %v, want %v", tt.top, got, tt.want)
		}
	}
	if w.RenderedOffset() != 0 {
		t.Fatalf("rendered offset = %d", w.RenderedOffset())
	}
}

func TestSmallGridBypass(t *testing.T) {
	w := New(99, Config{RowHeight: 25})
	if !w.Bypassed() {
		t.Fatalf("99 rows should bypass windowing")
	}
	if w.Scroll(1000) {
		t.Fatalf("bypassed window should never request a re-render")
	}
	if r := w.Range(); r.Start != 0 || r.End != 99 {
		t.Fatalf("range = %+v", r)
	}
	if top, bottom := w.Padding(); top != 0 || bottom != 0 {
		t.Fatalf("padding = %v, %v", top, bottom)
	}
}

func TestPaddingKeepsExtent(t *testing.T) {
	w := New(1000, Config{RowHeight: 25})
	w.Scroll(10000)
	top, bottom := w.Padding()
	r := w.Range()
	if got := top + bottom + float64(r.Len())*25; got != w.Height() {
		t.Fatalf("extent = %v, want %v", got, w.Height())
	}
}

func TestScrollPastEndClamps(t *testing.T) {
	w := New(200, Config{RowHeight: 10})
	w.Scroll(1e6)
	if w.Offset() != 199 {
		t.Fatalf("offset = %d", w.Offset())
	}
	if r := w.Range(); r.End != 200 {
		t.Fatalf("range = %+v", r)
	}
}
