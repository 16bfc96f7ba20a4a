package viewport

import "testing"

func TestMiddlePageFullyVisible(t *testing.T) {
	spans := Stack([]float64{100, 100, 100}, 0)
	if got := MostVisible(spans, 100, 100); got != 2 {
		t.Fatalf("MostVisible = %d, want 2", got)
	}
}

func TestMostVisible(t *testing.T) {
	spans := Stack([]float64{800, 800, 800, 800}, 10)
	tests := []struct {
		name        string
		top, height float64
		want        int
	}{
		{"top", 0, 600, 1},
		{"mostly second", 700, 600, 2},
		{"tie goes to top-most", 405, 800, 1},
		{"last", 2500, 1000, 4},
		{"past the end", 9000, 500, 0},
	}
	for _, tt := range tests {
		if got := MostVisible(spans, tt.top, tt.height); got != tt.want {
			t.Errorf("%s: MostVisible = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestTrackerEmitsOnlyOnChange(t *testing.T) {
	var changes []int
	tr := New(func(unit int) { changes = append(changes, unit) })
	tr.SetLayout(Stack([]float64{100, 100, 100}, 0))

	tr.Scroll(0, 100)
	tr.Frame()
	tr.Scroll(10, 100)
	tr.Frame()
	tr.Scroll(100, 100)
	tr.Frame()
	tr.Scroll(120, 100)
	tr.Frame()
	tr.Scroll(260, 100)
	tr.Frame()

	if len(changes) != 2 || changes[0] != 2 || changes[1] != 3 {
		t.Fatalf("changes = %v, want [2 3]", changes)
	}
}

func TestTrackerCoalescesPerFrame(t *testing.T) {
	tr := New(nil)
	tr.SetLayout(Stack([]float64{100, 100, 100}, 0))
	for y := 0.0; y < 200; y += 5 {
		tr.Scroll(y, 100)
	}
	tr.Frame()
	tr.Frame()
	if tr.Recomputes() != 1 {
		t.Fatalf("recomputed %d times, want 1", tr.Recomputes())
	}
	if tr.Current() != 3 && tr.Current() != 2 {
		t.Fatalf("current = %d", tr.Current())
	}
}

func TestTrackerKeepsCurrentInGaps(t *testing.T) {
	tr := New(nil)
	tr.SetLayout(Stack([]float64{100, 100}, 50))
	tr.SetCurrent(2)
	tr.Scroll(100, 50) // exactly the gap
	if unit, moved := tr.Frame(); moved || unit != 2 {
		t.Fatalf("Frame = %d, %v", unit, moved)
	}
	if tr.ScrollTopFor(2) != 150 {
		t.Fatalf("ScrollTopFor(2) = %v", tr.ScrollTopFor(2))
	}
}

func TestRevealMovesWindow(t *testing.T) {
	tr := New(nil)
	tr.SetLayout(Stack([]float64{100, 100, 100}, 16))
	tr.Scroll(0, 100)
	if top := tr.Reveal(3); top != 232 {
		t.Fatalf("Reveal(3) = %v", top)
	}
	tr.SetLayout(Stack([]float64{200, 200, 200}, 16))
	if unit, moved := tr.Frame(); moved || unit != 3 {
		t.Fatalf("Frame = %d, %v", unit, moved)
	}
	if top := tr.Reveal(3); top != 432 {
		t.Fatalf("Reveal(3) after relayout = %v", top)
	}
	if unit, moved := tr.Frame(); moved || unit != 3 {
		t.Fatalf("Frame = %d, %v", unit, moved)
	}
}
