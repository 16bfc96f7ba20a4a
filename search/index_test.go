package search

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func textOf(units ...string) TextFunc {
	return func(unit int) string { return units[unit-1] }
}

func TestFindCaseInsensitiveLiteral(t *testing.T) {
	ix := NewIndex(3, textOf("nothing here", "a.b matches a.b", "Foo bar"), WithContext(4))

	got, err := ix.Find(context.Background(), "foo")
	if err != nil {
		t.Fatal(err)
	}
	want := []Result{{UnitIndex: 3, MatchText: "Foo", ContextBefore: "", ContextAfter: " bar", CharOffset: 0, Length: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Find(foo) (-want +got):\n%s", diff)
	}

	dots, err := ix.Find(context.Background(), "A.B")
	if err != nil {
		t.Fatal(err)
	}
	if len(dots) != 2 || dots[1].CharOffset != 12 || dots[1].ContextBefore != "hes " {
		t.Fatalf("literal dot search = %+v", dots)
	}
	if none, _ := ix.Find(context.Background(), "a*b"); len(none) != 0 {
		t.Fatalf("metacharacters must be literal, got %+v", none)
	}
}

func TestFindBlankQuery(t *testing.T) {
	ix := NewIndex(1, textOf("text"))
	for _, q := range []string{"", "   ", "\t\n"} {
		got, err := ix.Find(context.Background(), q)
		if err != nil || len(got) != 0 {
			t.Fatalf("Find(%q) = %v, %v", q, got, err)
		}
	}
}

func TestFindRuneOffsets(t *testing.T) {
	ix := NewIndex(1, textOf("héllo wörld, WÖRLD"), WithContext(3))
	got, err := ix.Find(context.Background(), "wörld")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].CharOffset != 6 || got[0].Length != 5 || got[0].ContextBefore != "lo " {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].CharOffset != 13 || got[1].MatchText != "WÖRLD" || got[1].ContextAfter != "" {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestFindIdempotent(t *testing.T) {
	ix := NewIndex(2, textOf(strings.Repeat("ab ", 50), "AB"))
	a, _ := ix.Find(context.Background(), "ab")
	b, _ := ix.Find(context.Background(), "ab")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("repeat search differs:\n%s", diff)
	}
}

func TestFindLazyText(t *testing.T) {
	calls := 0
	ix := NewIndex(2, func(unit int) string {
		calls++
		return "x"
	})
	ix.Find(context.Background(), "x")
	ix.Find(context.Background(), "x")
	if calls != 2 {
		t.Fatalf("text extracted %d times, want once per unit", calls)
	}
}

func TestFindCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewIndex(1, textOf("x")).Find(ctx, "x"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestResultsCursorWraps(t *testing.T) {
	r := NewResults("q", []Result{{UnitIndex: 1}, {UnitIndex: 2}, {UnitIndex: 3}})
	if r.Index() != 0 {
		t.Fatal("cursor must start at 0")
	}
	steps := []struct {
		next bool
		want int
	}{{true, 1}, {true, 2}, {true, 0}, {false, 2}, {false, 1}}
	for _, s := range steps {
		var got Result
		if s.next {
			got, _ = r.Next()
		} else {
			got, _ = r.Prev()
		}
		if r.Index() != s.want || got.UnitIndex != s.want+1 {
			t.Fatalf("cursor %d (unit %d), want %d", r.Index(), got.UnitIndex, s.want)
		}
	}
	var empty *Results
	if _, ok := empty.Next(); ok {
		t.Fatal("empty results must not advance")
	}
}
