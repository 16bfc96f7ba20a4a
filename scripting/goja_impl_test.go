package scripting

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/renderer"
	"github.com/wudi/docview/search"
)

type fakeViewer struct {
	unit, count int
	zoom        float64
	calls       []string
	added       []annotation.Annotation
	results     []search.Result
	cursor      int
}

func (f *fakeViewer) Goto(_ context.Context, unit int) (bool, error) {
	f.calls = append(f.calls, "goto")
	if unit < 1 || unit > f.count {
		return false, nil
	}
	f.unit = unit
	return true, nil
}

func (f *fakeViewer) SetZoom(_ context.Context, z float64) error {
	f.calls = append(f.calls, "zoom")
	if z <= 0 {
		return errors.New("bad zoom")
	}
	f.zoom = z
	return nil
}

func (f *fakeViewer) Search(_ context.Context, q string) ([]search.Result, error) {
	f.calls = append(f.calls, "search")
	f.results = []search.Result{{UnitIndex: 3, MatchText: q, Length: len(q)}, {UnitIndex: 4, MatchText: q, CharOffset: 7, Length: len(q)}}
	f.cursor = 0
	return f.results, nil
}

func (f *fakeViewer) NextResult(context.Context) (search.Result, bool, error) {
	if len(f.results) == 0 {
		return search.Result{}, false, nil
	}
	f.cursor = (f.cursor + 1) % len(f.results)
	return f.results[f.cursor], true, nil
}

func (f *fakeViewer) PreviousResult(context.Context) (search.Result, bool, error) {
	return search.Result{}, false, nil
}

func (f *fakeViewer) AddAnnotation(a annotation.Annotation) (string, error) {
	a.ID = "n1"
	a.UnitIndex = f.unit
	f.added = append(f.added, a)
	return a.ID, nil
}

func (f *fakeViewer) RemoveAnnotation(id string) bool { return id == "n1" }

func (f *fakeViewer) ExportAnnotations() []annotation.Annotation { return f.added }

func (f *fakeViewer) Snapshot() renderer.Snapshot {
	return renderer.Snapshot{State: renderer.StateReady, CurrentUnit: f.unit, UnitCount: f.count, Zoom: f.zoom}
}

func TestGojaEngine_ContextCancellation(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	if _, err := engine.Execute(ctx, "while (true) {}"); err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}

	if _, err := engine.Execute(context.Background(), "1 + 1"); err != nil {
		t.Fatalf("engine should recover after cancellation, got %v", err)
	}
}

func TestGojaEngine_ImmediateCancel(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Execute(ctx, "42"); err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
}

func TestGojaEngine_Viewer(t *testing.T) {
	v := &fakeViewer{unit: 1, count: 5, zoom: 1}
	var out bytes.Buffer
	engine := NewEngine(WithOutput(&out))
	if err := engine.Bind(v); err != nil {
		t.Fatalf("bind: %v", err)
	}

	got, err := engine.Execute(context.Background(), `
		viewer.goto(2);
		viewer.zoom(1.5);
		var hits = viewer.search("total");
		var next = viewer.next();
		console.log("hits", hits.length, next.charOffset);
		var s = viewer.state();
		s.unit + "/" + s.unitCount + "@" + s.zoom + " " + hits[0].unitIndex;
	`)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "2/5@1.5 3" {
		t.Fatalf("result = %v", got)
	}
	if out.String() != "hits 2 7\n" {
		t.Fatalf("console = %q", out.String())
	}
	if diff := cmp.Diff([]string{"goto", "zoom", "search"}, v.calls); diff != "" {
		t.Fatalf("calls (-want +got):\n%s", diff)
	}
}

func TestGojaEngine_Annotate(t *testing.T) {
	v := &fakeViewer{unit: 3, count: 5, zoom: 1}
	engine := NewEngine()
	if err := engine.Bind(v); err != nil {
		t.Fatalf("bind: %v", err)
	}
	got, err := engine.Execute(context.Background(),
		`var id = viewer.annotate({type: "note", content: "hi", x: 0.25, y: 0, width: 0.5, height: 1}); id + ":" + viewer.annotations().length + ":" + viewer.remove(id)`)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "n1:1:true" {
		t.Fatalf("result = %v", got)
	}
	want := annotation.Annotation{ID: "n1", Type: annotation.Note, Content: "hi", UnitIndex: 3}
	want.Position.X, want.Position.Width, want.Position.Height = 0.25, 0.5, 1
	if diff := cmp.Diff([]annotation.Annotation{want}, v.added); diff != "" {
		t.Fatalf("annotation (-want +got):\n%s", diff)
	}
}

func TestGojaEngine_ViewerErrorsThrow(t *testing.T) {
	engine := NewEngine()
	if err := engine.Bind(&fakeViewer{count: 1}); err != nil {
		t.Fatal(err)
	}
	got, err := engine.Execute(context.Background(), `try { viewer.zoom(-1); "no" } catch (e) { "caught" }`)
	if err != nil || got != "caught" {
		t.Fatalf("caught = %v, %v", got, err)
	}
	if _, err := engine.Execute(context.Background(), `viewer.zoom(0)`); err == nil || !strings.Contains(err.Error(), "bad zoom") {
		t.Fatalf("uncaught = %v", err)
	}
	if err := engine.Bind(nil); err == nil {
		t.Fatalf("bind nil succeeded")
	}
}
