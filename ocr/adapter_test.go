package ocr

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"
)

func TestInputFromImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	meta := map[string]string{"psm": "6"}

	in, err := InputFromImage(3, img,
		WithLanguages("eng", "spa"),
		WithRegion(Region{Width: 1, Height: 1}),
		WithDPI(300),
		WithMetadata(meta),
	)
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	if in.ID != "unit-3" || in.UnitIndex != 3 || in.Format != ImageFormatPNG {
		t.Fatalf("unexpected identity: %+v", in)
	}
	if len(in.Image) < 8 || string(in.Image[1:4]) != "PNG" {
		t.Fatalf("expected png payload")
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "spa"}) {
		t.Fatalf("languages = %v", in.Languages)
	}
	if in.Region == nil || in.DPI != 300 {
		t.Fatalf("region/dpi not applied: %+v", in)
	}
	meta["psm"] = "7"
	if in.Metadata["psm"] != "6" {
		t.Fatalf("metadata should be copied")
	}
	WithRegion(Region{})(&in)
	if in.Region != nil {
		t.Fatalf("empty region should clear")
	}
}

type countingEngine struct {
	calls int
	fail  string
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Recognize(_ context.Context, in Input) (Result, error) {
	e.calls++
	if in.ID == e.fail {
		return Result{}, errors.New("unreadable")
	}
	return Result{InputID: in.ID, PlainText: "text " + in.ID}, nil
}

func TestRecognizeSequential(t *testing.T) {
	eng := &countingEngine{}
	res, err := Recognize(context.Background(), eng, []Input{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if eng.calls != 2 || res[1].PlainText != "text b" {
		t.Fatalf("unexpected results %+v", res)
	}

	eng = &countingEngine{fail: "b"}
	if _, err := Recognize(context.Background(), eng, []Input{{ID: "a"}, {ID: "b"}}); err == nil {
		t.Fatalf("expected error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Recognize(ctx, &countingEngine{}, []Input{{ID: "a"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestDefaultEngine(t *testing.T) {
	if !IsNoop(DefaultEngine()) {
		t.Fatalf("default should be noop")
	}
	eng := &countingEngine{}
	SetDefaultEngine(eng)
	defer SetDefaultEngine(nil)
	if DefaultEngine() != Engine(eng) {
		t.Fatalf("default not replaced")
	}
}

func TestResultWords(t *testing.T) {
	r := Result{Blocks: []TextBlock{
		{Lines: []TextLine{{Words: []TextWord{{Text: "a"}, {Text: "b"}}}}},
		{Lines: []TextLine{{Words: []TextWord{{Text: "c"}}}}},
	}}
	var got []string
	for _, w := range r.Words() {
		got = append(got, w.Text)
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("words = %v", got)
	}
}
