package annotation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/docview/geometry"
)

func seqIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return "a" + string(rune('0'+n))
	}
}

func TestStampGeneratesFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	partial := Annotation{
		ID:        "caller-id",
		Type:      Note,
		Content:   "check this",
		UnitIndex: 99,
		Timestamp: "yesterday",
		Position:  geometry.Rect{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.1},
	}
	got := Stamp(partial, 2, seqIDs(), now)
	want := Annotation{
		ID:        "a1",
		Type:      Note,
		Content:   "check this",
		UnitIndex: 2,
		Timestamp: "2026-03-01T11:00:00Z",
		Position:  partial.Position,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Stamp mismatch (-want +got):\n%s", diff)
	}
	if Stamp(Annotation{}, 1, nil, now).Type != Highlight {
		t.Fatal("empty type should default to highlight")
	}
}

func TestStoreAddRemoveExport(t *testing.T) {
	s := NewStore()
	a := Annotation{ID: "x", Type: Highlight, UnitIndex: 1}
	b := Annotation{ID: "y", Type: Text, UnitIndex: 2}
	if err := s.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(a); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate add: %v", err)
	}
	if diff := cmp.Diff([]Annotation{a, b}, s.All()); diff != "" {
		t.Fatalf("All (-want +got):\n%s", diff)
	}
	if got := s.ForUnit(2); len(got) != 1 || got[0].ID != "y" {
		t.Fatalf("ForUnit(2) = %+v", got)
	}
	if _, ok := s.Remove("x"); !ok {
		t.Fatal("Remove(x) failed")
	}
	if _, ok := s.Remove("x"); ok {
		t.Fatal("second Remove(x) succeeded")
	}
	s.Remove("y")
	if all := s.All(); all == nil || len(all) != 0 {
		t.Fatalf("All after removal = %#v, want empty non-nil", all)
	}
}

func TestStorePutKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Put(Annotation{ID: "1", Content: "first"})
	s.Put(Annotation{ID: "2"})
	s.Put(Annotation{ID: "1", Content: "updated"})
	all := s.All()
	if len(all) != 2 || all[0].ID != "1" || all[0].Content != "updated" {
		t.Fatalf("All = %+v", all)
	}
}

func TestValidate(t *testing.T) {
	ok := Annotation{ID: "x", Type: Note, UnitIndex: 2, Position: geometry.Rect{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5}}
	if err := ok.Validate(3); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	tests := []struct {
		name string
		edit func(*Annotation)
		want error
	}{
		{"no id", func(a *Annotation) { a.ID = "" }, ErrMissingID},
		{"bad type", func(a *Annotation) { a.Type = "stamp" }, ErrInvalidType},
		{"pixels", func(a *Annotation) { a.Position.X = 40 }, ErrNotFractional},
		{"unit", func(a *Annotation) { a.UnitIndex = 4 }, ErrUnitOutOfRange},
	}
	for _, tt := range tests {
		a := ok
		tt.edit(&a)
		if err := a.Validate(3); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}
