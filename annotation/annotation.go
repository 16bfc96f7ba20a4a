// Package annotation models user annotations anchored to a unit with
// fractional coordinates, so they stay valid across zoom and resize.
package annotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/docview/geometry"
)

type Type string

const (
	Highlight Type = "highlight"
	Note      Type = "note"
	Text      Type = "text"
)

func (t Type) Valid() bool {
	switch t {
	case Highlight, Note, Text:
		return true
	}
	return false
}

type Annotation struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	Content   string        `json:"content"`
	UnitIndex int           `json:"unitIndex"`
	Position  geometry.Rect `json:"position"`
	Timestamp string        `json:"timestamp"`
}

var (
	ErrMissingID      = errors.New("annotation id is required")
	ErrInvalidType    = errors.New("invalid annotation type")
	ErrNotFractional  = errors.New("annotation position must be fractional")
	ErrUnitOutOfRange = errors.New("annotation unit out of range")
	ErrDuplicateID    = errors.New("duplicate annotation id")
)

// Validate checks a complete annotation against a document of unitCount units.
func (a Annotation) Validate(unitCount int) error {
	if a.ID == "" {
		return ErrMissingID
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, a.Type)
	}
	if !geometry.IsFractional(a.Position) {
		return fmt.Errorf("%w: %+v", ErrNotFractional, a.Position)
	}
	if a.UnitIndex < 1 || a.UnitIndex > unitCount {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrUnitOutOfRange, a.UnitIndex, unitCount)
	}
	return nil
}

// IDGenerator produces unique annotation IDs.
type IDGenerator func() string

// NewID is the default IDGenerator.
func NewID() string { return uuid.NewString() }

// Stamp completes a caller supplied partial annotation: a fresh ID, the
// owning unit and the creation time are always generated here, never taken
// from the caller. An empty type defaults to Highlight.
func Stamp(partial Annotation, unit int, gen IDGenerator, now time.Time) Annotation {
	if gen == nil {
		gen = NewID
	}
	a := partial
	a.ID = gen()
	a.UnitIndex = unit
	a.Timestamp = now.UTC().Format(time.RFC3339Nano)
	if a.Type == "" {
		a.Type = Highlight
	}
	return a
}
