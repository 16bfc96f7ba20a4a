package annotation

import "fmt"

// Store is an insertion ordered collection of annotations keyed by ID.
// It is not safe for concurrent use; renderers guard it with their own lock.
type Store struct {
	byID  map[string]Annotation
	order []string
}

func NewStore() *Store {
	return &Store{byID: make(map[string]Annotation)}
}

// Add inserts a. The ID must not be in use.
func (s *Store) Add(a Annotation) error {
	if a.ID == "" {
		return ErrMissingID
	}
	if _, ok := s.byID[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return nil
}

// Put inserts or replaces a, keeping the original position when replacing.
func (s *Store) Put(a Annotation) {
	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = a
}

func (s *Store) Get(id string) (Annotation, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Remove deletes the annotation and returns it.
func (s *Store) Remove(id string) (Annotation, bool) {
	a, ok := s.byID[id]
	if !ok {
		return Annotation{}, false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return a, true
}

// All returns a copy of every annotation in insertion order. Never nil.
func (s *Store) All() []Annotation {
	out := make([]Annotation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// ForUnit returns the annotations on a 1-indexed unit.
func (s *Store) ForUnit(unit int) []Annotation {
	var out []Annotation
	for _, id := range s.order {
		if a := s.byID[id]; a.UnitIndex == unit {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Len() int { return len(s.order) }

func (s *Store) Clear() {
	s.byID = make(map[string]Annotation)
	s.order = nil
}
