// Package event is the typed publish/subscribe channel between a renderer
// and its host.
package event

import (
	"encoding/json"
	"sync"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/search"
)

type Kind uint8

const (
	KindDocumentLoaded Kind = iota + 1
	KindPageChanged
	KindZoomChanged
	KindSearchResult
	KindAnnotationAdded
	KindAnnotationRemoved
	KindError
)

var kindNames = map[Kind]string{
	KindDocumentLoaded:    "documentloaded",
	KindPageChanged:       "pagechanged",
	KindZoomChanged:       "zoomchanged",
	KindSearchResult:      "searchresult",
	KindAnnotationAdded:   "annotationadded",
	KindAnnotationRemoved: "annotationremoved",
	KindError:             "error",
}

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Event interface {
	Kind() Kind
}

type DocumentLoaded struct {
	UnitCount  int             `json:"unitCount"`
	Title      string          `json:"title"`
	Dimensions []geometry.Size `json:"dimensions,omitempty"`
}

type PageChanged struct {
	Unit      int `json:"unit"`
	UnitCount int `json:"unitCount"`
}

type ZoomChanged struct {
	Zoom float64 `json:"zoom"`
}

type SearchResult struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
	Current int             `json:"currentIndex"`
}

type AnnotationAdded struct {
	annotation.Annotation
}

type AnnotationRemoved struct {
	annotation.Annotation
}

type Error struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (DocumentLoaded) Kind() Kind    { return KindDocumentLoaded }
func (PageChanged) Kind() Kind       { return KindPageChanged }
func (ZoomChanged) Kind() Kind       { return KindZoomChanged }
func (SearchResult) Kind() Kind      { return KindSearchResult }
func (AnnotationAdded) Kind() Kind   { return KindAnnotationAdded }
func (AnnotationRemoved) Kind() Kind { return KindAnnotationRemoved }
func (Error) Kind() Kind             { return KindError }

// Encode renders e as {"type": <name>, "payload": <event>}.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Payload Event  `json:"payload"`
	}{Type: e.Kind().String(), Payload: e})
}

type Handler func(Event)

// Bus fans events out to subscribers in subscription order. Handlers run on
// the publishing goroutine and may call back into the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []*Subscription
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus *Bus
	id  int
	h   Handler
}

func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscription{bus: b, id: b.nextID, h: h}
	b.subs = append(b.subs, s)
	return s
}

// Unsubscribe detaches the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s.id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := append([]*Subscription(nil), b.subs...)
	b.mu.Unlock()
	for _, s := range subs {
		s.h(e)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drops every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
}
