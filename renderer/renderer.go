// Package renderer drives one document inside a host container: loading
// through a format backend, painting units into the node tree, and the
// navigation, zoom, search and annotation operations shared by every
// format.
package renderer

import (
	"context"
	"io"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/content"
	"github.com/wudi/docview/event"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/search"
)

// State is the lifecycle position of a renderer.
type State uint8

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateRendering
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRendering:
		return "rendering"
	case StateFailed:
		return "error"
	}
	return "unknown"
}

// Snapshot is a consistent copy of a renderer's observable state.
type Snapshot struct {
	State       State          `json:"state"`
	Format      string         `json:"format"`
	Title       string         `json:"title"`
	CurrentUnit int            `json:"currentUnit"`
	UnitCount   int            `json:"unitCount"`
	Zoom        float64        `json:"zoom"`
	Pan         geometry.Point `json:"pan"`

	// ScrollTop is where the host should scroll the container to show the
	// current unit in continuous mode.
	ScrollTop float64 `json:"scrollTop"`

	Query       string `json:"query,omitempty"`
	ResultIndex int    `json:"resultIndex"`
	ResultCount int    `json:"resultCount"`
	Destroyed   bool   `json:"destroyed,omitempty"`
}

// Renderer is the contract every format variant satisfies.
type Renderer interface {
	Load(ctx context.Context, src content.Source) error
	Render(ctx context.Context) error
	Goto(ctx context.Context, unit int) (bool, error)
	SetZoom(ctx context.Context, factor float64) error
	// ZoomAt changes the zoom keeping the content under pin fixed.
	ZoomAt(ctx context.Context, pin geometry.Point, factor float64) error
	PanBy(dx, dy float64)
	Search(ctx context.Context, query string) ([]search.Result, error)
	NextResult(ctx context.Context) (search.Result, bool, error)
	PreviousResult(ctx context.Context) (search.Result, bool, error)
	AddAnnotation(partial annotation.Annotation) (string, error)
	RemoveAnnotation(id string) bool
	ExportAnnotations() []annotation.Annotation
	ImportAnnotations(list []annotation.Annotation) error
	Subscribe(h event.Handler) *event.Subscription
	Snapshot() Snapshot
	// Frame runs the once-per-frame work: continuous page tracking.
	Frame()
	Destroy()
}

// Fitter is implemented by renderers that can fit a unit to the viewport.
type Fitter interface {
	FitToWidth(ctx context.Context) error
	FitToHeight(ctx context.Context) error
	FitToPage(ctx context.Context) error
}

// CSVExporter is implemented by the grid renderer.
type CSVExporter interface {
	ExportCSV(w io.Writer) error
}
