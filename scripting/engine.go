// Package scripting drives a renderer from JavaScript, for batch jobs and
// the command line's -script flag.
package scripting

import (
	"context"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/renderer"
	"github.com/wudi/docview/search"
)

// Engine runs scripts against a bound viewer.
type Engine interface {
	// Execute runs script and returns its completion value exported to Go.
	Execute(ctx context.Context, script string) (any, error)

	// Bind exposes v to scripts as the global "viewer".
	Bind(v Viewer) error
}

// Viewer is the part of a renderer scripts may call. Every
// renderer.Renderer satisfies it.
type Viewer interface {
	Goto(ctx context.Context, unit int) (bool, error)
	SetZoom(ctx context.Context, factor float64) error
	Search(ctx context.Context, query string) ([]search.Result, error)
	NextResult(ctx context.Context) (search.Result, bool, error)
	PreviousResult(ctx context.Context) (search.Result, bool, error)
	AddAnnotation(partial annotation.Annotation) (string, error)
	RemoveAnnotation(id string) bool
	ExportAnnotations() []annotation.Annotation
	Snapshot() renderer.Snapshot
}

var _ Viewer = renderer.Renderer(nil)
