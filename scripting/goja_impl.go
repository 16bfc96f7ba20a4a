package scripting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/observability"
	"github.com/wudi/docview/search"
)

var errNotBound = errors.New("no viewer bound")

type GojaEngine struct {
	vm     *goja.Runtime
	out    io.Writer
	log    observability.Logger
	viewer Viewer
	// ctx is the context of the running Execute, read by viewer calls.
	ctx context.Context
}

type Option func(*GojaEngine)

// WithOutput sets where console.log writes. The default discards.
func WithOutput(w io.Writer) Option {
	return func(e *GojaEngine) {
		if w != nil {
			e.out = w
		}
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *GojaEngine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(opts ...Option) *GojaEngine {
	e := &GojaEngine{
		vm:  goja.New(),
		out: io.Discard,
		log: observability.NopLogger{},
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	console := e.vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		fmt.Fprintln(e.out, strings.Join(parts, " "))
		return goja.Undefined()
	})
	_ = e.vm.Set("console", console)
	return e
}

// Execute runs script until it completes or ctx is done. A cancelled run
// returns the context's error and leaves the engine usable.
func (e *GojaEngine) Execute(ctx context.Context, script string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.ctx = ctx
	defer func() { e.ctx = context.Background() }()

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		e.log.Debug("script failed", observability.Error("error", err))
		return nil, fmt.Errorf("script: %w", err)
	}
	if val == nil {
		return nil, nil
	}
	return val.Export(), nil
}

// Bind installs the global "viewer" object. Viewer errors surface in the
// script as thrown exceptions.
func (e *GojaEngine) Bind(v Viewer) error {
	if v == nil {
		return errNotBound
	}
	e.viewer = v
	obj := e.vm.NewObject()
	methods := map[string]func(goja.FunctionCall) goja.Value{
		"goto":        e.jsGoto,
		"zoom":        e.jsZoom,
		"search":      e.jsSearch,
		"next":        e.jsStep(true),
		"prev":        e.jsStep(false),
		"annotate":    e.jsAnnotate,
		"remove":      e.jsRemove,
		"annotations": e.jsAnnotations,
		"state":       e.jsState,
	}
	for name, fn := range methods {
		if err := obj.Set(name, fn); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return e.vm.Set("viewer", obj)
}

func (e *GojaEngine) throw(err error) {
	panic(e.vm.NewGoError(err))
}

func (e *GojaEngine) jsGoto(call goja.FunctionCall) goja.Value {
	ok, err := e.viewer.Goto(e.ctx, int(call.Argument(0).ToInteger()))
	if err != nil {
		e.throw(err)
	}
	return e.vm.ToValue(ok)
}

func (e *GojaEngine) jsZoom(call goja.FunctionCall) goja.Value {
	if err := e.viewer.SetZoom(e.ctx, call.Argument(0).ToFloat()); err != nil {
		e.throw(err)
	}
	return e.vm.ToValue(e.viewer.Snapshot().Zoom)
}

func (e *GojaEngine) jsSearch(call goja.FunctionCall) goja.Value {
	results, err := e.viewer.Search(e.ctx, call.Argument(0).String())
	if err != nil {
		e.throw(err)
	}
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = resultObject(r)
	}
	return e.vm.ToValue(out)
}

func (e *GojaEngine) jsStep(next bool) func(goja.FunctionCall) goja.Value {
	return func(goja.FunctionCall) goja.Value {
		var r search.Result
		var ok bool
		var err error
		if next {
			r, ok, err = e.viewer.NextResult(e.ctx)
		} else {
			r, ok, err = e.viewer.PreviousResult(e.ctx)
		}
		if err != nil {
			e.throw(err)
		}
		if !ok {
			return goja.Null()
		}
		return e.vm.ToValue(resultObject(r))
	}
}

// jsAnnotate accepts {type, content, x, y, width, height} with fractional
// coordinates and returns the new annotation's ID.
func (e *GojaEngine) jsAnnotate(call goja.FunctionCall) goja.Value {
	m, _ := call.Argument(0).Export().(map[string]any)
	partial := annotation.Annotation{
		Type:    annotation.Type(str(m["type"])),
		Content: str(m["content"]),
		Position: geometry.Rect{
			X:      num(m["x"]),
			Y:      num(m["y"]),
			Width:  num(m["width"]),
			Height: num(m["height"]),
		},
	}
	id, err := e.viewer.AddAnnotation(partial)
	if err != nil {
		e.throw(err)
	}
	return e.vm.ToValue(id)
}

func (e *GojaEngine) jsRemove(call goja.FunctionCall) goja.Value {
	return e.vm.ToValue(e.viewer.RemoveAnnotation(call.Argument(0).String()))
}

func (e *GojaEngine) jsAnnotations(goja.FunctionCall) goja.Value {
	list := e.viewer.ExportAnnotations()
	out := make([]any, len(list))
	for i, a := range list {
		out[i] = map[string]any{
			"id":        a.ID,
			"type":      string(a.Type),
			"content":   a.Content,
			"unitIndex": a.UnitIndex,
			"x":         a.Position.X,
			"y":         a.Position.Y,
			"width":     a.Position.Width,
			"height":    a.Position.Height,
			"timestamp": a.Timestamp,
		}
	}
	return e.vm.ToValue(out)
}

func (e *GojaEngine) jsState(goja.FunctionCall) goja.Value {
	s := e.viewer.Snapshot()
	return e.vm.ToValue(map[string]any{
		"state":       s.State.String(),
		"format":      s.Format,
		"title":       s.Title,
		"unit":        s.CurrentUnit,
		"unitCount":   s.UnitCount,
		"zoom":        s.Zoom,
		"query":       s.Query,
		"resultIndex": s.ResultIndex,
		"resultCount": s.ResultCount,
	})
}

func resultObject(r search.Result) map[string]any {
	return map[string]any{
		"unitIndex":     r.UnitIndex,
		"matchText":     r.MatchText,
		"contextBefore": r.ContextBefore,
		"contextAfter":  r.ContextAfter,
		"charOffset":    r.CharOffset,
		"length":        r.Length,
	}
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func num(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
