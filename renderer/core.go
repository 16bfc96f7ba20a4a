package renderer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/content"
	"github.com/wudi/docview/event"
	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/observability"
	"github.com/wudi/docview/search"
	"github.com/wudi/docview/surface"
	"github.com/wudi/docview/viewport"
	"github.com/wudi/docview/virtual"
)

// zoomStep is the factor applied per wheel notch or zoom key.
const zoomStep = 1.1

// paintKey identifies what a paint produced. Render is skipped while the
// key is unchanged.
type paintKey struct {
	layout int
	zoom   float64
	unit   int
	extra  int
}

// paintJob is the state a paint works from, captured under the lock.
type paintJob struct {
	key   paintKey
	gen   uint64
	seq   uint64
	doc   *content.Document
	units []int
	vp    geometry.Viewport

	// window is a copy of the grid window at capture time.
	window *virtual.Window
	// urls collects blob URLs created while painting.
	urls   []string
}

type unitPainter func(ctx context.Context, job *paintJob, unit int, u content.Unit, target *html.Node) error

// core is the state machine shared by every variant. Variants customise it
// through the hook fields, all set before the core is used.
type core struct {
	mu         sync.Mutex
	cfg        config
	log        observability.Logger
	format     string
	zoomRange  geometry.Range
	continuous bool

	host   *html.Node
	root   *html.Node
	handle surface.Handle
	blobs  *surface.BlobStore
	bus    event.Bus

	state     State
	destroyed bool
	gen       atomic.Uint64
	renderSeq uint64
	layout    int

	doc       *content.Document
	unit      int
	zoom      float64
	pan       geometry.Point
	scrollTop float64
	view      geometry.Size
	drag      *geometry.Point

	store   *annotation.Store
	index   *search.Index
	results *search.Results

	painted  *paintKey
	wrappers map[int]*html.Node
	urls     []string
	tracker  *viewport.Tracker

	parserFor func(src content.Source) (content.Parser, error)
	paintUnit unitPainter

	// The hooks below run with mu held.
	onLoaded func()
	onGoto   func(unit int)
	extraKey func() int
	onScroll func(in surface.Input) bool
	prepare  func(job *paintJob)
}

func newCore(host *html.Node, format string, zoom geometry.Range, continuous bool, opts []Option) *core {
	cfg := defaults()
	cfg.zoom = zoom
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.continuous != nil {
		continuous = *cfg.continuous
	}
	if host == nil {
		host = surface.Element("div")
	}
	root := surface.Element("div",
		surface.Attr("class", surface.ClassRoot),
		surface.Attr("data-format", format),
	)
	host.AppendChild(root)

	c := &core{
		cfg:        cfg,
		log:        cfg.logger.With(observability.String("format", format)),
		format:     format,
		zoomRange:  cfg.zoom,
		continuous: continuous,
		host:       host,
		root:       root,
		blobs:      surface.NewBlobStore(),
		store:      annotation.NewStore(),
		wrappers:   make(map[int]*html.Node),
		view:       cfg.viewport,
		zoom:       cfg.zoom.Clamp(1),
	}
	c.listen()
	return c
}

// Host returns the container the renderer paints into.
func (c *core) Host() *html.Node { return c.host }

// Blobs returns the store backing the renderer's blob URLs.
func (c *core) Blobs() *surface.BlobStore { return c.blobs }

func (c *core) Subscribe(h event.Handler) *event.Subscription { return c.bus.Subscribe(h) }

func (c *core) publish(evts ...event.Event) {
	for _, e := range evts {
		c.bus.Publish(e)
	}
}

func (c *core) requireDocLocked(op string) error {
	if c.destroyed {
		return &StateError{Op: op, State: c.state, Err: ErrDestroyed}
	}
	if c.doc == nil {
		return &StateError{Op: op, State: c.state}
	}
	return nil
}

func (c *core) Load(ctx context.Context, src content.Source) error {
	c.mu.Lock()
	if c.destroyed {
		err := &StateError{Op: "load", State: c.state, Err: ErrDestroyed}
		c.mu.Unlock()
		return err
	}
	gen := c.gen.Add(1)
	c.resetLocked()
	c.state = StateLoading
	c.mu.Unlock()

	ctx, span := c.cfg.tracer.StartSpan(ctx, observability.SpanLoad)
	defer span.Finish()
	start := c.cfg.clock()
	doc, err := c.read(ctx, src)

	c.mu.Lock()
	if c.gen.Load() != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		lerr := &LoadError{Op: "load", Format: c.format, Source: sourceName(src), Err: err}
		c.state = StateFailed
		c.mu.Unlock()
		span.SetError(lerr)
		c.log.Error("load failed", observability.Error("error", lerr))
		c.publish(event.Error{Message: lerr.Error(), Err: lerr})
		return lerr
	}
	c.installLocked(doc)
	evt := event.DocumentLoaded{UnitCount: len(doc.Units), Title: doc.Title, Dimensions: dimensions(doc)}
	c.mu.Unlock()

	elapsed := c.cfg.clock().Sub(start)
	span.SetTag(observability.MetricUnitCount, len(doc.Units))
	span.SetTag(observability.MetricLoadTime, elapsed.Seconds())
	c.log.Info("document loaded",
		observability.String("title", doc.Title),
		observability.Int("units", len(doc.Units)),
		observability.Float("seconds", elapsed.Seconds()),
	)
	c.publish(evt)
	return nil
}

func (c *core) read(ctx context.Context, src content.Source) (*content.Document, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", content.ErrUnreachable)
	}
	p, err := c.parserFor(src)
	if err != nil {
		return nil, err
	}
	data, err := content.ReadAll(ctx, src, c.cfg.maxSize)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.Title == "" {
		name := src.Name()
		doc.Title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return doc, nil
}

func sourceName(src content.Source) string {
	if src == nil {
		return ""
	}
	return src.Name()
}

func dimensions(doc *content.Document) []geometry.Size {
	out := make([]geometry.Size, len(doc.Units))
	for i, u := range doc.Units {
		out[i] = u.Size()
	}
	return out
}

// resetLocked drops the document and everything derived from it.
func (c *core) resetLocked() {
	c.doc = nil
	c.index = nil
	c.results = nil
	c.store.Clear()
	c.unit = 0
	c.zoom = c.zoomRange.Clamp(1)
	c.pan = geometry.Point{}
	c.scrollTop = 0
	c.drag = nil
	c.painted = nil
	c.wrappers = make(map[int]*html.Node)
	c.tracker = nil
	c.layout++
	c.renderSeq++
	surface.Clear(c.root)
	c.urls = nil
	c.blobs.RevokeAll()
	c.applyPanLocked()
}

func (c *core) installLocked(doc *content.Document) {
	c.doc = doc
	c.unit = 1
	c.index = search.NewIndex(len(doc.Units), func(unit int) string {
		return content.NormalizeText(doc.Units[unit-1].SearchableText())
	}, search.WithContext(c.cfg.searchContext))
	if c.continuous {
		c.tracker = viewport.New(nil)
		c.tracker.Scroll(0, c.view.Height)
	}
	c.layout++
	c.state = StateReady
	if c.onLoaded != nil {
		c.onLoaded()
	}
}

func (c *core) keyLocked() paintKey {
	k := paintKey{layout: c.layout, zoom: c.zoom}
	if !c.continuous {
		k.unit = c.unit
	}
	if c.extraKey != nil {
		k.extra = c.extraKey()
	}
	return k
}

// Render paints the units the current view state shows. It does nothing
// when unit, zoom and layout match the last paint. Overlapping calls
// coalesce: only the most recent one attaches its output.
func (c *core) Render(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireDocLocked("render"); err != nil {
		c.mu.Unlock()
		return err
	}
	key := c.keyLocked()
	if c.painted != nil && *c.painted == key {
		c.mu.Unlock()
		return nil
	}
	c.renderSeq++
	job := &paintJob{
		key: key,
		gen: c.gen.Load(),
		seq: c.renderSeq,
		doc: c.doc,
		vp:  geometry.Viewport{Size: c.view, Zoom: c.zoom, Pan: c.pan},
	}
	if c.continuous {
		for i := range c.doc.Units {
			job.units = append(job.units, i+1)
		}
	} else {
		job.units = []int{c.unit}
	}
	if c.prepare != nil {
		c.prepare(job)
	}
	c.state = StateRendering
	c.mu.Unlock()

	ctx, span := c.cfg.tracer.StartSpan(ctx, observability.SpanRender)
	defer span.Finish()
	start := c.cfg.clock()
	frag, err := c.paint(ctx, job)

	c.mu.Lock()
	if job.gen != c.gen.Load() || job.seq != c.renderSeq {
		stale := job.gen != c.gen.Load()
		c.mu.Unlock()
		c.revoke(job.urls)
		if stale {
			return ErrSuperseded
		}
		return nil
	}
	c.state = StateReady
	if err != nil {
		c.mu.Unlock()
		c.revoke(job.urls)
		if ctx.Err() != nil {
			return err
		}
		span.SetError(err)
		c.log.Error("render failed", observability.Error("error", err))
		c.publish(event.Error{Message: err.Error(), Err: err})
		return fmt.Errorf("render: %w", err)
	}
	c.swapLocked(job, frag)
	c.mu.Unlock()

	span.SetTag(observability.MetricRenderTime, c.cfg.clock().Sub(start).Seconds())
	c.log.Debug("rendered",
		observability.Int("units", len(job.units)),
		observability.Float("zoom", job.vp.Zoom),
	)
	return nil
}

// paint renders job's units into a detached fragment, one wrapper per unit.
// It runs without the lock and stops early once the load generation moves.
func (c *core) paint(ctx context.Context, job *paintJob) (*html.Node, error) {
	frag := surface.Element("div")
	for _, unit := range job.units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.gen.Load() != job.gen {
			return nil, ErrSuperseded
		}
		u := job.doc.Units[unit-1]
		style := surface.SizeStyle(u.Size().Scale(job.vp.Zoom))
		if c.continuous {
			style += fmt.Sprintf(";margin-bottom:%.2fpx", c.cfg.gap)
		}
		w := surface.Element("div",
			surface.Attr("class", surface.ClassUnit),
			surface.Attr(surface.AttrUnit, strconv.Itoa(unit)),
			surface.Attr("style", style),
		)
		var err error
		if c.paintUnit != nil {
			err = c.paintUnit(ctx, job, unit, u, w)
		} else {
			err = u.RenderInto(ctx, w, job.vp)
		}
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", unit, err)
		}
		frag.AppendChild(w)
	}
	return frag, nil
}

func (c *core) swapLocked(job *paintJob, frag *html.Node) {
	surface.Clear(c.root)
	c.wrappers = make(map[int]*html.Node, len(job.units))
	for w := frag.FirstChild; w != nil; {
		next := w.NextSibling
		frag.RemoveChild(w)
		c.root.AppendChild(w)
		if v, ok := surface.GetAttr(w, surface.AttrUnit); ok {
			if n, err := strconv.Atoi(v); err == nil {
				c.wrappers[n] = w
			}
		}
		w = next
	}
	prev := c.urls
	c.urls = job.urls
	c.revoke(prev)
	key := job.key
	c.painted = &key

	if c.tracker != nil {
		heights := make([]float64, len(c.doc.Units))
		for i, u := range c.doc.Units {
			heights[i] = u.Size().Height * c.zoom
		}
		c.tracker.SetLayout(viewport.Stack(heights, c.cfg.gap))
		c.scrollTop = c.tracker.Reveal(c.unit)
	}
	c.decorateLocked()
}

func (c *core) revoke(urls []string) {
	for _, u := range urls {
		c.blobs.Revoke(u)
	}
}

// decorateLocked re-applies search highlights and annotation overlays to
// every painted unit.
func (c *core) decorateLocked() {
	search.Clear(c.root)
	surface.Sweep(c.root, surface.ClassAnnotation)
	for unit, w := range c.wrappers {
		c.highlightUnitLocked(unit, w)
		for _, a := range c.store.ForUnit(unit) {
			w.AppendChild(c.annotationNode(a))
		}
	}
}

func (c *core) highlightUnitLocked(unit int, w *html.Node) {
	u := c.doc.Units[unit-1]
	cur := c.results.Index()
	for _, i := range c.results.InUnit(unit) {
		highlight(w, u, c.results.Items[i], i, i == cur, c.zoom)
	}
}

// highlight draws one match on a painted unit: <mark> wrappers for live
// markup and grid cells, positioned boxes for glyph placed text.
func highlight(w *html.Node, u content.Unit, r search.Result, match int, current bool, zoom float64) int {
	switch u := u.(type) {
	case content.Tabular:
		return highlightCell(w, u, r, match, current)
	case content.GlyphSource:
		layer := w
		if layers := surface.ByClass(w, surface.ClassTextLayer); len(layers) > 0 {
			layer = layers[0]
		}
		return search.BoxRange(layer, u.Glyphs(), u.PageMatrix(zoom), r.CharOffset, r.Length, match, current)
	case content.Markup:
		return search.MarkRange(w, r.CharOffset, r.Length, match, current)
	}
	return 0
}

type cellLayouter interface {
	Layout() *content.CellLayout
}

func highlightCell(w *html.Node, t content.Tabular, r search.Result, match int, current bool) int {
	var l *content.CellLayout
	if cl, ok := t.(cellLayouter); ok {
		l = cl.Layout()
	} else {
		l = content.LayoutCells(t)
	}
	cell, local, ok := l.Locate(r.CharOffset)
	if !ok {
		return 0
	}
	td := surface.CellNode(w, cell.Row, cell.Col)
	if td == nil {
		return 0
	}
	return search.MarkRange(td, local, r.Length, match, current)
}

func (c *core) annotationNode(a annotation.Annotation) *html.Node {
	size := c.doc.Units[a.UnitIndex-1].Size()
	box := geometry.ToPixels(a.Position, size, c.zoom)
	n := surface.Element("div",
		surface.Attr("class", surface.ClassAnnotation+" "+surface.ClassAnnotation+"-"+string(a.Type)),
		surface.Attr(surface.AttrAnnotation, a.ID),
		surface.Attr("style", surface.BoxStyle(box)),
	)
	if a.Content != "" {
		surface.SetAttr(n, "title", a.Content)
	}
	return n
}

func (c *core) applyPanLocked() {
	surface.SetAttr(c.root, "style", fmt.Sprintf("transform:translate(%.2fpx,%.2fpx)", c.pan.X, c.pan.Y))
}

// Goto makes unit current. It reports false for units outside the
// document and true without side effects when unit is already current.
func (c *core) Goto(ctx context.Context, unit int) (bool, error) {
	c.mu.Lock()
	if err := c.requireDocLocked("goto"); err != nil {
		c.mu.Unlock()
		return false, err
	}
	n := len(c.doc.Units)
	if unit < 1 || unit > n {
		c.mu.Unlock()
		c.log.Debug("goto ignored", observability.Error("error", &RangeError{Unit: unit, Count: n}))
		return false, nil
	}
	if unit == c.unit {
		c.mu.Unlock()
		return true, nil
	}
	c.unit = unit
	if c.tracker != nil {
		c.scrollTop = c.tracker.Reveal(unit)
	}
	if c.onGoto != nil {
		c.onGoto(unit)
	}
	c.mu.Unlock()

	if err := c.Render(ctx); err != nil {
		return true, err
	}
	c.publish(event.PageChanged{Unit: unit, UnitCount: n})
	return true, nil
}

// SetZoom clamps factor to the renderer's range and zooms about the
// viewport centre.
func (c *core) SetZoom(ctx context.Context, factor float64) error {
	return c.zoomAbout(ctx, nil, factor)
}

func (c *core) ZoomAt(ctx context.Context, pin geometry.Point, factor float64) error {
	return c.zoomAbout(ctx, &pin, factor)
}

func (c *core) zoomAbout(ctx context.Context, pin *geometry.Point, factor float64) error {
	c.mu.Lock()
	if err := c.requireDocLocked("zoom"); err != nil {
		c.mu.Unlock()
		return err
	}
	z1 := c.zoomRange.Clamp(factor)
	p := geometry.Viewport{Size: c.view}.Center()
	if pin != nil {
		p = *pin
	}
	c.pan = geometry.ZoomAbout(c.zoom, z1, p, c.pan)
	c.zoom = z1
	c.applyPanLocked()
	c.mu.Unlock()

	if err := c.Render(ctx); err != nil {
		return err
	}
	c.publish(event.ZoomChanged{Zoom: z1})
	return nil
}

// PanBy moves the content by a drag delta in viewport pixels.
func (c *core) PanBy(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return
	}
	c.pan.X += dx
	c.pan.Y += dy
	c.applyPanLocked()
}

type fitMode int

const (
	fitWidth fitMode = iota
	fitHeight
	fitPage
)

func (c *core) fit(ctx context.Context, mode fitMode) error {
	c.mu.Lock()
	if err := c.requireDocLocked("fit"); err != nil {
		c.mu.Unlock()
		return err
	}
	z := fitZoom(mode, c.doc.Units[c.unit-1].Size(), c.view)
	c.mu.Unlock()
	return c.SetZoom(ctx, z)
}

func fitZoom(mode fitMode, unit, view geometry.Size) float64 {
	switch mode {
	case fitWidth:
		return geometry.FitWidth(unit, view)
	case fitHeight:
		return geometry.FitHeight(unit, view)
	default:
		return geometry.FitPage(unit, view)
	}
}

// Search runs a case-insensitive literal search over every unit. A blank
// query clears the previous results and their highlights.
func (c *core) Search(ctx context.Context, query string) ([]search.Result, error) {
	c.mu.Lock()
	if err := c.requireDocLocked("search"); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		c.results = nil
		search.Clear(c.root)
		c.mu.Unlock()
		return []search.Result{}, nil
	}
	ix, gen := c.index, c.gen.Load()
	c.mu.Unlock()

	ctx, span := c.cfg.tracer.StartSpan(ctx, observability.SpanSearch)
	defer span.Finish()
	items, err := ix.Find(ctx, query)
	if err != nil {
		serr := &SearchError{Query: query, Err: err}
		span.SetError(serr)
		return nil, serr
	}
	if items == nil {
		items = []search.Result{}
	}

	c.mu.Lock()
	if c.gen.Load() != gen {
		c.mu.Unlock()
		return nil, ErrSuperseded
	}
	c.results = search.NewResults(query, items)
	search.Clear(c.root)
	for unit, w := range c.wrappers {
		c.highlightUnitLocked(unit, w)
	}
	target := 0
	if len(items) > 0 && items[0].UnitIndex != c.unit {
		target = items[0].UnitIndex
	}
	evt := event.SearchResult{Query: query, Results: items, Current: 0}
	c.mu.Unlock()

	span.SetTag(observability.MetricSearchHits, len(items))
	c.log.Debug("search", observability.String("query", query), observability.Int("hits", len(items)))
	c.publish(evt)
	if target > 0 {
		if _, err := c.Goto(ctx, target); err != nil {
			return items, err
		}
	}
	return items, nil
}

func (c *core) NextResult(ctx context.Context) (search.Result, bool, error) {
	return c.step(ctx, "next result", 1)
}

func (c *core) PreviousResult(ctx context.Context) (search.Result, bool, error) {
	return c.step(ctx, "previous result", -1)
}

func (c *core) step(ctx context.Context, op string, dir int) (search.Result, bool, error) {
	c.mu.Lock()
	if err := c.requireDocLocked(op); err != nil {
		c.mu.Unlock()
		return search.Result{}, false, err
	}
	var r search.Result
	var ok bool
	if dir > 0 {
		r, ok = c.results.Next()
	} else {
		r, ok = c.results.Prev()
	}
	if !ok {
		c.mu.Unlock()
		return search.Result{}, false, nil
	}
	search.SetCurrent(c.root, c.results.Index())
	evt := event.SearchResult{Query: c.results.Query, Results: c.results.Items, Current: c.results.Index()}
	move := r.UnitIndex != c.unit
	c.mu.Unlock()

	c.publish(evt)
	if move {
		if _, err := c.Goto(ctx, r.UnitIndex); err != nil {
			return r, true, err
		}
	}
	return r, true, nil
}

// AddAnnotation stamps partial with a fresh ID, the current unit and the
// current time, then stores it.
func (c *core) AddAnnotation(partial annotation.Annotation) (string, error) {
	c.mu.Lock()
	if err := c.requireDocLocked("add annotation"); err != nil {
		c.mu.Unlock()
		return "", err
	}
	a := annotation.Stamp(partial, c.unit, c.cfg.ids, c.cfg.clock())
	if err := a.Validate(len(c.doc.Units)); err != nil {
		c.mu.Unlock()
		return "", fmt.Errorf("add annotation: %w", err)
	}
	if err := c.store.Add(a); err != nil {
		c.mu.Unlock()
		return "", fmt.Errorf("add annotation: %w", err)
	}
	if w, ok := c.wrappers[a.UnitIndex]; ok {
		w.AppendChild(c.annotationNode(a))
	}
	c.mu.Unlock()

	c.publish(event.AnnotationAdded{Annotation: a})
	return a.ID, nil
}

func (c *core) RemoveAnnotation(id string) bool {
	c.mu.Lock()
	a, ok := c.store.Remove(id)
	if ok {
		for _, n := range surface.FindAll(c.root, func(n *html.Node) bool {
			v, has := surface.GetAttr(n, surface.AttrAnnotation)
			return has && v == id
		}) {
			n.Parent.RemoveChild(n)
		}
	}
	c.mu.Unlock()

	if ok {
		c.publish(event.AnnotationRemoved{Annotation: a})
	}
	return ok
}

func (c *core) ExportAnnotations() []annotation.Annotation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// ImportAnnotations validates every entry before storing any of them.
// Entries replace stored annotations with the same ID.
func (c *core) ImportAnnotations(list []annotation.Annotation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireDocLocked("import annotations"); err != nil {
		return err
	}
	var errs []error
	for i, a := range list {
		if err := a.Validate(len(c.doc.Units)); err != nil {
			errs = append(errs, fmt.Errorf("annotation %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("import annotations: %w", err)
	}
	for _, a := range list {
		c.store.Put(a)
	}
	c.decorateLocked()
	return nil
}

func (c *core) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:       c.state,
		Format:      c.format,
		CurrentUnit: c.unit,
		Zoom:        c.zoom,
		Pan:         c.pan,
		ScrollTop:   c.scrollTop,
		Destroyed:   c.destroyed,
	}
	if c.doc != nil {
		s.Title = c.doc.Title
		s.UnitCount = len(c.doc.Units)
	}
	if c.results != nil {
		s.Query = c.results.Query
		s.ResultIndex = c.results.Index()
		s.ResultCount = c.results.Len()
	}
	return s
}

// Frame recomputes the current unit from the scroll position at most once
// per call and emits PageChanged when it moved.
func (c *core) Frame() {
	c.mu.Lock()
	if c.doc == nil || c.tracker == nil {
		c.mu.Unlock()
		return
	}
	unit, changed := c.tracker.Frame()
	if !changed || unit == c.unit {
		c.mu.Unlock()
		return
	}
	c.unit = unit
	evt := event.PageChanged{Unit: unit, UnitCount: len(c.doc.Units)}
	c.mu.Unlock()
	c.publish(evt)
}

// Destroy cancels in-flight work and releases the renderer's nodes,
// listeners, blobs, annotations and results. It is idempotent; the
// renderer cannot be loaded again.
func (c *core) Destroy() {
	c.mu.Lock()
	c.gen.Add(1)
	first := !c.destroyed
	c.resetLocked()
	if c.root.Parent != nil {
		c.root.Parent.RemoveChild(c.root)
	}
	c.state = StateEmpty
	c.destroyed = true
	c.mu.Unlock()

	c.handle.Close()
	c.bus.Close()
	if first {
		c.log.Debug("destroyed")
	}
}
