package renderer

import (
	"context"

	"github.com/wudi/docview/geometry"
	"github.com/wudi/docview/observability"
	"github.com/wudi/docview/surface"
)

// listen registers the host input handlers through the renderer's handle.
// Without a dispatcher nothing is registered.
func (c *core) listen() {
	d := c.cfg.dispatcher
	c.handle.Listen(d, surface.KeyDown, c.onKey)
	c.handle.Listen(d, surface.Wheel, c.onWheel)
	c.handle.Listen(d, surface.PointerDown, c.onPointerDown)
	c.handle.Listen(d, surface.PointerMove, c.onPointerMove)
	c.handle.Listen(d, surface.PointerUp, c.onPointerUp)
	c.handle.Listen(d, surface.Scroll, c.onScrollInput)
	c.handle.Listen(d, surface.Resize, c.onResize)
}

func (c *core) logInputErr(op string, err error) {
	if err != nil && !IsStateError(err) {
		c.log.Warn("input handler failed", observability.String("op", op), observability.Error("error", err))
	}
}

func (c *core) onKey(in surface.Input) {
	ctx := context.Background()
	s := c.Snapshot()
	if s.UnitCount == 0 {
		return
	}
	switch {
	case in.Ctrl && (in.Key == "+" || in.Key == "="):
		c.logInputErr("zoom in", c.SetZoom(ctx, s.Zoom*zoomStep))
	case in.Ctrl && in.Key == "-":
		c.logInputErr("zoom out", c.SetZoom(ctx, s.Zoom/zoomStep))
	case in.Ctrl && in.Key == "0":
		c.logInputErr("zoom reset", c.SetZoom(ctx, 1))
	case in.Key == "ArrowRight" || in.Key == "PageDown":
		_, err := c.Goto(ctx, s.CurrentUnit+1)
		c.logInputErr("next unit", err)
	case in.Key == "ArrowLeft" || in.Key == "PageUp":
		_, err := c.Goto(ctx, s.CurrentUnit-1)
		c.logInputErr("previous unit", err)
	case in.Key == "Home":
		_, err := c.Goto(ctx, 1)
		c.logInputErr("first unit", err)
	case in.Key == "End":
		_, err := c.Goto(ctx, s.UnitCount)
		c.logInputErr("last unit", err)
	}
}

// onWheel zooms about the cursor when the wheel is used with Ctrl. Plain
// wheel events scroll the host container and arrive as Scroll input.
func (c *core) onWheel(in surface.Input) {
	if !in.Ctrl || in.DeltaY == 0 {
		return
	}
	z := c.Snapshot().Zoom
	if in.DeltaY < 0 {
		z *= zoomStep
	} else {
		z /= zoomStep
	}
	c.logInputErr("wheel zoom", c.ZoomAt(context.Background(), geometry.Point{X: in.X, Y: in.Y}, z))
}

func (c *core) onPointerDown(in surface.Input) {
	c.mu.Lock()
	c.drag = &geometry.Point{X: in.X, Y: in.Y}
	c.mu.Unlock()
}

func (c *core) onPointerMove(in surface.Input) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil || c.doc == nil {
		return
	}
	c.pan.X += in.X - c.drag.X
	c.pan.Y += in.Y - c.drag.Y
	c.drag = &geometry.Point{X: in.X, Y: in.Y}
	c.applyPanLocked()
}

func (c *core) onPointerUp(surface.Input) {
	c.mu.Lock()
	c.drag = nil
	c.mu.Unlock()
}

// onScrollInput feeds the scroll position to the variant hook or the page
// tracker. The tracker only marks itself dirty; Frame does the work.
func (c *core) onScrollInput(in surface.Input) {
	c.mu.Lock()
	repaint := false
	switch {
	case c.onScroll != nil && c.doc != nil:
		repaint = c.onScroll(in)
	case c.tracker != nil:
		c.tracker.Scroll(in.ScrollTop, c.view.Height)
		c.scrollTop = in.ScrollTop
	}
	c.mu.Unlock()
	if repaint {
		c.logInputErr("scroll render", c.Render(context.Background()))
	}
}

func (c *core) onResize(in surface.Input) {
	size := geometry.Size{Width: in.Width, Height: in.Height}
	if size.IsEmpty() {
		return
	}
	c.mu.Lock()
	c.view = size
	if c.tracker != nil {
		top, _ := c.tracker.Window()
		c.tracker.Scroll(top, size.Height)
	}
	c.mu.Unlock()
}
