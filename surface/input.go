package surface

import "sync"

// InputKind names a host input event.
type InputKind string

const (
	KeyDown     InputKind = "keydown"
	Wheel       InputKind = "wheel"
	PointerDown InputKind = "pointerdown"
	PointerMove InputKind = "pointermove"
	PointerUp   InputKind = "pointerup"
	Scroll      InputKind = "scroll"
	Resize      InputKind = "resize"
)

// Input is one event delivered by the host to the document root.
type Input struct {
	Kind      InputKind
	Key       string
	Ctrl      bool
	X, Y      float64
	DeltaY    float64
	ScrollTop float64
	Width     float64
	Height    float64
}

// Dispatcher stands in for the host's document root: listeners registered
// here receive every input the host dispatches.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    int
	listeners map[InputKind]map[int]func(Input)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[InputKind]map[int]func(Input))}
}

// Listen registers fn for kind and returns the function removing it.
func (d *Dispatcher) Listen(kind InputKind, fn func(Input)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	if d.listeners[kind] == nil {
		d.listeners[kind] = make(map[int]func(Input))
	}
	d.listeners[kind][id] = fn
	return func() {
		d.mu.Lock()
		delete(d.listeners[kind], id)
		d.mu.Unlock()
	}
}

// Dispatch delivers in to the listeners of its kind.
func (d *Dispatcher) Dispatch(in Input) {
	d.mu.Lock()
	fns := make([]func(Input), 0, len(d.listeners[in.Kind]))
	for _, fn := range d.listeners[in.Kind] {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(in)
	}
}

// Count returns the number of listeners for kind.
func (d *Dispatcher) Count(kind InputKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[kind])
}

// Handle owns every listener a renderer registered so they can be released
// together. The zero value is ready to use.
type Handle struct {
	mu      sync.Mutex
	cancels []func()
	closed  bool
}

// Listen registers fn on d through the handle. Registration after Close is
// ignored.
func (h *Handle) Listen(d *Dispatcher, kind InputKind, fn func(Input)) {
	if d == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.cancels = append(h.cancels, d.Listen(kind, fn))
}

// Close removes every listener in reverse registration order. Idempotent.
func (h *Handle) Close() {
	h.mu.Lock()
	cancels := h.cancels
	h.cancels = nil
	h.closed = true
	h.mu.Unlock()
	for i := len(cancels) - 1; i >= 0; i-- {
		cancels[i]()
	}
}

// Reopen makes a closed handle accept registrations again.
func (h *Handle) Reopen() {
	h.mu.Lock()
	h.closed = false
	h.mu.Unlock()
}
