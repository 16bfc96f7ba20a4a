// Package fonts measures text for layout decisions that need real advance
// widths: PDF text-layer glyph boxes and flow pagination estimates.
package fonts

import (
	"sync"

	"golang.org/x/image/font/gofont/goregular"
)

// Measurer caches per-string advances produced by a Shaper.
type Measurer struct {
	shaper *Shaper

	mu    sync.RWMutex
	cache map[string][]float64
}

// NewMeasurer returns a Measurer over the given font program.
func NewMeasurer(ttf []byte) (*Measurer, error) {
	s, err := NewShaper(ttf)
	if err != nil {
		return nil, err
	}
	return &Measurer{shaper: s, cache: make(map[string][]float64)}, nil
}

var (
	defaultOnce     sync.Once
	defaultMeasurer *Measurer
	defaultErr      error
)

// Default returns a shared Measurer over Go Regular.
func Default() (*Measurer, error) {
	defaultOnce.Do(func() {
		defaultMeasurer, defaultErr = NewMeasurer(goregular.TTF)
	})
	return defaultMeasurer, defaultErr
}

// Advances returns per-rune advances in em units. The returned slice is
// shared and must not be modified.
func (m *Measurer) Advances(text string) []float64 {
	m.mu.RLock()
	adv, ok := m.cache[text]
	m.mu.RUnlock()
	if ok {
		return adv
	}
	adv = m.shaper.Advances(text)
	m.mu.Lock()
	m.cache[text] = adv
	m.mu.Unlock()
	return adv
}

// Width returns the advance width of text at the given font size.
func (m *Measurer) Width(text string, size float64) float64 {
	var w float64
	for _, a := range m.Advances(text) {
		w += a
	}
	return w * size
}

// Fit returns how many leading runes of text fit in width at size.
func (m *Measurer) Fit(text string, size, width float64) int {
	var w float64
	for i, a := range m.Advances(text) {
		w += a * size
		if w > width {
			return i
		}
	}
	return len([]rune(text))
}
