package ocr

import (
	"context"
	"fmt"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultEngine Engine = noopEngine{}
)

// DefaultEngine returns the process-wide engine. Without a call to
// SetDefaultEngine it recognizes nothing.
func DefaultEngine() Engine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEngine
}

// SetDefaultEngine replaces the process-wide engine. A nil engine restores
// the no-op default.
func SetDefaultEngine(engine Engine) {
	if engine == nil {
		engine = noopEngine{}
	}
	defaultMu.Lock()
	defaultEngine = engine
	defaultMu.Unlock()
}

// IsNoop reports whether engine is the built-in engine that recognizes
// nothing.
func IsNoop(engine Engine) bool {
	_, ok := engine.(noopEngine)
	return engine == nil || ok
}

// Recognize runs every input through engine, batching when the engine
// supports it and otherwise calling it sequentially.
func Recognize(ctx context.Context, engine Engine, inputs []Input) ([]Result, error) {
	if b, ok := engine.(BatchEngine); ok {
		return b.RecognizeBatch(ctx, inputs)
	}
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(_ context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
