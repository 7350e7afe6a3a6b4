// Package preview renders what the artwork would draw next for a given
// input, without touching the generator driving the run.
package preview

import (
	"fmt"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/svg"
	"github.com/pithecene-io/livedraw/types"
)

// Generator builds predictive documents.
type Generator struct{}

// New returns a preview generator.
func New() *Generator { return &Generator{} }

// Generate draws from index from forward on a clone of gen, accumulating
// every Drawing's layers in order. It stops at Terminal, or after limit
// draw calls when limit is non-nil. Skips count as draw calls.
func (g *Generator) Generate(gen art.Generator, from int, in types.Input, limit *int) (*svg.Document, error) {
	clone := gen.Clone()
	width, height := clone.Dimension()
	doc := svg.New(width, height)

	for calls, i := 0, from; limit == nil || calls < *limit; calls, i = calls+1, i+1 {
		inc, err := clone.DrawIncrement(in, i)
		if err != nil {
			return nil, fmt.Errorf("preview increment %d: %w", i, err)
		}
		switch v := inc.(type) {
		case types.Drawing:
			doc.Append(v.Layers...)
		case types.Skip:
		case types.Terminal:
			return doc, nil
		default:
			return nil, fmt.Errorf("preview increment %d: unexpected %T", i, inc)
		}
	}
	return doc, nil
}

// Limit returns the preview cap declared by gen, or nil.
func Limit(gen art.Generator) *int {
	if n, ok := art.PredictiveCap(gen); ok {
		return &n
	}
	return nil
}
