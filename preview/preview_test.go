package preview

import (
	"errors"
	"testing"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/types"
)

// stepGenerator draws one layer per index until end, skipping indexes in
// skip. It records every call it receives.
type stepGenerator struct {
	end   int
	skip  map[int]bool
	calls []int
	err   error
}

func (g *stepGenerator) Dimension() (float64, float64)                { return 100, 50 }
func (g *stepGenerator) EstimateTotalIncrements() int                 { return g.end }
func (g *stepGenerator) DelayBetweenIncrements() time.Duration        { return 0 }
func (g *stepGenerator) ActionsBeforeIncrement(int) []types.ArtAction { return nil }

func (g *stepGenerator) DrawIncrement(_ types.Input, i int) (types.Increment, error) {
	g.calls = append(g.calls, i)
	if g.err != nil {
		return nil, g.err
	}
	if i >= g.end {
		return types.Terminal{}, nil
	}
	if g.skip[i] {
		return types.Skip{}, nil
	}
	return types.Drawing{Layers: []types.Layer{
		types.NewLayer("black", 1, types.Path{{X: float64(i), Y: 0}, {X: float64(i), Y: 1}}),
	}}, nil
}

func (g *stepGenerator) Clone() art.Generator {
	c := *g
	c.calls = append([]int(nil), g.calls...)
	return &c
}

type cappedGenerator struct{ stepGenerator }

func (g *cappedGenerator) PredictiveMaxNextIncrements() (int, bool) { return 2, true }

func (g *cappedGenerator) Clone() art.Generator {
	c := *g
	c.calls = append([]int(nil), g.calls...)
	return &c
}

func intPtr(n int) *int { return &n }

func TestGenerate_StopsAtTerminal(t *testing.T) {
	gen := &stepGenerator{end: 5}
	doc, err := New().Generate(gen, 2, types.Input{}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(doc.Layers) != 3 {
		t.Fatalf("expected 3 layers (2,3,4), got %d", len(doc.Layers))
	}
	for i, want := range []float64{2, 3, 4} {
		if got := doc.Layers[i].Paths[0][0].X; got != want {
			t.Errorf("layer %d from index %v, want %v", i, got, want)
		}
	}
	if doc.Width != 100 || doc.Height != 50 {
		t.Errorf("dimension = %vx%v", doc.Width, doc.Height)
	}
}

func TestGenerate_DoesNotTouchAuthoritativeGenerator(t *testing.T) {
	gen := &stepGenerator{end: 5, calls: []int{0, 1}}
	if _, err := New().Generate(gen, 2, types.Input{}, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(gen.calls) != 2 {
		t.Errorf("authoritative generator observed preview calls: %v", gen.calls)
	}
}

func TestGenerate_CapCountsSkips(t *testing.T) {
	gen := &stepGenerator{end: 10, skip: map[int]bool{1: true}}
	doc, err := New().Generate(gen, 0, types.Input{}, intPtr(3))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(doc.Layers) != 2 {
		t.Errorf("expected layers for 0 and 2, got %d", len(doc.Layers))
	}
}

func TestGenerate_ZeroCap(t *testing.T) {
	doc, err := New().Generate(&stepGenerator{end: 10}, 0, types.Input{}, intPtr(0))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(doc.Layers) != 0 {
		t.Errorf("expected empty preview, got %d layers", len(doc.Layers))
	}
}

func TestGenerate_Error(t *testing.T) {
	boom := errors.New("boom")
	if _, err := New().Generate(&stepGenerator{end: 3, err: boom}, 0, types.Input{}, nil); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestLimit(t *testing.T) {
	if Limit(&stepGenerator{}) != nil {
		t.Error("expected no limit")
	}
	if n := Limit(&cappedGenerator{}); n == nil || *n != 2 {
		t.Errorf("limit = %v", n)
	}
}
