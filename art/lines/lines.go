// Package lines is the reference artwork: ten horizontal lines whose
// vertical spread follows the live "value" range input.
package lines

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/types"
)

// Name is the registry name of this artwork.
const Name = "lines"

// Defaults match an A6 portrait sheet.
const (
	DefaultWidth   = 105.0
	DefaultHeight  = 148.5
	DefaultPadding = 5.0
)

const (
	totalLines  = 10
	delay       = 8 * time.Second
	pauseText   = "Get ready"
	pauseLength = 10 * time.Second
	strokeColor = "black"
	strokeWidth = 0.35
	shapeLength = 26
)

// Input is the control document this artwork expects.
type Input struct {
	Shape []float64 `json:"shape"`
	Poll  struct {
		Winner string `json:"winner"`
	} `json:"poll"`
	Value struct {
		Value float64 `json:"value"`
	} `json:"value"`
}

// Art draws one line per increment.
type Art struct {
	width   float64
	height  float64
	padding float64
	seed    int64
}

var (
	_ art.Generator      = (*Art)(nil)
	_ art.Simulator      = (*Art)(nil)
	_ art.InputValidator = (*Art)(nil)
)

// New returns the artwork. Zero dimensions fall back to the defaults.
func New(opts art.Options) (*Art, error) {
	a := &Art{width: opts.Width, height: opts.Height, padding: opts.Padding, seed: opts.Seed}
	if a.width == 0 {
		a.width = DefaultWidth
	}
	if a.height == 0 {
		a.height = DefaultHeight
	}
	if a.padding == 0 {
		a.padding = DefaultPadding
	}
	if a.width <= 0 || a.height <= 0 || a.padding < 0 {
		return nil, fmt.Errorf("invalid dimensions %vx%v padding %v", a.width, a.height, a.padding)
	}
	if 2*a.padding >= a.width {
		return nil, fmt.Errorf("padding %v leaves no drawable width", a.padding)
	}
	return a, nil
}

// Constructor adapts New to the registry.
func Constructor(opts art.Options) (art.Generator, error) {
	return New(opts)
}

func (a *Art) Dimension() (float64, float64) { return a.width, a.height }

func (a *Art) EstimateTotalIncrements() int { return totalLines }

func (a *Art) DelayBetweenIncrements() time.Duration { return delay }

func (a *Art) ActionsBeforeIncrement(index int) []types.ArtAction {
	if index == 0 {
		return []types.ArtAction{types.Pause{Message: pauseText, Duration: pauseLength}}
	}
	return nil
}

func (a *Art) DrawIncrement(in types.Input, index int) (types.Increment, error) {
	if index >= totalLines {
		return types.Terminal{}, nil
	}
	var doc Input
	if err := in.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	y := doc.Value.Value * ((float64(index) + 0.5) / totalLines) * a.height
	path := types.Path{{X: a.padding, Y: y}, {X: a.width - a.padding, Y: y}}
	return types.Drawing{Layers: []types.Layer{types.NewLayer(strokeColor, strokeWidth, path)}}, nil
}

func (a *Art) Clone() art.Generator {
	c := *a
	return &c
}

// SimulateInput returns a deterministic random input for index. Range
// values stay within [0, 1) so every line lands on the sheet.
func (a *Art) SimulateInput(index int) types.Input {
	rng := rand.New(rand.NewPCG(uint64(a.seed), uint64(index)))
	doc := Input{Shape: make([]float64, shapeLength)}
	for i := range doc.Shape {
		doc.Shape[i] = rng.Float64()
	}
	doc.Poll.Winner = []string{"dog", "cat"}[rng.IntN(2)]
	doc.Value.Value = rng.Float64()
	return types.MustInput(doc)
}

// ValidateInput requires the shape, poll and value members.
func (a *Art) ValidateInput(in types.Input) error {
	var doc struct {
		Shape []float64 `json:"shape"`
		Poll  *struct {
			Winner *string `json:"winner"`
		} `json:"poll"`
		Value *struct {
			Value *float64 `json:"value"`
		} `json:"value"`
	}
	if err := in.Decode(&doc); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	var errs []error
	if doc.Shape == nil {
		errs = append(errs, errors.New("missing shape"))
	}
	if doc.Poll == nil || doc.Poll.Winner == nil {
		errs = append(errs, errors.New("missing poll.winner"))
	}
	if doc.Value == nil || doc.Value.Value == nil {
		errs = append(errs, errors.New("missing value.value"))
	}
	return errors.Join(errs...)
}
