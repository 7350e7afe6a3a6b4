// Package art defines the contract every artwork implements.
//
// The scheduler only talks to artworks through Generator. Optional
// behavior (preview caps, simulated inputs, input validation) is exposed
// through small capability interfaces detected with a type assertion.
package art

import (
	"time"

	"github.com/pithecene-io/livedraw/types"
)

// Generator produces increments for one artwork.
//
// DrawIncrement is called with strictly increasing indexes starting at 0
// and never again after it returns Terminal. An error is fatal to the run.
type Generator interface {
	// Dimension returns the document width and height in millimetres.
	Dimension() (width, height float64)
	// EstimateTotalIncrements is shown to viewers; it need not be exact.
	EstimateTotalIncrements() int
	// DelayBetweenIncrements is the minimum time between the start of
	// two consecutive drawn increments.
	DelayBetweenIncrements() time.Duration
	// ActionsBeforeIncrement returns actions to run before index is generated.
	ActionsBeforeIncrement(index int) []types.ArtAction
	DrawIncrement(in types.Input, index int) (types.Increment, error)
	// Clone returns an independent copy. Generating on the copy must not
	// affect the receiver.
	Clone() Generator
}

// PredictiveLimiter caps how many draw calls a preview runs.
type PredictiveLimiter interface {
	PredictiveMaxNextIncrements() (n int, ok bool)
}

// Simulator supplies inputs for offline simulation.
type Simulator interface {
	SimulateInput(index int) types.Input
}

// InputValidator checks that an input document matches the artwork schema.
type InputValidator interface {
	ValidateInput(in types.Input) error
}

// PredictiveCap returns the preview cap of gen, if it declares one.
func PredictiveCap(gen Generator) (int, bool) {
	if l, ok := gen.(PredictiveLimiter); ok {
		return l.PredictiveMaxNextIncrements()
	}
	return 0, false
}

// Validator returns the input validator of gen, or nil.
func Validator(gen Generator) func(types.Input) error {
	if v, ok := gen.(InputValidator); ok {
		return v.ValidateInput
	}
	return nil
}
