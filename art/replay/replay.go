// Package replay is an artwork that plays back a recorded journal.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/iox"
	"github.com/pithecene-io/livedraw/journal"
	"github.com/pithecene-io/livedraw/types"
)

// Name is the registry name of this artwork.
const Name = "replay"

// Art returns the recorded increment for each index and Terminal past
// the end of the journal. Input is ignored.
type Art struct {
	header     *journal.Header
	increments []types.Increment
}

var (
	_ art.Generator = (*Art)(nil)
	_ art.Simulator = (*Art)(nil)
)

// Open reads the journal at path.
func Open(path string) (*Art, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer iox.DiscardClose(f)
	return Load(f)
}

// Load reads a journal from r.
func Load(r io.Reader) (*Art, error) {
	jr, err := journal.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read journal header: %w", err)
	}
	records, err := jr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	a := &Art{header: jr.Header(), increments: make([]types.Increment, 0, len(records))}
	for i, rec := range records {
		if rec.Index != i {
			return nil, fmt.Errorf("journal record %d has index %d", i, rec.Index)
		}
		inc, err := rec.Increment()
		if err != nil {
			return nil, fmt.Errorf("journal record %d: %w", i, err)
		}
		a.increments = append(a.increments, inc)
		if _, ok := inc.(types.Terminal); ok {
			break
		}
	}
	return a, nil
}

// Constructor opens the journal named by opts.Source.
func Constructor(opts art.Options) (art.Generator, error) {
	if opts.Source == "" {
		return nil, errors.New("replay requires a journal path")
	}
	return Open(opts.Source)
}

// Source returns the name of the recorded artwork.
func (a *Art) Source() string { return a.header.Art }

func (a *Art) Dimension() (float64, float64) { return a.header.Width, a.header.Height }

func (a *Art) EstimateTotalIncrements() int {
	if a.header.Total > 0 {
		return a.header.Total
	}
	return len(a.increments)
}

func (a *Art) DelayBetweenIncrements() time.Duration { return a.header.Delay() }

func (a *Art) ActionsBeforeIncrement(int) []types.ArtAction { return nil }

func (a *Art) DrawIncrement(_ types.Input, index int) (types.Increment, error) {
	if index < 0 {
		return nil, fmt.Errorf("negative index %d", index)
	}
	if index >= len(a.increments) {
		return types.Terminal{}, nil
	}
	return a.increments[index], nil
}

// SimulateInput returns an empty input; recorded increments ignore it.
func (a *Art) SimulateInput(int) types.Input { return types.Input{} }

// Clone shares the recorded increments, which are never modified.
func (a *Art) Clone() art.Generator {
	c := *a
	return &c
}
