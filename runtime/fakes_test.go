package runtime

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/types"
)

type drawCall struct {
	index int
	at    time.Time
}

// fakeArt draws one layer per index below end. Only the authoritative
// instance records calls; clones start with an empty log.
type fakeArt struct {
	end     int
	skips   map[int]bool
	delay   time.Duration
	actions map[int][]types.ArtAction
	failAt  int
	// cloneFailAt fails only on clones, so only previews see it.
	cloneFailAt int
	clone       bool
	calls       []drawCall
}

func newFakeArt(end int, delay time.Duration) *fakeArt {
	return &fakeArt{end: end, delay: delay, failAt: -1, cloneFailAt: -1}
}

func (f *fakeArt) Dimension() (float64, float64)         { return 100, 80 }
func (f *fakeArt) EstimateTotalIncrements() int          { return f.end }
func (f *fakeArt) DelayBetweenIncrements() time.Duration { return f.delay }

func (f *fakeArt) ActionsBeforeIncrement(i int) []types.ArtAction {
	return f.actions[i]
}

func (f *fakeArt) DrawIncrement(_ types.Input, i int) (types.Increment, error) {
	if !f.clone {
		f.calls = append(f.calls, drawCall{index: i, at: time.Now()})
	}
	if i == f.failAt || (f.clone && i == f.cloneFailAt) {
		return nil, errors.New("artwork exploded")
	}
	if i >= f.end {
		return types.Terminal{}, nil
	}
	if f.skips[i] {
		return types.Skip{}, nil
	}
	return types.Drawing{Layers: []types.Layer{layerFor(i)}}, nil
}

func (f *fakeArt) Clone() art.Generator {
	c := *f
	c.clone = true
	c.calls = nil
	return &c
}

func (f *fakeArt) SimulateInput(i int) types.Input {
	return types.MustInput(map[string]any{"index": i})
}

func layerFor(i int) types.Layer {
	y := float64(i)
	return types.NewLayer("black", 0.35, types.Path{{X: 0, Y: y}, {X: 10, Y: y}})
}

// scriptedInputs returns seq in order and repeats the last element.
type scriptedInputs struct {
	mu      sync.Mutex
	seq     []types.Input
	fetches int
	errAt   int
	err     error
}

func newScriptedInputs(values ...any) *scriptedInputs {
	s := &scriptedInputs{errAt: -1}
	for _, v := range values {
		s.seq = append(s.seq, types.MustInput(v))
	}
	return s
}

func (s *scriptedInputs) Fetch(ctx context.Context) (types.Input, error) {
	if err := ctx.Err(); err != nil {
		return types.Input{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.fetches
	s.fetches++
	if n == s.errAt {
		return types.Input{}, s.err
	}
	return s.seq[min(n, len(s.seq)-1)], nil
}

func (s *scriptedInputs) Changed(previous, current types.Input) bool {
	return !previous.Equal(current)
}

func (s *scriptedInputs) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

type recordedEvent struct {
	event types.PlotEvent
	at    time.Time
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingSink) Emit(ctx context.Context, ev types.PlotEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{event: ev, at: time.Now()})
	return nil
}

func (r *recordingSink) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func (r *recordingSink) count(typ types.PlotEventType) int {
	n := 0
	for _, e := range r.all() {
		if e.event.Type == typ {
			n++
		}
	}
	return n
}

// fakePlotter consumes drawing increments from the handshake directory.
// When plotdata is set it leaves a finished file carrying it before
// deleting the increment. Documents without paths (home artifacts) are
// left in place.
type fakePlotter struct {
	store    *handshake.Store
	plotdata string
	latency  time.Duration

	mu       sync.Mutex
	consumed []string
	done     chan struct{}
	stopped  chan struct{}
}

func startPlotter(t *testing.T, store *handshake.Store, plotdata string, latency time.Duration) *fakePlotter {
	t.Helper()
	p := &fakePlotter{
		store:    store,
		plotdata: plotdata,
		latency:  latency,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.loop()
	t.Cleanup(p.stop)
	return p
}

func (p *fakePlotter) loop() {
	defer close(p.stopped)
	current := p.store.Path(handshake.CurrentFile)
	for {
		select {
		case <-p.done:
			return
		case <-time.After(time.Millisecond):
		}
		data, err := os.ReadFile(current)
		if err != nil || !strings.Contains(string(data), "<path") {
			continue
		}
		time.Sleep(p.latency)
		if p.plotdata != "" {
			finished := `<svg xmlns="http://www.w3.org/2000/svg"><plotdata ` + p.plotdata + `/></svg>`
			_ = os.WriteFile(p.store.Path(handshake.FinishedFile), []byte(finished), 0o644)
		}
		p.mu.Lock()
		p.consumed = append(p.consumed, string(data))
		p.mu.Unlock()
		_ = os.Remove(current)
	}
}

func (p *fakePlotter) stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	<-p.stopped
}

func (p *fakePlotter) documents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.consumed...)
}

func newStore(t *testing.T) *handshake.Store {
	t.Helper()
	s, err := handshake.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return s
}

func liveMeta() *types.RunMeta {
	return &types.RunMeta{RunID: "run-test", Art: "fake", Mode: types.ModeLive}
}
