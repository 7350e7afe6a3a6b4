// Package runtime drives an artwork run: the live increment scheduler and
// the offline simulation.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/preview"
	"github.com/pithecene-io/livedraw/svg"
	"github.com/pithecene-io/livedraw/types"
)

// DefaultPollInterval is the quantum of every wait loop.
const DefaultPollInterval = 500 * time.Millisecond

// stopTimeout bounds the best-effort art-stop sent after a failed run.
const stopTimeout = 5 * time.Second

// InputSource provides live inputs. *control.Poller implements it.
type InputSource interface {
	Fetch(ctx context.Context) (types.Input, error)
	Changed(previous, current types.Input) bool
}

// EventSink receives plot events. *control.Emitter implements it.
type EventSink interface {
	Emit(ctx context.Context, ev types.PlotEvent) error
}

// Archiver stores copies of published documents. *archive.Archive
// implements it.
type Archiver interface {
	PutIncrement(ctx context.Context, index int, data []byte) error
	PutCumulative(ctx context.Context, data []byte) error
}

// Config configures a live run.
type Config struct {
	Generator art.Generator
	Inputs    InputSource
	Events    EventSink
	Store     *handshake.Store
	// Preview defaults to preview.New().
	Preview *preview.Generator
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	RunMeta      *types.RunMeta
	// Logger defaults to a logger carrying RunMeta.
	Logger *log.Logger
	// Collector is optional; all Collector methods are nil-safe.
	Collector *metrics.Collector
	// Archive is optional. Archive failures are logged, never fatal.
	Archive Archiver
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunMeta  *types.RunMeta
	Outcome  *Outcome
	Duration time.Duration
	// DrawCalls counts DrawIncrement calls, including the Terminal one.
	DrawCalls int
	Published int
	Skipped   int
	// Terminal is true once the artwork returned Terminal.
	Terminal bool
	// Cumulative is every layer published during the run.
	Cumulative *svg.Document
}

// runState is threaded through every state of the loop.
type runState struct {
	index       int
	lastInput   types.Input
	cumulative  *svg.Document
	previewFrom int
	// generateStart is when GENERATE began for the last drawn index.
	generateStart time.Time

	drawCalls int
	published int
	skipped   int
	terminal  bool
	started   bool
}

// Scheduler runs the live increment loop.
type Scheduler struct {
	config Config
	logger *log.Logger
	width  float64
	height float64
	limit  *int
}

// NewScheduler validates cfg and returns a scheduler.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Generator == nil {
		return nil, errors.New("scheduler requires a generator")
	}
	if cfg.Inputs == nil || cfg.Events == nil || cfg.Store == nil {
		return nil, errors.New("scheduler requires inputs, events and a handshake store")
	}
	if err := cfg.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if cfg.Preview == nil {
		cfg.Preview = preview.New()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLogger(cfg.RunMeta)
	}

	width, height := cfg.Generator.Dimension()
	return &Scheduler{
		config: cfg,
		logger: logger,
		width:  width,
		height: height,
		limit:  preview.Limit(cfg.Generator),
	}, nil
}

// Run executes the run until the artwork returns Terminal or an error
// occurs. The result is always non-nil; its Outcome classifies err.
func (s *Scheduler) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	st := &runState{cumulative: svg.New(s.width, s.height)}

	s.logger.Info("starting run", map[string]any{
		"width":         s.width,
		"height":        s.height,
		"delay":         s.config.Generator.DelayBetweenIncrements().String(),
		"poll_interval": s.config.PollInterval.String(),
		"handshake":     s.config.Store.Dir(),
	})

	err := s.run(ctx, st)
	if err != nil && st.started {
		s.stopAfterFailure(ctx, err)
	}

	result := &RunResult{
		RunMeta:    s.config.RunMeta,
		Outcome:    DetermineOutcome(err),
		Duration:   time.Since(start),
		DrawCalls:  st.drawCalls,
		Published:  st.published,
		Skipped:    st.skipped,
		Terminal:   st.terminal,
		Cumulative: st.cumulative,
	}
	s.logger.Info("run finished", map[string]any{
		"outcome":   result.Outcome.Status,
		"published": result.Published,
		"skipped":   result.Skipped,
		"duration":  result.Duration.String(),
	})
	return result, err
}

func (s *Scheduler) run(ctx context.Context, st *runState) error {
	if err := s.init(ctx, st); err != nil {
		return err
	}
	for {
		if err := s.preAction(ctx, st); err != nil {
			return err
		}
		in, err := s.requestInput(ctx, st)
		if err != nil {
			return err
		}
		inc, err := s.generate(st, in)
		if err != nil {
			return err
		}

		switch v := inc.(type) {
		case types.Terminal:
			st.terminal = true
			return s.terminate(ctx, st)
		case types.Skip:
			s.config.Collector.IncIncrementSkipped()
			st.skipped++
			st.index++
		case types.Drawing:
			if err := s.publish(ctx, st, v.Layers); err != nil {
				return err
			}
			if err := s.awaitConsumption(ctx, st); err != nil {
				return err
			}
			if err := s.awaitDelay(ctx, st); err != nil {
				return err
			}
			st.index++
		default:
			return fmt.Errorf("increment %d: unexpected %T", st.index, inc)
		}
	}
}

// init purges the handshake directory, announces the run and writes the
// first preview.
func (s *Scheduler) init(ctx context.Context, st *runState) error {
	if err := s.config.Store.Reset(); err != nil {
		return err
	}
	if err := s.config.Events.Emit(ctx, types.ArtStart()); err != nil {
		return err
	}
	st.started = true

	in, err := s.config.Inputs.Fetch(ctx)
	if err != nil {
		return err
	}
	st.lastInput = in
	return s.regeneratePreview(ctx, st)
}

func (s *Scheduler) preAction(ctx context.Context, st *runState) error {
	for _, action := range s.config.Generator.ActionsBeforeIncrement(st.index) {
		switch a := action.(type) {
		case types.Pause:
			s.config.Collector.IncPause()
			s.logger.Info("pause", map[string]any{
				"index":    st.index,
				"message":  a.Message,
				"duration": a.Duration.String(),
			})
			if err := s.config.Events.Emit(ctx, types.CountdownPause(a.Message, a.Duration)); err != nil {
				return err
			}
			if err := s.waitUntil(ctx, st, time.Now().Add(a.Duration)); err != nil {
				return err
			}
		case types.ChatMessage:
			s.config.Collector.IncChatMessage()
			if err := s.config.Events.Emit(ctx, types.ChatMessageEvent(a.Text)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("action before increment %d: unexpected %T", st.index, action)
		}
	}
	return nil
}

func (s *Scheduler) requestInput(ctx context.Context, st *runState) (types.Input, error) {
	if err := s.refresh(ctx, st); err != nil {
		return types.Input{}, err
	}
	total := s.config.Generator.EstimateTotalIncrements()
	if err := s.config.Events.Emit(ctx, types.IncrPrepare(st.index, total)); err != nil {
		return types.Input{}, err
	}
	return st.lastInput, nil
}

func (s *Scheduler) generate(st *runState, in types.Input) (types.Increment, error) {
	st.generateStart = time.Now()
	st.drawCalls++
	inc, err := s.config.Generator.DrawIncrement(in, st.index)
	if err != nil {
		return nil, fmt.Errorf("draw increment %d: %w", st.index, err)
	}
	st.previewFrom = st.index + 1
	s.logger.Debug("increment generated", map[string]any{
		"index": st.index,
		"kind":  types.IncrementKind(inc),
	})
	return inc, nil
}

func (s *Scheduler) publish(ctx context.Context, st *runState, layers []types.Layer) error {
	carried, err := s.config.Store.TakeFinishedMetadata()
	if err != nil {
		return err
	}
	doc, err := s.config.Store.PublishCurrent(s.width, s.height, layers, carried)
	if err != nil {
		return err
	}
	if err := s.config.Store.AppendCumulative(st.cumulative, layers); err != nil {
		return err
	}
	st.published++
	s.config.Collector.IncIncrementPublished()
	s.logger.Info("increment published", map[string]any{
		"index":   st.index,
		"layers":  len(layers),
		"carried": carried != nil,
	})

	if err := s.config.Events.Emit(ctx, types.IncrStart(st.index)); err != nil {
		return err
	}
	s.archiveIncrement(ctx, st.index, doc)
	return nil
}

func (s *Scheduler) awaitConsumption(ctx context.Context, st *runState) error {
	start := time.Now()
	err := s.config.Store.AwaitConsumption(ctx, s.config.PollInterval, func(ctx context.Context) error {
		return s.refresh(ctx, st)
	})
	s.config.Collector.AddConsumptionWait(time.Since(start))
	if err != nil {
		return err
	}
	return s.config.Events.Emit(ctx, types.IncrEnd(st.index))
}

func (s *Scheduler) awaitDelay(ctx context.Context, st *runState) error {
	return s.waitUntil(ctx, st, st.generateStart.Add(s.config.Generator.DelayBetweenIncrements()))
}

// terminate sends the pen home when the plotter left metadata behind,
// then announces the end of the run.
func (s *Scheduler) terminate(ctx context.Context, st *runState) error {
	metadata, err := s.config.Store.TakeFinishedMetadata()
	if err != nil {
		return err
	}
	if metadata != nil {
		if err := s.config.Store.WriteHomeArtifact(s.width, s.height, metadata); err != nil {
			return err
		}
		s.logger.Info("home artifact written", nil)
	}
	s.archiveCumulative(ctx, st.cumulative)
	return s.config.Events.Emit(ctx, types.ArtStop())
}

// waitUntil polls inputs every interval until deadline.
func (s *Scheduler) waitUntil(ctx context.Context, st *runState, deadline time.Time) error {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(remaining, s.config.PollInterval)):
		}
		if err := s.refresh(ctx, st); err != nil {
			return err
		}
	}
}

// refresh polls inputs and regenerates the preview when they changed.
func (s *Scheduler) refresh(ctx context.Context, st *runState) error {
	in, err := s.config.Inputs.Fetch(ctx)
	if err != nil {
		return err
	}
	if !s.config.Inputs.Changed(st.lastInput, in) {
		return nil
	}
	st.lastInput = in
	s.config.Collector.IncInputChange()
	return s.regeneratePreview(ctx, st)
}

// regeneratePreview rewrites predictive.svg. The preview runs on a clone,
// so a generator error there is logged and counted but never stops the
// run. Filesystem errors from the store still do.
func (s *Scheduler) regeneratePreview(ctx context.Context, st *runState) error {
	doc, err := s.config.Preview.Generate(s.config.Generator, st.previewFrom, st.lastInput, s.limit)
	if err != nil {
		s.config.Collector.IncPreviewFailure()
		s.logger.Warn("predictive preview failed", map[string]any{
			"from":  st.previewFrom,
			"error": err.Error(),
		})
		return nil
	}
	if err := s.config.Store.WritePredictive(doc); err != nil {
		return err
	}
	s.config.Collector.IncPredictiveWrite()
	return s.config.Events.Emit(ctx, types.PredictiveWritten())
}

// stopAfterFailure tells viewers the run ended. The run context may
// already be canceled, so a detached context with a short timeout is used.
func (s *Scheduler) stopAfterFailure(ctx context.Context, cause error) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	if err := s.config.Events.Emit(stopCtx, types.ArtStop()); err != nil {
		s.logger.Warn("art-stop after failure not delivered (best effort)", map[string]any{
			"cause": cause.Error(),
			"error": err.Error(),
		})
	}
}

func (s *Scheduler) archiveIncrement(ctx context.Context, index int, doc *svg.Document) {
	if s.config.Archive == nil {
		return
	}
	data, err := doc.Bytes()
	if err == nil {
		err = s.config.Archive.PutIncrement(ctx, index, data)
	}
	s.recordArchive(err, map[string]any{"index": index})
}

func (s *Scheduler) archiveCumulative(ctx context.Context, doc *svg.Document) {
	if s.config.Archive == nil {
		return
	}
	data, err := doc.Bytes()
	if err == nil {
		err = s.config.Archive.PutCumulative(ctx, data)
	}
	s.recordArchive(err, map[string]any{"artifact": handshake.CumulativeFile})
}

func (s *Scheduler) recordArchive(err error, fields map[string]any) {
	if err == nil {
		s.config.Collector.IncArchiveWrite()
		return
	}
	s.config.Collector.IncArchiveFailure()
	fields["error"] = err.Error()
	s.logger.Warn("archive write failed", fields)
}
