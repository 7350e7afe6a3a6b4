package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/control"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/journal"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/svg"
	"github.com/pithecene-io/livedraw/types"
)

// SimulateConfig configures an offline simulation.
type SimulateConfig struct {
	// Generator must implement art.Simulator.
	Generator art.Generator
	Store     *handshake.Store
	RunMeta   *types.RunMeta
	// Journal, when set, records the header and every draw call.
	Journal   *journal.Writer
	Logger    *log.Logger
	Collector *metrics.Collector
	Archive   Archiver
}

// Simulate generates the whole artwork with simulated inputs and writes
// the result to all.svg. It makes no network calls and never waits.
func Simulate(ctx context.Context, cfg SimulateConfig) (*RunResult, error) {
	start := time.Now()
	if cfg.Generator == nil || cfg.Store == nil {
		return nil, errors.New("simulation requires a generator and a handshake store")
	}
	if err := cfg.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	sim, ok := cfg.Generator.(art.Simulator)
	if !ok {
		return nil, fmt.Errorf("artwork %q does not support simulation", cfg.RunMeta.Art)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLogger(cfg.RunMeta)
	}

	width, height := cfg.Generator.Dimension()
	doc := svg.New(width, height)
	result := &RunResult{RunMeta: cfg.RunMeta, Cumulative: doc}

	err := simulate(ctx, cfg, sim, doc, result)
	if err == nil {
		err = cfg.Store.WriteCumulative(doc)
	}
	if err == nil && cfg.Archive != nil {
		data, encErr := doc.Bytes()
		if encErr == nil {
			encErr = cfg.Archive.PutCumulative(ctx, data)
		}
		if encErr != nil {
			cfg.Collector.IncArchiveFailure()
			logger.Warn("archive write failed", map[string]any{"error": encErr.Error()})
		} else {
			cfg.Collector.IncArchiveWrite()
		}
	}

	result.Outcome = DetermineOutcome(err)
	result.Duration = time.Since(start)
	logger.Info("simulation finished", map[string]any{
		"outcome":    result.Outcome.Status,
		"draw_calls": result.DrawCalls,
		"published":  result.Published,
		"output":     cfg.Store.Path(handshake.CumulativeFile),
	})
	return result, err
}

func simulate(ctx context.Context, cfg SimulateConfig, sim art.Simulator, doc *svg.Document, result *RunResult) error {
	if err := cfg.Store.EnsureDir(); err != nil {
		return err
	}
	if cfg.Journal != nil {
		width, height := cfg.Generator.Dimension()
		err := cfg.Journal.WriteHeader(journal.Header{
			Art:         cfg.RunMeta.Art,
			RunID:       cfg.RunMeta.RunID,
			Width:       width,
			Height:      height,
			DelayMillis: cfg.Generator.DelayBetweenIncrements().Milliseconds(),
			Total:       cfg.Generator.EstimateTotalIncrements(),
		})
		if err != nil {
			return err
		}
	}
	validate := art.Validator(cfg.Generator)

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		in := sim.SimulateInput(i)
		if validate != nil {
			if err := validate(in); err != nil {
				return fmt.Errorf("%w: simulated input %d: %w", control.ErrInputSchema, i, err)
			}
		}

		result.DrawCalls++
		inc, err := cfg.Generator.DrawIncrement(in, i)
		if err != nil {
			return fmt.Errorf("draw increment %d: %w", i, err)
		}
		if cfg.Journal != nil {
			if err := cfg.Journal.Write(i, inc); err != nil {
				return err
			}
		}

		switch v := inc.(type) {
		case types.Terminal:
			result.Terminal = true
			return nil
		case types.Skip:
			result.Skipped++
			cfg.Collector.IncIncrementSkipped()
		case types.Drawing:
			doc.Append(v.Layers...)
			result.Published++
			cfg.Collector.IncIncrementPublished()
		default:
			return fmt.Errorf("increment %d: unexpected %T", i, inc)
		}
	}
}
