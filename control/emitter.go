package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pithecene-io/livedraw/adapter"
	"github.com/pithecene-io/livedraw/client"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/types"
)

// EmitterConfig configures an Emitter.
type EmitterConfig struct {
	// Client sends events to the control service (required).
	Client Requester
	// RunMeta stamps mirrored events (required when Adapters is non-empty).
	RunMeta *types.RunMeta
	// Adapters receive a best-effort copy of every event.
	Adapters  []adapter.Adapter
	Logger    *log.Logger
	Collector *metrics.Collector
}

// Emitter pushes plot-update events.
type Emitter struct {
	client    Requester
	meta      *types.RunMeta
	adapters  []adapter.Adapter
	logger    *log.Logger
	collector *metrics.Collector
	now       func() time.Time
}

// NewEmitter creates an emitter.
func NewEmitter(cfg EmitterConfig) (*Emitter, error) {
	if cfg.Client == nil {
		return nil, errors.New("emitter requires a client")
	}
	if len(cfg.Adapters) > 0 && cfg.RunMeta == nil {
		return nil, errors.New("emitter with adapters requires run metadata")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Emitter{
		client:    cfg.Client,
		meta:      cfg.RunMeta,
		adapters:  cfg.Adapters,
		logger:    logger,
		collector: cfg.Collector,
		now:       time.Now,
	}, nil
}

// Emit sends ev to POST /plot-update, then mirrors it to every adapter.
// The control service call is retried by the client; mirror failures are
// logged and counted but never returned.
func (e *Emitter) Emit(ctx context.Context, ev types.PlotEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	if _, err := e.client.Do(ctx, &client.Request{Method: http.MethodPost, Path: PlotUpdatePath, Body: body}); err != nil {
		return fmt.Errorf("emit %s: %w", ev.Type, err)
	}
	e.collector.IncEventEmitted()
	e.logger.Debug("plot update emitted", map[string]any{"event": string(body)})

	if len(e.adapters) == 0 {
		return nil
	}
	update := adapter.NewPlotUpdate(e.meta, ev, e.now())
	for _, a := range e.adapters {
		if err := a.Publish(ctx, update); err != nil {
			e.collector.IncMirrorFailure()
			e.logger.Warn("event mirror failed", map[string]any{
				"event": string(ev.Type),
				"error": err.Error(),
			})
		}
	}
	return nil
}

// Close closes every adapter.
func (e *Emitter) Close() error {
	var errs []error
	for _, a := range e.adapters {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
