// Package adapter defines the boundary for mirroring plot-update events to
// downstream systems (overlays, chat bots, dashboards).
//
// The control service is always the primary receiver of plot updates;
// adapters receive a best-effort copy. The scheduler owns adapter
// lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/pithecene-io/livedraw/types"
)

// PlotUpdate is the payload published for every plot event.
type PlotUpdate struct {
	RunID     string          `json:"run_id"`
	Art       string          `json:"art"`
	Timestamp string          `json:"timestamp"` // RFC 3339
	Event     types.PlotEvent `json:"event"`
}

// NewPlotUpdate stamps an event with run identity and the current time.
func NewPlotUpdate(meta *types.RunMeta, event types.PlotEvent, now time.Time) *PlotUpdate {
	return &PlotUpdate{
		RunID:     meta.RunID,
		Art:       meta.Art,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Event:     event,
	}
}

// Adapter publishes plot updates to a downstream system.
type Adapter interface {
	// Publish sends a plot update to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, update *PlotUpdate) error

	// Close releases adapter resources.
	Close() error
}
