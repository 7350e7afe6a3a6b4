// Package metrics provides per-run counters for the increment scheduler.
//
// The Collector accumulates counters during a single run. It is a leaf
// package: callers record events, and Snapshot returns a copy for reports
// and the Prometheus exporter.
package metrics

import (
	"sync"
	"time"
)

// Snapshot is an immutable point-in-time view of all run metrics.
type Snapshot struct {
	// Control service
	InputPolls     int64 `json:"input_polls"`
	InputChanges   int64 `json:"input_changes"`
	RequestRetries int64 `json:"request_retries"`
	EventsEmitted  int64 `json:"events_emitted"`
	MirrorFailures int64 `json:"mirror_failures"`

	// Scheduler
	IncrementsPublished int64         `json:"increments_published"`
	IncrementsSkipped   int64         `json:"increments_skipped"`
	PredictiveWrites    int64         `json:"predictive_writes"`
	PreviewFailures     int64         `json:"preview_failures"`
	Pauses              int64         `json:"pauses"`
	ChatMessages        int64         `json:"chat_messages"`
	ConsumptionWait     time.Duration `json:"consumption_wait_ns"`

	// Archive
	ArchiveWrites   int64 `json:"archive_writes"`
	ArchiveFailures int64 `json:"archive_failures"`

	// Dimensions (informational, set at construction)
	Art   string `json:"art"`
	Mode  string `json:"mode"`
	RunID string `json:"run_id"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex
	s  Snapshot
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(art, mode, runID string) *Collector {
	return &Collector{s: Snapshot{Art: art, Mode: mode, RunID: runID}}
}

func (c *Collector) add(f func(s *Snapshot)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	f(&c.s)
	c.mu.Unlock()
}

// --- Control service ---

// IncInputPoll records a completed GET /state/inputs.
func (c *Collector) IncInputPoll() { c.add(func(s *Snapshot) { s.InputPolls++ }) }

// IncInputChange records a poll whose document differed from the last one.
func (c *Collector) IncInputChange() { c.add(func(s *Snapshot) { s.InputChanges++ }) }

// IncRequestRetry records a failed control service attempt that will be retried.
func (c *Collector) IncRequestRetry() { c.add(func(s *Snapshot) { s.RequestRetries++ }) }

// IncEventEmitted records a delivered plot-update.
func (c *Collector) IncEventEmitted() { c.add(func(s *Snapshot) { s.EventsEmitted++ }) }

// IncMirrorFailure records an event mirror adapter failure.
func (c *Collector) IncMirrorFailure() { c.add(func(s *Snapshot) { s.MirrorFailures++ }) }

// --- Scheduler ---

// IncIncrementPublished records an increment written to the current slot.
func (c *Collector) IncIncrementPublished() { c.add(func(s *Snapshot) { s.IncrementsPublished++ }) }

// IncIncrementSkipped records a Skip result.
func (c *Collector) IncIncrementSkipped() { c.add(func(s *Snapshot) { s.IncrementsSkipped++ }) }

// IncPredictiveWrite records a predictive.svg write.
func (c *Collector) IncPredictiveWrite() { c.add(func(s *Snapshot) { s.PredictiveWrites++ }) }

// IncPreviewFailure records a predictive preview the generator clone failed to draw.
func (c *Collector) IncPreviewFailure() { c.add(func(s *Snapshot) { s.PreviewFailures++ }) }

// IncPause records a Pause action.
func (c *Collector) IncPause() { c.add(func(s *Snapshot) { s.Pauses++ }) }

// IncChatMessage records a ChatMessage action.
func (c *Collector) IncChatMessage() { c.add(func(s *Snapshot) { s.ChatMessages++ }) }

// AddConsumptionWait accumulates time spent waiting for the plotter.
func (c *Collector) AddConsumptionWait(d time.Duration) {
	c.add(func(s *Snapshot) { s.ConsumptionWait += d })
}

// --- Archive ---

// IncArchiveWrite records a successful archive write.
func (c *Collector) IncArchiveWrite() { c.add(func(s *Snapshot) { s.ArchiveWrites++ }) }

// IncArchiveFailure records a failed archive write.
func (c *Collector) IncArchiveFailure() { c.add(func(s *Snapshot) { s.ArchiveFailures++ }) }

// Snapshot returns a point-in-time copy of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
