package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "livedraw"

var (
	counterDescs = []struct {
		desc  *prometheus.Desc
		value func(Snapshot) float64
	}{
		{newDesc("input_polls_total", "Completed GET /state/inputs requests."), func(s Snapshot) float64 { return float64(s.InputPolls) }},
		{newDesc("input_changes_total", "Polls whose input differed from the previous one."), func(s Snapshot) float64 { return float64(s.InputChanges) }},
		{newDesc("request_retries_total", "Failed control service attempts that were retried."), func(s Snapshot) float64 { return float64(s.RequestRetries) }},
		{newDesc("events_emitted_total", "Plot-update events delivered to the control service."), func(s Snapshot) float64 { return float64(s.EventsEmitted) }},
		{newDesc("mirror_failures_total", "Event mirror adapter failures."), func(s Snapshot) float64 { return float64(s.MirrorFailures) }},
		{newDesc("increments_published_total", "Increments written to the handshake directory."), func(s Snapshot) float64 { return float64(s.IncrementsPublished) }},
		{newDesc("increments_skipped_total", "Increments the artwork skipped."), func(s Snapshot) float64 { return float64(s.IncrementsSkipped) }},
		{newDesc("predictive_writes_total", "Predictive previews written."), func(s Snapshot) float64 { return float64(s.PredictiveWrites) }},
		{newDesc("preview_failures_total", "Predictive previews abandoned after a generator error."), func(s Snapshot) float64 { return float64(s.PreviewFailures) }},
		{newDesc("pauses_total", "Pause actions executed."), func(s Snapshot) float64 { return float64(s.Pauses) }},
		{newDesc("chat_messages_total", "Chat message actions forwarded."), func(s Snapshot) float64 { return float64(s.ChatMessages) }},
		{newDesc("consumption_wait_seconds_total", "Time spent waiting for the plotter to consume increments."), func(s Snapshot) float64 { return s.ConsumptionWait.Seconds() }},
		{newDesc("archive_writes_total", "Successful archive writes."), func(s Snapshot) float64 { return float64(s.ArchiveWrites) }},
		{newDesc("archive_failures_total", "Failed archive writes."), func(s Snapshot) float64 { return float64(s.ArchiveFailures) }},
	}
)

func newDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", name),
		help,
		nil,
		prometheus.Labels{},
	)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range counterDescs {
		ch <- d.desc
	}
}

// Collect implements prometheus.Collector. Values come from a single
// Snapshot so a scrape is internally consistent.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.Snapshot()
	for _, d := range counterDescs {
		ch <- prometheus.MustNewConstMetric(d.desc, prometheus.CounterValue, d.value(snap))
	}
}

// NewRegistry returns a registry exposing the collector with the run
// dimensions as constant labels.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	snap := c.Snapshot()
	labels := prometheus.Labels{"art": snap.Art, "mode": snap.Mode, "run_id": snap.RunID}
	prometheus.WrapRegistererWith(labels, reg).MustRegister(c)
	return reg
}

var _ prometheus.Collector = (*Collector)(nil)
