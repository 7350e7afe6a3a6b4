package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("lines", "live", "run-001")

	c.IncInputPoll()
	c.IncInputPoll()
	c.IncInputPoll()
	c.IncInputChange()
	c.IncRequestRetry()
	c.IncRequestRetry()
	c.IncEventEmitted()
	c.IncMirrorFailure()
	c.IncIncrementPublished()
	c.IncIncrementPublished()
	c.IncIncrementSkipped()
	c.IncPredictiveWrite()
	c.IncPreviewFailure()
	c.IncPreviewFailure()
	c.IncPause()
	c.IncChatMessage()
	c.AddConsumptionWait(2 * time.Second)
	c.AddConsumptionWait(500 * time.Millisecond)
	c.IncArchiveWrite()
	c.IncArchiveFailure()

	s := c.Snapshot()

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"InputPolls", s.InputPolls, 3},
		{"InputChanges", s.InputChanges, 1},
		{"RequestRetries", s.RequestRetries, 2},
		{"EventsEmitted", s.EventsEmitted, 1},
		{"MirrorFailures", s.MirrorFailures, 1},
		{"IncrementsPublished", s.IncrementsPublished, 2},
		{"IncrementsSkipped", s.IncrementsSkipped, 1},
		{"PredictiveWrites", s.PredictiveWrites, 1},
		{"PreviewFailures", s.PreviewFailures, 2},
		{"Pauses", s.Pauses, 1},
		{"ChatMessages", s.ChatMessages, 1},
		{"ArchiveWrites", s.ArchiveWrites, 1},
		{"ArchiveFailures", s.ArchiveFailures, 1},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %d, want %d", ch.name, ch.got, ch.want)
		}
	}
	if s.ConsumptionWait != 2500*time.Millisecond {
		t.Errorf("ConsumptionWait = %v, want 2.5s", s.ConsumptionWait)
	}
}

func TestCollector_Dimensions(t *testing.T) {
	s := NewCollector("lines", "simulation", "run-42").Snapshot()
	if s.Art != "lines" || s.Mode != "simulation" || s.RunID != "run-42" {
		t.Errorf("unexpected dimensions: %+v", s)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.IncInputPoll()
	c.IncIncrementPublished()
	c.AddConsumptionWait(time.Second)
	if s := c.Snapshot(); s.InputPolls != 0 {
		t.Errorf("nil collector snapshot should be zero, got %+v", s)
	}
}

func TestCollector_SnapshotIsCopy(t *testing.T) {
	c := NewCollector("lines", "live", "r")
	c.IncPause()
	snap := c.Snapshot()
	c.IncPause()
	if snap.Pauses != 1 {
		t.Errorf("snapshot mutated after collector update: %d", snap.Pauses)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("lines", "live", "r")
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncInputPoll()
		}()
	}
	wg.Wait()
	if got := c.Snapshot().InputPolls; got != 50 {
		t.Errorf("InputPolls = %d, want 50", got)
	}
}

func TestCollector_Prometheus(t *testing.T) {
	c := NewCollector("lines", "live", "run-7")
	c.IncIncrementPublished()
	c.IncIncrementPublished()
	c.IncPredictiveWrite()

	if n := testutil.CollectAndCount(c); n != len(counterDescs) {
		t.Errorf("collected %d metrics, want %d", n, len(counterDescs))
	}

	reg := NewRegistry(c)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() != "livedraw_increments_published_total" {
			continue
		}
		found = true
		m := mf.GetMetric()[0]
		if got := m.GetCounter().GetValue(); got != 2 {
			t.Errorf("increments_published_total = %v, want 2", got)
		}
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["art"] != "lines" || labels["run_id"] != "run-7" || labels["mode"] != "live" {
			t.Errorf("labels = %v", labels)
		}
	}
	if !found {
		t.Fatal("livedraw_increments_published_total not exported")
	}
}
