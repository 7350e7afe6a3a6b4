package replay

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/journal"
	"github.com/pithecene-io/livedraw/types"
)

func recordJournal(t *testing.T, incs ...types.Increment) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := journal.NewWriter(&buf)
	if err := w.WriteHeader(journal.Header{Art: "lines", Width: 50, Height: 60, DelayMillis: 1500, Total: 4}); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i, inc := range incs {
		if err := w.Write(i, inc); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return buf.Bytes()
}

var drawing = types.Drawing{Layers: []types.Layer{
	types.NewLayer("red", 0.5, types.Path{{X: 1, Y: 1}, {X: 2, Y: 2}}),
}}

func TestReplay_PlaysBackJournal(t *testing.T) {
	a, err := Load(bytes.NewReader(recordJournal(t, drawing, types.Skip{}, drawing, types.Terminal{})))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if w, h := a.Dimension(); w != 50 || h != 60 {
		t.Errorf("dimension = %vx%v", w, h)
	}
	if a.DelayBetweenIncrements() != 1500*time.Millisecond {
		t.Errorf("delay = %v", a.DelayBetweenIncrements())
	}
	if a.EstimateTotalIncrements() != 4 || a.Source() != "lines" {
		t.Errorf("total=%d source=%s", a.EstimateTotalIncrements(), a.Source())
	}

	want := []string{"drawing", "skip", "drawing", "terminal", "terminal"}
	for i, kind := range want {
		inc, err := a.DrawIncrement(types.Input{}, i)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if got := types.IncrementKind(inc); got != kind {
			t.Errorf("index %d kind = %s, want %s", i, got, kind)
		}
	}
}

func TestReplay_TruncatedJournalEndsInTerminal(t *testing.T) {
	a, err := Load(bytes.NewReader(recordJournal(t, drawing)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	inc, err := a.DrawIncrement(types.Input{}, 1)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if _, ok := inc.(types.Terminal); !ok {
		t.Errorf("expected terminal, got %T", inc)
	}
}

func TestConstructor(t *testing.T) {
	if _, err := Constructor(art.Options{}); err == nil {
		t.Error("expected error without source")
	}

	path := filepath.Join(t.TempDir(), "run.journal")
	if err := os.WriteFile(path, recordJournal(t, drawing, types.Terminal{}), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	gen, err := Constructor(art.Options{Source: path})
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	if gen.Clone() == gen {
		t.Error("clone must be a distinct value")
	}
}

func TestLoad_Corrupt(t *testing.T) {
	data := recordJournal(t, drawing)
	if _, err := Load(bytes.NewReader(data[:len(data)-3])); err == nil {
		t.Error("expected error for truncated journal")
	}
}
