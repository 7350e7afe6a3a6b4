package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pithecene-io/livedraw/art/replay"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/runtime"
)

func TestSimulateCommand_RecordAndReplay(t *testing.T) {
	dir := t.TempDir()
	liveDir := filepath.Join(dir, "files")
	journalPath := filepath.Join(dir, "lines.journal")
	reportPath := filepath.Join(dir, "report.json")
	archiveDir := filepath.Join(dir, "archive")

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"livedraw", "simulate",
		"--art", "lines",
		"--seed", "7",
		"--run-id", "run-sim",
		"--handshake-dir", liveDir,
		"--record", journalPath,
		"--report", reportPath,
		"--archive-path", archiveDir,
	})
	if got := exitCode(err); got != runtime.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (err %v)", got, err)
	}
	if !strings.Contains(out.String(), "outcome=completed") {
		t.Errorf("result output missing outcome:\n%s", out.String())
	}

	original, err := os.ReadFile(filepath.Join(liveDir, handshake.CumulativeFile))
	if err != nil {
		t.Fatalf("read all.svg: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report runtime.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.RunID != "run-sim" || report.Outcome != runtime.OutcomeCompleted {
		t.Errorf("report = %+v", report)
	}
	if report.Increments.Published != 10 || report.Increments.DrawCalls != 11 || !report.Increments.Terminal {
		t.Errorf("increments = %+v, want 10 published of 11 draw calls", report.Increments)
	}
	if report.Metrics.ArchiveWrites == 0 {
		t.Error("archive writes not counted")
	}

	played, err := replay.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	if played.Source() != "lines" {
		t.Errorf("journal source = %q, want lines", played.Source())
	}

	replayDir := filepath.Join(dir, "replayed")
	err = newTestApp(io.Discard).Run([]string{"livedraw", "simulate",
		"--art", "replay",
		"--source", journalPath,
		"--handshake-dir", replayDir,
		"--quiet",
	})
	if got := exitCode(err); got != runtime.ExitCodeSuccess {
		t.Fatalf("replay exit code = %d, want 0 (err %v)", got, err)
	}
	replayed, err := os.ReadFile(filepath.Join(replayDir, handshake.CumulativeFile))
	if err != nil {
		t.Fatalf("read replayed all.svg: %v", err)
	}
	if !bytes.Equal(original, replayed) {
		t.Error("replayed all.svg differs from the simulated one")
	}
}

func TestSimulateCommand_Quiet(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"livedraw", "simulate",
		"--art", "lines",
		"--handshake-dir", t.TempDir(),
		"--quiet",
	})
	if got := exitCode(err); got != runtime.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (err %v)", got, err)
	}
	if out.Len() != 0 {
		t.Errorf("--quiet printed output:\n%s", out.String())
	}
}

func TestSimulateCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	handshakeDir := filepath.Join(dir, "from-config")
	cfgPath := filepath.Join(dir, "livedraw.yaml")
	cfg := "art: lines\nartwork:\n  width: 200\n  height: 150\nhandshake:\n  dir: " + handshakeDir + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	err := newTestApp(io.Discard).Run([]string{"livedraw", "--config", cfgPath, "simulate", "--quiet"})
	if got := exitCode(err); got != runtime.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (err %v)", got, err)
	}
	data, err := os.ReadFile(filepath.Join(handshakeDir, handshake.CumulativeFile))
	if err != nil {
		t.Fatalf("config handshake dir not used: %v", err)
	}
	if !bytes.Contains(data, []byte(`width="200mm"`)) {
		t.Errorf("config width not applied:\n%s", data)
	}
}

func TestSimulateCommand_Errors(t *testing.T) {
	t.Run("missing art", func(t *testing.T) {
		err := newTestApp(io.Discard).Run([]string{"livedraw", "simulate", "--handshake-dir", t.TempDir()})
		if got := exitCode(err); got != runtime.ExitCodeConfig {
			t.Errorf("exit code = %d, want %d", got, runtime.ExitCodeConfig)
		}
	})

	t.Run("unwritable journal", func(t *testing.T) {
		err := newTestApp(io.Discard).Run([]string{"livedraw", "simulate",
			"--art", "lines",
			"--handshake-dir", t.TempDir(),
			"--record", filepath.Join(t.TempDir(), "missing", "out.journal"),
		})
		if got := exitCode(err); got != runtime.ExitCodeConfig {
			t.Errorf("exit code = %d, want %d", got, runtime.ExitCodeConfig)
		}
	})
}
