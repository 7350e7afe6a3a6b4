package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/livedraw/archive"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/runtime"
	"github.com/pithecene-io/livedraw/types"
)

func runStatus(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newTestApp(&out).Run(append([]string{"livedraw", "status"}, args...))
	return out.String(), err
}

func TestStatusCommand_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	out, err := runStatus(t, "--handshake-dir", dir, "--format", "json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var st handshake.Status
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if st.Exists || st.Pending || st.Dir != dir {
		t.Errorf("status = %+v", st)
	}
}

func TestStatusCommand_Formats(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, handshake.CumulativeFile), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("table", func(t *testing.T) {
		out, err := runStatus(t, "--handshake-dir", dir, "--format", "table")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if !strings.Contains(out, "ARTIFACT") {
			t.Errorf("missing header:\n%s", out)
		}
		var found bool
		for line := range strings.SplitSeq(out, "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 3 && fields[0] == handshake.CumulativeFile {
				found = true
				if fields[1] != "true" || fields[2] != "6" {
					t.Errorf("all.svg row = %q", line)
				}
			}
		}
		if !found {
			t.Errorf("no all.svg row:\n%s", out)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := runStatus(t, "--handshake-dir", dir, "--format", "yaml")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if !strings.Contains(out, "exists: true") || !strings.Contains(out, "pending: false") {
			t.Errorf("yaml output not flattened:\n%s", out)
		}
	})
}

func TestStatusView_TableRows(t *testing.T) {
	mod := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	v := statusView{Status: handshake.Status{
		Exists:  true,
		Pending: true,
		Artifacts: []handshake.ArtifactStatus{
			{
				Name:    handshake.CurrentFile,
				Present: true,
				Size:    120,
				ModTime: &mod,
				Plot:    &types.PenTravel{Attributes: []types.Attribute{{Name: "layer", Value: "3"}}},
			},
			{Name: handshake.PredictiveFile},
		},
	}}

	rows := v.TableRows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := []string{handshake.CurrentFile, "true", "120", "2026-05-04T12:00:00Z", "layer=3"}
	for i, cell := range want {
		if rows[0][i] != cell {
			t.Errorf("row[0][%d] = %q, want %q", i, rows[0][i], cell)
		}
	}
	if rows[1][1] != "false" || rows[1][2] != "" {
		t.Errorf("absent row = %q", rows[1])
	}
	if len(v.TableHeaders()) != len(rows[0]) {
		t.Error("headers and rows differ in width")
	}
}

func TestStatusCommand_LastRun(t *testing.T) {
	archiveDir := t.TempDir()
	err := newTestApp(io.Discard).Run([]string{"livedraw", "simulate",
		"--art", "lines",
		"--run-id", "run-archived",
		"--handshake-dir", t.TempDir(),
		"--archive-path", archiveDir,
		"--quiet",
	})
	if got := exitCode(err); got != runtime.ExitCodeSuccess {
		t.Fatalf("simulate exit code = %d (err %v)", got, err)
	}

	out, err := runStatus(t, "--last-run", "--archive-path", archiveDir, "--format", "json")
	if err != nil {
		t.Fatalf("status --last-run: %v", err)
	}
	var rec archive.RunRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode record: %v\n%s", err, out)
	}
	if rec.RunID != "run-archived" || rec.Art != "lines" || rec.Outcome != string(runtime.OutcomeCompleted) {
		t.Errorf("record = %+v", rec)
	}
	if rec.Published != 10 || rec.ExitCode != 0 {
		t.Errorf("record counts = %+v", rec)
	}
	if !strings.HasPrefix(rec.Prefix, "runs/art=lines/day=") {
		t.Errorf("prefix = %q", rec.Prefix)
	}

	_, err = runStatus(t, "--last-run", "--archive-path", archiveDir, "--art", "replay")
	if got := exitCode(err); got != runtime.ExitCodeFailure {
		t.Errorf("filtered miss exit code = %d, want %d (err %v)", got, runtime.ExitCodeFailure, err)
	}
}

func TestStatusCommand_LastRunRequiresArchive(t *testing.T) {
	_, err := runStatus(t, "--last-run")
	if got := exitCode(err); got != runtime.ExitCodeConfig {
		t.Errorf("exit code = %d, want %d (err %v)", got, runtime.ExitCodeConfig, err)
	}
}

func TestStatusCommand_TUIWithoutTerminal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, handshake.CurrentFile), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runStatus(t, "--handshake-dir", dir, "--tui")
	if err != nil {
		t.Fatalf("status --tui: %v", err)
	}
	if !strings.Contains(out, handshake.CurrentFile) {
		t.Errorf("static view missing %s:\n%s", handshake.CurrentFile, out)
	}
}
