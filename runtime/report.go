package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/types"
)

// RunReport is the structured JSON report written by --report and stored
// in the run archive.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Art        string        `json:"art"`
	Mode       types.Mode    `json:"mode"`
	Outcome    OutcomeStatus `json:"outcome"`
	Message    string        `json:"message"`
	ExitCode   int           `json:"exit_code"`
	DurationMs int64         `json:"duration_ms"`

	Increments *ReportIncrements `json:"increments"`
	Metrics    *metrics.Snapshot `json:"metrics"`
}

// ReportIncrements summarizes the draw calls of a run.
type ReportIncrements struct {
	DrawCalls int  `json:"draw_calls"`
	Published int  `json:"published"`
	Skipped   int  `json:"skipped"`
	Terminal  bool `json:"terminal"`
}

// BuildRunReport composes a report from a result and a metrics snapshot.
func BuildRunReport(result *RunResult, snap metrics.Snapshot) *RunReport {
	return &RunReport{
		RunID:      result.RunMeta.RunID,
		Art:        result.RunMeta.Art,
		Mode:       result.RunMeta.Mode,
		Outcome:    result.Outcome.Status,
		Message:    result.Outcome.Message,
		ExitCode:   result.Outcome.ExitCode(),
		DurationMs: result.Duration.Milliseconds(),
		Increments: &ReportIncrements{
			DrawCalls: result.DrawCalls,
			Published: result.Published,
			Skipped:   result.Skipped,
			Terminal:  result.Terminal,
		},
		Metrics: &snap,
	}
}

// Encode returns the indented JSON form of the report.
func (r *RunReport) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteRunReport writes the report as JSON to path. If path is "-",
// writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}
	data, err := report.Encode()
	if err != nil {
		return err
	}

	if path == "-" {
		if _, err := os.Stderr.Write(data); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
