package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/justapithecus/lode/lode"
)

// RecordKindRun discriminates run summary records.
const RecordKindRun = "run"

// ErrNoRunsFound is returned when the history holds no matching record.
var ErrNoRunsFound = errors.New("no run records found")

// RunRecord is the storage format of a run summary.
type RunRecord struct {
	RecordKind string `json:"record_kind"`

	RunID      string `json:"run_id"`
	Mode       string `json:"mode"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	DrawCalls  int    `json:"draw_calls"`
	Published  int    `json:"published"`
	Skipped    int    `json:"skipped"`
	Prefix     string `json:"prefix"`

	// Partition keys
	Art string `json:"art"`
	Day string `json:"day"`
}

// toMap flattens the record for the JSONL codec; the Hive layout reads
// partition keys from map fields.
func (r RunRecord) toMap() map[string]any {
	m := map[string]any{
		"record_kind": r.RecordKind,
		"run_id":      r.RunID,
		"mode":        r.Mode,
		"outcome":     r.Outcome,
		"exit_code":   r.ExitCode,
		"duration_ms": r.DurationMs,
		"draw_calls":  r.DrawCalls,
		"published":   r.Published,
		"skipped":     r.Skipped,
		"prefix":      r.Prefix,
		"art":         r.Art,
		"day":         r.Day,
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	return m
}

// QueryLatestRun returns the most recent run record, optionally filtered
// by art and run id.
func QueryLatestRun(ctx context.Context, ds lode.Dataset, art, runID string) (*RunRecord, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, HistoryDataset+"/snapshots")
	}

	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotMatches(snap, "art", art) || !snapshotMatches(snap, "run_id", runID) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", HistoryDataset, snap.ID))
		}

		for _, item := range data {
			rec, ok := decodeRunRecord(item)
			if !ok {
				continue
			}
			if art != "" && rec.Art != art {
				continue
			}
			if runID != "" && rec.RunID != runID {
				continue
			}
			return rec, nil
		}
	}

	return nil, ErrNoRunsFound
}

func decodeRunRecord(item any) (*RunRecord, bool) {
	raw, ok := item.(map[string]any)
	if !ok || raw["record_kind"] != RecordKindRun {
		return nil, false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// snapshotMatches is a coarse pre-filter on manifest paths. Record fields
// stay authoritative.
func snapshotMatches(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	if snap.Manifest == nil {
		return false
	}
	segment := key + "=" + value
	for _, f := range snap.Manifest.Files {
		for part := range strings.SplitSeq(f.Path, "/") {
			if part == segment {
				return true
			}
		}
	}
	return false
}
