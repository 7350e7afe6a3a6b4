// Package archive keeps a durable copy of every run in a lode store.
//
// Files land at Hive-partitioned paths:
//
//	runs/art=<art>/day=<YYYY-MM-DD>/run_id=<id>/increments/increment-000007.svg
//	runs/art=<art>/day=<YYYY-MM-DD>/run_id=<id>/all.svg
//	runs/art=<art>/day=<YYYY-MM-DD>/run_id=<id>/report.json
//
// A summary record per run is appended to the history dataset, which
// QueryLatestRun reads back.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/livedraw/types"
)

// HistoryDataset is the lode dataset holding one record per run.
const HistoryDataset = "livedraw_runs"

const (
	cumulativeName = "all.svg"
	reportName     = "report.json"
)

// Archive writes run artifacts to a lode store.
type Archive struct {
	factory lode.StoreFactory
	meta    *types.RunMeta
	day     string

	storeOnce sync.Once
	store     lode.Store
	storeErr  error

	history lode.Dataset
}

// NewWithFactory creates an archive over the store produced by factory.
// started fixes the day partition for the whole run.
func NewWithFactory(factory lode.StoreFactory, meta *types.RunMeta, started time.Time) (*Archive, error) {
	if factory == nil {
		return nil, errors.New("store factory is required")
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}

	history, err := NewHistoryDataset(factory)
	if err != nil {
		return nil, WrapInitError(err, HistoryDataset)
	}

	return &Archive{
		factory: factory,
		meta:    meta,
		day:     started.UTC().Format(time.DateOnly),
		history: history,
	}, nil
}

// NewFS creates an archive rooted at a local directory.
func NewFS(root string, meta *types.RunMeta, started time.Time) (*Archive, error) {
	if root == "" {
		return nil, errors.New("archive root is required")
	}
	return NewWithFactory(lode.NewFSFactory(root), meta, started)
}

// NewHistoryDataset opens the run history dataset over factory.
func NewHistoryDataset(factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(HistoryDataset),
		factory,
		lode.WithHiveLayout("art", "day", "run_id"),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// Prefix returns the run's directory within the store.
func (a *Archive) Prefix() string {
	return fmt.Sprintf("runs/art=%s/day=%s/run_id=%s", a.meta.Art, a.day, a.meta.RunID)
}

// PutIncrement stores the published document of increment index.
func (a *Archive) PutIncrement(ctx context.Context, index int, data []byte) error {
	return a.put(ctx, fmt.Sprintf("increments/increment-%06d.svg", index), data)
}

// PutCumulative stores the final cumulative document.
func (a *Archive) PutCumulative(ctx context.Context, data []byte) error {
	return a.put(ctx, cumulativeName, data)
}

// PutReport stores the encoded run report.
func (a *Archive) PutReport(ctx context.Context, data []byte) error {
	return a.put(ctx, reportName, data)
}

// RecordRun appends a summary record to the history dataset.
func (a *Archive) RecordRun(ctx context.Context, rec RunRecord) error {
	rec.RecordKind = RecordKindRun
	rec.RunID = a.meta.RunID
	rec.Art = a.meta.Art
	rec.Mode = string(a.meta.Mode)
	rec.Day = a.day
	rec.Prefix = a.Prefix()

	if _, err := a.history.Write(ctx, []any{rec.toMap()}, lode.Metadata{}); err != nil {
		return WrapWriteError(err, HistoryDataset)
	}
	return nil
}

func (a *Archive) put(ctx context.Context, name string, data []byte) error {
	store, err := a.getOrCreateStore()
	if err != nil {
		return WrapInitError(err, a.Prefix())
	}

	path := a.Prefix() + "/" + name
	if err := store.Put(ctx, path, bytes.NewReader(data)); err != nil {
		return WrapWriteError(err, path)
	}
	return nil
}

func (a *Archive) getOrCreateStore() (lode.Store, error) {
	a.storeOnce.Do(func() {
		a.store, a.storeErr = a.factory()
	})
	return a.store, a.storeErr
}
