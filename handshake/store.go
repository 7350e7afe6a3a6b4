// Package handshake owns the directory shared with the plotter.
//
// The scheduler and the plotter exchange four files:
//
//	increment.svg           current increment, deleted by the plotter once taken
//	increment.finished.svg  written by the plotter after plotting, carries plotdata
//	predictive.svg          preview of the increments still to come
//	all.svg                 everything published so far
//
// The directory is single-writer by convention and is not locked. Every
// write goes through a temp file and a rename so the plotter never sees a
// partial document.
package handshake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pithecene-io/livedraw/iox"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/svg"
	"github.com/pithecene-io/livedraw/types"
)

// Artifact file names.
const (
	CurrentFile    = "increment.svg"
	FinishedFile   = "increment.finished.svg"
	PredictiveFile = "predictive.svg"
	CumulativeFile = "all.svg"
)

// ErrHandshake wraps every filesystem failure in the handshake directory.
var ErrHandshake = errors.New("handshake")

const filePerm = 0o644

// Store reads and writes the handshake directory.
type Store struct {
	dir    string
	logger *log.Logger
}

// New creates a store rooted at dir. The directory is created by Reset.
func New(dir string, logger *log.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("handshake store requires a directory")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the handshake directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute path of an artifact file.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// EnsureDir creates the directory if needed without touching artifacts.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrHandshake, s.dir, err)
	}
	return nil
}

// Reset removes every artifact left by a previous run and ensures the
// directory exists.
func (s *Store) Reset() error {
	if err := s.EnsureDir(); err != nil {
		return err
	}
	for _, name := range []string{CurrentFile, FinishedFile, PredictiveFile, CumulativeFile} {
		if err := iox.RemoveIfExists(s.Path(name)); err != nil {
			return fmt.Errorf("%w: remove %s: %w", ErrHandshake, name, err)
		}
	}
	s.logger.Debug("handshake directory reset", map[string]any{"dir": s.dir})
	return nil
}

// PublishCurrent writes the increment document with a trailing pause
// layer. When carried is non-nil its plotdata is written with layer and
// pause fields reset. The written document is returned.
func (s *Store) PublishCurrent(width, height float64, layers []types.Layer, carried *types.PenTravel) (*svg.Document, error) {
	doc := svg.New(width, height)
	doc.Append(layers...)
	doc.PauseLayer = true
	if carried != nil {
		doc.PlotData = carried.ResetForNewArtifact()
	}
	if err := s.write(CurrentFile, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AppendCumulative adds layers to doc and rewrites all.svg.
func (s *Store) AppendCumulative(doc *svg.Document, layers []types.Layer) error {
	doc.Append(layers...)
	return s.write(CumulativeFile, doc)
}

// WriteCumulative overwrites all.svg with doc.
func (s *Store) WriteCumulative(doc *svg.Document) error {
	return s.write(CumulativeFile, doc)
}

// WritePredictive overwrites predictive.svg with doc.
func (s *Store) WritePredictive(doc *svg.Document) error {
	return s.write(PredictiveFile, doc)
}

// WriteHomeArtifact writes an increment holding only a reset plotdata
// element so the plotter returns its pen home.
func (s *Store) WriteHomeArtifact(width, height float64, metadata *types.PenTravel) error {
	doc := svg.New(width, height)
	doc.PlotData = metadata.ResetForNewArtifact()
	return s.write(CurrentFile, doc)
}

// AwaitConsumption blocks until increment.svg no longer exists. onTick
// runs after every interval the file is still present; its error aborts
// the wait.
func (s *Store) AwaitConsumption(ctx context.Context, interval time.Duration, onTick func(context.Context) error) error {
	path := s.Path(CurrentFile)
	for {
		exists, err := iox.Exists(path)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %w", ErrHandshake, CurrentFile, err)
		}
		if !exists {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		if onTick != nil {
			if err := onTick(ctx); err != nil {
				return err
			}
		}
	}
}

// TakeFinishedMetadata returns the plotdata of increment.finished.svg and
// deletes the file. It returns nil when the file is absent or carries no
// plotdata. An unparsable file is logged and discarded.
func (s *Store) TakeFinishedMetadata() (*types.PenTravel, error) {
	path := s.Path(FinishedFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrHandshake, FinishedFile, err)
	}

	metadata, parseErr := svg.ReadPlotData(bytes.NewReader(data))
	if parseErr != nil {
		s.logger.Warn("discarding unreadable finished increment", map[string]any{
			"path":  path,
			"error": parseErr.Error(),
		})
		metadata = nil
	}

	if err := iox.RemoveIfExists(path); err != nil {
		return nil, fmt.Errorf("%w: remove %s: %w", ErrHandshake, FinishedFile, err)
	}
	return metadata, nil
}

func (s *Store) write(name string, doc *svg.Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("%w: render %s: %w", ErrHandshake, name, err)
	}
	if err := iox.WriteFileAtomic(s.Path(name), data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrHandshake, name, err)
	}
	return nil
}
