package handshake

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pithecene-io/livedraw/svg"
	"github.com/pithecene-io/livedraw/types"
)

// ArtifactStatus describes one artifact file.
type ArtifactStatus struct {
	Name    string           `json:"name" yaml:"name"`
	Present bool             `json:"present" yaml:"present"`
	Size    int64            `json:"size,omitempty" yaml:"size,omitempty"`
	ModTime *time.Time       `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	Plot    *types.PenTravel `json:"plotdata,omitempty" yaml:"plotdata,omitempty"`
}

// Status is a read-only view of a handshake directory.
type Status struct {
	Dir       string           `json:"dir" yaml:"dir"`
	Exists    bool             `json:"exists" yaml:"exists"`
	Pending   bool             `json:"pending" yaml:"pending"`
	Artifacts []ArtifactStatus `json:"artifacts" yaml:"artifacts"`
}

// Inspect reports which artifacts exist in dir. Plotdata is read from the
// current and finished increments when present. Inspect never modifies
// the directory.
func Inspect(dir string) (*Status, error) {
	st := &Status{Dir: dir}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("%w: stat %s: %w", ErrHandshake, dir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrHandshake, dir)
	}
	st.Exists = true

	for _, name := range []string{CurrentFile, FinishedFile, PredictiveFile, CumulativeFile} {
		a, err := inspectArtifact(filepath.Join(dir, name), name)
		if err != nil {
			return nil, err
		}
		st.Artifacts = append(st.Artifacts, a)
		if name == CurrentFile && a.Present {
			st.Pending = true
		}
	}
	return st, nil
}

func inspectArtifact(path, name string) (ArtifactStatus, error) {
	a := ArtifactStatus{Name: name}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return a, nil
	}
	if err != nil {
		return a, fmt.Errorf("%w: stat %s: %w", ErrHandshake, name, err)
	}
	mod := info.ModTime()
	a.Present = true
	a.Size = info.Size()
	a.ModTime = &mod

	if name != CurrentFile && name != FinishedFile {
		return a, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// consumed between stat and read
		a.Present = false
		return a, nil
	}
	if err != nil {
		return a, fmt.Errorf("%w: read %s: %w", ErrHandshake, name, err)
	}
	// a malformed document is reported without plotdata
	a.Plot, _ = svg.ReadPlotData(bytes.NewReader(data))
	return a, nil
}
