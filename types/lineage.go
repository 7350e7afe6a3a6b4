// Package types defines the core domain types shared by the livedraw
// scheduler, the handshake store and the artworks.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// Mode is the execution mode of a run.
type Mode string

const (
	// ModeLive drives the plotter through the handshake directory.
	ModeLive Mode = "live"
	// ModeSimulation generates offline with synthetic input.
	ModeSimulation Mode = "simulation"
)

// RunMeta identifies a single artwork run.
type RunMeta struct {
	// RunID is unique per process invocation.
	RunID string
	// Art is the registered artwork name.
	Art string
	// Mode is live or simulation.
	Mode Mode
}

// Validate checks that the run identity is complete.
func (r *RunMeta) Validate() error {
	if r == nil {
		return errors.New("run metadata is required")
	}
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}
	if r.Art == "" {
		return errors.New("art must be non-empty")
	}
	switch r.Mode {
	case ModeLive, ModeSimulation:
		return nil
	default:
		return fmt.Errorf("unknown mode %q", r.Mode)
	}
}
