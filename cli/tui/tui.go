package tui

import (
	"fmt"
	"time"

	"github.com/pithecene-io/livedraw/archive"
	"github.com/pithecene-io/livedraw/handshake"
)

// View types that support TUI mode.
const (
	ViewStatus  = "status"
	ViewLastRun = "status_last_run"
)

// DefaultRefreshInterval is used by live views when no interval is given.
const DefaultRefreshInterval = 500 * time.Millisecond

// StatusFeed supplies the live status view.
type StatusFeed struct {
	Load     func() (*handshake.Status, error)
	Interval time.Duration
}

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	switch viewType {
	case ViewStatus:
		feed, ok := data.(StatusFeed)
		if !ok || feed.Load == nil {
			return fmt.Errorf("invalid data type for %s: %T", viewType, data)
		}
		return RunStatusTUI(feed)
	case ViewLastRun:
		rec, ok := data.(*archive.RunRecord)
		if !ok {
			return fmt.Errorf("invalid data type for %s: %T", viewType, data)
		}
		return RunLastRunTUI(rec)
	}
	return fmt.Errorf("unknown view type: %s", viewType)
}

// IsTUISupported returns true if the view type supports TUI mode.
func IsTUISupported(viewType string) bool {
	for _, v := range SupportedTUIViews() {
		if v == viewType {
			return true
		}
	}
	return false
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{ViewStatus, ViewLastRun}
}
