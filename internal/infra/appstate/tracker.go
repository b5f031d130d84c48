// Package appstate tracks whether the host application UI is currently
// in the foreground. The host reports transitions through the control
// surface.
package appstate

import (
	"sync/atomic"

	"beacon/internal/domain/service"
)

// Tracker is the mutable foreground/background flag. It satisfies the
// read-only AppStateSource port consumed by the ingest pipeline.
type Tracker struct {
	foreground atomic.Bool
}

var _ service.AppStateSource = (*Tracker)(nil)

// NewTracker creates a tracker. A freshly started host is assumed to be
// foregrounded; the host corrects this on its first report.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.foreground.Store(true)

	return t
}

// NewAppStateSource exposes the tracker as an AppStateSource.
func NewAppStateSource(t *Tracker) service.AppStateSource {
	return t
}

// Foreground reports whether the host UI is visible.
func (t *Tracker) Foreground() bool {
	return t.foreground.Load()
}

// SetForeground records a foreground/background transition.
func (t *Tracker) SetForeground(foreground bool) {
	t.foreground.Store(foreground)
}
