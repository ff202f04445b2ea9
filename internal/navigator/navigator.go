// Package navigator owns the "currently viewed day" cursor and refetches the
// day's tasks whenever it moves.
package navigator

import (
	"sync"
	"time"

	"github.com/sadopc/daylist/internal/store"
)

// Fetcher loads the tasks of one day bucket. *store.Store satisfies it.
type Fetcher interface {
	FetchByDay(day time.Time) ([]store.Task, error)
}

type Navigator struct {
	fetcher Fetcher
	loc     *time.Location
	now     func() time.Time

	mu       sync.Mutex
	selected time.Time
}

// New returns a Navigator positioned on today in loc.
func New(f Fetcher, loc *time.Location) *Navigator {
	return newWithClock(f, loc, time.Now)
}

func newWithClock(f Fetcher, loc *time.Location, now func() time.Time) *Navigator {
	if loc == nil {
		loc = time.Local
	}
	return &Navigator{
		fetcher:  f,
		loc:      loc,
		now:      now,
		selected: store.StartOfDay(now(), loc),
	}
}

// SelectedDate returns midnight of the selected day.
func (n *Navigator) SelectedDate() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selected
}

// SetSelectedDate moves the cursor to d's day and fetches that day exactly once.
// The cursor moves even if the fetch fails, so the caller never shows one day's
// tasks under another day's header.
func (n *Navigator) SetSelectedDate(d time.Time) ([]store.Task, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = store.StartOfDay(d, n.loc)
	return n.fetcher.FetchByDay(n.selected)
}

// AdvanceDay moves the cursor by delta calendar days.
func (n *Navigator) AdvanceDay(delta int) ([]store.Task, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = store.AddDays(n.selected, delta, n.loc)
	return n.fetcher.FetchByDay(n.selected)
}

// Today moves the cursor back to the current day.
func (n *Navigator) Today() ([]store.Task, error) {
	return n.SetSelectedDate(n.now())
}

// Refresh refetches the selected day without moving the cursor.
func (n *Navigator) Refresh() ([]store.Task, error) {
	_, tasks, err := n.Load()
	return tasks, err
}

// Load is Refresh that also returns the day the tasks belong to, read under
// the same lock so a concurrent move cannot pair them with the wrong day.
func (n *Navigator) Load() (time.Time, []store.Task, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tasks, err := n.fetcher.FetchByDay(n.selected)
	return n.selected, tasks, err
}

// IsToday reports whether the cursor is on the current day.
func (n *Navigator) IsToday() bool {
	return store.SameDay(n.SelectedDate(), n.now(), n.loc)
}
