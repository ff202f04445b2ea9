package tui

import (
	"time"

	"github.com/sadopc/daylist/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDay viewState = iota
	viewWeek
	viewSettings
)

var viewNames = []string{"Day", "Week", "Settings"}

const dateInputLayout = "2006-01-02"

// --- Messages ---

// dayLoadedMsg carries the tasks of day. A message whose day no longer
// matches the selected day is stale and dropped.
type dayLoadedMsg struct {
	day   time.Time
	tasks []store.Task
	err   error
}

// toggleCompletedMsg is emitted by a row when its completion marker is flipped.
type toggleCompletedMsg struct {
	id        int64
	completed bool
}

// settingsChangedMsg tells the other views to reload display settings.
type settingsChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path  string
	count int
}

// --- Helpers ---

func boolSetting(v string) bool {
	return v != "false"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
