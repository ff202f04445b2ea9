package store

import "time"

// Task is a single to-do entry that belongs to one calendar day.
type Task struct {
	ID        int64
	UID       string
	Detail    string
	Date      time.Time
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// TaskFilter is used to filter tasks in queries. From is inclusive, To exclusive.
type TaskFilter struct {
	From      *time.Time
	To        *time.Time
	Completed *bool
}

// DaySummary holds task counts for one day bucket.
type DaySummary struct {
	Day   time.Time
	Total int
	Done  int
}

// Open returns the number of tasks not yet completed.
func (d DaySummary) Open() int {
	return d.Total - d.Done
}
