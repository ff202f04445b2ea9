package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxDetailLength is the longest task text accepted, in characters.
const MaxDetailLength = 256

const (
	minYear = 1
	maxYear = 9999
)

const taskColumns = `id, uid, detail, date, completed, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var date, createdAt, updatedAt string
	var completed int
	if err := row.Scan(&t.ID, &t.UID, &t.Detail, &date, &completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return nil, fmt.Errorf("task %d has corrupt date %q: %w", t.ID, date, err)
	}
	t.Date = d.In(s.loc)
	t.Completed = completed == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func validateTask(detail string, date time.Time) (string, error) {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return "", &ValidationError{Field: "detail", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(detail) > MaxDetailLength {
		return "", &ValidationError{Field: "detail", Reason: fmt.Sprintf("must be at most %d characters", MaxDetailLength)}
	}
	if date.IsZero() {
		return "", &ValidationError{Field: "date", Reason: "must be set"}
	}
	// Stored dates are fixed-width RFC3339 text; other years neither parse
	// back nor sort correctly.
	if y := date.UTC().Year(); y < minYear || y > maxYear {
		return "", &ValidationError{Field: "date", Reason: fmt.Sprintf("year must be between %d and %d", minYear, maxYear)}
	}
	return detail, nil
}

// mutate runs fn in its own transaction and commits before returning.
// Validation and not-found errors pass through untouched; anything else is a
// PersistenceError. The caller must hold s.mu.
func (s *Store) mutate(op string, fn func(tx *sql.Tx) error) error {
	err := s.withRetry(op, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return fail(op, err)
}

// FetchByDay returns the tasks whose date falls in the day bucket of day,
// in creation order. No match yields a nil slice and no error.
func (s *Store) FetchByDay(day time.Time) ([]Task, error) {
	from, to := DayRange(day, s.loc)
	return s.ListTasks(TaskFilter{From: &from, To: &to})
}

func (s *Store) CreateTask(detail string, date time.Time) (*Task, error) {
	detail, err := validateTask(detail, date)
	if err != nil {
		return nil, err
	}

	// The uid is fixed before any attempt so a retried insert can never
	// produce a second row.
	uid := uuid.NewString()
	now := timestamp(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	var t *Task
	err = s.mutate("create task", func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO tasks (uid, detail, date, completed, created_at, updated_at)
			 VALUES (?, ?, ?, 0, ?, ?) ON CONFLICT(uid) DO NOTHING`,
			uid, detail, timestamp(date), now, now,
		)
		if err != nil {
			return err
		}
		t, err = s.scanTask(tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE uid = ?`, uid))
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) GetTask(id int64) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fail(fmt.Sprintf("get task %d", id), err)
	}
	return t, nil
}

// ListTasks returns the tasks matching f in creation order.
func (s *Store) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND date >= ?`
		args = append(args, timestamp(*f.From))
	}
	if f.To != nil {
		query += ` AND date < ?`
		args = append(args, timestamp(*f.To))
	}
	if f.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, boolToInt(*f.Completed))
	}
	query += ` ORDER BY id`

	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []Task
	err := s.withRetry("list tasks", func() error {
		tasks = nil
		rows, err := s.db.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := s.scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, *t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fail("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask rewrites detail and date of an existing task.
func (s *Store) UpdateTask(id int64, detail string, date time.Time) (*Task, error) {
	detail, err := validateTask(detail, date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var t *Task
	err = s.mutate(fmt.Sprintf("update task %d", id), func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE tasks SET detail = ?, date = ?, updated_at = ? WHERE id = ?`,
			detail, timestamp(date), timestamp(time.Now()), id,
		)
		if err != nil {
			return err
		}
		if err := requireRow(res, id); err != nil {
			return err
		}
		t, err = s.scanTask(tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes a task. Deleting an id that does not exist, including
// one already deleted, returns a NotFoundError.
func (s *Store) DeleteTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(fmt.Sprintf("delete task %d", id), func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

// SetCompleted changes only the completion flag of a task.
func (s *Store) SetCompleted(id int64, completed bool) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t *Task
	err := s.mutate(fmt.Sprintf("set completed on task %d", id), func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?`,
			boolToInt(completed), timestamp(time.Now()), id,
		)
		if err != nil {
			return err
		}
		if err := requireRow(res, id); err != nil {
			return err
		}
		t, err = s.scanTask(tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// WeekSummary counts tasks per day for the week containing day.
// It always returns seven entries, one per day, in order.
func (s *Store) WeekSummary(day time.Time, weekStart time.Weekday) ([]DaySummary, error) {
	from, to := WeekRange(day, weekStart, s.loc)
	tasks, err := s.ListTasks(TaskFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	summaries := make([]DaySummary, 7)
	for i := range summaries {
		summaries[i].Day = AddDays(from, i, s.loc)
	}
	for _, t := range tasks {
		for i := range summaries {
			if SameDay(t.Date, summaries[i].Day, s.loc) {
				summaries[i].Total++
				if t.Completed {
					summaries[i].Done++
				}
				break
			}
		}
	}
	return summaries, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
