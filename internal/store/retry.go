package store

import (
	"errors"
	"time"

	"github.com/sadopc/daylist/internal/logging"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isTransient reports whether err is a SQLite busy/locked condition that may
// succeed when tried again.
func isTransient(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// withRetry runs fn, retrying transient failures with linear backoff.
// fn must be safe to repeat: every caller either runs a single statement or
// a whole transaction that rolled back.
func (s *Store) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) || attempt >= s.maxRetries {
			break
		}
		logging.Debugf("%s: transient error, retry %d/%d: %v", op, attempt+1, s.maxRetries, err)
		time.Sleep(time.Duration(attempt+1) * s.retryDelay)
	}
	return err
}

// fail logs a storage error and wraps it as a PersistenceError.
func fail(op string, err error) error {
	logging.Errorf("%s: %v", op, err)
	return &PersistenceError{Op: op, Err: err}
}
