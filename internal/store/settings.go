package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys understood by the UI.
const (
	SettingWeekStart     = "week_start"
	SettingDateFormat    = "date_format"
	SettingShowCompleted = "show_completed"
)

func (s *Store) GetSetting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fail(fmt.Sprintf("get setting %q", key), err)
	}
	return value, nil
}

// SettingOr returns the stored value of key, or fallback if it is unset or unreadable.
func (s *Store) SettingOr(key, fallback string) string {
	v, err := s.GetSetting(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withRetry("set setting", func() error {
		_, err := s.db.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		return err
	})
	if err != nil {
		return fail(fmt.Sprintf("set setting %q", key), err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fail("list settings", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, fail("list settings", err)
		}
		settings = append(settings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fail("list settings", err)
	}
	return settings, nil
}
