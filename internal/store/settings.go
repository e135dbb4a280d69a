package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/snapdesk/snapdesk/internal/fault"
)

// GetSetting returns the value stored under key, or NotFound.
func (s *Service) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.Execute(ctx, func(db *sql.DB) error {
		err := db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return fault.New(fault.NotFound, "setting %q does not exist", key)
		}
		if err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "cannot read setting %q", key)
		}
		return nil
	})
	return value, err
}

// SetSetting writes a value under key, replacing any existing value.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	return s.Execute(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value)
		if err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "cannot write setting %q", key)
		}
		return nil
	})
}

// DeleteSetting removes a key. Deleting a missing key is a no-op.
func (s *Service) DeleteSetting(ctx context.Context, key string) error {
	return s.Execute(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "cannot delete setting %q", key)
		}
		return nil
	})
}
