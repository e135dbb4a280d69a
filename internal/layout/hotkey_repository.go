package layout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/hotkeys"
	"github.com/snapdesk/snapdesk/internal/store"
)

const hotkeyColumns = "id, modifiers, key_code, action, is_enabled"

// HotkeyRepository provides typed CRUD over persisted hotkey records.
// The key combination is unique store-wide; the in-process registry
// enforces the matching runtime-id uniqueness separately.
type HotkeyRepository struct {
	store *store.Service
	log   *clog.Logger
}

// NewHotkeyRepository creates a hotkey repository over the store service.
func NewHotkeyRepository(svc *store.Service, logger *clog.Logger) *HotkeyRepository {
	return &HotkeyRepository{
		store: svc,
		log:   logger.With("component", "hotkeys"),
	}
}

// Create persists a new record. A duplicate key combination fails with
// Conflict.
func (r *HotkeyRepository) Create(ctx context.Context, rec *HotkeyRecord) error {
	if err := hotkeys.ValidateKey(rec.Key); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return r.store.Execute(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			"INSERT INTO hotkeys (id, modifiers, key_code, action, is_enabled) VALUES (?, ?, ?, ?, ?)",
			rec.ID, int(rec.Mods), rec.Key, rec.Action, boolToInt(rec.IsEnabled))
		if isUniqueViolation(err) {
			return fault.New(fault.Conflict, "key combination %s+0x%02X is already bound",
				hotkeys.FormatMods(rec.Mods), rec.Key)
		}
		if err != nil {
			return fmt.Errorf("failed to create hotkey: %w", err)
		}
		r.log.Debug("hotkey created", "id", rec.ID, "keys", hotkeys.FormatMods(rec.Mods))
		return nil
	})
}

// Update persists changes to an existing record.
func (r *HotkeyRepository) Update(ctx context.Context, rec *HotkeyRecord) error {
	return r.store.Execute(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			"UPDATE hotkeys SET modifiers = ?, key_code = ?, action = ?, is_enabled = ? WHERE id = ?",
			int(rec.Mods), rec.Key, rec.Action, boolToInt(rec.IsEnabled), rec.ID)
		if isUniqueViolation(err) {
			return fault.New(fault.Conflict, "key combination %s+0x%02X is already bound",
				hotkeys.FormatMods(rec.Mods), rec.Key)
		}
		if err != nil {
			return fmt.Errorf("failed to update hotkey: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fault.New(fault.NotFound, "hotkey %s does not exist", rec.ID)
		}
		return nil
	})
}

// Delete removes a record by id.
func (r *HotkeyRepository) Delete(ctx context.Context, id string) error {
	return r.store.Execute(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, "DELETE FROM hotkeys WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete hotkey: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fault.New(fault.NotFound, "hotkey %s does not exist", id)
		}
		return nil
	})
}

// GetByID returns one record.
func (r *HotkeyRepository) GetByID(ctx context.Context, id string) (*HotkeyRecord, error) {
	return r.queryOne(ctx,
		"SELECT "+hotkeyColumns+" FROM hotkeys WHERE id = ?",
		func() error { return fault.New(fault.NotFound, "hotkey %s does not exist", id) },
		id)
}

// GetAll returns every record.
func (r *HotkeyRepository) GetAll(ctx context.Context) ([]*HotkeyRecord, error) {
	return r.queryMany(ctx, "SELECT "+hotkeyColumns+" FROM hotkeys ORDER BY action, id")
}

// GetEnabled returns records with the enabled flag set.
func (r *HotkeyRepository) GetEnabled(ctx context.Context) ([]*HotkeyRecord, error) {
	return r.queryMany(ctx, "SELECT "+hotkeyColumns+" FROM hotkeys WHERE is_enabled = 1 ORDER BY action, id")
}

// GetByAction returns records bound to an action.
func (r *HotkeyRepository) GetByAction(ctx context.Context, action string) ([]*HotkeyRecord, error) {
	return r.queryMany(ctx, "SELECT "+hotkeyColumns+" FROM hotkeys WHERE action = ? ORDER BY id", action)
}

// FindByKeys returns the record bound to the exact key combination.
func (r *HotkeyRepository) FindByKeys(ctx context.Context, mods hotkeys.Modifiers, key int) (*HotkeyRecord, error) {
	return r.queryOne(ctx,
		"SELECT "+hotkeyColumns+" FROM hotkeys WHERE modifiers = ? AND key_code = ?",
		func() error {
			return fault.New(fault.NotFound, "no hotkey bound to %s+0x%02X", hotkeys.FormatMods(mods), key)
		},
		int(mods), key)
}

func (r *HotkeyRepository) queryOne(ctx context.Context, query string, notFound func() error, args ...any) (*HotkeyRecord, error) {
	var rec *HotkeyRecord
	err := r.store.Execute(ctx, func(db *sql.DB) error {
		h, err := scanHotkey(db.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return notFound()
		}
		if err != nil {
			return fmt.Errorf("failed to load hotkey: %w", err)
		}
		rec = h
		return nil
	})
	return rec, err
}

func (r *HotkeyRepository) queryMany(ctx context.Context, query string, args ...any) ([]*HotkeyRecord, error) {
	var records []*HotkeyRecord
	err := r.store.Execute(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query hotkeys: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			h, err := scanHotkey(rows)
			if err != nil {
				return fmt.Errorf("failed to scan hotkey: %w", err)
			}
			records = append(records, h)
		}
		return rows.Err()
	})
	return records, err
}

func scanHotkey(row rowScanner) (*HotkeyRecord, error) {
	var (
		rec       HotkeyRecord
		mods      int
		isEnabled int
	)
	if err := row.Scan(&rec.ID, &mods, &rec.Key, &rec.Action, &isEnabled); err != nil {
		return nil, err
	}
	rec.Mods = hotkeys.Modifiers(mods)
	rec.IsEnabled = isEnabled != 0
	return &rec, nil
}
