package layout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/store"
)

// timeLayout is fixed-width so lexicographic ordering on stored
// timestamps matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// likePattern builds a case-folded LIKE pattern that matches the term
// as a literal substring. Queries using it must carry ESCAPE '\'.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(term)) + "%"
}

const profileColumns = "id, name, description, created_at, updated_at, is_active, placements, hotkey_id, window_count"

// Repository provides typed CRUD and domain queries over the layouts
// collection. All calls go through the store service, so they queue
// behind an in-progress backup instead of racing the reconnect.
type Repository struct {
	store *store.Service
	log   *clog.Logger
	now   func() time.Time
}

// NewRepository creates a layout repository over the store service.
func NewRepository(svc *store.Service, logger *clog.Logger) *Repository {
	return &Repository{
		store: svc,
		log:   logger.With("component", "layouts"),
		now:   time.Now,
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create persists a new profile. The id is generated when empty; the
// window count is derived from the placements. A duplicate name fails
// with Conflict.
func (r *Repository) Create(ctx context.Context, p *Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fault.New(fault.InvalidParameter, "layout name is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.WindowCount = len(p.Placements)

	placements, err := json.Marshal(p.Placements)
	if err != nil {
		return fmt.Errorf("failed to encode placements: %w", err)
	}

	return r.store.Execute(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO layouts (id, name, description, created_at, updated_at, is_active, placements, hotkey_id, window_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, encodeTime(p.CreatedAt), encodeTime(p.UpdatedAt),
			boolToInt(p.IsActive), string(placements), nullable(p.HotkeyID), p.WindowCount)
		if isUniqueViolation(err) {
			return fault.New(fault.Conflict, "layout name %q already exists", p.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to create layout: %w", err)
		}
		r.log.Debug("layout created", "id", p.ID, "name", p.Name)
		return nil
	})
}

// Update persists changes to an existing profile and refreshes its
// updated-at timestamp. Renaming onto an existing name fails with
// Conflict; a missing id fails with NotFound.
func (r *Repository) Update(ctx context.Context, p *Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fault.New(fault.InvalidParameter, "layout name is required")
	}
	p.UpdatedAt = r.now()
	p.WindowCount = len(p.Placements)

	placements, err := json.Marshal(p.Placements)
	if err != nil {
		return fmt.Errorf("failed to encode placements: %w", err)
	}

	return r.store.Execute(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			`UPDATE layouts
			 SET name = ?, description = ?, updated_at = ?, is_active = ?, placements = ?, hotkey_id = ?, window_count = ?
			 WHERE id = ?`,
			p.Name, p.Description, encodeTime(p.UpdatedAt), boolToInt(p.IsActive),
			string(placements), nullable(p.HotkeyID), p.WindowCount, p.ID)
		if isUniqueViolation(err) {
			return fault.New(fault.Conflict, "layout name %q already exists", p.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to update layout: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fault.New(fault.NotFound, "layout %s does not exist", p.ID)
		}
		return nil
	})
}

// Delete removes a profile by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.Execute(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, "DELETE FROM layouts WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete layout: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fault.New(fault.NotFound, "layout %s does not exist", id)
		}
		r.log.Debug("layout deleted", "id", id)
		return nil
	})
}

// GetByID returns one profile.
func (r *Repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	return r.queryOne(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE id = ?",
		func() error { return fault.New(fault.NotFound, "layout %s does not exist", id) },
		id)
}

// GetAll returns every profile ordered by name.
func (r *Repository) GetAll(ctx context.Context) ([]*Profile, error) {
	return r.queryMany(ctx, "SELECT "+profileColumns+" FROM layouts ORDER BY name")
}

// GetByName returns the profile with the exact, case-sensitive name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Profile, error) {
	return r.queryOne(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE name = ?",
		func() error { return fault.New(fault.NotFound, "layout %q does not exist", name) },
		name)
}

// GetByNamePattern returns profiles whose name contains the pattern,
// case-insensitively, ordered by name.
func (r *Repository) GetByNamePattern(ctx context.Context, pattern string) ([]*Profile, error) {
	return r.queryMany(ctx,
		`SELECT `+profileColumns+` FROM layouts WHERE LOWER(name) LIKE ? ESCAPE '\' ORDER BY name`,
		likePattern(pattern))
}

// GetActive returns the single active profile, or NotFound when no
// profile is active.
func (r *Repository) GetActive(ctx context.Context) (*Profile, error) {
	return r.queryOne(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE is_active = 1 LIMIT 1",
		func() error { return fault.New(fault.NotFound, "no layout is active") })
}

// SetActive activates the given profile and deactivates every other one
// in a single transaction, so a crash can never leave the collection
// with zero or two active profiles.
func (r *Repository) SetActive(ctx context.Context, id string) error {
	now := encodeTime(r.now())
	return r.store.Execute(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin activation: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			"UPDATE layouts SET is_active = 0, updated_at = ? WHERE is_active = 1", now); err != nil {
			return fmt.Errorf("failed to deactivate layouts: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE layouts SET is_active = 1, updated_at = ? WHERE id = ?", now, id)
		if err != nil {
			return fmt.Errorf("failed to activate layout: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fault.New(fault.NotFound, "layout %s does not exist", id)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit activation: %w", err)
		}
		r.log.Debug("layout activated", "id", id)
		return nil
	})
}

// GetByDateRange returns profiles created within [from, to], oldest first.
func (r *Repository) GetByDateRange(ctx context.Context, from, to time.Time) ([]*Profile, error) {
	return r.queryMany(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE created_at >= ? AND created_at <= ? ORDER BY created_at",
		encodeTime(from), encodeTime(to))
}

// GetUpdatedSince returns profiles modified at or after the given time,
// most recently updated first.
func (r *Repository) GetUpdatedSince(ctx context.Context, since time.Time) ([]*Profile, error) {
	return r.queryMany(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE updated_at >= ? ORDER BY updated_at DESC",
		encodeTime(since))
}

// GetByWindowCount returns profiles whose placement count falls in
// [minWindows, maxWindows].
func (r *Repository) GetByWindowCount(ctx context.Context, minWindows, maxWindows int) ([]*Profile, error) {
	return r.queryMany(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE window_count >= ? AND window_count <= ? ORDER BY window_count, name",
		minWindows, maxWindows)
}

// GetWithHotkeys returns profiles with a bound hotkey, ordered by name.
func (r *Repository) GetWithHotkeys(ctx context.Context) ([]*Profile, error) {
	return r.queryMany(ctx,
		"SELECT "+profileColumns+" FROM layouts WHERE hotkey_id IS NOT NULL AND hotkey_id != '' ORDER BY name")
}

// GetRecent returns the newest profiles by creation time, capped at limit.
func (r *Repository) GetRecent(ctx context.Context, limit int) ([]*Profile, error) {
	return r.queryMany(ctx,
		"SELECT "+profileColumns+" FROM layouts ORDER BY created_at DESC LIMIT ?", limit)
}

// GetFrequentlyUsed returns the most recently touched profiles, capped
// at limit. Updated-at serves as the usage signal: activation refreshes it.
func (r *Repository) GetFrequentlyUsed(ctx context.Context, limit int) ([]*Profile, error) {
	return r.queryMany(ctx,
		"SELECT "+profileColumns+" FROM layouts ORDER BY updated_at DESC LIMIT ?", limit)
}

// NameExists reports whether a profile with the exact name exists,
// optionally excluding one id. Rename validation passes the id being
// renamed so a profile does not conflict with itself.
func (r *Repository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.store.Execute(ctx, func(db *sql.DB) error {
		var count int64
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM layouts WHERE name = ? AND id != ?", name, excludeID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check name: %w", err)
		}
		exists = count > 0
		return nil
	})
	return exists, err
}

// Search returns profiles whose name or description contains the term,
// case-insensitively.
func (r *Repository) Search(ctx context.Context, term string) ([]*Profile, error) {
	pattern := likePattern(term)
	return r.queryMany(ctx,
		`SELECT `+profileColumns+` FROM layouts
		 WHERE LOWER(name) LIKE ? ESCAPE '\'
		    OR LOWER(description) LIKE ? ESCAPE '\'
		 ORDER BY name`,
		pattern, pattern)
}

// Statistics aggregates counts, averages and boundary names over the
// layouts collection.
func (r *Repository) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	todayStart := encodeTime(r.now().UTC().Truncate(24 * time.Hour))

	err := r.store.Execute(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx,
			`SELECT COUNT(*),
			        COALESCE(SUM(is_active), 0),
			        COALESCE(AVG(window_count), 0),
			        COALESCE(SUM(window_count), 0),
			        COALESCE(SUM(CASE WHEN hotkey_id IS NOT NULL AND hotkey_id != '' THEN 1 ELSE 0 END), 0),
			        COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			        COALESCE(SUM(CASE WHEN updated_at >= ? THEN 1 ELSE 0 END), 0)
			 FROM layouts`, todayStart, todayStart)
		if err := row.Scan(&stats.TotalCount, &stats.ActiveCount, &stats.AverageWindows,
			&stats.TotalWindowCount, &stats.WithHotkeyCount, &stats.CreatedToday, &stats.UpdatedToday); err != nil {
			return fmt.Errorf("failed to aggregate layout statistics: %w", err)
		}

		if stats.TotalCount == 0 {
			return nil
		}

		if err := db.QueryRowContext(ctx,
			"SELECT name FROM layouts ORDER BY created_at DESC LIMIT 1").Scan(&stats.MostRecentName); err != nil {
			return fmt.Errorf("failed to read most recent layout: %w", err)
		}
		if err := db.QueryRowContext(ctx,
			"SELECT name FROM layouts ORDER BY created_at LIMIT 1").Scan(&stats.OldestName); err != nil {
			return fmt.Errorf("failed to read oldest layout: %w", err)
		}
		return nil
	})
	return stats, err
}

func (r *Repository) queryOne(ctx context.Context, query string, notFound func() error, args ...any) (*Profile, error) {
	var profile *Profile
	err := r.store.Execute(ctx, func(db *sql.DB) error {
		p, err := scanProfile(db.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return notFound()
		}
		if err != nil {
			return fmt.Errorf("failed to load layout: %w", err)
		}
		profile = p
		return nil
	})
	return profile, err
}

func (r *Repository) queryMany(ctx context.Context, query string, args ...any) ([]*Profile, error) {
	var profiles []*Profile
	err := r.store.Execute(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query layouts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return fmt.Errorf("failed to scan layout: %w", err)
			}
			profiles = append(profiles, p)
		}
		return rows.Err()
	})
	return profiles, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p          Profile
		createdAt  string
		updatedAt  string
		isActive   int
		placements string
		hotkeyID   sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &createdAt, &updatedAt,
		&isActive, &placements, &hotkeyID, &p.WindowCount); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for layout %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt updated_at for layout %s: %w", p.ID, err)
	}
	p.IsActive = isActive != 0
	p.HotkeyID = hotkeyID.String
	if err := json.Unmarshal([]byte(placements), &p.Placements); err != nil {
		return nil, fmt.Errorf("corrupt placements for layout %s: %w", p.ID, err)
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
