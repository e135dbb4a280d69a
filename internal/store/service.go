// Package store owns the lifecycle of the embedded SQLite database:
// connect/disconnect, schema and index initialization, health checks,
// and the backup/restore/retention pipeline.
//
// The connection handle is exclusively owned by the Service. Repositories
// access it through Execute, which holds a read lock for the duration of
// the call; backup and restore take the write lock, so concurrent store
// operations queue behind the disconnect/reconnect window instead of
// racing it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/snapdesk/snapdesk/internal/config"
	"github.com/snapdesk/snapdesk/internal/fault"
)

// Service manages one embedded database connection.
type Service struct {
	cfg config.Database
	log *clog.Logger

	mu sync.RWMutex
	db *sql.DB
}

// NewService creates a disconnected service for the given configuration.
func NewService(cfg config.Database, logger *clog.Logger) *Service {
	return &Service{
		cfg: cfg,
		log: logger.With("component", "store"),
	}
}

// Connect opens the database connection. Connecting an already-connected
// service is a no-op.
func (s *Service) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(ctx)
}

func (s *Service) connectLocked(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.cfg.Path)
	if err != nil {
		return fault.Wrap(fault.StoreUnavailable, err, "cannot open database %s", s.cfg.Path)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	if s.cfg.SharedAccess {
		pragmas = append(pragmas, "PRAGMA locking_mode = NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return fault.Wrap(fault.StoreUnavailable, err, "cannot apply %q", pragma)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fault.Wrap(fault.StoreUnavailable, err, "cannot reach database %s", s.cfg.Path)
	}

	s.db = db
	s.log.Debug("connected", "config", s.cfg.Redacted())
	return nil
}

// Disconnect closes the connection. Disconnecting a disconnected service
// is a no-op.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectLocked()
}

func (s *Service) disconnectLocked() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fault.Wrap(fault.StoreUnavailable, err, "cannot close database")
	}
	s.log.Debug("disconnected")
	return nil
}

// Reconnect drops and re-establishes the connection.
func (s *Service) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.disconnectLocked(); err != nil {
		return err
	}
	return s.connectLocked(ctx)
}

// Connected reports whether a connection is live.
func (s *Service) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

// Initialize ensures the on-disk directory exists, connects, creates the
// collections and indexes, and runs pending migrations.
func (s *Service) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.Path), 0o755); err != nil {
		return fault.Wrap(fault.IOFailure, err, "cannot create database directory")
	}

	if err := s.Connect(ctx); err != nil {
		return err
	}

	if err := s.Execute(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "cannot create schema")
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.runMigrations(ctx); err != nil {
		return err
	}

	s.log.Info("store initialized", "path", s.cfg.Path)
	return nil
}

// Execute runs fn against the live connection under a read lock. The
// handle must not escape fn: backup and restore invalidate it.
func (s *Service) Execute(ctx context.Context, fn func(db *sql.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return fault.New(fault.StoreUnavailable, "store is not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.db)
}

// Health runs a lightweight connectivity probe: get-or-create a
// throwaway table and read its count.
func (s *Service) Health(ctx context.Context) error {
	return s.Execute(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS health_probe (id INTEGER)"); err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "health probe failed")
		}
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM health_probe").Scan(&count); err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "health probe failed")
		}
		return nil
	})
}

// Stats summarizes store health, per-collection entity counts, and the
// most recent backup time.
type Stats struct {
	Healthy    bool
	Counts     map[string]int64
	Total      int64
	LastBackup time.Time
}

// Statistics gathers store statistics. Backup-time discovery failures
// leave LastBackup zero rather than failing the whole call.
func (s *Service) Statistics(ctx context.Context) (Stats, error) {
	stats := Stats{Counts: make(map[string]int64)}

	stats.Healthy = s.Health(ctx) == nil

	err := s.Execute(ctx, func(db *sql.DB) error {
		for _, collection := range collections {
			var count int64
			if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+collection).Scan(&count); err != nil {
				return fault.Wrap(fault.StoreUnavailable, err, "cannot count %s", collection)
			}
			stats.Counts[collection] = count
			stats.Total += count
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	stats.LastBackup = s.lastBackupTime()
	return stats, nil
}

func (s *Service) lastBackupTime() time.Time {
	entries, err := os.ReadDir(s.cfg.BackupDir)
	if err != nil {
		return time.Time{}
	}
	var last time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(last) {
			last = info.ModTime()
		}
	}
	return last
}

// runMigrations applies pending schema migrations. The set is currently
// empty; the table records versions so future migrations apply once.
func (s *Service) runMigrations(ctx context.Context) error {
	return s.Execute(ctx, func(db *sql.DB) error {
		var version sql.NullInt64
		if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
			return fault.Wrap(fault.StoreUnavailable, err, "cannot read migration state")
		}
		// No pending migrations.
		return nil
	})
}
