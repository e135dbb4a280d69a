package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/snapdesk/snapdesk/internal/fault"
)

const (
	backupPrefix     = "snapdesk_backup_"
	backupTimeLayout = "20060102_150405"
	preRestoreSuffix = ".pre_restore_backup"
)

// Backup copies the database file to targetPath, deriving
// <backupDir>/snapdesk_backup_<yyyyMMdd_HHmmss>.<ext> when targetPath is
// empty. The connection is dropped for the duration of the copy — a
// live-locked file must not be copied — and re-established afterwards
// only if one existed beforehand. Concurrent store operations queue
// behind the write lock. A successful backup triggers retention cleanup;
// cleanup failures are logged and never fail the backup.
func (s *Service) Backup(ctx context.Context, targetPath string) (string, error) {
	if targetPath == "" {
		ext := filepath.Ext(s.cfg.Path)
		if ext == "" {
			ext = ".db"
		}
		name := backupPrefix + time.Now().Format(backupTimeLayout) + ext
		targetPath = filepath.Join(s.cfg.BackupDir, name)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return "", fault.Wrap(fault.IOFailure, err, "cannot create backup directory")
	}

	s.mu.Lock()
	wasConnected := s.db != nil
	if err := s.disconnectLocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}

	copyErr := copyFile(s.cfg.Path, targetPath)

	var reconnectErr error
	if wasConnected {
		reconnectErr = s.connectLocked(ctx)
	}
	s.mu.Unlock()

	if copyErr != nil {
		return "", fault.Wrap(fault.IOFailure, copyErr, "cannot copy database to %s", targetPath)
	}
	if reconnectErr != nil {
		return "", reconnectErr
	}

	s.log.Info("backup created", "path", targetPath)

	if err := s.cleanupOldBackups(); err != nil {
		s.log.Warn("backup retention cleanup failed", "err", err)
	}

	return targetPath, nil
}

// Restore replaces the live database with a backup file. The current
// file is first copied aside with a .pre_restore_backup suffix; that
// safety copy is best-effort and a failure to produce it does not block
// the restore. The connection is re-established after the copy.
func (s *Service) Restore(ctx context.Context, backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fault.Wrap(fault.IOFailure, err, "backup file %s does not exist", backupPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.disconnectLocked(); err != nil {
		return err
	}

	if _, err := os.Stat(s.cfg.Path); err == nil {
		if err := copyFile(s.cfg.Path, s.cfg.Path+preRestoreSuffix); err != nil {
			s.log.Warn("could not create pre-restore safety copy", "err", err)
		}
	}

	// Stale WAL/SHM files from the replaced database would corrupt the
	// restored file on first open.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(s.cfg.Path + suffix)
	}

	if err := copyFile(backupPath, s.cfg.Path); err != nil {
		return fault.Wrap(fault.IOFailure, err, "cannot restore %s over %s", backupPath, s.cfg.Path)
	}

	if err := s.connectLocked(ctx); err != nil {
		return err
	}

	s.log.Info("database restored", "from", backupPath)
	return nil
}

// cleanupOldBackups deletes backup files older than the retention
// window. Retention <= 0 disables cleanup. Only files carrying the
// backup prefix are candidates.
func (s *Service) cleanupOldBackups() error {
	if s.cfg.RetentionDays <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.cfg.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot list backup directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), backupPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.cfg.BackupDir, entry.Name())
		if err := os.Remove(path); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.log.Debug("expired backup removed", "path", path)
	}
	return firstErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
