package store

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdesk/snapdesk/internal/fault"
)

func settingCount(t *testing.T, svc *Service) int {
	t.Helper()
	var count int
	err := svc.Execute(context.Background(), func(db *sql.DB) error {
		return db.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count)
	})
	require.NoError(t, err)
	return count
}

func TestBackupDerivesDatedFilename(t *testing.T) {
	svc := newTestService(t)

	path, err := svc.Backup(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, svc.cfg.BackupDir, filepath.Dir(path))
	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, backupPrefix), "unexpected name %s", base)
	assert.True(t, strings.HasSuffix(base, ".db"), "unexpected name %s", base)

	stamp := strings.TrimSuffix(strings.TrimPrefix(base, backupPrefix), ".db")
	_, err = time.Parse(backupTimeLayout, stamp)
	assert.NoError(t, err, "timestamp %s does not match layout", stamp)
}

func TestBackupToExplicitPath(t *testing.T) {
	svc := newTestService(t)
	target := filepath.Join(t.TempDir(), "nested", "copy.db")

	path, err := svc.Backup(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target, path)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBackupLeavesServiceConnected(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Backup(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, svc.Connected())
	require.NoError(t, svc.Health(context.Background()))
}

func TestBackupOnDisconnectedServiceStaysDisconnected(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Disconnect())

	_, err := svc.Backup(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, svc.Connected())
}

func TestRestoreRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetSetting(ctx, "kept", "yes"))
	backupPath, err := svc.Backup(ctx, "")
	require.NoError(t, err)

	// Diverge after the backup, then restore over the divergence.
	require.NoError(t, svc.SetSetting(ctx, "lost", "yes"))
	require.Equal(t, 2, settingCount(t, svc))

	require.NoError(t, svc.Restore(ctx, backupPath))
	assert.True(t, svc.Connected())
	assert.Equal(t, 1, settingCount(t, svc))

	value, err := svc.GetSetting(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "yes", value)
}

func TestRestoreMissingFile(t *testing.T) {
	svc := newTestService(t)
	err := svc.Restore(context.Background(), filepath.Join(t.TempDir(), "ghost.db"))
	assert.True(t, fault.IsKind(err, fault.IOFailure))
	// The live database is untouched.
	require.NoError(t, svc.Health(context.Background()))
}

func TestRestoreKeepsPreRestoreCopy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	backupPath, err := svc.Backup(ctx, "")
	require.NoError(t, err)
	require.NoError(t, svc.Restore(ctx, backupPath))

	_, err = os.Stat(svc.cfg.Path + preRestoreSuffix)
	assert.NoError(t, err)
}

func TestCleanupOldBackups(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetentionDays = 7
	svc := NewService(cfg, clog.New(io.Discard))
	require.NoError(t, svc.Initialize(context.Background()))
	t.Cleanup(func() { _ = svc.Disconnect() })

	require.NoError(t, os.MkdirAll(cfg.BackupDir, 0o755))
	old := filepath.Join(cfg.BackupDir, backupPrefix+"20200101_120000.db")
	fresh := filepath.Join(cfg.BackupDir, backupPrefix+time.Now().Format(backupTimeLayout)+".db")
	unrelated := filepath.Join(cfg.BackupDir, "notes.txt")
	for _, path := range []string{old, fresh, unrelated} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	ancient := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, ancient, ancient))
	require.NoError(t, os.Chtimes(unrelated, ancient, ancient))

	require.NoError(t, svc.cleanupOldBackups())

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "expired backup must be deleted")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh backup must survive")
	_, err = os.Stat(unrelated)
	assert.NoError(t, err, "files without the backup prefix must survive")
}

func TestCleanupDisabledByZeroRetention(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetentionDays = 0
	svc := NewService(cfg, clog.New(io.Discard))

	require.NoError(t, os.MkdirAll(cfg.BackupDir, 0o755))
	old := filepath.Join(cfg.BackupDir, backupPrefix+"20200101_120000.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	ancient := time.Now().AddDate(0, 0, -365)
	require.NoError(t, os.Chtimes(old, ancient, ancient))

	require.NoError(t, svc.cleanupOldBackups())
	_, err := os.Stat(old)
	assert.NoError(t, err)
}

func TestCleanupMissingBackupDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetentionDays = 7
	svc := NewService(cfg, clog.New(io.Discard))
	require.NoError(t, svc.cleanupOldBackups())
}

func TestBackupTriggersCleanup(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetentionDays = 7
	svc := NewService(cfg, clog.New(io.Discard))
	require.NoError(t, svc.Initialize(context.Background()))
	t.Cleanup(func() { _ = svc.Disconnect() })

	require.NoError(t, os.MkdirAll(cfg.BackupDir, 0o755))
	old := filepath.Join(cfg.BackupDir, backupPrefix+"20200101_120000.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	ancient := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, ancient, ancient))

	_, err := svc.Backup(context.Background(), "")
	require.NoError(t, err)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}
