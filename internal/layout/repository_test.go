package layout

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdesk/snapdesk/internal/config"
	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/platform"
	"github.com/snapdesk/snapdesk/internal/store"
)

func newTestStore(t *testing.T) *store.Service {
	t.Helper()
	dir := t.TempDir()
	svc := store.NewService(config.Database{
		Path:        filepath.Join(dir, "test.db"),
		BusyTimeout: time.Second,
		BackupDir:   filepath.Join(dir, "backups"),
	}, clog.New(io.Discard))
	require.NoError(t, svc.Initialize(context.Background()))
	t.Cleanup(func() { _ = svc.Disconnect() })
	return svc
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(newTestStore(t), clog.New(io.Discard))
}

func placementsOf(n int) []WindowPlacement {
	out := make([]WindowPlacement, n)
	for i := range out {
		out[i] = WindowPlacement{
			AppID:  "app",
			X:      i * 100,
			Y:      0,
			Width:  800,
			Height: 600,
		}
	}
	return out
}

func mustCreate(t *testing.T, r *Repository, name string, windows int) *Profile {
	t.Helper()
	p := &Profile{Name: name, Placements: placementsOf(windows)}
	require.NoError(t, r.Create(context.Background(), p))
	return p
}

func TestCreateAndGet(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	p := &Profile{
		Name:        "Work Setup",
		Description: "two editors and a browser",
		Placements: []WindowPlacement{
			{AppID: "firefox", TitleHint: "Mozilla", X: 0, Y: 0, Width: 1280, Height: 1440, Monitor: 0},
			{AppID: "code", X: 1280, Y: 0, Width: 1280, Height: 1440, Monitor: 1, State: platform.StateMaximized},
		},
	}
	require.NoError(t, r.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 2, p.WindowCount)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work Setup", got.Name)
	assert.Equal(t, p.Placements, got.Placements)
	assert.Equal(t, platform.StateMaximized, got.Placements[1].State)
	assert.False(t, got.IsActive)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	r := newTestRepository(t)
	err := r.Create(context.Background(), &Profile{Name: "   "})
	assert.True(t, fault.IsKind(err, fault.InvalidParameter))
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	r := newTestRepository(t)
	mustCreate(t, r, "Work", 1)

	err := r.Create(context.Background(), &Profile{Name: "Work"})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Conflict))
}

func TestGetByNameMissing(t *testing.T) {
	r := newTestRepository(t)
	_, err := r.GetByName(context.Background(), "ghost")
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestUpdate(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	p := mustCreate(t, r, "Work", 2)
	created := p.CreatedAt

	p.Name = "Deep Work"
	p.Placements = placementsOf(3)
	require.NoError(t, r.Update(ctx, p))

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deep Work", got.Name)
	assert.Equal(t, 3, got.WindowCount)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestUpdateMissingProfile(t *testing.T) {
	r := newTestRepository(t)
	err := r.Update(context.Background(), &Profile{ID: "no-such-id", Name: "x"})
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestRenameOntoExistingNameConflicts(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	mustCreate(t, r, "Work", 1)
	home := mustCreate(t, r, "Home", 1)

	home.Name = "Work"
	err := r.Update(ctx, home)
	assert.True(t, fault.IsKind(err, fault.Conflict))
}

func TestDelete(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	p := mustCreate(t, r, "Work", 1)

	require.NoError(t, r.Delete(ctx, p.ID))
	_, err := r.GetByID(ctx, p.ID)
	assert.True(t, fault.IsKind(err, fault.NotFound))

	assert.True(t, fault.IsKind(r.Delete(ctx, p.ID), fault.NotFound))
}

func TestSetActiveKeepsSingleActiveProfile(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	work := mustCreate(t, r, "Work", 2)
	home := mustCreate(t, r, "Home", 1)

	_, err := r.GetActive(ctx)
	assert.True(t, fault.IsKind(err, fault.NotFound))

	require.NoError(t, r.SetActive(ctx, work.ID))
	active, err := r.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, work.ID, active.ID)

	// Activating the other profile atomically swaps the flag.
	require.NoError(t, r.SetActive(ctx, home.ID))
	active, err = r.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, home.ID, active.ID)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, p := range all {
		if p.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestSetActiveUnknownIDKeepsCurrentActive(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	work := mustCreate(t, r, "Work", 1)
	require.NoError(t, r.SetActive(ctx, work.ID))

	err := r.SetActive(ctx, "no-such-id")
	assert.True(t, fault.IsKind(err, fault.NotFound))

	// The failed activation rolled back; Work is still active.
	active, err := r.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, work.ID, active.ID)
}

func TestGetByNamePattern(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	mustCreate(t, r, "Work Setup", 1)
	mustCreate(t, r, "Homework", 1)
	mustCreate(t, r, "Gaming", 1)

	matches, err := r.GetByNamePattern(ctx, "work")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Homework", matches[0].Name)
	assert.Equal(t, "Work Setup", matches[1].Name)
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	mustCreate(t, r, "Alpha", 1)
	p := &Profile{Name: "Beta", Description: "my coding desk"}
	require.NoError(t, r.Create(ctx, p))

	byName, err := r.Search(ctx, "alph")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Alpha", byName[0].Name)

	byDescription, err := r.Search(ctx, "CODING")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Beta", byDescription[0].Name)
}

func TestNameExists(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	work := mustCreate(t, r, "Work", 1)

	exists, err := r.NameExists(ctx, "Work", "")
	require.NoError(t, err)
	assert.True(t, exists)

	// A profile never conflicts with itself during rename validation.
	exists, err = r.NameExists(ctx, "Work", work.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = r.NameExists(ctx, "Ghost", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTimeOrderedQueries(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	r.now = func() time.Time { return clock }

	for i, name := range []string{"First", "Second", "Third"} {
		clock = base.AddDate(0, 0, i)
		mustCreate(t, r, name, 1)
	}

	ranged, err := r.GetByDateRange(ctx, base, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "First", ranged[0].Name)
	assert.Equal(t, "Second", ranged[1].Name)

	recent, err := r.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Third", recent[0].Name)
	assert.Equal(t, "Second", recent[1].Name)

	updated, err := r.GetUpdatedSince(ctx, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "Third", updated[0].Name)
}

func TestGetByWindowCount(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	mustCreate(t, r, "Tiny", 1)
	mustCreate(t, r, "Medium", 3)
	mustCreate(t, r, "Large", 6)

	matches, err := r.GetByWindowCount(ctx, 2, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Medium", matches[0].Name)
}

func TestGetWithHotkeys(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	mustCreate(t, r, "Plain", 1)
	bound := &Profile{Name: "Bound", HotkeyID: "hk-1"}
	require.NoError(t, r.Create(ctx, bound))

	matches, err := r.GetWithHotkeys(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Bound", matches[0].Name)
	assert.Equal(t, "hk-1", matches[0].HotkeyID)
}

func TestStatistics(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	clock := base
	r.now = func() time.Time { return clock }

	mustCreate(t, r, "Old", 2)
	clock = base.AddDate(0, 0, 2)
	fresh := mustCreate(t, r, "Fresh", 4)
	require.NoError(t, r.SetActive(ctx, fresh.ID))

	stats, err := r.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalCount)
	assert.Equal(t, int64(1), stats.ActiveCount)
	assert.Equal(t, int64(6), stats.TotalWindowCount)
	assert.InDelta(t, 3.0, stats.AverageWindows, 0.001)
	assert.Equal(t, "Fresh", stats.MostRecentName)
	assert.Equal(t, "Old", stats.OldestName)
	assert.Equal(t, int64(1), stats.CreatedToday)
	// Activation refreshed the activated row's updated-at.
	assert.Equal(t, int64(1), stats.UpdatedToday)
	assert.Equal(t, int64(0), stats.WithHotkeyCount)
}

func TestStatisticsEmptyCollection(t *testing.T) {
	r := newTestRepository(t)
	stats, err := r.Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCount)
	assert.Empty(t, stats.MostRecentName)
}

func TestSearchTreatsWildcardsAsLiterals(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, r, "100% Focus", 1)
	mustCreate(t, r, "1000 Tabs", 1)
	mustCreate(t, r, "A_B", 1)
	mustCreate(t, r, "AxB", 1)

	got, err := r.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% Focus", got[0].Name)

	got, err = r.GetByNamePattern(ctx, "a_b")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A_B", got[0].Name)
}

func TestCorruptTimestampFailsLoudly(t *testing.T) {
	svc := newTestStore(t)
	r := NewRepository(svc, clog.New(io.Discard))
	ctx := context.Background()

	require.NoError(t, svc.Execute(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO layouts (id, name, description, created_at, updated_at, is_active, placements, hotkey_id, window_count)
			 VALUES ('bad', 'Broken', '', 'yesterday', 'yesterday', 0, '[]', NULL, 0)`)
		return err
	}))

	_, err := r.GetByID(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt created_at")
}
