package desk

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdesk/snapdesk/internal/config"
	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/layout"
	"github.com/snapdesk/snapdesk/internal/platform"
	"github.com/snapdesk/snapdesk/internal/store"
)

// fakeWindowAPI records mutations against a fixed window population.
// Unimplemented operations fall through to the stub.
type fakeWindowAPI struct {
	platform.StubWindowAPI
	windows   []platform.WindowInfo
	monitors  []platform.MonitorInfo
	monitorOf map[platform.Handle]int

	bounds    map[platform.Handle]platform.Rect
	minimized map[platform.Handle]bool
	maximized map[platform.Handle]bool
	restored  map[platform.Handle]int
	raised    map[platform.Handle]int

	failSetBounds map[platform.Handle]bool
}

func newFakeWindowAPI() *fakeWindowAPI {
	return &fakeWindowAPI{
		monitorOf:     make(map[platform.Handle]int),
		bounds:        make(map[platform.Handle]platform.Rect),
		minimized:     make(map[platform.Handle]bool),
		maximized:     make(map[platform.Handle]bool),
		restored:      make(map[platform.Handle]int),
		raised:        make(map[platform.Handle]int),
		failSetBounds: make(map[platform.Handle]bool),
	}
}

func (f *fakeWindowAPI) ListWindows() ([]platform.WindowInfo, error) { return f.windows, nil }
func (f *fakeWindowAPI) Monitors() ([]platform.MonitorInfo, error)  { return f.monitors, nil }
func (f *fakeWindowAPI) MonitorIndex(h platform.Handle) (int, error) {
	return f.monitorOf[h], nil
}
func (f *fakeWindowAPI) RestoreWindow(h platform.Handle) error {
	f.restored[h]++
	f.minimized[h] = false
	f.maximized[h] = false
	return nil
}
func (f *fakeWindowAPI) SetBounds(h platform.Handle, bounds platform.Rect) error {
	if f.failSetBounds[h] {
		return fault.New(fault.NativeCallFailed, "window rejected geometry change")
	}
	f.bounds[h] = bounds
	return nil
}
func (f *fakeWindowAPI) Minimize(h platform.Handle) error {
	f.minimized[h] = true
	return nil
}
func (f *fakeWindowAPI) Maximize(h platform.Handle) error {
	f.maximized[h] = true
	return nil
}
func (f *fakeWindowAPI) BringToFront(h platform.Handle) error {
	f.raised[h]++
	return nil
}

func newTestRepository(t *testing.T) *layout.Repository {
	t.Helper()
	dir := t.TempDir()
	svc := store.NewService(config.Database{
		Path:        filepath.Join(dir, "test.db"),
		BusyTimeout: time.Second,
		BackupDir:   filepath.Join(dir, "backups"),
	}, clog.New(io.Discard))
	require.NoError(t, svc.Initialize(context.Background()))
	t.Cleanup(func() { _ = svc.Disconnect() })
	return layout.NewRepository(svc, clog.New(io.Discard))
}

func singleMonitor() []platform.MonitorInfo {
	return []platform.MonitorInfo{{
		Index:     0,
		IsPrimary: true,
		Bounds:    platform.Rect{Width: 2560, Height: 1440},
		WorkArea:  platform.Rect{Y: 30, Width: 2560, Height: 1410},
	}}
}

func TestCaptureSnapshotsWindows(t *testing.T) {
	fake := newFakeWindowAPI()
	fake.monitors = singleMonitor()
	fake.windows = []platform.WindowInfo{
		{Handle: 1, AppID: "firefox", Title: "Docs", Bounds: platform.Rect{X: 0, Y: 30, Width: 1280, Height: 1410}},
		{Handle: 2, AppID: "code", Title: "editor", Bounds: platform.Rect{X: 1280, Y: 30, Width: 1280, Height: 1410}, State: platform.StateMaximized},
		{Handle: 3, AppID: "", Title: "unnamed popup"},
	}
	fake.monitorOf[2] = 0

	repo := newTestRepository(t)
	engine := NewEngine(fake, repo, clog.New(io.Discard))

	profile, err := engine.Capture(context.Background(), "Work", "daily setup")
	require.NoError(t, err)

	// The window without an application id cannot be re-resolved and is
	// dropped from the snapshot.
	require.Len(t, profile.Placements, 2)
	assert.Equal(t, 2, profile.WindowCount)

	first := profile.Placements[0]
	assert.Equal(t, "firefox", first.AppID)
	assert.Equal(t, "Docs", first.TitleHint)
	assert.Equal(t, 1280, first.Width)
	assert.Equal(t, platform.StateNormal, first.State)
	assert.Equal(t, platform.StateMaximized, profile.Placements[1].State)

	stored, err := repo.GetByName(context.Background(), "Work")
	require.NoError(t, err)
	assert.Equal(t, "daily setup", stored.Description)
}

func TestCaptureRejectsBlankName(t *testing.T) {
	engine := NewEngine(newFakeWindowAPI(), newTestRepository(t), clog.New(io.Discard))
	_, err := engine.Capture(context.Background(), "  ", "")
	assert.True(t, fault.IsKind(err, fault.InvalidParameter))
}

func TestCaptureDuplicateNameConflicts(t *testing.T) {
	engine := NewEngine(newFakeWindowAPI(), newTestRepository(t), clog.New(io.Discard))
	ctx := context.Background()

	_, err := engine.Capture(ctx, "Work", "")
	require.NoError(t, err)
	_, err = engine.Capture(ctx, "Work", "")
	assert.True(t, fault.IsKind(err, fault.Conflict))
}

func TestApplyPositionsAndActivates(t *testing.T) {
	fake := newFakeWindowAPI()
	fake.monitors = singleMonitor()
	fake.windows = []platform.WindowInfo{
		{Handle: 1, AppID: "firefox", Title: "Mozilla Firefox"},
		{Handle: 2, AppID: "code", Title: "project - editor"},
	}

	repo := newTestRepository(t)
	engine := NewEngine(fake, repo, clog.New(io.Discard))
	ctx := context.Background()

	profile := &layout.Profile{
		Name: "Work",
		Placements: []layout.WindowPlacement{
			{AppID: "firefox", X: 0, Y: 30, Width: 1280, Height: 1410},
			{AppID: "code", X: 1280, Y: 30, Width: 1280, Height: 1410, State: platform.StateMaximized},
		},
	}
	require.NoError(t, repo.Create(ctx, profile))

	report, err := engine.Apply(ctx, "Work")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Applied)
	assert.Empty(t, report.Missing)
	assert.Zero(t, report.Failed)

	assert.Equal(t, platform.Rect{X: 0, Y: 30, Width: 1280, Height: 1410}, fake.bounds[1])
	assert.Equal(t, 1, fake.restored[1])
	assert.Equal(t, 1, fake.raised[1])
	assert.True(t, fake.maximized[2])

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Work", active.Name)
}

func TestApplyReportsMissingApplications(t *testing.T) {
	fake := newFakeWindowAPI()
	fake.monitors = singleMonitor()
	fake.windows = []platform.WindowInfo{{Handle: 1, AppID: "firefox"}}

	repo := newTestRepository(t)
	engine := NewEngine(fake, repo, clog.New(io.Discard))
	ctx := context.Background()

	profile := &layout.Profile{
		Name: "Work",
		Placements: []layout.WindowPlacement{
			{AppID: "firefox", Width: 800, Height: 600},
			{AppID: "slack", Width: 800, Height: 600},
		},
	}
	require.NoError(t, repo.Create(ctx, profile))

	report, err := engine.Apply(ctx, "Work")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, "slack", report.Missing[0].AppID)

	// Partial application still activates the layout.
	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, active.ID)
}

func TestApplyPrefersTitleHintMatch(t *testing.T) {
	fake := newFakeWindowAPI()
	fake.monitors = singleMonitor()
	fake.windows = []platform.WindowInfo{
		{Handle: 1, AppID: "term", Title: "htop"},
		{Handle: 2, AppID: "term", Title: "build logs"},
	}

	repo := newTestRepository(t)
	engine := NewEngine(fake, repo, clog.New(io.Discard))
	ctx := context.Background()

	profile := &layout.Profile{
		Name: "Work",
		Placements: []layout.WindowPlacement{
			{AppID: "term", TitleHint: "logs", X: 100, Width: 800, Height: 600},
			{AppID: "term", X: 900, Width: 800, Height: 600},
		},
	}
	require.NoError(t, repo.Create(ctx, profile))

	report, err := engine.Apply(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)

	// The hinted placement claims the matching window; the second
	// placement takes the remaining one.
	assert.Equal(t, 100, fake.bounds[2].X)
	assert.Equal(t, 900, fake.bounds[1].X)
}

func TestApplyCountsPerWindowFailures(t *testing.T) {
	fake := newFakeWindowAPI()
	fake.monitors = singleMonitor()
	fake.windows = []platform.WindowInfo{
		{Handle: 1, AppID: "firefox"},
		{Handle: 2, AppID: "code"},
	}
	fake.failSetBounds[1] = true

	repo := newTestRepository(t)
	engine := NewEngine(fake, repo, clog.New(io.Discard))
	ctx := context.Background()

	profile := &layout.Profile{
		Name: "Work",
		Placements: []layout.WindowPlacement{
			{AppID: "firefox", Width: 800, Height: 600},
			{AppID: "code", Width: 800, Height: 600},
		},
	}
	require.NoError(t, repo.Create(ctx, profile))

	report, err := engine.Apply(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Failed)
}

func TestApplyRelocatesFromAbsentMonitor(t *testing.T) {
	fake := newFakeWindowAPI()
	fake.monitors = singleMonitor()
	fake.windows = []platform.WindowInfo{{Handle: 1, AppID: "code"}}

	repo := newTestRepository(t)
	engine := NewEngine(fake, repo, clog.New(io.Discard))
	ctx := context.Background()

	// Captured on a second monitor that is no longer attached.
	profile := &layout.Profile{
		Name: "Docked",
		Placements: []layout.WindowPlacement{
			{AppID: "code", X: 2560, Y: 0, Width: 1920, Height: 1080, Monitor: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, profile))

	report, err := engine.Apply(ctx, "Docked")
	require.NoError(t, err)
	require.Equal(t, 1, report.Applied)

	got := fake.bounds[1]
	work := singleMonitor()[0].WorkArea
	assert.True(t, work.Contains(got.X, got.Y), "window must land inside the primary work area, got %+v", got)
	assert.LessOrEqual(t, got.X+got.Width, work.X+work.Width)
	assert.LessOrEqual(t, got.Y+got.Height, work.Y+work.Height)
}

func TestApplyMissingLayout(t *testing.T) {
	engine := NewEngine(newFakeWindowAPI(), newTestRepository(t), clog.New(io.Discard))
	_, err := engine.Apply(context.Background(), "ghost")
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestRelocateClampsOversizedWindow(t *testing.T) {
	area := platform.Rect{X: 0, Y: 30, Width: 1920, Height: 1050}
	got := relocate(platform.Rect{X: 5000, Y: 5000, Width: 4000, Height: 3000}, area)
	assert.Equal(t, area.Width, got.Width)
	assert.Equal(t, area.Height, got.Height)
	assert.Equal(t, area.X, got.X)
	assert.Equal(t, area.Y, got.Y)
}
