package layout

import (
	"context"
	"io"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/hotkeys"
)

func newTestHotkeyRepository(t *testing.T) *HotkeyRepository {
	t.Helper()
	return NewHotkeyRepository(newTestStore(t), clog.New(io.Discard))
}

func TestHotkeyCreateAndGet(t *testing.T) {
	r := newTestHotkeyRepository(t)
	ctx := context.Background()

	rec := &HotkeyRecord{
		Mods:      hotkeys.ModControl | hotkeys.ModAlt,
		Key:       '1',
		Action:    "Work",
		IsEnabled: true,
	}
	require.NoError(t, r.Create(ctx, rec))
	require.NotEmpty(t, rec.ID)

	got, err := r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Mods, got.Mods)
	assert.Equal(t, '1', rune(got.Key))
	assert.Equal(t, "Work", got.Action)
	assert.True(t, got.IsEnabled)
}

func TestHotkeyCreateRejectsInvalidKey(t *testing.T) {
	r := newTestHotkeyRepository(t)
	err := r.Create(context.Background(), &HotkeyRecord{Key: 0x1000, Action: "x"})
	assert.True(t, fault.IsKind(err, fault.InvalidParameter))
}

func TestHotkeyDuplicateCombinationConflicts(t *testing.T) {
	r := newTestHotkeyRepository(t)
	ctx := context.Background()

	first := &HotkeyRecord{Mods: hotkeys.ModWin, Key: 'K', Action: "Work", IsEnabled: true}
	require.NoError(t, r.Create(ctx, first))

	// Same combination, different action.
	err := r.Create(ctx, &HotkeyRecord{Mods: hotkeys.ModWin, Key: 'K', Action: "Home"})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Conflict))

	// A different combination for the same action is fine.
	require.NoError(t, r.Create(ctx, &HotkeyRecord{Mods: hotkeys.ModWin, Key: 'L', Action: "Work"}))
}

func TestHotkeyUpdate(t *testing.T) {
	r := newTestHotkeyRepository(t)
	ctx := context.Background()

	rec := &HotkeyRecord{Mods: hotkeys.ModAlt, Key: 'A', Action: "Work", IsEnabled: true}
	require.NoError(t, r.Create(ctx, rec))

	rec.IsEnabled = false
	rec.Key = 'B'
	require.NoError(t, r.Update(ctx, rec))

	got, err := r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.IsEnabled)
	assert.Equal(t, 'B', rune(got.Key))

	missing := &HotkeyRecord{ID: "no-such-id", Key: 'C', Action: "x"}
	assert.True(t, fault.IsKind(r.Update(ctx, missing), fault.NotFound))
}

func TestHotkeyDelete(t *testing.T) {
	r := newTestHotkeyRepository(t)
	ctx := context.Background()

	rec := &HotkeyRecord{Mods: hotkeys.ModShift, Key: 'S', Action: "Work"}
	require.NoError(t, r.Create(ctx, rec))
	require.NoError(t, r.Delete(ctx, rec.ID))

	_, err := r.GetByID(ctx, rec.ID)
	assert.True(t, fault.IsKind(err, fault.NotFound))
	assert.True(t, fault.IsKind(r.Delete(ctx, rec.ID), fault.NotFound))
}

func TestHotkeyEnabledAndActionQueries(t *testing.T) {
	r := newTestHotkeyRepository(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &HotkeyRecord{Mods: hotkeys.ModWin, Key: '1', Action: "Work", IsEnabled: true}))
	require.NoError(t, r.Create(ctx, &HotkeyRecord{Mods: hotkeys.ModWin, Key: '2', Action: "Home", IsEnabled: false}))
	require.NoError(t, r.Create(ctx, &HotkeyRecord{Mods: hotkeys.ModWin, Key: '3', Action: "Work", IsEnabled: true}))

	enabled, err := r.GetEnabled(ctx)
	require.NoError(t, err)
	assert.Len(t, enabled, 2)
	for _, rec := range enabled {
		assert.True(t, rec.IsEnabled)
	}

	work, err := r.GetByAction(ctx, "Work")
	require.NoError(t, err)
	assert.Len(t, work, 2)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHotkeyFindByKeys(t *testing.T) {
	r := newTestHotkeyRepository(t)
	ctx := context.Background()

	rec := &HotkeyRecord{Mods: hotkeys.ModControl | hotkeys.ModShift, Key: 'F', Action: "Focus"}
	require.NoError(t, r.Create(ctx, rec))

	got, err := r.FindByKeys(ctx, hotkeys.ModControl|hotkeys.ModShift, 'F')
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = r.FindByKeys(ctx, hotkeys.ModControl, 'F')
	assert.True(t, fault.IsKind(err, fault.NotFound))
}
