package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/hotkeys"
)

func TestStubWindowQueriesReturnZeroValues(t *testing.T) {
	var api StubWindowAPI
	h := Handle(0x1234)

	assert.False(t, api.IsWindow(h))

	visible, err := api.IsVisible(h)
	assert.False(t, visible)
	assert.True(t, fault.IsKind(err, fault.Unsupported))

	bounds, err := api.Bounds(h)
	assert.Zero(t, bounds)
	assert.True(t, fault.IsKind(err, fault.Unsupported))

	windows, err := api.ListWindows()
	assert.Nil(t, windows)
	assert.True(t, fault.IsKind(err, fault.Unsupported))

	monitors, err := api.Monitors()
	assert.Nil(t, monitors)
	assert.True(t, fault.IsKind(err, fault.Unsupported))
}

func TestStubWindowMutationsReturnUnsupported(t *testing.T) {
	var api StubWindowAPI
	h := Handle(1)

	mutations := map[string]error{
		"move":            api.Move(h, Point{X: 10, Y: 20}),
		"resize":          api.Resize(h, Size{Width: 800, Height: 600}),
		"setBounds":       api.SetBounds(h, Rect{Width: 800, Height: 600}),
		"minimize":        api.Minimize(h),
		"maximize":        api.Maximize(h),
		"restore":         api.RestoreWindow(h),
		"show":            api.Show(h),
		"hide":            api.Hide(h),
		"bringToFront":    api.BringToFront(h),
		"setForeground":   api.SetForeground(h),
		"setAlwaysOnTop":  api.SetAlwaysOnTop(h, true),
		"setTransparency": api.SetTransparency(h, 128),
		"setPlacement":    api.SetWindowPlacement(h, Rect{Width: 1, Height: 1}, ZOrderTop),
	}
	for op, err := range mutations {
		assert.True(t, fault.IsKind(err, fault.Unsupported), "operation %s", op)
	}
}

func TestStubHotkeys(t *testing.T) {
	var api StubHotkeyAPI

	err := api.Register(1, hotkeys.ModControl, 'A')
	assert.True(t, fault.IsKind(err, fault.Unsupported))

	assert.False(t, api.IsRegistered(1))
	assert.Nil(t, api.RegisteredIDs())
	assert.Equal(t, 0, api.UnregisterAll())

	info := api.SystemInfo()
	assert.Zero(t, info.RegisteredCount)
	assert.NotEmpty(t, info.Limitations)
}

func TestNewStubPlatform(t *testing.T) {
	p := NewStub()
	require.NotNil(t, p)
	assert.Equal(t, "stub", p.Caps.OS)
	assert.False(t, p.Caps.Windows)
	assert.False(t, p.Caps.Hotkeys)

	// Run and Close are no-ops without a backend event loop.
	p.Run()
	p.Close()
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 100, Y: 50, Width: 200, Height: 100}

	assert.True(t, r.Contains(100, 50))
	assert.True(t, r.Contains(299, 149))
	assert.False(t, r.Contains(300, 149))
	assert.False(t, r.Contains(99, 50))

	assert.Equal(t, Point{X: 200, Y: 100}, r.Center())
}

func TestWindowStateString(t *testing.T) {
	assert.Equal(t, "normal", StateNormal.String())
	assert.Equal(t, "minimized", StateMinimized.String())
	assert.Equal(t, "maximized", StateMaximized.String())
}
