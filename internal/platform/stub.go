package platform

import (
	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/hotkeys"
)

// StubWindowAPI satisfies WindowAPI on platforms without window-system
// support. Every query returns zero/false/empty; every mutation returns
// an Unsupported fault. Callers never special-case the stub.
type StubWindowAPI struct{}

var _ WindowAPI = StubWindowAPI{}

func errUnsupported(op string) error {
	return fault.New(fault.Unsupported, "%s is not supported on this platform", op)
}

func (StubWindowAPI) IsWindow(Handle) bool            { return false }
func (StubWindowAPI) IsVisible(Handle) (bool, error)  { return false, errUnsupported("isVisible") }
func (StubWindowAPI) Bounds(Handle) (Rect, error)     { return Rect{}, errUnsupported("bounds") }
func (StubWindowAPI) OwnerPID(Handle) (int, error)    { return 0, errUnsupported("ownerPid") }
func (StubWindowAPI) Parent(Handle) (Handle, error)   { return 0, errUnsupported("parent") }
func (StubWindowAPI) Children(Handle) ([]Handle, error) {
	return nil, errUnsupported("children")
}
func (StubWindowAPI) Title(Handle) (string, error) { return "", errUnsupported("title") }
func (StubWindowAPI) AppID(Handle) (string, error) { return "", errUnsupported("appId") }
func (StubWindowAPI) State(Handle) (WindowState, error) {
	return StateNormal, errUnsupported("state")
}
func (StubWindowAPI) MonitorIndex(Handle) (int, error) {
	return 0, errUnsupported("monitorIndex")
}
func (StubWindowAPI) Style(Handle) (StyleFlags, error) {
	return StyleFlags{}, errUnsupported("style")
}
func (StubWindowAPI) ListWindows() ([]WindowInfo, error) {
	return nil, errUnsupported("listWindows")
}
func (StubWindowAPI) ActiveWindow() (Handle, error) { return 0, errUnsupported("activeWindow") }

func (StubWindowAPI) Move(Handle, Point) error      { return errUnsupported("move") }
func (StubWindowAPI) Resize(Handle, Size) error     { return errUnsupported("resize") }
func (StubWindowAPI) SetBounds(Handle, Rect) error  { return errUnsupported("setBounds") }
func (StubWindowAPI) Minimize(Handle) error         { return errUnsupported("minimize") }
func (StubWindowAPI) Maximize(Handle) error         { return errUnsupported("maximize") }
func (StubWindowAPI) RestoreWindow(Handle) error    { return errUnsupported("restore") }
func (StubWindowAPI) Show(Handle) error             { return errUnsupported("show") }
func (StubWindowAPI) Hide(Handle) error             { return errUnsupported("hide") }
func (StubWindowAPI) BringToFront(Handle) error     { return errUnsupported("bringToFront") }
func (StubWindowAPI) SetForeground(Handle) error    { return errUnsupported("setForeground") }
func (StubWindowAPI) SetAlwaysOnTop(Handle, bool) error {
	return errUnsupported("setAlwaysOnTop")
}
func (StubWindowAPI) SetTransparency(Handle, uint8) error {
	return errUnsupported("setTransparency")
}
func (StubWindowAPI) SetWindowPlacement(Handle, Rect, ZOrder) error {
	return errUnsupported("setWindowPlacement")
}
func (StubWindowAPI) Monitors() ([]MonitorInfo, error) {
	return nil, errUnsupported("monitors")
}

// StubHotkeyAPI satisfies HotkeyAPI where global hotkeys are unavailable.
type StubHotkeyAPI struct{}

var _ HotkeyAPI = StubHotkeyAPI{}

func (StubHotkeyAPI) Register(int, hotkeys.Modifiers, int) error { return errUnsupported("register") }
func (StubHotkeyAPI) Unregister(int) error                       { return errUnsupported("unregister") }
func (StubHotkeyAPI) IsRegistered(int) bool                      { return false }
func (StubHotkeyAPI) RegisteredIDs() []int                       { return nil }
func (StubHotkeyAPI) UnregisterAll() int                         { return 0 }
func (StubHotkeyAPI) SystemInfo() hotkeys.SystemInfo {
	return hotkeys.SystemInfo{Limitations: []string{"global hotkeys are not supported on this platform"}}
}
