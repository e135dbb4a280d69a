package platform

import "github.com/snapdesk/snapdesk/internal/hotkeys"

// WindowAPI is the polymorphic capability over native window state.
//
// Read operations never mutate. Write operations validate the handle and
// all parameters before touching the OS and report expected failures as
// *fault.Error values; they never panic for an invalid handle, an
// unsupported platform, or a rejected OS call.
type WindowAPI interface {
	// IsWindow reports whether the handle refers to an existing window.
	IsWindow(h Handle) bool
	// IsVisible reports whether the window is mapped and not hidden.
	IsVisible(h Handle) (bool, error)
	// Bounds returns the window geometry in screen coordinates.
	Bounds(h Handle) (Rect, error)
	// OwnerPID returns the process that owns the window.
	OwnerPID(h Handle) (int, error)
	// Parent returns the parent (or owner) window, zero for top-levels.
	Parent(h Handle) (Handle, error)
	// Children returns the direct child windows.
	Children(h Handle) ([]Handle, error)
	// Title returns the window title.
	Title(h Handle) (string, error)
	// AppID returns a stable application identifier (class/app id).
	AppID(h Handle) (string, error)
	// State returns normal/minimized/maximized.
	State(h Handle) (WindowState, error)
	// MonitorIndex returns the index of the monitor containing the
	// window's center, per the ordering of Monitors.
	MonitorIndex(h Handle) (int, error)
	// Style returns style booleans derived from OS style bits.
	Style(h Handle) (StyleFlags, error)

	// ListWindows returns the top-level application windows in a stable
	// platform-defined order.
	ListWindows() ([]WindowInfo, error)
	// ActiveWindow returns the currently focused window.
	ActiveWindow() (Handle, error)

	// Move repositions the window without changing its size.
	Move(h Handle, pos Point) error
	// Resize changes the window size without moving it.
	Resize(h Handle, size Size) error
	// SetBounds moves and resizes in one call.
	SetBounds(h Handle, bounds Rect) error
	// Minimize, Maximize and RestoreWindow change the show state.
	Minimize(h Handle) error
	Maximize(h Handle) error
	RestoreWindow(h Handle) error
	// Show and Hide toggle visibility.
	Show(h Handle) error
	Hide(h Handle) error
	// BringToFront raises the window by briefly forcing topmost z-order
	// and then releasing it, so the window becomes visible without
	// pinning itself above all others.
	BringToFront(h Handle) error
	// SetForeground focuses the window.
	SetForeground(h Handle) error
	// SetAlwaysOnTop pins or unpins the window above normal windows.
	SetAlwaysOnTop(h Handle, onTop bool) error
	// SetTransparency sets window opacity, 0 (invisible) to 255 (opaque).
	SetTransparency(h Handle, alpha uint8) error
	// SetWindowPlacement applies position, size and z-order in one call.
	SetWindowPlacement(h Handle, bounds Rect, order ZOrder) error

	// Monitors enumerates displays in a stable platform-defined order,
	// indexed 0..n-1, with exactly one flagged primary when the platform
	// can determine one. Descriptors are rebuilt on every call.
	Monitors() ([]MonitorInfo, error)
}

// HotkeyAPI is the polymorphic capability over global key combinations.
// Registration state is tracked by an in-process registry; see the
// hotkeys package for the id state machine and validation rules.
type HotkeyAPI interface {
	// Register binds a runtime id to a global key combination.
	Register(id int, mods hotkeys.Modifiers, key int) error
	// Unregister releases a previously registered id.
	Unregister(id int) error
	// IsRegistered reports whether the id is currently bound.
	IsRegistered(id int) bool
	// RegisteredIDs returns a snapshot of currently bound ids.
	RegisteredIDs() []int
	// UnregisterAll releases every bound id independently, tolerating
	// partial failure, and returns the number of successful releases.
	UnregisterAll() int
	// SystemInfo reports registered count, the platform maximum and any
	// platform-specific limitations.
	SystemInfo() hotkeys.SystemInfo
}

// HotkeyDispatcher is implemented by hotkey backends that deliver press
// events through a process event loop. The stub backend does not.
type HotkeyDispatcher interface {
	SetHandler(handler func(id int))
}
