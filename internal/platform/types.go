// Package platform abstracts window-system operations across platforms:
// querying and mutating native window state, enumerating monitors, and
// registering global hotkeys. One concrete backend exists per supported
// OS; a stub backend satisfies the same contract everywhere else.
package platform

// Handle is a platform-neutral, non-owning window identifier. A handle is
// only valid while the underlying OS window exists; callers must re-check
// with IsWindow rather than cache handles across sessions.
type Handle uint32

// IsZero reports whether the handle is the null window.
func (h Handle) IsZero() bool { return h == 0 }

// Point is a position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// StyleFlags are window style booleans derived from OS style bits.
type StyleFlags struct {
	HasTitleBar   bool
	HasSystemMenu bool
	CanResize     bool
	CanMinimize   bool
	CanMaximize   bool
	IsToolWindow  bool
	IsAlwaysOnTop bool
}

// WindowState is the show state of a window.
type WindowState int

const (
	StateNormal WindowState = iota
	StateMinimized
	StateMaximized
)

func (s WindowState) String() string {
	switch s {
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "normal"
	}
}

// WindowInfo contains identity and geometry for a top-level window.
type WindowInfo struct {
	Handle Handle
	PID    int
	AppID  string
	Title  string
	Bounds Rect
	State  WindowState
}

// MonitorInfo describes one physical display. Index order defines the
// addressing used by persisted window placements.
type MonitorInfo struct {
	Handle      uint32
	Index       int
	IsPrimary   bool
	Bounds      Rect
	WorkArea    Rect
	DPI         int
	RefreshRate int
	Name        string
}

// ZOrder selects a z-order target for SetWindowPlacement.
type ZOrder int

const (
	ZOrderNone ZOrder = iota
	ZOrderTop
	ZOrderBottom
	ZOrderTopMost
	ZOrderNoTopMost
)

// Capabilities reports what the selected backend can actually do.
type Capabilities struct {
	OS             string
	Windows        bool
	Hotkeys        bool
	Monitors       bool
	Transparency   bool
	HotkeyMaximum  int
	HotkeyReserved []string
}
