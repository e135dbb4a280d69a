//go:build linux

package platform

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/x11"
)

// X11WindowAPI implements WindowAPI over an X11 connection. All write
// operations validate the handle before touching the server; expected
// failures come back as *fault.Error values.
type X11WindowAPI struct {
	conn *x11.Connection
}

var _ WindowAPI = (*X11WindowAPI)(nil)

// NewX11WindowAPI wraps an existing X11 connection.
func NewX11WindowAPI(conn *x11.Connection) *X11WindowAPI {
	return &X11WindowAPI{conn: conn}
}

func (a *X11WindowAPI) validate(h Handle) error {
	if h.IsZero() || !a.conn.Exists(xproto.Window(h)) {
		return fault.New(fault.InvalidHandle, "window 0x%X does not exist", uint32(h))
	}
	return nil
}

// IsWindow reports whether the handle refers to a live window.
func (a *X11WindowAPI) IsWindow(h Handle) bool {
	return !h.IsZero() && a.conn.Exists(xproto.Window(h))
}

func (a *X11WindowAPI) IsVisible(h Handle) (bool, error) {
	if err := a.validate(h); err != nil {
		return false, err
	}
	visible, err := a.conn.IsViewable(xproto.Window(h))
	if err != nil {
		return false, fault.Wrap(fault.NativeCallFailed, err, "cannot query visibility of 0x%X", uint32(h))
	}
	return visible, nil
}

func (a *X11WindowAPI) Bounds(h Handle) (Rect, error) {
	if err := a.validate(h); err != nil {
		return Rect{}, err
	}
	x, y, w, hh, err := a.conn.Geometry(xproto.Window(h))
	if err != nil {
		return Rect{}, fault.Wrap(fault.NativeCallFailed, err, "cannot query geometry of 0x%X", uint32(h))
	}
	return Rect{X: x, Y: y, Width: w, Height: hh}, nil
}

func (a *X11WindowAPI) OwnerPID(h Handle) (int, error) {
	if err := a.validate(h); err != nil {
		return 0, err
	}
	return a.conn.Pid(xproto.Window(h)), nil
}

func (a *X11WindowAPI) Parent(h Handle) (Handle, error) {
	if err := a.validate(h); err != nil {
		return 0, err
	}
	parent, _, err := a.conn.QueryTree(xproto.Window(h))
	if err != nil {
		return 0, fault.Wrap(fault.NativeCallFailed, err, "cannot query parent of 0x%X", uint32(h))
	}
	return Handle(parent), nil
}

func (a *X11WindowAPI) Children(h Handle) ([]Handle, error) {
	if err := a.validate(h); err != nil {
		return nil, err
	}
	_, children, err := a.conn.QueryTree(xproto.Window(h))
	if err != nil {
		return nil, fault.Wrap(fault.NativeCallFailed, err, "cannot query children of 0x%X", uint32(h))
	}
	handles := make([]Handle, 0, len(children))
	for _, c := range children {
		handles = append(handles, Handle(c))
	}
	return handles, nil
}

func (a *X11WindowAPI) Title(h Handle) (string, error) {
	if err := a.validate(h); err != nil {
		return "", err
	}
	return a.conn.Title(xproto.Window(h)), nil
}

func (a *X11WindowAPI) AppID(h Handle) (string, error) {
	if err := a.validate(h); err != nil {
		return "", err
	}
	return a.conn.Class(xproto.Window(h)), nil
}

func (a *X11WindowAPI) State(h Handle) (WindowState, error) {
	if err := a.validate(h); err != nil {
		return StateNormal, err
	}
	win := xproto.Window(h)
	switch {
	case a.conn.IsMinimized(win):
		return StateMinimized, nil
	case a.conn.IsMaximized(win):
		return StateMaximized, nil
	default:
		return StateNormal, nil
	}
}

func (a *X11WindowAPI) MonitorIndex(h Handle) (int, error) {
	if err := a.validate(h); err != nil {
		return 0, err
	}
	monitors, err := a.conn.GetMonitors()
	if err != nil {
		return 0, fault.Wrap(fault.NativeCallFailed, err, "cannot enumerate monitors")
	}
	return a.conn.MonitorForWindow(monitors, xproto.Window(h)), nil
}

func (a *X11WindowAPI) Style(h Handle) (StyleFlags, error) {
	if err := a.validate(h); err != nil {
		return StyleFlags{}, err
	}
	win := xproto.Window(h)

	_, _, top, _ := a.conn.FrameExtents(win)
	actions := a.conn.AllowedActions(win)
	types := a.conn.WindowTypes(win)

	flags := StyleFlags{
		HasTitleBar:   top > 0,
		HasSystemMenu: top > 0,
		IsAlwaysOnTop: a.conn.HasState(win, "_NET_WM_STATE_ABOVE"),
	}
	for _, action := range actions {
		switch action {
		case "_NET_WM_ACTION_RESIZE":
			flags.CanResize = true
		case "_NET_WM_ACTION_MINIMIZE":
			flags.CanMinimize = true
		case "_NET_WM_ACTION_MAXIMIZE_HORZ", "_NET_WM_ACTION_MAXIMIZE_VERT":
			flags.CanMaximize = true
		}
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_UTILITY" || t == "_NET_WM_WINDOW_TYPE_TOOLBAR" {
			flags.IsToolWindow = true
		}
	}
	return flags, nil
}

// ListWindows returns the managed application windows in client-list
// order, skipping docks, splashes and other non-normal windows.
func (a *X11WindowAPI) ListWindows() ([]WindowInfo, error) {
	clients, err := a.conn.ClientList()
	if err != nil {
		return nil, fault.Wrap(fault.NativeCallFailed, err, "cannot list windows")
	}

	windows := make([]WindowInfo, 0, len(clients))
	for _, win := range clients {
		if !a.conn.IsNormalWindow(win) {
			continue
		}

		x, y, w, hh, err := a.conn.Geometry(win)
		if err != nil {
			continue
		}

		state := StateNormal
		switch {
		case a.conn.IsMinimized(win):
			state = StateMinimized
		case a.conn.IsMaximized(win):
			state = StateMaximized
		}

		windows = append(windows, WindowInfo{
			Handle: Handle(win),
			PID:    a.conn.Pid(win),
			AppID:  a.conn.Class(win),
			Title:  a.conn.Title(win),
			Bounds: Rect{X: x, Y: y, Width: w, Height: hh},
			State:  state,
		})
	}

	return windows, nil
}

func (a *X11WindowAPI) ActiveWindow() (Handle, error) {
	win, err := a.conn.GetActiveWindow()
	if err != nil {
		return 0, fault.Wrap(fault.NativeCallFailed, err, "cannot query active window")
	}
	return Handle(win), nil
}

func (a *X11WindowAPI) Move(h Handle, pos Point) error {
	if err := a.validate(h); err != nil {
		return err
	}
	bounds, err := a.Bounds(h)
	if err != nil {
		return err
	}
	return a.moveResize(h, Rect{X: pos.X, Y: pos.Y, Width: bounds.Width, Height: bounds.Height})
}

func (a *X11WindowAPI) Resize(h Handle, size Size) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return fault.New(fault.InvalidParameter, "size %dx%d must be positive", size.Width, size.Height)
	}
	bounds, err := a.Bounds(h)
	if err != nil {
		return err
	}
	return a.moveResize(h, Rect{X: bounds.X, Y: bounds.Y, Width: size.Width, Height: size.Height})
}

func (a *X11WindowAPI) SetBounds(h Handle, bounds Rect) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return fault.New(fault.InvalidParameter, "size %dx%d must be positive", bounds.Width, bounds.Height)
	}
	return a.moveResize(h, bounds)
}

func (a *X11WindowAPI) moveResize(h Handle, bounds Rect) error {
	err := a.conn.MoveResizeWindow(xproto.Window(h), bounds.X, bounds.Y, bounds.Width, bounds.Height)
	if err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot move/resize 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) Minimize(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.Minimize(xproto.Window(h)); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot minimize 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) Maximize(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.Maximize(xproto.Window(h)); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot maximize 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) RestoreWindow(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.Restore(xproto.Window(h)); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot restore 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) Show(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.Show(xproto.Window(h)); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot show 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) Hide(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.Hide(xproto.Window(h)); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot hide 0x%X", uint32(h))
	}
	return nil
}

// BringToFront raises the window by briefly forcing topmost z-order and
// then releasing it, so the window gains visibility without permanently
// pinning itself above all others.
func (a *X11WindowAPI) BringToFront(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	win := xproto.Window(h)
	if err := a.conn.SetAbove(win, true); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot raise 0x%X", uint32(h))
	}
	if err := a.conn.Raise(win); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot raise 0x%X", uint32(h))
	}
	if err := a.conn.SetAbove(win, false); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot release topmost on 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) SetForeground(h Handle) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.FocusWindow(xproto.Window(h)); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot focus 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) SetAlwaysOnTop(h Handle, onTop bool) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.SetAbove(xproto.Window(h), onTop); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot change always-on-top on 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) SetTransparency(h Handle, alpha uint8) error {
	if err := a.validate(h); err != nil {
		return err
	}
	if err := a.conn.SetOpacity(xproto.Window(h), alpha); err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot set transparency on 0x%X", uint32(h))
	}
	return nil
}

func (a *X11WindowAPI) SetWindowPlacement(h Handle, bounds Rect, order ZOrder) error {
	if err := a.SetBounds(h, bounds); err != nil {
		return err
	}

	win := xproto.Window(h)
	var err error
	switch order {
	case ZOrderTop:
		err = a.conn.Raise(win)
	case ZOrderBottom:
		err = a.conn.Lower(win)
	case ZOrderTopMost:
		err = a.conn.SetAbove(win, true)
	case ZOrderNoTopMost:
		err = a.conn.SetAbove(win, false)
	case ZOrderNone:
		return nil
	}
	if err != nil {
		return fault.Wrap(fault.NativeCallFailed, err, "cannot apply z-order to 0x%X", uint32(h))
	}
	return nil
}

// Monitors enumerates displays in CRTC order, rebuilt on every call.
func (a *X11WindowAPI) Monitors() ([]MonitorInfo, error) {
	monitors, err := a.conn.GetMonitors()
	if err != nil {
		return nil, fault.Wrap(fault.NativeCallFailed, err, "cannot enumerate monitors")
	}

	infos := make([]MonitorInfo, 0, len(monitors))
	for _, m := range monitors {
		infos = append(infos, MonitorInfo{
			Handle:      m.Output,
			Index:       m.ID,
			IsPrimary:   m.Primary,
			Bounds:      Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			WorkArea:    Rect{X: m.WorkX, Y: m.WorkY, Width: m.WorkWidth, Height: m.WorkHeight},
			DPI:         m.DPI,
			RefreshRate: m.RefreshRate,
			Name:        m.Name,
		})
	}
	return infos, nil
}
