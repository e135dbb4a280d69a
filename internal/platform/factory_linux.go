//go:build linux

package platform

import (
	"runtime"

	"github.com/snapdesk/snapdesk/internal/hotkeys"
	"github.com/snapdesk/snapdesk/internal/x11"
)

// newPlatform connects to the X server and wires the X11 backends. When
// no display is reachable (headless session, Wayland without XWayland)
// the stub backend is returned instead; callers observe Unsupported
// faults rather than a startup failure.
func newPlatform() *Platform {
	conn, err := x11.NewConnection()
	if err != nil {
		return NewStub()
	}

	registry := hotkeys.NewRegistry()
	binder := hotkeys.NewX11Binder(conn, registry)

	return &Platform{
		Windows: NewX11WindowAPI(conn),
		Hotkeys: binder,
		Caps: Capabilities{
			OS:             runtime.GOOS,
			Windows:        true,
			Hotkeys:        true,
			Monitors:       true,
			Transparency:   true,
			HotkeyMaximum:  hotkeys.IDMax - hotkeys.IDMin + 1,
			HotkeyReserved: []string{"window manager key combinations"},
		},
		run:   conn.EventLoop,
		close: conn.Close,
	}
}
